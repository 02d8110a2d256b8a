package hemesh

// Dynamic handles track an element across Compress and Canonicalize by
// listening for the permutations those apply. They cost a callback
// registration each, so they suit long-lived references, not bulk storage;
// call Done when finished, or Decay for the plain handle.

type dynamicCore struct {
	mesh       *Mesh
	kind       ElementKind
	ind        int
	permuteTok CallbackToken
	releaseTok CallbackToken
}

func newDynamicCore(m *Mesh, kind ElementKind, ind int) *dynamicCore {
	d := &dynamicCore{mesh: m, kind: kind, ind: ind}
	d.permuteTok = m.RegisterPermute(kind, d.onPermute)
	d.releaseTok = m.RegisterRelease(d.onRelease)
	return d
}

func (d *dynamicCore) onPermute(p []int) {
	for newInd, old := range p {
		if old == d.ind {
			d.ind = newInd
			return
		}
	}
	// The element was dead when the permutation dropped it.
	d.ind = invalidInd
}

func (d *dynamicCore) onRelease() {
	d.mesh = nil
}

// IsValid reports whether the tracked element still exists and the mesh is
// still alive. A tombstoned element stays valid until the next Compress.
func (d *dynamicCore) IsValid() bool { return d.mesh != nil && d.ind != invalidInd }

func (d *dynamicCore) done() {
	if d.mesh == nil {
		return
	}
	d.mesh.UnregisterPermute(d.kind, d.permuteTok)
	d.mesh.UnregisterRelease(d.releaseTok)
	d.mesh = nil
}

// DynamicVertex tracks a vertex across index permutations.
type DynamicVertex struct{ *dynamicCore }

// NewDynamicVertex starts tracking v.
func NewDynamicVertex(v Vertex) DynamicVertex {
	return DynamicVertex{newDynamicCore(v.mesh, KindVertex, v.ind)}
}

// Decay returns the plain handle at the current index, null if invalid.
func (d DynamicVertex) Decay() Vertex {
	if !d.IsValid() {
		return Vertex{}
	}
	return Vertex{d.mesh, d.ind}
}

// Done stops tracking.
func (d DynamicVertex) Done() { d.done() }

// DynamicHalfedge tracks a halfedge across index permutations.
type DynamicHalfedge struct{ *dynamicCore }

func NewDynamicHalfedge(h Halfedge) DynamicHalfedge {
	return DynamicHalfedge{newDynamicCore(h.mesh, KindHalfedge, h.ind)}
}

func (d DynamicHalfedge) Decay() Halfedge {
	if !d.IsValid() {
		return Halfedge{}
	}
	return Halfedge{d.mesh, d.ind}
}

func (d DynamicHalfedge) Done() { d.done() }

// DynamicEdge tracks an edge across index permutations.
type DynamicEdge struct{ *dynamicCore }

func NewDynamicEdge(e Edge) DynamicEdge {
	return DynamicEdge{newDynamicCore(e.mesh, KindEdge, e.ind)}
}

func (d DynamicEdge) Decay() Edge {
	if !d.IsValid() {
		return Edge{}
	}
	return Edge{d.mesh, d.ind}
}

func (d DynamicEdge) Done() { d.done() }

// DynamicFace tracks a real face across index permutations.
type DynamicFace struct{ *dynamicCore }

func NewDynamicFace(f Face) DynamicFace {
	return DynamicFace{newDynamicCore(f.mesh, KindFace, f.ind)}
}

func (d DynamicFace) Decay() Face {
	if !d.IsValid() {
		return Face{}
	}
	return Face{d.mesh, d.ind}
}

func (d DynamicFace) Done() { d.done() }
