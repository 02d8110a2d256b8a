package hemesh

import "fmt"

// invalidInd marks tombstoned slots and unset references in the core arrays.
const invalidInd = -1

// ElementKind identifies one of the mesh element index spaces.
type ElementKind int

const (
	KindVertex ElementKind = iota
	KindHalfedge
	KindCorner
	KindEdge
	KindFace
	KindBoundaryLoop
)

func (k ElementKind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindHalfedge:
		return "halfedge"
	case KindCorner:
		return "corner"
	case KindEdge:
		return "edge"
	case KindFace:
		return "face"
	case KindBoundaryLoop:
		return "boundary-loop"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Handles
//
// A handle is a (mesh, index) pair. The zero value is the null handle: it has
// no mesh and compares unequal to every element of a live mesh. Comparing
// handles from two different meshes is not meaningful.
// ---------------------------------------------------------------------------

// Vertex is a handle to a mesh vertex.
type Vertex struct {
	mesh *Mesh
	ind  int
}

// Halfedge is a handle to a directed edge-side.
type Halfedge struct {
	mesh *Mesh
	ind  int
}

// Corner is a handle to a face corner. Corners share the halfedge index
// space: the corner's index is the index of the interior halfedge whose tail
// is the corner's apex vertex.
type Corner struct {
	mesh *Mesh
	ind  int
}

// Edge is a handle to an unoriented edge. An edge's two halfedges occupy
// slots 2e and 2e+1.
type Edge struct {
	mesh *Mesh
	ind  int
}

// Face is a handle to a real polygonal face.
type Face struct {
	mesh *Mesh
	ind  int
}

// BoundaryLoop is a handle to a pseudo-face tracing the exterior halfedges
// around one hole. Loop i occupies face-buffer slot capacity-1-i.
type BoundaryLoop struct {
	mesh *Mesh
	ind  int
}

// IsNull reports whether the handle is the null handle.
func (v Vertex) IsNull() bool       { return v.mesh == nil }
func (h Halfedge) IsNull() bool     { return h.mesh == nil }
func (c Corner) IsNull() bool       { return c.mesh == nil }
func (e Edge) IsNull() bool         { return e.mesh == nil }
func (f Face) IsNull() bool         { return f.mesh == nil }
func (b BoundaryLoop) IsNull() bool { return b.mesh == nil }

// Index returns the element's raw index. Raw indices are only a dense
// enumeration while the mesh is compressed; prefer the canonical index
// containers (VertexIndices etc) for numbering elements.
func (v Vertex) Index() int       { return v.ind }
func (h Halfedge) Index() int     { return h.ind }
func (c Corner) Index() int       { return c.ind }
func (e Edge) Index() int         { return e.ind }
func (f Face) Index() int         { return f.ind }
func (b BoundaryLoop) Index() int { return b.ind }

// Mesh returns the owning mesh.
func (v Vertex) Mesh() *Mesh       { return v.mesh }
func (h Halfedge) Mesh() *Mesh     { return h.mesh }
func (c Corner) Mesh() *Mesh       { return c.mesh }
func (e Edge) Mesh() *Mesh         { return e.mesh }
func (f Face) Mesh() *Mesh         { return f.mesh }
func (b BoundaryLoop) Mesh() *Mesh { return b.mesh }

func (v Vertex) String() string       { return fmt.Sprintf("v_%d", v.ind) }
func (h Halfedge) String() string     { return fmt.Sprintf("he_%d", h.ind) }
func (c Corner) String() string       { return fmt.Sprintf("c_%d", c.ind) }
func (e Edge) String() string         { return fmt.Sprintf("e_%d", e.ind) }
func (f Face) String() string         { return fmt.Sprintf("f_%d", f.ind) }
func (b BoundaryLoop) String() string { return fmt.Sprintf("bl_%d", b.ind) }

// ---------------------------------------------------------------------------
// Vertex navigation
// ---------------------------------------------------------------------------

// Halfedge returns one outgoing halfedge. For a boundary vertex this is the
// first interior halfedge of the half-disk, so that walking the outgoing fan
// from here stays inside the surface until the final exterior halfedge.
func (v Vertex) Halfedge() Halfedge {
	return Halfedge{v.mesh, v.mesh.vHalfedge[v.ind]}
}

// Corner returns one corner incident on the vertex.
func (v Vertex) Corner() Corner {
	return Corner{v.mesh, v.mesh.vHalfedge[v.ind]}
}

// IsBoundary reports whether the vertex lies on a boundary loop.
func (v Vertex) IsBoundary() bool {
	m := v.mesh
	he0 := m.vHalfedge[v.ind]
	he := he0
	for {
		if !m.heIsInterior(he) || !m.heIsInterior(heTwin(he)) {
			return true
		}
		he = m.heNext[heTwin(he)]
		if he == he0 {
			return false
		}
	}
}

// Degree returns the number of edges incident on the vertex.
func (v Vertex) Degree() int {
	m := v.mesh
	he0 := m.vHalfedge[v.ind]
	he := he0
	n := 0
	for {
		n++
		he = m.heNext[heTwin(he)]
		if he == he0 {
			return n
		}
	}
}

// FaceDegree returns the number of real faces incident on the vertex.
func (v Vertex) FaceDegree() int {
	m := v.mesh
	he0 := m.vHalfedge[v.ind]
	he := he0
	n := 0
	for {
		if m.heIsInterior(he) {
			n++
		}
		he = m.heNext[heTwin(he)]
		if he == he0 {
			return n
		}
	}
}

// ---------------------------------------------------------------------------
// Halfedge navigation
// ---------------------------------------------------------------------------

// heTwin pairs halfedge slots: twins differ only in the low index bit.
func heTwin(iHe int) int { return iHe ^ 1 }

// heEdge maps a halfedge slot to its edge index.
func heEdge(iHe int) int { return iHe / 2 }

// eHalfedge returns the canonical halfedge slot of an edge.
func eHalfedge(iE int) int { return 2 * iE }

// Next returns the next halfedge around the face.
func (h Halfedge) Next() Halfedge { return Halfedge{h.mesh, h.mesh.heNext[h.ind]} }

// Twin returns the oppositely directed halfedge of the same edge.
func (h Halfedge) Twin() Halfedge { return Halfedge{h.mesh, heTwin(h.ind)} }

// Vertex returns the tail vertex.
func (h Halfedge) Vertex() Vertex { return Vertex{h.mesh, h.mesh.heVertex[h.ind]} }

// TipVertex returns the head vertex (the tail of the twin).
func (h Halfedge) TipVertex() Vertex { return Vertex{h.mesh, h.mesh.heVertex[heTwin(h.ind)]} }

// Edge returns the edge this halfedge belongs to.
func (h Halfedge) Edge() Edge { return Edge{h.mesh, heEdge(h.ind)} }

// Corner returns the corner with the same index. Only meaningful for
// interior halfedges.
func (h Halfedge) Corner() Corner { return Corner{h.mesh, h.ind} }

// Face returns the incident face, which may be a boundary-loop pseudo-face
// (check IsBoundaryLoop).
func (h Halfedge) Face() Face { return Face{h.mesh, h.mesh.heFace[h.ind]} }

// IsInterior reports whether the incident face is a real face rather than a
// boundary loop.
func (h Halfedge) IsInterior() bool { return h.mesh.heIsInterior(h.ind) }

// PrevInFace walks the face cycle all the way around to the halfedge whose
// Next is h. O(face degree).
func (h Halfedge) PrevInFace() Halfedge {
	m := h.mesh
	cur := h.ind
	for m.heNext[cur] != h.ind {
		cur = m.heNext[cur]
	}
	return Halfedge{m, cur}
}

// ---------------------------------------------------------------------------
// Corner navigation
// ---------------------------------------------------------------------------

// Halfedge returns the halfedge identifying this corner.
func (c Corner) Halfedge() Halfedge { return Halfedge{c.mesh, c.ind} }

// Vertex returns the corner's apex vertex.
func (c Corner) Vertex() Vertex { return Vertex{c.mesh, c.mesh.heVertex[c.ind]} }

// Face returns the face containing the corner.
func (c Corner) Face() Face { return Face{c.mesh, c.mesh.heFace[c.ind]} }

// ---------------------------------------------------------------------------
// Edge navigation
// ---------------------------------------------------------------------------

// Halfedge returns the edge's canonical halfedge. Which of the two sides is
// canonical can be changed with Mesh.SetEdgeHalfedge.
func (e Edge) Halfedge() Halfedge { return Halfedge{e.mesh, eHalfedge(e.ind)} }

// IsBoundary reports whether the edge borders a boundary loop.
func (e Edge) IsBoundary() bool {
	m := e.mesh
	he := eHalfedge(e.ind)
	return !m.heIsInterior(he) || !m.heIsInterior(heTwin(he))
}

// ---------------------------------------------------------------------------
// Face navigation
// ---------------------------------------------------------------------------

// Halfedge returns one halfedge on the face's boundary cycle.
func (f Face) Halfedge() Halfedge { return Halfedge{f.mesh, f.mesh.fHalfedge[f.ind]} }

// IsBoundaryLoop reports whether this face handle actually refers to a
// boundary-loop pseudo-face.
func (f Face) IsBoundaryLoop() bool { return f.mesh.faceIsBoundaryLoop(f.ind) }

// AsBoundaryLoop reinterprets a boundary-loop pseudo-face as a BoundaryLoop
// handle. Only valid when IsBoundaryLoop is true.
func (f Face) AsBoundaryLoop() BoundaryLoop {
	return BoundaryLoop{f.mesh, f.mesh.faceIndToBoundaryLoopInd(f.ind)}
}

// Degree returns the number of sides of the face.
func (f Face) Degree() int {
	m := f.mesh
	he0 := m.fHalfedge[f.ind]
	he := he0
	n := 0
	for {
		n++
		he = m.heNext[he]
		if he == he0 {
			return n
		}
	}
}

// ---------------------------------------------------------------------------
// Boundary loop navigation
// ---------------------------------------------------------------------------

// Halfedge returns one exterior halfedge on the loop.
func (b BoundaryLoop) Halfedge() Halfedge {
	return Halfedge{b.mesh, b.mesh.fHalfedge[b.mesh.boundaryLoopIndToFaceInd(b.ind)]}
}

// AsFace reinterprets the loop as its face-buffer pseudo-face.
func (b BoundaryLoop) AsFace() Face {
	return Face{b.mesh, b.mesh.boundaryLoopIndToFaceInd(b.ind)}
}

// Degree returns the number of exterior halfedges on the loop.
func (b BoundaryLoop) Degree() int { return b.AsFace().Degree() }
