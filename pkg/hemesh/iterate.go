package hemesh

import "iter"

// Mesh-level element ranges. All of these skip tombstoned slots, so they are
// safe on uncompressed meshes; iteration order is index order. Deleting the
// element currently yielded is allowed, deleting others mid-range is not.

// Vertices ranges over all live vertices.
func (m *Mesh) Vertices() iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		for i := 0; i < m.nVerticesFillCount; i++ {
			if m.vertexIsDead(i) {
				continue
			}
			if !yield(Vertex{m, i}) {
				return
			}
		}
	}
}

// Halfedges ranges over all live halfedges, interior and exterior alike.
func (m *Mesh) Halfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		for i := 0; i < m.nHalfedgesFillCount; i++ {
			if m.halfedgeIsDead(i) {
				continue
			}
			if !yield(Halfedge{m, i}) {
				return
			}
		}
	}
}

// InteriorHalfedges ranges over live halfedges whose face is a real face.
func (m *Mesh) InteriorHalfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		for i := 0; i < m.nHalfedgesFillCount; i++ {
			if m.halfedgeIsDead(i) || !m.heIsInterior(i) {
				continue
			}
			if !yield(Halfedge{m, i}) {
				return
			}
		}
	}
}

// ExteriorHalfedges ranges over live halfedges sitting in boundary loops.
func (m *Mesh) ExteriorHalfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		for i := 0; i < m.nHalfedgesFillCount; i++ {
			if m.halfedgeIsDead(i) || m.heIsInterior(i) {
				continue
			}
			if !yield(Halfedge{m, i}) {
				return
			}
		}
	}
}

// Corners ranges over all corners, one per interior halfedge.
func (m *Mesh) Corners() iter.Seq[Corner] {
	return func(yield func(Corner) bool) {
		for i := 0; i < m.nHalfedgesFillCount; i++ {
			if m.halfedgeIsDead(i) || !m.heIsInterior(i) {
				continue
			}
			if !yield(Corner{m, i}) {
				return
			}
		}
	}
}

// Edges ranges over all live edges.
func (m *Mesh) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for i := 0; i < m.nHalfedgesFillCount/2; i++ {
			if m.edgeIsDead(i) {
				continue
			}
			if !yield(Edge{m, i}) {
				return
			}
		}
	}
}

// Faces ranges over all live real faces. Boundary loops are excluded.
func (m *Mesh) Faces() iter.Seq[Face] {
	return func(yield func(Face) bool) {
		for i := 0; i < m.nFacesFillCount; i++ {
			if m.faceIsDead(i) {
				continue
			}
			if !yield(Face{m, i}) {
				return
			}
		}
	}
}

// BoundaryLoops ranges over all boundary loops.
func (m *Mesh) BoundaryLoops() iter.Seq[BoundaryLoop] {
	return func(yield func(BoundaryLoop) bool) {
		for i := 0; i < m.nBoundaryLoopsFillCount; i++ {
			iF := m.boundaryLoopIndToFaceInd(i)
			if m.faceIsDead(iF) {
				continue
			}
			if !yield(BoundaryLoop{m, i}) {
				return
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Vertex neighborhoods. All rotate via he = next(twin(he)), which visits the
// outgoing halfedges counter-clockwise and covers boundary vertices without
// special cases because exterior halfedges participate in the rotation.
// ---------------------------------------------------------------------------

// OutgoingHalfedges ranges over the halfedges whose tail is v, including any
// exterior ones.
func (v Vertex) OutgoingHalfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		m := v.mesh
		first := m.vHalfedge[v.ind]
		he := first
		for {
			if !yield(Halfedge{m, he}) {
				return
			}
			he = m.heNext[heTwin(he)]
			if he == first {
				return
			}
		}
	}
}

// IncomingHalfedges ranges over the halfedges whose tip is v.
func (v Vertex) IncomingHalfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		for out := range v.OutgoingHalfedges() {
			if !yield(out.Twin()) {
				return
			}
		}
	}
}

// AdjacentVertices ranges over the vertices connected to v by an edge.
func (v Vertex) AdjacentVertices() iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		for out := range v.OutgoingHalfedges() {
			if !yield(out.TipVertex()) {
				return
			}
		}
	}
}

// AdjacentEdges ranges over the edges incident on v.
func (v Vertex) AdjacentEdges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for out := range v.OutgoingHalfedges() {
			if !yield(out.Edge()) {
				return
			}
		}
	}
}

// AdjacentFaces ranges over the real faces incident on v. At a boundary
// vertex this yields one face fewer than the vertex degree.
func (v Vertex) AdjacentFaces() iter.Seq[Face] {
	return func(yield func(Face) bool) {
		for out := range v.OutgoingHalfedges() {
			if !out.IsInterior() {
				continue
			}
			if !yield(out.Face()) {
				return
			}
		}
	}
}

// AdjacentCorners ranges over the corners whose apex is v.
func (v Vertex) AdjacentCorners() iter.Seq[Corner] {
	return func(yield func(Corner) bool) {
		for out := range v.OutgoingHalfedges() {
			if !out.IsInterior() {
				continue
			}
			if !yield(Corner{v.mesh, out.ind}) {
				return
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Face neighborhoods. All walk the face cycle from its starting halfedge.
// ---------------------------------------------------------------------------

func faceCycle(m *Mesh, iF int) iter.Seq[int] {
	return func(yield func(int) bool) {
		first := m.fHalfedge[iF]
		he := first
		for {
			if !yield(he) {
				return
			}
			he = m.heNext[he]
			if he == first {
				return
			}
		}
	}
}

// AdjacentHalfedges ranges over the halfedges of f in cycle order.
func (f Face) AdjacentHalfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		for he := range faceCycle(f.mesh, f.ind) {
			if !yield(Halfedge{f.mesh, he}) {
				return
			}
		}
	}
}

// AdjacentVertices ranges over the vertices of f in cycle order.
func (f Face) AdjacentVertices() iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		for he := range faceCycle(f.mesh, f.ind) {
			if !yield(Vertex{f.mesh, f.mesh.heVertex[he]}) {
				return
			}
		}
	}
}

// AdjacentEdges ranges over the edges of f in cycle order.
func (f Face) AdjacentEdges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for he := range faceCycle(f.mesh, f.ind) {
			if !yield(Edge{f.mesh, heEdge(he)}) {
				return
			}
		}
	}
}

// AdjacentCorners ranges over the corners of f in cycle order.
func (f Face) AdjacentCorners() iter.Seq[Corner] {
	return func(yield func(Corner) bool) {
		for he := range faceCycle(f.mesh, f.ind) {
			if !yield(Corner{f.mesh, he}) {
				return
			}
		}
	}
}

// AdjacentFaces ranges over the real faces sharing an edge with f. A
// neighbor sharing several edges with f is yielded once per shared edge.
func (f Face) AdjacentFaces() iter.Seq[Face] {
	return func(yield func(Face) bool) {
		m := f.mesh
		for he := range faceCycle(m, f.ind) {
			tw := heTwin(he)
			if !m.heIsInterior(tw) {
				continue
			}
			if !yield(Face{m, m.heFace[tw]}) {
				return
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Edge and boundary-loop neighborhoods.
// ---------------------------------------------------------------------------

// AdjacentHalfedges yields the edge's two halfedges, the canonical one first.
func (e Edge) AdjacentHalfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		he := eHalfedge(e.ind)
		if !yield(Halfedge{e.mesh, he}) {
			return
		}
		yield(Halfedge{e.mesh, he + 1})
	}
}

// AdjacentVertices yields the edge's two endpoints, tail of the canonical
// halfedge first.
func (e Edge) AdjacentVertices() iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		he := eHalfedge(e.ind)
		if !yield(Vertex{e.mesh, e.mesh.heVertex[he]}) {
			return
		}
		yield(Vertex{e.mesh, e.mesh.heVertex[he+1]})
	}
}

// AdjacentHalfedges ranges over the exterior halfedges of the loop in cycle
// order.
func (b BoundaryLoop) AdjacentHalfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		m := b.mesh
		for he := range faceCycle(m, m.boundaryLoopIndToFaceInd(b.ind)) {
			if !yield(Halfedge{m, he}) {
				return
			}
		}
	}
}

// AdjacentVertices ranges over the vertices of the loop in cycle order.
func (b BoundaryLoop) AdjacentVertices() iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		m := b.mesh
		for he := range faceCycle(m, m.boundaryLoopIndToFaceInd(b.ind)) {
			if !yield(Vertex{m, m.heVertex[he]}) {
				return
			}
		}
	}
}

// AdjacentEdges ranges over the edges of the loop in cycle order.
func (b BoundaryLoop) AdjacentEdges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		m := b.mesh
		for he := range faceCycle(m, m.boundaryLoopIndToFaceInd(b.ind)) {
			if !yield(Edge{m, heEdge(he)}) {
				return
			}
		}
	}
}
