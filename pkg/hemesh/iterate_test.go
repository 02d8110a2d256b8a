package hemesh

import (
	"iter"
	"testing"
)

func collectInds[T interface{ Index() int }](seq iter.Seq[T]) []int {
	var out []int
	for el := range seq {
		out = append(out, el.Index())
	}
	return out
}

func TestMeshRanges(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())

	if got := len(collectInds(m.Vertices())); got != 4 {
		t.Errorf("Vertices yields %d, want 4", got)
	}
	if got := len(collectInds(m.Halfedges())); got != 10 {
		t.Errorf("Halfedges yields %d, want 10", got)
	}
	if got := len(collectInds(m.InteriorHalfedges())); got != 6 {
		t.Errorf("InteriorHalfedges yields %d, want 6", got)
	}
	if got := len(collectInds(m.ExteriorHalfedges())); got != 4 {
		t.Errorf("ExteriorHalfedges yields %d, want 4", got)
	}
	if got := len(collectInds(m.Corners())); got != 6 {
		t.Errorf("Corners yields %d, want 6", got)
	}
	if got := len(collectInds(m.Edges())); got != 5 {
		t.Errorf("Edges yields %d, want 5", got)
	}
	if got := len(collectInds(m.Faces())); got != 2 {
		t.Errorf("Faces yields %d, want 2", got)
	}
	if got := len(collectInds(m.BoundaryLoops())); got != 1 {
		t.Errorf("BoundaryLoops yields %d, want 1", got)
	}
}

func TestRangesSkipDeadSlots(t *testing.T) {
	m := mustMesh(t, tetrahedronSoup())
	if v := m.CollapseEdge(findEdge(m, 0, 1)); v.IsNull() {
		t.Fatal("collapse failed")
	}

	// Uncompressed: fills exceed counts, but iteration sees only the living.
	if got := len(collectInds(m.Vertices())); got != m.NVertices() {
		t.Errorf("Vertices yields %d, want %d", got, m.NVertices())
	}
	if got := len(collectInds(m.Halfedges())); got != m.NHalfedges() {
		t.Errorf("Halfedges yields %d, want %d", got, m.NHalfedges())
	}
	if got := len(collectInds(m.Faces())); got != m.NFaces() {
		t.Errorf("Faces yields %d, want %d", got, m.NFaces())
	}
}

func TestEarlyBreak(t *testing.T) {
	m := mustMesh(t, tetrahedronSoup())
	n := 0
	for range m.Vertices() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("broke after %d vertices, want 2", n)
	}
}

func TestVertexNeighborhoods(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())
	v0 := m.Vertex(0)

	adj := collectInds(v0.AdjacentVertices())
	if len(adj) != 3 {
		t.Fatalf("vertex 0 has %d neighbors, want 3", len(adj))
	}
	want := map[int]bool{1: true, 2: true, 3: true}
	for _, w := range adj {
		if !want[w] {
			t.Errorf("unexpected neighbor %d", w)
		}
	}

	if got := len(collectInds(v0.OutgoingHalfedges())); got != 3 {
		t.Errorf("outgoing halfedges = %d, want 3", got)
	}
	for h := range v0.OutgoingHalfedges() {
		if h.Vertex().Index() != 0 {
			t.Errorf("outgoing halfedge %v has tail %d", h, h.Vertex().Index())
		}
	}
	for h := range v0.IncomingHalfedges() {
		if h.TipVertex().Index() != 0 {
			t.Errorf("incoming halfedge %v has tip %d", h, h.TipVertex().Index())
		}
	}
	if got := len(collectInds(v0.AdjacentFaces())); got != 2 {
		t.Errorf("adjacent faces = %d, want 2", got)
	}
	if got := len(collectInds(v0.AdjacentEdges())); got != 3 {
		t.Errorf("adjacent edges = %d, want 3", got)
	}
}

func TestFaceNeighborhoods(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())
	f0 := m.Face(0)

	verts := collectInds(f0.AdjacentVertices())
	if len(verts) != 3 {
		t.Fatalf("face 0 has %d vertices, want 3", len(verts))
	}
	// Cycle order matches the exported soup.
	soup := m.FaceVertexList()[0]
	for i := range soup {
		if verts[i] != soup[i] {
			t.Fatalf("cycle order %v, soup %v", verts, soup)
		}
	}

	if got := len(collectInds(f0.AdjacentHalfedges())); got != 3 {
		t.Errorf("adjacent halfedges = %d, want 3", got)
	}
	if got := len(collectInds(f0.AdjacentEdges())); got != 3 {
		t.Errorf("adjacent edges = %d, want 3", got)
	}

	nbrs := collectInds(f0.AdjacentFaces())
	if len(nbrs) != 1 || nbrs[0] != 1 {
		t.Errorf("face 0 neighbors = %v, want [1]", nbrs)
	}
}

func TestEdgeAndLoopNeighborhoods(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())

	e := findEdge(m, 0, 2)
	hes := collectInds(e.AdjacentHalfedges())
	if len(hes) != 2 || hes[0] != e.Halfedge().Index() || hes[1] != e.Halfedge().Twin().Index() {
		t.Errorf("edge halfedges = %v", hes)
	}
	evs := collectInds(e.AdjacentVertices())
	if len(evs) != 2 {
		t.Fatalf("edge vertices = %v", evs)
	}
	if !((evs[0] == 0 && evs[1] == 2) || (evs[0] == 2 && evs[1] == 0)) {
		t.Errorf("edge endpoints = %v, want {0,2}", evs)
	}

	bl := m.BoundaryLoop(0)
	if got := len(collectInds(bl.AdjacentHalfedges())); got != 4 {
		t.Errorf("loop halfedges = %d, want 4", got)
	}
	if got := len(collectInds(bl.AdjacentVertices())); got != 4 {
		t.Errorf("loop vertices = %d, want 4", got)
	}
	for h := range bl.AdjacentHalfedges() {
		if h.IsInterior() {
			t.Errorf("loop yielded interior halfedge %v", h)
		}
	}
}
