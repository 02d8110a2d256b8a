package hemesh

import "testing"

func TestCompressAfterCollapse(t *testing.T) {
	m := mustMesh(t, tetrahedronSoup())

	// Tag every vertex with its original index, then track one survivor
	// across the collapse and the re-pack.
	tags := NewVertexData[int](m)
	for v := range m.Vertices() {
		tags.Set(v, v.Index())
	}
	tracked := NewDynamicVertex(m.Vertex(3))
	defer tracked.Done()

	if v := m.CollapseEdge(findEdge(m, 0, 1)); v.IsNull() {
		t.Fatal("collapse failed")
	}
	if m.IsCompressed() {
		t.Error("mesh still marked compressed after a deletion")
	}

	m.Compress()
	if !m.IsCompressed() {
		t.Error("mesh not marked compressed after Compress")
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("after compress: %v", err)
	}
	checkCounts(t, m, 3, 6, 3, 2, 0)

	v3 := tracked.Decay()
	if v3.IsNull() {
		t.Fatal("tracked vertex lost across compress")
	}
	if got := tags.Get(v3); got != 3 {
		t.Errorf("tag of tracked vertex = %d, want 3", got)
	}

	// Every surviving tag must be one of the original indices, with the
	// collapsed vertex 1 gone.
	seen := map[int]bool{}
	for v := range m.Vertices() {
		seen[tags.Get(v)] = true
	}
	if seen[1] {
		t.Error("tag of the collapsed vertex survived")
	}
	for _, want := range []int{0, 2, 3} {
		if !seen[want] {
			t.Errorf("tag %d missing after compress", want)
		}
	}
}

func TestCompressIsNoOpWhenCompressed(t *testing.T) {
	m := mustMesh(t, quadSoup())
	fired := false
	tok := m.RegisterPermute(KindVertex, func([]int) { fired = true })
	defer m.UnregisterPermute(KindVertex, tok)

	m.Compress()
	if fired {
		t.Error("permute callback fired on a compressed mesh")
	}
}

func TestDynamicHandleOfDeletedElement(t *testing.T) {
	m := mustMesh(t, tetrahedronSoup())
	doomed := NewDynamicVertex(m.Vertex(1))
	defer doomed.Done()

	if v := m.CollapseEdge(findEdge(m, 0, 1)); v.IsNull() {
		t.Fatal("collapse failed")
	}
	if !doomed.IsValid() {
		t.Error("dynamic handle invalidated before any permutation")
	}
	m.Compress()
	if doomed.IsValid() {
		t.Error("dynamic handle of a deleted vertex still valid after compress")
	}
	if !doomed.Decay().IsNull() {
		t.Error("Decay of an invalid handle should be null")
	}
}

func TestCanonicalize(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())
	if !m.IsCanonical() {
		t.Fatal("fresh mesh should be canonical")
	}

	// Flipping the diagonal scrambles the halfedge ordering relative to
	// a rebuild while keeping every vertex on the disk boundary.
	if !m.Flip(findEdge(m, 0, 2)) {
		t.Fatal("flip failed")
	}
	if m.IsCanonical() {
		t.Error("mesh still marked canonical after a flip")
	}

	m.Canonicalize()
	if !m.IsCanonical() {
		t.Error("mesh not marked canonical after Canonicalize")
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("after canonicalize: %v", err)
	}

	// The rebuild from the exported soup must reproduce the exact index
	// assignment, not just an isomorphic mesh.
	m2 := mustMesh(t, m.FaceVertexList())
	if m2.NHalfedges() != m.NHalfedges() {
		t.Fatalf("rebuild has %d halfedges, want %d", m2.NHalfedges(), m.NHalfedges())
	}
	for i := 0; i < m.NHalfedges(); i++ {
		if m.heNext[i] != m2.heNext[i] || m.heVertex[i] != m2.heVertex[i] || m.heFace[i] != m2.heFace[i] {
			t.Fatalf("halfedge %d differs from rebuild: next %d/%d vertex %d/%d face %d/%d",
				i, m.heNext[i], m2.heNext[i], m.heVertex[i], m2.heVertex[i], m.heFace[i], m2.heFace[i])
		}
	}
	for i := 0; i < m.NVertices(); i++ {
		if m.vHalfedge[i] != m2.vHalfedge[i] {
			t.Fatalf("vertex %d halfedge %d, rebuild has %d", i, m.vHalfedge[i], m2.vHalfedge[i])
		}
	}
}

func TestCanonicalizeAfterDeletion(t *testing.T) {
	// Hexagonal fan. Removing one fan face keeps the remainder a clean
	// disk, so the compacted mesh is still soup-representable.
	m := mustMesh(t, [][]int{
		{0, 1, 6}, {1, 2, 6}, {2, 3, 6}, {3, 4, 6}, {4, 5, 6}, {5, 0, 6},
	})
	if !m.RemoveFaceAlongBoundary(m.Face(0)) {
		t.Fatal("removal failed")
	}
	m.Canonicalize()
	if !m.IsCanonical() || !m.IsCompressed() {
		t.Error("Canonicalize should compress and canonicalize")
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("after canonicalize: %v", err)
	}

	m2 := mustMesh(t, m.FaceVertexList())
	checkCounts(t, m2, m.NVertices(), m.NHalfedges(), m.NEdges(), m.NFaces(), m.NBoundaryLoops())
	for i := 0; i < m.NHalfedges(); i++ {
		if m.heNext[i] != m2.heNext[i] {
			t.Fatalf("halfedge %d next = %d, rebuild has %d", i, m.heNext[i], m2.heNext[i])
		}
	}
}

func TestCanonicalizeAfterGrowth(t *testing.T) {
	// An edge split doubles the halfedge buffers without deleting
	// anything, so the mesh stays compressed while the buffers carry
	// slack past the fill mark. Canonicalize must shrink everything
	// back to the live counts.
	m := mustMesh(t, splitQuadSoup())
	if m.SplitEdge(findEdge(m, 0, 2)).IsNull() {
		t.Fatal("split failed")
	}
	if !m.IsCompressed() {
		t.Fatal("mesh not compressed after a pure split")
	}

	m.Canonicalize()
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("after canonicalize: %v", err)
	}
	if got, want := m.NHalfedgesCapacity(), m.NHalfedges(); got != want {
		t.Errorf("halfedge capacity %d, want %d", got, want)
	}
	if got, want := m.NVerticesCapacity(), m.NVertices(); got != want {
		t.Errorf("vertex capacity %d, want %d", got, want)
	}
	if got, want := m.NFacesCapacity(), m.NFaces()+m.NBoundaryLoops(); got != want {
		t.Errorf("face capacity %d, want %d", got, want)
	}

	m2 := mustMesh(t, m.FaceVertexList())
	for i := 0; i < m.NHalfedges(); i++ {
		if m.heNext[i] != m2.heNext[i] {
			t.Fatalf("halfedge %d next = %d, rebuild has %d", i, m.heNext[i], m2.heNext[i])
		}
	}
}

func TestExpandPreservesContainerValues(t *testing.T) {
	m := mustMesh(t, quadSoup())
	d := NewVertexDataDefault(m, -7)
	for v := range m.Vertices() {
		d.Set(v, v.Index()*10)
	}

	// Repeated face splitting forces vertex buffer growth.
	for i := 0; i < 5; i++ {
		var f Face
		for cand := range m.Faces() {
			f = cand
			break
		}
		if m.InsertVertex(f).IsNull() {
			t.Fatal("InsertVertex failed")
		}
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("after splits: %v", err)
	}

	for i := 0; i < 4; i++ {
		if got := d.At(i); got != i*10 {
			t.Errorf("original value at %d = %d, want %d", i, got, i*10)
		}
	}
	for i := 4; i < m.NVertices(); i++ {
		if got := d.At(i); got != -7 {
			t.Errorf("new slot %d = %d, want default -7", i, got)
		}
	}
	if got := len(d.Raw()); got != m.NVerticesCapacity() {
		t.Errorf("container size %d, capacity %d", got, m.NVerticesCapacity())
	}
}
