package hemesh

import (
	stderrors "errors"
	"testing"
)

// Shared fixtures. Faces are counter-clockwise; orientations chosen so every
// shared edge appears once in each direction.

func quadSoup() [][]int { return [][]int{{0, 1, 2, 3}} }

func splitQuadSoup() [][]int { return [][]int{{0, 1, 2}, {0, 2, 3}} }

func pentagonSoup() [][]int { return [][]int{{0, 1, 2, 3, 4}} }

func stripSoup() [][]int { return [][]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}} }

func tetrahedronSoup() [][]int {
	return [][]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2}}
}

func mustMesh(t *testing.T, polys [][]int) *Mesh {
	t.Helper()
	m, err := NewFromPolygons(polys)
	if err != nil {
		t.Fatalf("NewFromPolygons(%v): %v", polys, err)
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("fresh mesh fails validation: %v", err)
	}
	return m
}

func checkCounts(t *testing.T, m *Mesh, nV, nHe, nE, nF, nBL int) {
	t.Helper()
	if got := m.NVertices(); got != nV {
		t.Errorf("NVertices = %d, want %d", got, nV)
	}
	if got := m.NHalfedges(); got != nHe {
		t.Errorf("NHalfedges = %d, want %d", got, nHe)
	}
	if got := m.NEdges(); got != nE {
		t.Errorf("NEdges = %d, want %d", got, nE)
	}
	if got := m.NFaces(); got != nF {
		t.Errorf("NFaces = %d, want %d", got, nF)
	}
	if got := m.NBoundaryLoops(); got != nBL {
		t.Errorf("NBoundaryLoops = %d, want %d", got, nBL)
	}
}

func findEdge(m *Mesh, a, b int) Edge {
	for e := range m.Edges() {
		ta := e.Halfedge().Vertex().Index()
		tb := e.Halfedge().TipVertex().Index()
		if (ta == a && tb == b) || (ta == b && tb == a) {
			return e
		}
	}
	return Edge{}
}

func findVertexPolys(t *testing.T, got, want [][]int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("face count %d, want %d", len(got), len(want))
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("face %d: %v, want %v", i, got[i], want[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("face %d: %v, want %v", i, got[i], want[i])
			}
		}
	}
}

func TestSingleQuad(t *testing.T) {
	m := mustMesh(t, quadSoup())
	checkCounts(t, m, 4, 8, 4, 1, 1)
	if got := m.NInteriorHalfedges(); got != 4 {
		t.Errorf("NInteriorHalfedges = %d, want 4", got)
	}
	if got := m.NExteriorHalfedges(); got != 4 {
		t.Errorf("NExteriorHalfedges = %d, want 4", got)
	}
	if got := m.NCorners(); got != 4 {
		t.Errorf("NCorners = %d, want 4", got)
	}
	if got := m.Face(0).Degree(); got != 4 {
		t.Errorf("face degree = %d, want 4", got)
	}
	if got := m.BoundaryLoop(0).Degree(); got != 4 {
		t.Errorf("boundary loop degree = %d, want 4", got)
	}
	for v := range m.Vertices() {
		if !v.IsBoundary() {
			t.Errorf("%v should be a boundary vertex", v)
		}
	}
	if got := m.NInteriorVertices(); got != 0 {
		t.Errorf("NInteriorVertices = %d, want 0", got)
	}
	if m.IsTriangular() {
		t.Error("quad reported triangular")
	}
	if got := m.EulerCharacteristic(); got != 1 {
		t.Errorf("EulerCharacteristic = %d, want 1", got)
	}
	if got := m.Genus(); got != 0 {
		t.Errorf("Genus = %d, want 0", got)
	}
}

func TestTetrahedron(t *testing.T) {
	m := mustMesh(t, tetrahedronSoup())
	checkCounts(t, m, 4, 12, 6, 4, 0)
	if got := m.NInteriorHalfedges(); got != 12 {
		t.Errorf("NInteriorHalfedges = %d, want 12", got)
	}
	if !m.IsTriangular() {
		t.Error("tetrahedron not triangular")
	}
	for v := range m.Vertices() {
		if v.IsBoundary() {
			t.Errorf("%v should be interior", v)
		}
		if got := v.Degree(); got != 3 {
			t.Errorf("%v degree = %d, want 3", v, got)
		}
	}
	if got := m.EulerCharacteristic(); got != 2 {
		t.Errorf("EulerCharacteristic = %d, want 2", got)
	}
	if got := m.Genus(); got != 0 {
		t.Errorf("Genus = %d, want 0", got)
	}
	if got := m.NConnectedComponents(); got != 1 {
		t.Errorf("NConnectedComponents = %d, want 1", got)
	}
}

func TestTwoComponents(t *testing.T) {
	m := mustMesh(t, [][]int{{0, 1, 2}, {3, 4, 5}})
	checkCounts(t, m, 6, 12, 6, 2, 2)
	if got := m.NConnectedComponents(); got != 2 {
		t.Errorf("NConnectedComponents = %d, want 2", got)
	}
}

func TestConstructionErrors(t *testing.T) {
	cases := []struct {
		name  string
		polys [][]int
		want  error
	}{
		{"degenerate face", [][]int{{0, 1}}, ErrBadPolygon},
		{"degenerate side", [][]int{{0, 1, 1}}, ErrBadPolygon},
		{"negative index", [][]int{{0, -1, 2}}, ErrBadVertexIndex},
		{"unreferenced vertex", [][]int{{0, 1, 3}}, ErrUnreferencedVertex},
		{"repeated oriented edge", [][]int{{0, 1, 2}, {0, 1, 3}}, ErrRepeatedOrientedEdge},
		{"three faces on an edge", [][]int{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}}, ErrNonManifoldEdge},
		{"bowtie vertex", [][]int{{0, 1, 2}, {0, 3, 4}}, ErrNonManifoldVertex},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFromPolygons(tc.polys)
			if err == nil {
				t.Fatalf("NewFromPolygons(%v) succeeded", tc.polys)
			}
			if !stderrors.Is(err, tc.want) {
				t.Fatalf("NewFromPolygons(%v) = %v, want %v", tc.polys, err, tc.want)
			}
		})
	}
}

func TestFaceVertexListRoundTrip(t *testing.T) {
	for _, polys := range [][][]int{quadSoup(), splitQuadSoup(), tetrahedronSoup(), stripSoup()} {
		m := mustMesh(t, polys)
		got := m.FaceVertexList()
		findVertexPolys(t, got, polys)

		m2 := mustMesh(t, got)
		checkCounts(t, m2, m.NVertices(), m.NHalfedges(), m.NEdges(), m.NFaces(), m.NBoundaryLoops())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())
	c := m.Copy()
	if err := c.ValidateConnectivity(); err != nil {
		t.Fatalf("copy fails validation: %v", err)
	}

	if !c.Flip(findEdge(c, 0, 2)) {
		t.Fatal("flip on copy failed")
	}
	if err := c.ValidateConnectivity(); err != nil {
		t.Fatalf("mutated copy fails validation: %v", err)
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("original corrupted by mutating copy: %v", err)
	}
	if findEdge(m, 0, 2).IsNull() {
		t.Error("original lost edge (0,2) after mutating copy")
	}
	if findEdge(c, 1, 3).IsNull() {
		t.Error("copy missing flipped edge (1,3)")
	}
}

func TestNullHandles(t *testing.T) {
	var v Vertex
	if !v.IsNull() {
		t.Error("zero Vertex should be null")
	}
	m := mustMesh(t, quadSoup())
	if m.Vertex(0).IsNull() {
		t.Error("live vertex reported null")
	}
	if findEdge(m, 0, 2).IsNull() == false {
		t.Error("diagonal of a quad should not exist")
	}
}
