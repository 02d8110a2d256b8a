package surface

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/hemesh/pkg/hemesh"
)

// unit square in the z=0 plane
var squarePositions = []v3.Vec{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 1, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: 0},
}

func mustGeometry(t *testing.T, polygons [][]int, positions []v3.Vec) *Geometry {
	t.Helper()
	m, err := hemesh.NewFromPolygons(polygons)
	if err != nil {
		t.Fatalf("NewFromPolygons: %v", err)
	}
	g, err := New(m, positions)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func findEdge(t *testing.T, m *hemesh.Mesh, a, b int) hemesh.Edge {
	t.Helper()
	for e := range m.Edges() {
		he := e.Halfedge()
		ta, tb := he.Vertex().Index(), he.TipVertex().Index()
		if (ta == a && tb == b) || (ta == b && tb == a) {
			return e
		}
	}
	t.Fatalf("no edge between %d and %d", a, b)
	return hemesh.Edge{}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

func nearVec(a, b v3.Vec) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestNewRejectsSizeMismatch(t *testing.T) {
	m, err := hemesh.NewFromPolygons([][]int{{0, 1, 2}})
	if err != nil {
		t.Fatalf("NewFromPolygons: %v", err)
	}
	if _, err := New(m, squarePositions); err == nil {
		t.Error("4 positions accepted for a 3-vertex mesh")
	}
}

func TestQuadMetrics(t *testing.T) {
	g := mustGeometry(t, [][]int{{0, 1, 2, 3}}, squarePositions)
	m := g.Mesh()
	f := m.Face(0)

	if got := g.FaceArea(f); !near(got, 1) {
		t.Errorf("FaceArea = %v, want 1", got)
	}
	if got := g.TotalArea(); !near(got, 1) {
		t.Errorf("TotalArea = %v, want 1", got)
	}
	if got := g.FaceNormal(f); !nearVec(got, v3.Vec{Z: 1}) {
		t.Errorf("FaceNormal = %v, want +z", got)
	}
	if got := g.FaceCentroid(f); !nearVec(got, v3.Vec{X: 0.5, Y: 0.5}) {
		t.Errorf("FaceCentroid = %v", got)
	}
	if got := g.EdgeLength(findEdge(t, m, 0, 1)); !near(got, 1) {
		t.Errorf("EdgeLength = %v, want 1", got)
	}
	if got := g.VertexNormal(m.Vertex(0)); !nearVec(got, v3.Vec{Z: 1}) {
		t.Errorf("VertexNormal = %v, want +z", got)
	}
}

func TestSplitEdgeAtMidpoint(t *testing.T) {
	g := mustGeometry(t, [][]int{{0, 1, 2}, {0, 2, 3}}, squarePositions)
	m := g.Mesh()

	vN := g.SplitEdgeAtMidpoint(findEdge(t, m, 0, 2))
	if vN.IsNull() {
		t.Fatal("split returned null vertex")
	}
	if got := g.Position(vN); !nearVec(got, v3.Vec{X: 0.5, Y: 0.5}) {
		t.Errorf("new vertex at %v, want midpoint", got)
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("after split: %v", err)
	}
	if got := g.TotalArea(); !near(got, 1) {
		t.Errorf("TotalArea after split = %v, want 1", got)
	}
}

func TestInsertVertexAtCentroid(t *testing.T) {
	g := mustGeometry(t, [][]int{{0, 1, 2, 3}}, squarePositions)
	m := g.Mesh()

	vN := g.InsertVertexAtCentroid(m.Face(0))
	if got := g.Position(vN); !nearVec(got, v3.Vec{X: 0.5, Y: 0.5}) {
		t.Errorf("star vertex at %v, want centroid", got)
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("after insert: %v", err)
	}
	if got := g.TotalArea(); !near(got, 1) {
		t.Errorf("TotalArea after insert = %v, want 1", got)
	}
}

func TestCollapseEdgeToMidpoint(t *testing.T) {
	g := mustGeometry(t, [][]int{{0, 1, 2}, {0, 2, 3}}, squarePositions)
	m := g.Mesh()

	v := g.CollapseEdgeToMidpoint(findEdge(t, m, 0, 1))
	if v.IsNull() {
		t.Fatal("collapse rejected")
	}
	if got := g.Position(v); !nearVec(got, v3.Vec{X: 0.5, Y: 0}) {
		t.Errorf("survivor at %v, want midpoint", got)
	}
	if err := m.ValidateConnectivity(); err != nil {
		t.Fatalf("after collapse: %v", err)
	}
}

func TestTrianglesAndRender(t *testing.T) {
	g := mustGeometry(t, [][]int{{0, 1, 2, 3}}, squarePositions)

	tris := g.Triangles()
	if len(tris) != 2 {
		t.Fatalf("quad fanned into %d triangles, want 2", len(tris))
	}
	area := 0.0
	for _, tri := range tris {
		n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
		area += n.Length() / 2
	}
	if !near(area, 1) {
		t.Errorf("fanned area = %v, want 1", area)
	}

	rm := g.Render()
	if rm.IsEmpty() {
		t.Fatal("render mesh is empty")
	}
	if rm.TriangleCount() != 2 || rm.VertexCount() != 6 {
		t.Errorf("render mesh has %d triangles, %d vertices", rm.TriangleCount(), rm.VertexCount())
	}
	for i := 0; i < rm.VertexCount(); i++ {
		if rm.Normals[3*i+2] != 1 {
			t.Errorf("vertex %d normal z = %v, want 1", i, rm.Normals[3*i+2])
			break
		}
	}
}

func TestPositionsSurviveCompress(t *testing.T) {
	g := mustGeometry(t, [][]int{{0, 1, 2}, {0, 2, 3}}, squarePositions)
	m := g.Mesh()

	tracked := hemesh.NewDynamicVertex(m.Vertex(3))
	defer tracked.Done()

	if v := g.CollapseEdgeToMidpoint(findEdge(t, m, 0, 1)); v.IsNull() {
		t.Fatal("collapse rejected")
	}
	m.Compress()

	v3h := tracked.Decay()
	if v3h.IsNull() {
		t.Fatal("vertex 3 lost across compression")
	}
	if got := g.Position(v3h); !nearVec(got, v3.Vec{Y: 1}) {
		t.Errorf("vertex 3 at %v after compression, want (0,1,0)", got)
	}
}
