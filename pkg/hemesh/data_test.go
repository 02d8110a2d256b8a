package hemesh

import (
	stderrors "errors"
	"testing"
)

func TestContainerBasics(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())

	vd := NewVertexDataDefault(m, "unset")
	if got := vd.Get(m.Vertex(2)); got != "unset" {
		t.Errorf("default = %q, want %q", got, "unset")
	}
	vd.Set(m.Vertex(2), "corner")
	if got := vd.Get(m.Vertex(2)); got != "corner" {
		t.Errorf("after set = %q, want %q", got, "corner")
	}
	vd.Fill("flooded")
	if got := vd.Get(m.Vertex(0)); got != "flooded" {
		t.Errorf("after fill = %q, want %q", got, "flooded")
	}

	ed := NewEdgeData[float64](m)
	for e := range m.Edges() {
		ed.Set(e, float64(e.Index()))
	}
	if got := ed.Get(m.Edge(3)); got != 3 {
		t.Errorf("edge value = %v, want 3", got)
	}

	fd := NewFaceData[bool](m)
	fd.Set(m.Face(1), true)
	if fd.Get(m.Face(0)) || !fd.Get(m.Face(1)) {
		t.Error("face container mixed up its slots")
	}

	bd := NewBoundaryLoopDataDefault(m, 9)
	if got := bd.Get(m.BoundaryLoop(0)); got != 9 {
		t.Errorf("loop default = %d, want 9", got)
	}
}

func TestContainerRejectsForeignHandle(t *testing.T) {
	m1 := mustMesh(t, quadSoup())
	m2 := mustMesh(t, quadSoup())
	d := NewVertexData[int](m1)

	defer func() {
		if recover() == nil {
			t.Error("lookup with a handle from another mesh did not panic")
		}
	}()
	d.Get(m2.Vertex(0))
}

func TestContainerDetach(t *testing.T) {
	m := mustMesh(t, quadSoup())
	d := NewVertexData[int](m)
	d.SetAt(0, 42)
	d.Detach()

	// Growth no longer reaches the detached container.
	m.InsertVertex(m.Face(0))
	if got := len(d.Raw()); got != 4 {
		t.Errorf("detached container grew to %d slots", got)
	}
	if got := d.At(0); got != 42 {
		t.Errorf("detached container lost its values: %d", got)
	}
}

func TestReleaseDetachesContainers(t *testing.T) {
	m := mustMesh(t, quadSoup())
	d := NewVertexData[int](m)
	m.Release()
	if d.Mesh() != nil {
		t.Error("container still references the mesh after Release")
	}
}

func TestCornerDataPerWedge(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())
	cd := NewCornerData[int](m)
	for c := range m.Corners() {
		cd.Set(c, c.Vertex().Index())
	}
	// Vertex 0 sits on both triangles, so it owns two distinct corners.
	n := 0
	for c := range m.Vertex(0).AdjacentCorners() {
		if cd.Get(c) != 0 {
			t.Errorf("corner %v tagged %d, want 0", c, cd.Get(c))
		}
		n++
	}
	if n != 2 {
		t.Errorf("vertex 0 has %d corners, want 2", n)
	}
}

func TestCanonicalIndexEnumerations(t *testing.T) {
	m := mustMesh(t, quadSoup())
	m.InsertVertex(m.Face(0)) // vertex 4, the only interior one

	vi := m.VertexIndices()
	seen := map[int]bool{}
	for v := range m.Vertices() {
		i := vi.Get(v)
		if i == UnusedIndex || seen[i] {
			t.Fatalf("vertex enumeration not a bijection at %v (index %d)", v, i)
		}
		seen[i] = true
	}
	if len(seen) != m.NVertices() {
		t.Errorf("enumeration covers %d vertices, want %d", len(seen), m.NVertices())
	}

	ii := m.InteriorVertexIndices()
	for v := range m.Vertices() {
		got := ii.Get(v)
		if v.IsBoundary() && got != UnusedIndex {
			t.Errorf("boundary %v has interior index %d", v, got)
		}
		if !v.IsBoundary() && got != 0 {
			t.Errorf("interior %v has index %d, want 0", v, got)
		}
	}

	fi := m.FaceIndices()
	next := 0
	for f := range m.Faces() {
		if got := fi.Get(f); got != next {
			t.Errorf("face %v index = %d, want %d", f, got, next)
		}
		next++
	}
}

func TestVertexVectorRoundTrip(t *testing.T) {
	m := mustMesh(t, splitQuadSoup())
	d := NewVertexData[float64](m)
	for v := range m.Vertices() {
		d.Set(v, 1.5*float64(v.Index()))
	}

	vec := VertexVector(d)
	if got := vec.Len(); got != m.NVertices() {
		t.Fatalf("vector length %d, want %d", got, m.NVertices())
	}
	back, err := VertexDataFromVector(m, vec)
	if err != nil {
		t.Fatalf("VertexDataFromVector: %v", err)
	}
	for v := range m.Vertices() {
		if back.Get(v) != d.Get(v) {
			t.Errorf("%v round-trips to %v, want %v", v, back.Get(v), d.Get(v))
		}
	}

	short := VertexVector(d)
	wrong := mustMesh(t, pentagonSoup())
	if _, err := VertexDataFromVector(wrong, short); !stderrors.Is(err, ErrVectorSizeMismatch) {
		t.Errorf("size mismatch error = %v, want ErrVectorSizeMismatch", err)
	}
}

func TestIndexedVertexVector(t *testing.T) {
	m := mustMesh(t, quadSoup())
	m.InsertVertex(m.Face(0))

	d := NewVertexData[float64](m)
	for v := range m.Vertices() {
		d.Set(v, float64(v.Index())+0.25)
	}
	idx := m.InteriorVertexIndices()

	vec := IndexedVertexVector(d, idx, m.NInteriorVertices())
	if got := vec.Len(); got != 1 {
		t.Fatalf("interior vector length %d, want 1", got)
	}
	if got := vec.AtVec(0); got != 4.25 {
		t.Errorf("interior entry = %v, want 4.25", got)
	}

	spread := VertexDataFromIndexedVector(m, vec, idx, -1)
	for v := range m.Vertices() {
		want := -1.0
		if !v.IsBoundary() {
			want = 4.25
		}
		if got := spread.Get(v); got != want {
			t.Errorf("%v spread to %v, want %v", v, got, want)
		}
	}
}
