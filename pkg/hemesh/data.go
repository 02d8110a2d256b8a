package hemesh

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func vectorSizeError(got, want int) error {
	return errors.Wrapf(ErrVectorSizeMismatch, "vector has %d entries, mesh has %d", got, want)
}

// UnusedIndex marks elements excluded from a canonical index enumeration,
// such as boundary vertices in InteriorVertexIndices.
const UnusedIndex = -1

// dataCore backs every per-element container. Values live in a flat slice
// indexed by element index; the container registers against the mesh so it
// resizes on expand and reorders on permute without user involvement.
type dataCore[T any] struct {
	mesh       *Mesh
	kind       ElementKind
	vals       []T
	def        T
	expandTok  CallbackToken
	permuteTok CallbackToken
	releaseTok CallbackToken
}

func newDataCore[T any](m *Mesh, kind ElementKind, def T) *dataCore[T] {
	d := &dataCore[T]{mesh: m, kind: kind, def: def}
	d.vals = make([]T, elementCapacity(m, kind))
	for i := range d.vals {
		d.vals[i] = def
	}
	// Boundary loops are fixed at construction, so their containers need no
	// resize or reorder notifications.
	if kind != KindBoundaryLoop {
		d.expandTok = m.RegisterExpand(kind, d.onExpand)
		d.permuteTok = m.RegisterPermute(kind, d.onPermute)
	}
	d.releaseTok = m.RegisterRelease(d.onRelease)
	return d
}

func (d *dataCore[T]) onExpand(newCap int) {
	if newCap <= len(d.vals) {
		return
	}
	grown := make([]T, newCap)
	copy(grown, d.vals)
	for i := len(d.vals); i < newCap; i++ {
		grown[i] = d.def
	}
	d.vals = grown
}

func (d *dataCore[T]) onPermute(p []int) {
	reordered := make([]T, len(p))
	for i, old := range p {
		reordered[i] = d.vals[old]
	}
	d.vals = reordered
}

func (d *dataCore[T]) onRelease() {
	d.mesh = nil
}

func (d *dataCore[T]) checkOwner(m *Mesh) {
	if d.mesh == nil {
		panic("hemesh: container used after mesh release")
	}
	if m != d.mesh {
		panic(fmt.Sprintf("hemesh: %v container used with an element of a different mesh", d.kind))
	}
}

func (d *dataCore[T]) at(i int) T         { return d.vals[i] }
func (d *dataCore[T]) setAt(i int, val T) { d.vals[i] = val }

func (d *dataCore[T]) fill(val T) {
	for i := range d.vals {
		d.vals[i] = val
	}
}

// detach deregisters the container from its mesh. The values remain
// readable but no longer track mutations.
func (d *dataCore[T]) detach() {
	if d.mesh == nil {
		return
	}
	if d.kind != KindBoundaryLoop {
		d.mesh.UnregisterExpand(d.kind, d.expandTok)
		d.mesh.UnregisterPermute(d.kind, d.permuteTok)
	}
	d.mesh.UnregisterRelease(d.releaseTok)
	d.mesh = nil
}

// Mesh returns the mesh the container tracks, nil once detached.
func (d *dataCore[T]) Mesh() *Mesh { return d.mesh }

// Raw exposes the backing slice, indexed by element index and sized to the
// element capacity. It is invalidated by the next expand or permute.
func (d *dataCore[T]) Raw() []T { return d.vals }

// ---------------------------------------------------------------------------
// Typed containers. One thin wrapper per element kind so lookups take the
// matching handle type; corner containers share the halfedge index space.
// ---------------------------------------------------------------------------

// VertexData holds one value of type T per vertex.
type VertexData[T any] struct{ *dataCore[T] }

// NewVertexData creates a vertex container holding zero values.
func NewVertexData[T any](m *Mesh) VertexData[T] {
	var zero T
	return NewVertexDataDefault(m, zero)
}

// NewVertexDataDefault creates a vertex container whose existing and future
// slots hold def until set.
func NewVertexDataDefault[T any](m *Mesh, def T) VertexData[T] {
	return VertexData[T]{newDataCore(m, KindVertex, def)}
}

func (d VertexData[T]) Get(v Vertex) T {
	d.checkOwner(v.mesh)
	return d.at(v.ind)
}

func (d VertexData[T]) Set(v Vertex, val T) {
	d.checkOwner(v.mesh)
	d.setAt(v.ind, val)
}

func (d VertexData[T]) At(i int) T         { return d.at(i) }
func (d VertexData[T]) SetAt(i int, val T) { d.setAt(i, val) }
func (d VertexData[T]) Fill(val T)         { d.fill(val) }
func (d VertexData[T]) Detach()            { d.detach() }

// HalfedgeData holds one value of type T per halfedge, exterior halfedges
// included.
type HalfedgeData[T any] struct{ *dataCore[T] }

func NewHalfedgeData[T any](m *Mesh) HalfedgeData[T] {
	var zero T
	return NewHalfedgeDataDefault(m, zero)
}

func NewHalfedgeDataDefault[T any](m *Mesh, def T) HalfedgeData[T] {
	return HalfedgeData[T]{newDataCore(m, KindHalfedge, def)}
}

func (d HalfedgeData[T]) Get(h Halfedge) T {
	d.checkOwner(h.mesh)
	return d.at(h.ind)
}

func (d HalfedgeData[T]) Set(h Halfedge, val T) {
	d.checkOwner(h.mesh)
	d.setAt(h.ind, val)
}

func (d HalfedgeData[T]) At(i int) T         { return d.at(i) }
func (d HalfedgeData[T]) SetAt(i int, val T) { d.setAt(i, val) }
func (d HalfedgeData[T]) Fill(val T)         { d.fill(val) }
func (d HalfedgeData[T]) Detach()            { d.detach() }

// CornerData holds one value of type T per corner. Slots for exterior
// halfedges exist but are never addressed by a corner handle.
type CornerData[T any] struct{ *dataCore[T] }

func NewCornerData[T any](m *Mesh) CornerData[T] {
	var zero T
	return NewCornerDataDefault(m, zero)
}

func NewCornerDataDefault[T any](m *Mesh, def T) CornerData[T] {
	return CornerData[T]{newDataCore(m, KindCorner, def)}
}

func (d CornerData[T]) Get(c Corner) T {
	d.checkOwner(c.mesh)
	return d.at(c.ind)
}

func (d CornerData[T]) Set(c Corner, val T) {
	d.checkOwner(c.mesh)
	d.setAt(c.ind, val)
}

func (d CornerData[T]) At(i int) T         { return d.at(i) }
func (d CornerData[T]) SetAt(i int, val T) { d.setAt(i, val) }
func (d CornerData[T]) Fill(val T)         { d.fill(val) }
func (d CornerData[T]) Detach()            { d.detach() }

// EdgeData holds one value of type T per edge.
type EdgeData[T any] struct{ *dataCore[T] }

func NewEdgeData[T any](m *Mesh) EdgeData[T] {
	var zero T
	return NewEdgeDataDefault(m, zero)
}

func NewEdgeDataDefault[T any](m *Mesh, def T) EdgeData[T] {
	return EdgeData[T]{newDataCore(m, KindEdge, def)}
}

func (d EdgeData[T]) Get(e Edge) T {
	d.checkOwner(e.mesh)
	return d.at(e.ind)
}

func (d EdgeData[T]) Set(e Edge, val T) {
	d.checkOwner(e.mesh)
	d.setAt(e.ind, val)
}

func (d EdgeData[T]) At(i int) T         { return d.at(i) }
func (d EdgeData[T]) SetAt(i int, val T) { d.setAt(i, val) }
func (d EdgeData[T]) Fill(val T)         { d.fill(val) }
func (d EdgeData[T]) Detach()            { d.detach() }

// FaceData holds one value of type T per real face.
type FaceData[T any] struct{ *dataCore[T] }

func NewFaceData[T any](m *Mesh) FaceData[T] {
	var zero T
	return NewFaceDataDefault(m, zero)
}

func NewFaceDataDefault[T any](m *Mesh, def T) FaceData[T] {
	return FaceData[T]{newDataCore(m, KindFace, def)}
}

func (d FaceData[T]) Get(f Face) T {
	d.checkOwner(f.mesh)
	return d.at(f.ind)
}

func (d FaceData[T]) Set(f Face, val T) {
	d.checkOwner(f.mesh)
	d.setAt(f.ind, val)
}

func (d FaceData[T]) At(i int) T         { return d.at(i) }
func (d FaceData[T]) SetAt(i int, val T) { d.setAt(i, val) }
func (d FaceData[T]) Fill(val T)         { d.fill(val) }
func (d FaceData[T]) Detach()            { d.detach() }

// BoundaryLoopData holds one value of type T per boundary loop.
type BoundaryLoopData[T any] struct{ *dataCore[T] }

func NewBoundaryLoopData[T any](m *Mesh) BoundaryLoopData[T] {
	var zero T
	return NewBoundaryLoopDataDefault(m, zero)
}

func NewBoundaryLoopDataDefault[T any](m *Mesh, def T) BoundaryLoopData[T] {
	return BoundaryLoopData[T]{newDataCore(m, KindBoundaryLoop, def)}
}

func (d BoundaryLoopData[T]) Get(b BoundaryLoop) T {
	d.checkOwner(b.mesh)
	return d.at(b.ind)
}

func (d BoundaryLoopData[T]) Set(b BoundaryLoop, val T) {
	d.checkOwner(b.mesh)
	d.setAt(b.ind, val)
}

func (d BoundaryLoopData[T]) At(i int) T         { return d.at(i) }
func (d BoundaryLoopData[T]) SetAt(i int, val T) { d.setAt(i, val) }
func (d BoundaryLoopData[T]) Fill(val T)         { d.fill(val) }
func (d BoundaryLoopData[T]) Detach()            { d.detach() }

// ---------------------------------------------------------------------------
// Canonical index enumerations. These assign a dense 0..n-1 numbering over
// the live elements in index order, for addressing rows of external arrays
// and matrices regardless of compression state.
// ---------------------------------------------------------------------------

// VertexIndices enumerates the live vertices densely.
func (m *Mesh) VertexIndices() VertexData[int] {
	d := NewVertexDataDefault(m, UnusedIndex)
	i := 0
	for v := range m.Vertices() {
		d.setAt(v.ind, i)
		i++
	}
	return d
}

// InteriorVertexIndices enumerates the live interior vertices densely;
// boundary vertices map to UnusedIndex.
func (m *Mesh) InteriorVertexIndices() VertexData[int] {
	d := NewVertexDataDefault(m, UnusedIndex)
	i := 0
	for v := range m.Vertices() {
		if v.IsBoundary() {
			continue
		}
		d.setAt(v.ind, i)
		i++
	}
	return d
}

// HalfedgeIndices enumerates the live halfedges densely.
func (m *Mesh) HalfedgeIndices() HalfedgeData[int] {
	d := NewHalfedgeDataDefault(m, UnusedIndex)
	i := 0
	for h := range m.Halfedges() {
		d.setAt(h.ind, i)
		i++
	}
	return d
}

// CornerIndices enumerates the corners densely; exterior halfedge slots map
// to UnusedIndex.
func (m *Mesh) CornerIndices() CornerData[int] {
	d := NewCornerDataDefault(m, UnusedIndex)
	i := 0
	for c := range m.Corners() {
		d.setAt(c.ind, i)
		i++
	}
	return d
}

// EdgeIndices enumerates the live edges densely.
func (m *Mesh) EdgeIndices() EdgeData[int] {
	d := NewEdgeDataDefault(m, UnusedIndex)
	i := 0
	for e := range m.Edges() {
		d.setAt(e.ind, i)
		i++
	}
	return d
}

// FaceIndices enumerates the live real faces densely.
func (m *Mesh) FaceIndices() FaceData[int] {
	d := NewFaceDataDefault(m, UnusedIndex)
	i := 0
	for f := range m.Faces() {
		d.setAt(f.ind, i)
		i++
	}
	return d
}

// ---------------------------------------------------------------------------
// Dense vector bridging. Scalar containers flatten to gonum vectors and
// back, using a canonical index enumeration to pick rows so callers can
// assemble linear systems over any subset of the elements.
// ---------------------------------------------------------------------------

// VertexVector flattens d over the live vertices in index order.
func VertexVector(d VertexData[float64]) *mat.VecDense {
	m := d.Mesh()
	out := mat.NewVecDense(m.NVertices(), nil)
	i := 0
	for v := range m.Vertices() {
		out.SetVec(i, d.Get(v))
		i++
	}
	return out
}

// VertexDataFromVector spreads vec back over the live vertices in index
// order. Returns ErrVectorSizeMismatch when the lengths disagree.
func VertexDataFromVector(m *Mesh, vec mat.Vector) (VertexData[float64], error) {
	if vec.Len() != m.NVertices() {
		return VertexData[float64]{}, vectorSizeError(vec.Len(), m.NVertices())
	}
	d := NewVertexData[float64](m)
	i := 0
	for v := range m.Vertices() {
		d.Set(v, vec.AtVec(i))
		i++
	}
	return d, nil
}

// IndexedVertexVector flattens d through a canonical enumeration: the value
// at vertex v lands in row idx.Get(v), and vertices marked UnusedIndex are
// skipped. n is the enumeration's size.
func IndexedVertexVector(d VertexData[float64], idx VertexData[int], n int) *mat.VecDense {
	m := d.Mesh()
	out := mat.NewVecDense(n, nil)
	for v := range m.Vertices() {
		row := idx.Get(v)
		if row == UnusedIndex {
			continue
		}
		out.SetVec(row, d.Get(v))
	}
	return out
}

// VertexDataFromIndexedVector spreads vec back through a canonical
// enumeration; vertices marked UnusedIndex keep def.
func VertexDataFromIndexedVector(m *Mesh, vec mat.Vector, idx VertexData[int], def float64) VertexData[float64] {
	d := NewVertexDataDefault(m, def)
	for v := range m.Vertices() {
		row := idx.Get(v)
		if row == UnusedIndex {
			continue
		}
		d.Set(v, vec.AtVec(row))
	}
	return d
}

// EdgeVector flattens d over the live edges in index order.
func EdgeVector(d EdgeData[float64]) *mat.VecDense {
	m := d.Mesh()
	out := mat.NewVecDense(m.NEdges(), nil)
	i := 0
	for e := range m.Edges() {
		out.SetVec(i, d.Get(e))
		i++
	}
	return out
}

// FaceVector flattens d over the live real faces in index order.
func FaceVector(d FaceData[float64]) *mat.VecDense {
	m := d.Mesh()
	out := mat.NewVecDense(m.NFaces(), nil)
	i := 0
	for f := range m.Faces() {
		out.SetVec(i, d.Get(f))
		i++
	}
	return out
}
