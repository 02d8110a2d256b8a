// Package surface layers vertex positions and derived metric quantities
// on top of a connectivity mesh. Positions live in a vertex container,
// so they ride through mutation, compression and canonicalization
// without any bookkeeping by the caller.
package surface

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/hemesh/pkg/hemesh"
)

// Geometry binds a position to every vertex of a mesh.
type Geometry struct {
	mesh      *hemesh.Mesh
	positions hemesh.VertexData[v3.Vec]
}

// New builds a geometry over m. positions holds one entry per vertex in
// index order, so m must be compressed.
func New(m *hemesh.Mesh, positions []v3.Vec) (*Geometry, error) {
	if !m.IsCompressed() {
		return nil, errors.New("surface: mesh must be compressed")
	}
	if len(positions) != m.NVertices() {
		return nil, errors.Errorf("surface: got %d positions for %d vertices", len(positions), m.NVertices())
	}
	d := hemesh.NewVertexData[v3.Vec](m)
	for i, p := range positions {
		d.SetAt(i, p)
	}
	return &Geometry{mesh: m, positions: d}, nil
}

// Mesh returns the underlying connectivity mesh.
func (g *Geometry) Mesh() *hemesh.Mesh { return g.mesh }

// Position returns the position of v.
func (g *Geometry) Position(v hemesh.Vertex) v3.Vec { return g.positions.Get(v) }

// SetPosition moves v to p.
func (g *Geometry) SetPosition(v hemesh.Vertex, p v3.Vec) { g.positions.Set(v, p) }

// Positions exposes the position container directly.
func (g *Geometry) Positions() hemesh.VertexData[v3.Vec] { return g.positions }

// EdgeLength returns the length of e.
func (g *Geometry) EdgeLength(e hemesh.Edge) float64 {
	he := e.Halfedge()
	return g.Position(he.TipVertex()).Sub(g.Position(he.Vertex())).Length()
}

// vectorArea is half the Newell vector of the face cycle. Its length is
// the face area and its direction the face normal, even when the
// polygon is not planar.
func (g *Geometry) vectorArea(f hemesh.Face) v3.Vec {
	var sum v3.Vec
	for he := range f.AdjacentHalfedges() {
		a := g.Position(he.Vertex())
		b := g.Position(he.TipVertex())
		sum = sum.Add(a.Cross(b))
	}
	return sum.MulScalar(0.5)
}

// FaceArea returns the area of f.
func (g *Geometry) FaceArea(f hemesh.Face) float64 {
	return g.vectorArea(f).Length()
}

// TotalArea returns the summed area of all faces.
func (g *Geometry) TotalArea() float64 {
	total := 0.0
	for f := range g.mesh.Faces() {
		total += g.FaceArea(f)
	}
	return total
}

// FaceNormal returns the unit normal of f, or the zero vector for a
// degenerate face.
func (g *Geometry) FaceNormal(f hemesh.Face) v3.Vec {
	n := g.vectorArea(f)
	l := n.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return n.DivScalar(l)
}

// FaceCentroid returns the mean of the corner positions of f.
func (g *Geometry) FaceCentroid(f hemesh.Face) v3.Vec {
	var sum v3.Vec
	n := 0
	for v := range f.AdjacentVertices() {
		sum = sum.Add(g.Position(v))
		n++
	}
	return sum.DivScalar(float64(n))
}

// VertexNormal returns the area-weighted unit normal at v, or the zero
// vector when the incident faces cancel out.
func (g *Geometry) VertexNormal(v hemesh.Vertex) v3.Vec {
	var sum v3.Vec
	for f := range v.AdjacentFaces() {
		sum = sum.Add(g.vectorArea(f))
	}
	l := sum.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return sum.DivScalar(l)
}

// SplitEdgeAtMidpoint splits e and places the new vertex at the
// midpoint of the original edge.
func (g *Geometry) SplitEdgeAtMidpoint(e hemesh.Edge) hemesh.Vertex {
	he := e.Halfedge()
	mid := g.Position(he.Vertex()).Add(g.Position(he.TipVertex())).MulScalar(0.5)
	v := g.mesh.SplitEdge(e)
	g.positions.Set(v, mid)
	return v
}

// InsertVertexAtCentroid stars f from a new vertex at its centroid.
func (g *Geometry) InsertVertexAtCentroid(f hemesh.Face) hemesh.Vertex {
	c := g.FaceCentroid(f)
	v := g.mesh.InsertVertex(f)
	g.positions.Set(v, c)
	return v
}

// CollapseEdgeToMidpoint collapses e and moves the surviving vertex to
// the midpoint of the original edge. Returns a null vertex when the
// collapse is rejected.
func (g *Geometry) CollapseEdgeToMidpoint(e hemesh.Edge) hemesh.Vertex {
	he := e.Halfedge()
	mid := g.Position(he.Vertex()).Add(g.Position(he.TipVertex())).MulScalar(0.5)
	v := g.mesh.CollapseEdge(e)
	if !v.IsNull() {
		g.positions.Set(v, mid)
	}
	return v
}

// Triangles fans every face into render triangles. The mesh itself is
// not mutated; boundary loops contribute nothing.
func (g *Geometry) Triangles() []sdf.Triangle3 {
	tris := make([]sdf.Triangle3, 0, g.mesh.NFaces())
	var cycle []v3.Vec
	for f := range g.mesh.Faces() {
		cycle = cycle[:0]
		for v := range f.AdjacentVertices() {
			cycle = append(cycle, g.Position(v))
		}
		for i := 1; i+1 < len(cycle); i++ {
			tris = append(tris, sdf.Triangle3{cycle[0], cycle[i], cycle[i+1]})
		}
	}
	return tris
}
