package hemesh

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
)

// Mesh is a halfedge mesh over a manifold polygon complex.
//
// Connectivity is stored in five parallel index arrays. Halfedge slots are
// allocated in twin pairs, so twin and edge relationships are implicit in the
// index arithmetic (see heTwin, heEdge). The face buffer is shared between
// real faces, which fill from the front, and boundary-loop pseudo-faces,
// which fill from the back.
//
// A Mesh is not safe for concurrent use; it assumes exactly one owner at a
// time, and mutation while iterating the same element kind is undefined.
type Mesh struct {
	// Core connectivity arrays.
	heNext    []int // he.Next()
	heVertex  []int // he.Vertex()
	heFace    []int // he.Face(), index into the face buffer
	vHalfedge []int // v.Halfedge()
	fHalfedge []int // f.Halfedge(); boundary loops at the back

	// Live element counts. These drop when elements are tombstoned.
	nVerticesCount          int
	nHalfedgesCount         int
	nInteriorHalfedgesCount int
	nFacesCount             int
	nBoundaryLoopsCount     int

	// Buffer capacities. nHalfedgesCapacityCount is always even, and
	// nFacesCapacityCount covers real faces and boundary loops together.
	nVerticesCapacityCount  int
	nHalfedgesCapacityCount int
	nFacesCapacityCount     int

	// Fill counts: the high-water mark of ever-used slots. Tombstoned slots
	// stay inside the fill region until Compress.
	nVerticesFillCount      int
	nHalfedgesFillCount     int
	nFacesFillCount         int
	nBoundaryLoopsFillCount int

	isCompressedFlag bool
	isCanonicalFlag  bool

	// Dependent-container notification lists, see lifecycle.go.
	nextCallbackToken CallbackToken
	expandCBs         [4]cbList[func(int)]
	permuteCBs        [4]cbList[func([]int)]
	releaseCBs        cbList[func()]
}

// edgeKeyComparator orders unoriented edge keys [2]int lexicographically.
func edgeKeyComparator(a, b interface{}) int {
	ka := a.([2]int)
	kb := b.([2]int)
	if ka[0] != kb[0] {
		return ka[0] - kb[0]
	}
	return ka[1] - kb[1]
}

// pairRecord tracks one unoriented edge during construction.
type pairRecord struct {
	he     int // even halfedge slot of the pair
	tail   int // tail vertex of the first-seen side
	paired bool
}

// NewFromPolygons builds a halfedge mesh from a polygon soup: a list of
// faces, each a sequence of 0-based vertex indices in counter-clockwise
// order. The vertex count is one more than the largest index used.
//
// Construction fails for polygons with fewer than 3 sides, for non-manifold
// input (a repeated oriented edge, an edge with more than two incident
// faces, or a vertex whose incident faces do not form a single fan), and for
// vertices never referenced by a polygon.
func NewFromPolygons(polygons [][]int) (*Mesh, error) {
	m := &Mesh{isCompressedFlag: true, isCanonicalFlag: true}

	// Pass 0: validate sizes and find the vertex count.
	nVertices := 0
	for fi, poly := range polygons {
		if len(poly) < 3 {
			return nil, errors.Wrapf(ErrBadPolygon, "face %d has %d vertices", fi, len(poly))
		}
		for _, v := range poly {
			if v < 0 {
				return nil, errors.Wrapf(ErrBadVertexIndex, "face %d references vertex %d", fi, v)
			}
			if v+1 > nVertices {
				nVertices = v + 1
			}
		}
	}

	m.vHalfedge = make([]int, nVertices)
	for i := range m.vHalfedge {
		m.vHalfedge[i] = invalidInd
	}

	// Pass 1: allocate halfedge pairs face by face. The first-seen side of
	// each edge takes the even slot of its pair; the opposite orientation,
	// if it ever arrives, takes the odd slot. Anything else is non-manifold.
	pairs := redblacktree.NewWith(edgeKeyComparator)
	faceHe := make([][]int, len(polygons))
	outgoingTally := make([]int, nVertices)

	for fi, poly := range polygons {
		n := len(poly)
		faceHe[fi] = make([]int, n)
		for si := 0; si < n; si++ {
			a := poly[si]
			b := poly[(si+1)%n]
			if a == b {
				return nil, errors.Wrapf(ErrBadPolygon, "face %d has a degenerate side at vertex %d", fi, a)
			}
			key := [2]int{a, b}
			if b < a {
				key = [2]int{b, a}
			}

			var he int
			if found, ok := pairs.Get(key); ok {
				rec := found.(*pairRecord)
				if rec.paired {
					return nil, errors.Wrapf(ErrNonManifoldEdge, "edge (%d,%d)", key[0], key[1])
				}
				if rec.tail == a {
					return nil, errors.Wrapf(ErrRepeatedOrientedEdge, "edge %d->%d", a, b)
				}
				rec.paired = true
				he = heTwin(rec.he)
			} else {
				he = len(m.heNext)
				m.heNext = append(m.heNext, invalidInd, invalidInd)
				m.heVertex = append(m.heVertex, invalidInd, invalidInd)
				m.heFace = append(m.heFace, invalidInd, invalidInd)
				pairs.Put(key, &pairRecord{he: he, tail: a})
			}

			faceHe[fi][si] = he
			m.heVertex[he] = a
			m.vHalfedge[a] = he
			outgoingTally[a]++
		}
	}

	for v := 0; v < nVertices; v++ {
		if m.vHalfedge[v] == invalidInd {
			return nil, errors.Wrapf(ErrUnreferencedVertex, "vertex %d", v)
		}
	}

	// Pass 2: close the face cycles.
	nHe := len(m.heNext)
	for fi, hes := range faceHe {
		n := len(hes)
		for si := 0; si < n; si++ {
			m.heNext[hes[si]] = hes[(si+1)%n]
			m.heFace[hes[si]] = fi
		}
	}

	// Pass 3: trace boundary loops over the unassigned twin slots. Each
	// exterior halfedge runs opposite its interior twin; its successor along
	// the loop is the unique outgoing exterior halfedge at its head.
	exteriorOut := make(map[int]int) // tail vertex -> exterior halfedge
	for he := 0; he < nHe; he++ {
		if m.heFace[he] != invalidInd {
			continue
		}
		twin := heTwin(he)
		tail := m.heVertex[m.heNext[twin]]
		if _, dup := exteriorOut[tail]; dup {
			return nil, errors.Wrapf(ErrNonManifoldVertex, "vertex %d touches two boundaries", tail)
		}
		exteriorOut[tail] = he
		m.heVertex[he] = tail
		outgoingTally[tail]++
	}

	nLoops := 0
	var loopStarts []int
	seen := make(map[int]bool, len(exteriorOut))
	for he := 0; he < nHe; he++ {
		if m.heFace[he] != invalidInd || seen[he] {
			continue
		}
		loopStarts = append(loopStarts, he)
		cur := he
		for {
			seen[cur] = true
			next := exteriorOut[m.heVertex[heTwin(cur)]]
			m.heNext[cur] = next
			cur = next
			if cur == he {
				break
			}
		}
		nLoops++
	}
	capF := len(polygons) + nLoops
	m.fHalfedge = make([]int, capF)
	for fi := range polygons {
		m.fHalfedge[fi] = faceHe[fi][0]
	}
	for li, start := range loopStarts {
		faceInd := capF - 1 - li
		m.fHalfedge[faceInd] = start
		cur := start
		for {
			m.heFace[cur] = faceInd
			cur = m.heNext[cur]
			if cur == start {
				break
			}
		}
	}

	// Impose the boundary-vertex invariant: a boundary vertex stores the
	// interior halfedge whose twin is exterior, the start of its half-disk.
	for _, ext := range exteriorOut {
		interior := heTwin(ext)
		m.vHalfedge[m.heVertex[interior]] = interior
	}

	// Counts and capacities. Construction produces a compressed, canonical
	// mesh: fills equal capacities equal live counts.
	m.nVerticesCount = nVertices
	m.nHalfedgesCount = nHe
	m.nInteriorHalfedgesCount = nHe - len(exteriorOut)
	m.nFacesCount = len(polygons)
	m.nBoundaryLoopsCount = nLoops
	m.nVerticesCapacityCount = nVertices
	m.nHalfedgesCapacityCount = nHe
	m.nFacesCapacityCount = capF
	m.nVerticesFillCount = nVertices
	m.nHalfedgesFillCount = nHe
	m.nFacesFillCount = len(polygons)
	m.nBoundaryLoopsFillCount = nLoops

	// Pass 4: reject vertices whose incident elements do not form a single
	// rotation fan (the interior bowtie case the boundary map cannot see).
	for v := 0; v < nVertices; v++ {
		he0 := m.vHalfedge[v]
		he := he0
		walked := 0
		for {
			walked++
			if walked > outgoingTally[v] {
				break
			}
			he = m.heNext[heTwin(he)]
			if he == he0 {
				break
			}
		}
		if walked != outgoingTally[v] {
			return nil, errors.Wrapf(ErrNonManifoldVertex, "vertex %d", v)
		}
	}

	return m, nil
}

// ---------------------------------------------------------------------------
// Counts
// ---------------------------------------------------------------------------

// NVertices returns the number of live vertices.
func (m *Mesh) NVertices() int { return m.nVerticesCount }

// NHalfedges returns the number of live halfedges, interior plus exterior.
func (m *Mesh) NHalfedges() int { return m.nHalfedgesCount }

// NInteriorHalfedges returns the number of live halfedges bordering a real face.
func (m *Mesh) NInteriorHalfedges() int { return m.nInteriorHalfedgesCount }

// NExteriorHalfedges returns the number of live halfedges on boundary loops.
func (m *Mesh) NExteriorHalfedges() int { return m.nHalfedgesCount - m.nInteriorHalfedgesCount }

// NCorners returns the number of corners, one per interior halfedge.
func (m *Mesh) NCorners() int { return m.nInteriorHalfedgesCount }

// NEdges returns the number of live edges.
func (m *Mesh) NEdges() int { return m.nHalfedgesCount / 2 }

// NFaces returns the number of live real faces.
func (m *Mesh) NFaces() int { return m.nFacesCount }

// NBoundaryLoops returns the number of live boundary loops.
func (m *Mesh) NBoundaryLoops() int { return m.nBoundaryLoopsCount }

// NInteriorVertices counts vertices not on any boundary. O(n).
func (m *Mesh) NInteriorVertices() int {
	n := 0
	for v := range m.Vertices() {
		if !v.IsBoundary() {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Index accessors. These enumerate raw slots, so they are only a dense
// enumeration of the elements while the mesh is compressed.
// ---------------------------------------------------------------------------

// Vertex returns the vertex stored at slot i.
func (m *Mesh) Vertex(i int) Vertex { return Vertex{m, i} }

// Halfedge returns the halfedge stored at slot i.
func (m *Mesh) Halfedge(i int) Halfedge { return Halfedge{m, i} }

// Corner returns the corner stored at slot i.
func (m *Mesh) Corner(i int) Corner { return Corner{m, i} }

// Edge returns the edge stored at slot i.
func (m *Mesh) Edge(i int) Edge { return Edge{m, i} }

// Face returns the real face stored at slot i.
func (m *Mesh) Face(i int) Face { return Face{m, i} }

// BoundaryLoop returns boundary loop i.
func (m *Mesh) BoundaryLoop(i int) BoundaryLoop { return BoundaryLoop{m, i} }

// ---------------------------------------------------------------------------
// Implicit relationships over the face buffer
// ---------------------------------------------------------------------------

func (m *Mesh) faceIsBoundaryLoop(iF int) bool {
	return iF >= m.nFacesCapacityCount-m.nBoundaryLoopsFillCount
}

func (m *Mesh) faceIndToBoundaryLoopInd(iF int) int {
	return m.nFacesCapacityCount - 1 - iF
}

func (m *Mesh) boundaryLoopIndToFaceInd(iL int) int {
	return m.nFacesCapacityCount - 1 - iL
}

func (m *Mesh) heIsInterior(iHe int) bool {
	return !m.faceIsBoundaryLoop(m.heFace[iHe])
}

// ---------------------------------------------------------------------------
// Utility queries
// ---------------------------------------------------------------------------

// IsTriangular reports whether every real face is a triangle. O(n).
func (m *Mesh) IsTriangular() bool {
	for f := range m.Faces() {
		if f.Degree() != 3 {
			return false
		}
	}
	return true
}

// EulerCharacteristic returns V - E + F over real faces.
func (m *Mesh) EulerCharacteristic() int {
	return m.NVertices() - m.NEdges() + m.NFaces()
}

// Genus returns the genus of the surface, assuming it is connected.
func (m *Mesh) Genus() int {
	return (2 - m.EulerCharacteristic() - m.NBoundaryLoops()) / 2
}

// NConnectedComponents counts connected components of the vertex adjacency
// graph. O(n).
func (m *Mesh) NConnectedComponents() int {
	visited := make(map[int]bool, m.NVertices())
	n := 0
	for v := range m.Vertices() {
		if visited[v.ind] {
			continue
		}
		n++
		stack := []int{v.ind}
		visited[v.ind] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for w := range (Vertex{m, cur}).AdjacentVertices() {
				if !visited[w.ind] {
					visited[w.ind] = true
					stack = append(stack, w.ind)
				}
			}
		}
	}
	return n
}

// FaceVertexList exports the mesh back to polygon-soup form using the
// current (possibly non-canonical) vertex indices. Each face is walked from
// its stored halfedge, so rebuilding a canonical mesh from this list
// reproduces it exactly.
func (m *Mesh) FaceVertexList() [][]int {
	polys := make([][]int, 0, m.NFaces())
	for f := range m.Faces() {
		var poly []int
		he0 := m.fHalfedge[f.ind]
		he := he0
		for {
			poly = append(poly, m.heVertex[he])
			he = m.heNext[he]
			if he == he0 {
				break
			}
		}
		polys = append(polys, poly)
	}
	return polys
}

// Copy returns a deep copy of the mesh. Callback registrations are not
// copied; containers attached to the source stay attached to the source.
func (m *Mesh) Copy() *Mesh {
	out := &Mesh{
		heNext:    append([]int(nil), m.heNext...),
		heVertex:  append([]int(nil), m.heVertex...),
		heFace:    append([]int(nil), m.heFace...),
		vHalfedge: append([]int(nil), m.vHalfedge...),
		fHalfedge: append([]int(nil), m.fHalfedge...),

		nVerticesCount:          m.nVerticesCount,
		nHalfedgesCount:         m.nHalfedgesCount,
		nInteriorHalfedgesCount: m.nInteriorHalfedgesCount,
		nFacesCount:             m.nFacesCount,
		nBoundaryLoopsCount:     m.nBoundaryLoopsCount,

		nVerticesCapacityCount:  m.nVerticesCapacityCount,
		nHalfedgesCapacityCount: m.nHalfedgesCapacityCount,
		nFacesCapacityCount:     m.nFacesCapacityCount,

		nVerticesFillCount:      m.nVerticesFillCount,
		nHalfedgesFillCount:     m.nHalfedgesFillCount,
		nFacesFillCount:         m.nFacesFillCount,
		nBoundaryLoopsFillCount: m.nBoundaryLoopsFillCount,

		isCompressedFlag: m.isCompressedFlag,
		isCanonicalFlag:  m.isCanonicalFlag,
	}
	return out
}
