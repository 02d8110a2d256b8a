package hemesh

import "github.com/pkg/errors"

// In-place connectivity surgery. Every operation here preserves manifoldness
// and the outward invariants: twins stay paired in even/odd slots, boundary
// vertices keep a canonical halfedge that is interior with an exterior twin,
// and boundary loops are neither created nor destroyed. Operations that can
// fail come in a checked variant (error or bool) and, where useful, a Try
// variant returning a null handle.

func (m *Mesh) hePrev(iHe int) int {
	cur := iHe
	for m.heNext[cur] != iHe {
		cur = m.heNext[cur]
	}
	return cur
}

func (m *Mesh) faceDegreeInd(iF int) int {
	deg := 0
	first := m.fHalfedge[iF]
	he := first
	for {
		deg++
		he = m.heNext[he]
		if he == first {
			return deg
		}
	}
}

// ensureVertexHasBoundaryHalfedge restores the canonical-halfedge invariant
// for a boundary vertex: vHalfedge must be interior with an exterior twin.
// Interior vertices are left with whatever live outgoing halfedge they hold.
func (m *Mesh) ensureVertexHasBoundaryHalfedge(iV int) {
	first := m.vHalfedge[iV]
	he := first
	for {
		if m.heIsInterior(he) && !m.heIsInterior(heTwin(he)) {
			m.vHalfedge[iV] = he
			return
		}
		he = m.heNext[heTwin(he)]
		if he == first {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Flip
// ---------------------------------------------------------------------------

// Flip rotates an edge between two triangles, replacing the diagonal of the
// quad they form with the other diagonal. It reports false without touching
// the mesh when e is a boundary edge or either incident face is not a
// triangle.
func (m *Mesh) Flip(e Edge) bool {
	ha := eHalfedge(e.ind)
	hb := ha + 1
	if !m.heIsInterior(ha) || !m.heIsInterior(hb) {
		return false
	}
	fa := m.heFace[ha]
	fb := m.heFace[hb]
	if m.faceDegreeInd(fa) != 3 || m.faceDegreeInd(fb) != 3 {
		return false
	}

	ha2 := m.heNext[ha]
	ha3 := m.heNext[ha2]
	hb2 := m.heNext[hb]
	hb3 := m.heNext[hb2]

	va := m.heVertex[ha]
	vb := m.heVertex[hb]
	vc := m.heVertex[ha3]
	vd := m.heVertex[hb3]

	// New triangles (vd, vc, va) and (vc, vd, vb).
	m.heNext[ha] = ha3
	m.heNext[ha3] = hb2
	m.heNext[hb2] = ha
	m.heNext[hb] = hb3
	m.heNext[hb3] = ha2
	m.heNext[ha2] = hb

	m.heVertex[ha] = vd
	m.heVertex[hb] = vc
	m.heFace[hb2] = fa
	m.heFace[ha2] = fb
	m.fHalfedge[fa] = ha
	m.fHalfedge[fb] = hb

	if m.vHalfedge[va] == ha {
		m.vHalfedge[va] = hb2
	}
	if m.vHalfedge[vb] == hb {
		m.vHalfedge[vb] = ha2
	}

	m.isCanonicalFlag = false
	return true
}

// ---------------------------------------------------------------------------
// Edge splitting
// ---------------------------------------------------------------------------

// InsertVertexAlongEdge subdivides e with a new degree-two vertex, leaving
// face degrees one higher on each side. It returns the halfedge pointing from
// the new vertex toward the original tip of e.Halfedge(); its edge is the
// newly created one.
func (m *Mesh) InsertVertexAlongEdge(e Edge) Halfedge {
	ha := eHalfedge(e.ind)
	hb := ha + 1
	vb := m.heVertex[hb]
	fa := m.heFace[ha]
	fb := m.heFace[hb]

	vN := m.getNewVertex()
	hc, hd := m.getNewEdgePair()

	// hc continues ha inside fa; hd precedes hb inside fb.
	m.heNext[hc] = m.heNext[ha]
	m.heNext[ha] = hc
	m.heVertex[hc] = vN
	m.heFace[hc] = fa

	pb := m.hePrev(hb)
	m.heNext[pb] = hd
	m.heNext[hd] = hb
	m.heVertex[hd] = vb
	m.heFace[hd] = fb
	m.heVertex[hb] = vN

	if m.heIsInterior(hc) {
		m.nInteriorHalfedgesCount++
	}
	if m.heIsInterior(hd) {
		m.nInteriorHalfedgesCount++
	}

	m.vHalfedge[vN] = hc
	m.ensureVertexHasBoundaryHalfedge(vN)
	if m.vHalfedge[vb] == hb {
		m.vHalfedge[vb] = hd
		m.ensureVertexHasBoundaryHalfedge(vb)
	}

	m.isCanonicalFlag = false
	return Halfedge{m, hc}
}

// SplitEdge subdivides e and re-triangulates each triangular side by
// connecting the new vertex to the opposite corner. Non-triangular and
// exterior sides are left subdivided only. Returns the new vertex.
func (m *Mesh) SplitEdge(e Edge) Vertex {
	return m.SplitEdgeReturnHalfedge(e).TipVertex()
}

// SplitEdgeReturnHalfedge is SplitEdge returning the halfedge that points at
// the new vertex, in the same direction as e.Halfedge() before the split.
func (m *Mesh) SplitEdgeReturnHalfedge(e Edge) Halfedge {
	ha := eHalfedge(e.ind)
	hb := ha + 1
	wasTriA := m.heIsInterior(ha) && m.faceDegreeInd(m.heFace[ha]) == 3
	wasTriB := m.heIsInterior(hb) && m.faceDegreeInd(m.heFace[hb]) == 3

	hc := m.InsertVertexAlongEdge(e).ind
	vN := m.heVertex[hc]

	if wasTriA {
		apex := m.heVertex[m.heNext[m.heNext[hc]]]
		if _, err := m.connectVerticesInFace(m.heFace[hc], vN, apex); err != nil {
			panic(errors.Wrap(err, "hemesh: split could not connect to apex"))
		}
	}
	if wasTriB {
		apex := m.heVertex[m.heNext[m.heNext[hb]]]
		if _, err := m.connectVerticesInFace(m.heFace[hb], vN, apex); err != nil {
			panic(errors.Wrap(err, "hemesh: split could not connect to apex"))
		}
	}
	return Halfedge{m, ha}
}

// ---------------------------------------------------------------------------
// Face splitting
// ---------------------------------------------------------------------------

// InsertVertex places a new vertex inside f and connects it to every corner,
// replacing a degree-n face with n triangle-fan sectors. Returns a null
// vertex if f is a boundary loop.
func (m *Mesh) InsertVertex(f Face) Vertex {
	if m.faceIsBoundaryLoop(f.ind) {
		return Vertex{}
	}

	var hs, vs []int
	first := m.fHalfedge[f.ind]
	he := first
	for {
		hs = append(hs, he)
		vs = append(vs, m.heVertex[he])
		he = m.heNext[he]
		if he == first {
			break
		}
	}
	n := len(hs)

	vN := m.getNewVertex()
	outs := make([]int, n)
	ins := make([]int, n)
	for i := 0; i < n; i++ {
		outs[i], ins[i] = m.getNewEdgePair()
		m.heVertex[outs[i]] = vN
		m.heVertex[ins[i]] = vs[i]
	}

	for i := 0; i < n; i++ {
		fi := f.ind
		if i > 0 {
			fi = m.getNewFace()
		}
		inNext := ins[(i+1)%n]
		m.heNext[hs[i]] = inNext
		m.heNext[inNext] = outs[i]
		m.heNext[outs[i]] = hs[i]
		m.heFace[hs[i]] = fi
		m.heFace[inNext] = fi
		m.heFace[outs[i]] = fi
		m.fHalfedge[fi] = hs[i]
	}

	m.nInteriorHalfedgesCount += 2 * n
	m.vHalfedge[vN] = outs[0]
	m.isCanonicalFlag = false
	return Vertex{m, vN}
}

// ---------------------------------------------------------------------------
// Connecting vertices
// ---------------------------------------------------------------------------

func (m *Mesh) connectVerticesInFace(iF, iVA, iVB int) (int, error) {
	if iVA == iVB {
		return invalidInd, errors.Wrapf(ErrAlreadyConnected, "vertex %d to itself", iVA)
	}

	heA, heB := invalidInd, invalidInd
	for he := range faceCycle(m, iF) {
		if m.heVertex[he] == iVA {
			heA = he
		}
		if m.heVertex[he] == iVB {
			heB = he
		}
	}
	if heA == invalidInd || heB == invalidInd {
		return invalidInd, errors.Wrapf(ErrNoSharedFace, "vertices %d and %d in face %d", iVA, iVB, iF)
	}
	if m.heNext[heA] == heB || m.heNext[heB] == heA {
		return invalidInd, errors.Wrapf(ErrAlreadyConnected, "vertices %d and %d", iVA, iVB)
	}

	pA := m.hePrev(heA)
	pB := m.hePrev(heB)
	heNew, heT := m.getNewEdgePair()
	fNew := m.getNewFace()

	// heNew runs iVA to iVB and stays in iF; heT closes the split-off face.
	m.heNext[pA] = heNew
	m.heNext[heNew] = heB
	m.heNext[pB] = heT
	m.heNext[heT] = heA
	m.heVertex[heNew] = iVA
	m.heVertex[heT] = iVB

	m.heFace[heNew] = iF
	m.fHalfedge[iF] = heNew
	for he := heT; ; {
		m.heFace[he] = fNew
		he = m.heNext[he]
		if he == heT {
			break
		}
	}
	m.fHalfedge[fNew] = heT

	m.nInteriorHalfedgesCount += 2
	m.isCanonicalFlag = false
	return heNew, nil
}

// ConnectVerticesInFace splits f with a new edge from vA to vB. Both
// vertices must lie on f and must not already be consecutive along its
// boundary. The returned halfedge points from vA to vB and remains in f;
// the split-off piece becomes a new face.
func (m *Mesh) ConnectVerticesInFace(f Face, vA, vB Vertex) (Halfedge, error) {
	if m.faceIsBoundaryLoop(f.ind) {
		return Halfedge{}, errors.Wrapf(ErrNoSharedFace, "face %d is a boundary loop", f.ind)
	}
	he, err := m.connectVerticesInFace(f.ind, vA.ind, vB.ind)
	if err != nil {
		return Halfedge{}, err
	}
	return Halfedge{m, he}, nil
}

// ConnectVertices splits the unique face shared by vA and vB with a new
// edge between them. It fails with ErrNoSharedFace when no common face
// exists, ErrAmbiguousSharedFace when several do, and ErrAlreadyConnected
// when the vertices are consecutive along the shared face.
func (m *Mesh) ConnectVertices(vA, vB Vertex) (Halfedge, error) {
	facesA := map[int]bool{}
	for f := range vA.AdjacentFaces() {
		facesA[f.ind] = true
	}
	shared := invalidInd
	nShared := 0
	for f := range vB.AdjacentFaces() {
		if facesA[f.ind] {
			nShared++
			shared = f.ind
		}
	}
	switch {
	case nShared == 0:
		return Halfedge{}, errors.Wrapf(ErrNoSharedFace, "vertices %d and %d", vA.ind, vB.ind)
	case nShared > 1:
		return Halfedge{}, errors.Wrapf(ErrAmbiguousSharedFace, "vertices %d and %d share %d faces", vA.ind, vB.ind, nShared)
	}
	he, err := m.connectVerticesInFace(shared, vA.ind, vB.ind)
	if err != nil {
		return Halfedge{}, err
	}
	return Halfedge{m, he}, nil
}

// TryConnectVertices is ConnectVertices returning a null halfedge instead of
// an error.
func (m *Mesh) TryConnectVertices(vA, vB Vertex) Halfedge {
	he, err := m.ConnectVertices(vA, vB)
	if err != nil {
		return Halfedge{}
	}
	return he
}

// TryConnectVerticesInFace is ConnectVerticesInFace returning a null halfedge
// instead of an error.
func (m *Mesh) TryConnectVerticesInFace(f Face, vA, vB Vertex) Halfedge {
	he, err := m.ConnectVerticesInFace(f, vA, vB)
	if err != nil {
		return Halfedge{}
	}
	return he
}

// Triangulate fans f into triangles from the tail vertex of its starting
// halfedge and returns all resulting faces, f included and first. A face
// that is already a triangle comes back as a singleton; a boundary loop
// yields nil.
func (m *Mesh) Triangulate(f Face) []Face {
	if m.faceIsBoundaryLoop(f.ind) {
		return nil
	}
	faces := []Face{f}
	for m.faceDegreeInd(f.ind) > 3 {
		he0 := m.fHalfedge[f.ind]
		v0 := m.heVertex[he0]
		apex := m.heVertex[m.heNext[m.heNext[he0]]]
		heNew, err := m.connectVerticesInFace(f.ind, v0, apex)
		if err != nil {
			panic(errors.Wrap(err, "hemesh: triangulation fan could not connect"))
		}
		// The chord leaves the remainder in f; its twin closes the new
		// triangle.
		faces = append(faces, Face{m, m.heFace[heTwin(heNew)]})
	}
	return faces
}

// ---------------------------------------------------------------------------
// Edge collapse
// ---------------------------------------------------------------------------

func (m *Mesh) countCommonNeighbors(iVA, iVB int) int {
	nbr := map[int]bool{}
	for w := range (Vertex{m, iVA}).AdjacentVertices() {
		nbr[w.ind] = true
	}
	n := 0
	for w := range (Vertex{m, iVB}).AdjacentVertices() {
		if nbr[w.ind] {
			n++
		}
	}
	return n
}

func (m *Mesh) reassignTails(iFrom, iTo int) {
	var outs []int
	for h := range (Vertex{m, iFrom}).OutgoingHalfedges() {
		outs = append(outs, h.ind)
	}
	for _, he := range outs {
		m.heVertex[he] = iTo
	}
}

// spliceOverTwin moves hKeep into tDel's position in tDel's face, taking
// over its cycle slot and face pointer. Used when a collapsing triangle
// leaves two parallel edges and only hKeep's pair survives. The interior
// count is adjusted when the destination is a boundary loop.
func (m *Mesh) spliceOverTwin(hKeep, tDel int) {
	o := m.heFace[tDel]
	pT := m.hePrev(tDel)
	wasInterior := m.heIsInterior(hKeep)
	if pT != hKeep {
		m.heNext[pT] = hKeep
	}
	m.heNext[hKeep] = m.heNext[tDel]
	m.heFace[hKeep] = o
	if m.fHalfedge[o] == tDel {
		m.fHalfedge[o] = hKeep
	}
	if wasInterior && !m.heIsInterior(hKeep) {
		m.nInteriorHalfedgesCount--
	}
}

// CollapseEdge contracts e to a single vertex, merging its endpoints and
// removing any triangle incident on it. Returns the surviving vertex, or a
// null vertex when the collapse would break manifoldness: both endpoints on
// the boundary of an interior edge, a failed link condition, or an isolated
// triangle.
func (m *Mesh) CollapseEdge(e Edge) Vertex {
	if e.IsBoundary() {
		return m.collapseEdgeAlongBoundary(e)
	}

	ha := eHalfedge(e.ind)
	hb := ha + 1
	va := m.heVertex[ha]
	vb := m.heVertex[hb]

	aBnd := (Vertex{m, va}).IsBoundary()
	bBnd := (Vertex{m, vb}).IsBoundary()
	if aBnd && bBnd {
		return Vertex{}
	}
	// The surviving tail keeps any boundary structure.
	if bBnd {
		ha, hb = hb, ha
		va, vb = vb, va
	}
	fa := m.heFace[ha]
	fb := m.heFace[hb]

	triA := m.faceDegreeInd(fa) == 3
	triB := m.faceDegreeInd(fb) == 3
	expected := 0
	if triA {
		expected++
	}
	if triB {
		expected++
	}
	if m.countCommonNeighbors(va, vb) != expected {
		return Vertex{}
	}

	// Labels before any surgery. Side fa: ha, h1 (vb out), h2 (into va).
	// Side fb: hb, g1 (va out), g2 (into vb).
	h1 := m.heNext[ha]
	g1 := m.heNext[hb]
	var h2, t1, t2, g2, u1, u2, c, d int
	if triA {
		h2 = m.heNext[h1]
		t1 = heTwin(h1)
		t2 = heTwin(h2)
		c = m.heVertex[h2]
	}
	if triB {
		g2 = m.heNext[g1]
		u1 = heTwin(g1)
		u2 = heTwin(g2)
		d = m.heVertex[g2]
	}

	m.reassignTails(vb, va)

	if triA {
		m.spliceOverTwin(h2, t1)
		if m.vHalfedge[c] == t1 {
			m.vHalfedge[c] = h2
		}
		m.deleteEdgePair(heEdge(h1))
		m.deleteFace(fa)
	} else {
		pA := m.hePrev(ha)
		m.heNext[pA] = h1
		if m.fHalfedge[fa] == ha {
			m.fHalfedge[fa] = h1
		}
	}

	if triB {
		m.spliceOverTwin(g1, u2)
		if m.vHalfedge[d] == g2 {
			m.vHalfedge[d] = u1
		}
		m.deleteEdgePair(heEdge(g2))
		m.deleteFace(fb)
	} else {
		pB := m.hePrev(hb)
		m.heNext[pB] = g1
		if m.fHalfedge[fb] == hb {
			m.fHalfedge[fb] = g1
		}
	}

	m.deleteEdgePair(e.ind)
	m.deleteVertex(vb)

	if triA {
		m.vHalfedge[va] = t2
	} else {
		m.vHalfedge[va] = h1
	}
	m.ensureVertexHasBoundaryHalfedge(va)

	m.isCanonicalFlag = false
	return Vertex{m, va}
}

func (m *Mesh) collapseEdgeAlongBoundary(e Edge) Vertex {
	ha := eHalfedge(e.ind)
	hb := ha + 1
	if !m.heIsInterior(ha) {
		ha, hb = hb, ha
	}
	va := m.heVertex[ha]
	vb := m.heVertex[hb]
	fa := m.heFace[ha]
	iL := m.heFace[hb]

	triA := m.faceDegreeInd(fa) == 3
	expected := 0
	if triA {
		expected = 1
	}
	if m.countCommonNeighbors(va, vb) != expected {
		return Vertex{}
	}

	var h1, h2, t1, t2, c int
	h1 = m.heNext[ha]
	if triA {
		h2 = m.heNext[h1]
		t1 = heTwin(h1)
		t2 = heTwin(h2)
		c = m.heVertex[h2]
		if !m.heIsInterior(t1) && !m.heIsInterior(t2) {
			// fa hangs off the boundary by this edge alone.
			return Vertex{}
		}
	}

	m.reassignTails(vb, va)

	if triA {
		m.spliceOverTwin(h2, t1)
		if m.vHalfedge[c] == t1 {
			m.vHalfedge[c] = h2
		}
	} else {
		pA := m.hePrev(ha)
		m.heNext[pA] = h1
		if m.fHalfedge[fa] == ha {
			m.fHalfedge[fa] = h1
		}
	}

	// Unlink hb from its boundary loop after any splice, so the walk sees
	// the final cycle.
	pHb := m.hePrev(hb)
	nHb := m.heNext[hb]
	m.heNext[pHb] = nHb
	if m.fHalfedge[iL] == hb {
		m.fHalfedge[iL] = nHb
	}

	if triA {
		m.deleteEdgePair(heEdge(h1))
		m.deleteFace(fa)
	}
	m.deleteEdgePair(e.ind)
	m.deleteVertex(vb)

	if triA {
		m.vHalfedge[va] = t2
	} else {
		m.vHalfedge[va] = h1
	}
	m.ensureVertexHasBoundaryHalfedge(va)
	if triA {
		m.ensureVertexHasBoundaryHalfedge(c)
	}

	m.isCanonicalFlag = false
	return Vertex{m, va}
}

// ---------------------------------------------------------------------------
// Boundary erosion
// ---------------------------------------------------------------------------

// RemoveFaceAlongBoundary deletes a face that meets the boundary along
// exactly one edge, extending the adjacent boundary loop through the face's
// remaining halfedges. Reports false when f is a boundary loop or touches
// the boundary through any other number of edges.
func (m *Mesh) RemoveFaceAlongBoundary(f Face) bool {
	if m.faceIsBoundaryLoop(f.ind) {
		return false
	}

	ha := invalidInd
	nExt := 0
	var cycle []int
	for he := range faceCycle(m, f.ind) {
		cycle = append(cycle, he)
		if !m.heIsInterior(heTwin(he)) {
			nExt++
			ha = he
		}
	}
	if nExt != 1 {
		return false
	}
	hb := heTwin(ha)
	iL := m.heFace[hb]
	va := m.heVertex[ha]
	vb := m.heVertex[hb]

	// Rotate the cycle so it reads ha, h1, ..., hk.
	for cycle[0] != ha {
		cycle = append(cycle[1:], cycle[0])
	}
	rest := cycle[1:]

	p := m.hePrev(hb)
	n := m.heNext[hb]
	m.heNext[p] = rest[0]
	m.heNext[rest[len(rest)-1]] = n
	for _, he := range rest {
		m.heFace[he] = iL
	}
	m.fHalfedge[iL] = rest[0]

	m.nInteriorHalfedgesCount -= len(rest)
	m.deleteEdgePair(heEdge(ha))
	m.deleteFace(f.ind)

	if m.vHalfedge[va] == ha {
		m.vHalfedge[va] = n
	}
	m.ensureVertexHasBoundaryHalfedge(va)
	m.ensureVertexHasBoundaryHalfedge(vb)
	for _, he := range rest {
		m.ensureVertexHasBoundaryHalfedge(m.heVertex[he])
	}

	m.isCanonicalFlag = false
	return true
}

// ---------------------------------------------------------------------------
// Index-space surgery
// ---------------------------------------------------------------------------

// SetEdgeHalfedge swaps the two halfedges of e within their slots so that he
// becomes the canonical (even-indexed) halfedge. he must belong to e. All
// connectivity is preserved; only the index assignment of the pair changes.
func (m *Mesh) SetEdgeHalfedge(e Edge, he Halfedge) {
	a := eHalfedge(e.ind)
	b := a + 1
	if he.ind == a {
		return
	}
	if he.ind != b {
		panic(errors.Wrapf(ErrBadVertexIndex, "halfedge %d does not belong to edge %d", he.ind, e.ind))
	}

	fix := func(h int) int {
		switch h {
		case a:
			return b
		case b:
			return a
		}
		return h
	}

	pa := m.hePrev(a)
	pb := m.hePrev(b)
	oldNextA := m.heNext[a]
	oldNextB := m.heNext[b]

	m.heNext[a] = fix(oldNextB)
	m.heNext[b] = fix(oldNextA)
	if pa != a && pa != b {
		m.heNext[pa] = b
	}
	if pb != a && pb != b {
		m.heNext[pb] = a
	}

	m.heVertex[a], m.heVertex[b] = m.heVertex[b], m.heVertex[a]
	m.heFace[a], m.heFace[b] = m.heFace[b], m.heFace[a]

	for _, v := range [2]int{m.heVertex[a], m.heVertex[b]} {
		if m.vHalfedge[v] == a {
			m.vHalfedge[v] = b
		} else if m.vHalfedge[v] == b {
			m.vHalfedge[v] = a
		}
	}
	for _, f := range [2]int{m.heFace[a], m.heFace[b]} {
		if m.fHalfedge[f] == a {
			m.fHalfedge[f] = b
		} else if m.fHalfedge[f] == b {
			m.fHalfedge[f] = a
		}
	}

	// Interior counts follow the slots' contents; swapping moves the labels
	// with them, so totals are unchanged.
	m.isCanonicalFlag = false
}
