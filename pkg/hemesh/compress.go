package hemesh

// IsCompressed reports whether the index spaces are dense: no tombstoned
// slots anywhere. Freshly constructed meshes are compressed; deletions
// clear the flag until the next Compress.
func (m *Mesh) IsCompressed() bool { return m.isCompressedFlag }

// IsCanonical reports whether the mesh is compressed and its halfedge
// numbering matches the one a rebuild from FaceVertexList would produce.
func (m *Mesh) IsCanonical() bool { return m.isCanonicalFlag }

// Compress re-packs every index space to remove dead slots, shrinking the
// buffers to their live sizes. Registered permute callbacks fire with the
// applied permutations, in the order halfedge, edge, vertex, face; element
// handles held across a Compress are invalidated unless tracked through a
// dynamic handle or container.
func (m *Mesh) Compress() {
	// A mesh with no tombstones can still carry capacity slack from growth;
	// re-pack unless the buffers are already shrunk to their live sizes.
	if m.isCompressedFlag &&
		m.nVerticesCapacityCount == m.nVerticesCount &&
		m.nHalfedgesCapacityCount == m.nHalfedgesCount &&
		m.nFacesCapacityCount == m.nFacesCount+m.nBoundaryLoopsCount {
		return
	}

	// Old-to-new index maps, and new-to-old permutations for callbacks.
	heNew := make([]int, m.nHalfedgesFillCount)
	ph := make([]int, 0, m.nHalfedgesCount)
	for e := 0; e < m.nHalfedgesFillCount/2; e++ {
		a := eHalfedge(e)
		if m.halfedgeIsDead(a) {
			heNew[a], heNew[a+1] = invalidInd, invalidInd
			continue
		}
		heNew[a] = len(ph)
		ph = append(ph, a)
		heNew[a+1] = len(ph)
		ph = append(ph, a+1)
	}

	vNew := make([]int, m.nVerticesFillCount)
	pv := make([]int, 0, m.nVerticesCount)
	for v := 0; v < m.nVerticesFillCount; v++ {
		if m.vertexIsDead(v) {
			vNew[v] = invalidInd
			continue
		}
		vNew[v] = len(pv)
		pv = append(pv, v)
	}

	// Real faces pack to the front; boundary loops re-pack at the tail of
	// the shrunk buffer, keeping their loop order.
	oldCapF := m.nFacesCapacityCount
	fNew := make(map[int]int, m.nFacesCount+m.nBoundaryLoopsCount)
	pf := make([]int, 0, m.nFacesCount)
	for f := 0; f < m.nFacesFillCount; f++ {
		if m.faceIsDead(f) {
			continue
		}
		fNew[f] = len(pf)
		pf = append(pf, f)
	}
	liveF := len(pf)
	liveLoops := 0
	newCapF := liveF + m.nBoundaryLoopsCount
	for j := 0; j < m.nBoundaryLoopsFillCount; j++ {
		oldF := oldCapF - 1 - j
		if m.faceIsDead(oldF) {
			continue
		}
		fNew[oldF] = newCapF - 1 - liveLoops
		liveLoops++
	}

	// Rewrite the buffers through the maps.
	nHe := len(ph)
	newHeNext := make([]int, nHe)
	newHeVertex := make([]int, nHe)
	newHeFace := make([]int, nHe)
	for n, old := range ph {
		newHeNext[n] = heNew[m.heNext[old]]
		newHeVertex[n] = vNew[m.heVertex[old]]
		newHeFace[n] = fNew[m.heFace[old]]
	}

	newVHalfedge := make([]int, len(pv))
	for n, old := range pv {
		newVHalfedge[n] = heNew[m.vHalfedge[old]]
	}

	newFHalfedge := make([]int, newCapF)
	for i := range newFHalfedge {
		newFHalfedge[i] = invalidInd
	}
	for old, n := range fNew {
		newFHalfedge[n] = heNew[m.fHalfedge[old]]
	}

	m.heNext = newHeNext
	m.heVertex = newHeVertex
	m.heFace = newHeFace
	m.vHalfedge = newVHalfedge
	m.fHalfedge = newFHalfedge

	m.nVerticesFillCount = len(pv)
	m.nVerticesCapacityCount = len(pv)
	m.nHalfedgesFillCount = nHe
	m.nHalfedgesCapacityCount = nHe
	m.nFacesFillCount = liveF
	m.nFacesCapacityCount = newCapF
	m.nBoundaryLoopsFillCount = liveLoops
	m.isCompressedFlag = true

	pe := make([]int, nHe/2)
	for k := range pe {
		pe[k] = heEdge(ph[2*k])
	}
	m.permuteNotify(KindHalfedge, ph)
	m.permuteNotify(KindEdge, pe)
	m.permuteNotify(KindVertex, pv)
	m.permuteNotify(KindFace, pf)
}

// Canonicalize compresses the mesh and renumbers halfedges into the order a
// rebuild from FaceVertexList would assign: walking faces in index order,
// each edge's first-encountered side takes the even slot of the next free
// pair. Vertex and face indices are untouched. Halfedge and edge permute
// callbacks fire. A canonical mesh whose face list NewFromPolygons accepts
// round-trips with identical halfedge numbering.
func (m *Mesh) Canonicalize() {
	m.Compress()
	if m.isCanonicalFlag {
		return
	}

	nHe := m.nHalfedgesCount
	heNew := make([]int, nHe)
	for i := range heNew {
		heNew[i] = invalidInd
	}
	ph := make([]int, 0, nHe)
	for f := 0; f < m.nFacesCount; f++ {
		for he := range faceCycle(m, f) {
			if heNew[he] != invalidInd {
				continue
			}
			// First encounter claims the even slot; the twin rides along
			// in the odd one. Exterior halfedges are all reached this way
			// through their interior twins.
			heNew[he] = len(ph)
			ph = append(ph, he)
			heNew[heTwin(he)] = len(ph)
			ph = append(ph, heTwin(he))
		}
	}

	newHeNext := make([]int, nHe)
	newHeVertex := make([]int, nHe)
	newHeFace := make([]int, nHe)
	for n, old := range ph {
		newHeNext[n] = heNew[m.heNext[old]]
		newHeVertex[n] = m.heVertex[old]
		newHeFace[n] = m.heFace[old]
	}
	m.heNext = newHeNext
	m.heVertex = newHeVertex
	m.heFace = newHeFace
	for v := 0; v < m.nVerticesCount; v++ {
		m.vHalfedge[v] = heNew[m.vHalfedge[v]]
	}
	for f := range m.fHalfedge {
		if m.fHalfedge[f] != invalidInd {
			m.fHalfedge[f] = heNew[m.fHalfedge[f]]
		}
	}

	pe := make([]int, nHe/2)
	for k := range pe {
		pe[k] = heEdge(ph[2*k])
	}
	m.permuteNotify(KindHalfedge, ph)
	m.permuteNotify(KindEdge, pe)
	m.isCanonicalFlag = true
}
