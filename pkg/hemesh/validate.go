package hemesh

import "github.com/pkg/errors"

// ValidateConnectivity exhaustively checks the internal invariants and
// returns a wrapped ErrInvalidConnectivity describing the first violation
// found, or nil. It is meant for tests and debugging; its cost is linear in
// the buffer sizes.
func (m *Mesh) ValidateConnectivity() error {
	fail := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInvalidConnectivity, format, args...)
	}

	capV := m.nVerticesCapacityCount
	capHe := m.nHalfedgesCapacityCount
	capF := m.nFacesCapacityCount

	if len(m.vHalfedge) != capV || len(m.heNext) != capHe ||
		len(m.heVertex) != capHe || len(m.heFace) != capHe ||
		len(m.fHalfedge) != capF {
		return fail("buffer lengths disagree with capacities")
	}
	if capHe%2 != 0 {
		return fail("halfedge capacity %d is odd", capHe)
	}

	// Reference validity: every pointer of a live element lands on a live
	// element of the right kind.
	for he := 0; he < m.nHalfedgesFillCount; he++ {
		if m.halfedgeIsDead(he) {
			if m.halfedgeIsDead(heTwin(he)) {
				continue
			}
			return fail("halfedge %d is dead but its twin is alive", he)
		}
		nx := m.heNext[he]
		if nx < 0 || nx >= m.nHalfedgesFillCount || m.halfedgeIsDead(nx) {
			return fail("halfedge %d has bad next %d", he, nx)
		}
		v := m.heVertex[he]
		if v < 0 || v >= m.nVerticesFillCount || m.vertexIsDead(v) {
			return fail("halfedge %d has bad vertex %d", he, v)
		}
		f := m.heFace[he]
		if f < 0 || f >= capF || m.faceIsDead(f) {
			return fail("halfedge %d has bad face %d", he, f)
		}
		if !m.faceIsBoundaryLoop(f) && f >= m.nFacesFillCount {
			return fail("halfedge %d points into the unused face gap at %d", he, f)
		}
	}
	for v := 0; v < m.nVerticesFillCount; v++ {
		if m.vertexIsDead(v) {
			continue
		}
		he := m.vHalfedge[v]
		if he < 0 || he >= m.nHalfedgesFillCount || m.halfedgeIsDead(he) {
			return fail("vertex %d has bad halfedge %d", v, he)
		}
		if m.heVertex[he] != v {
			return fail("vertex %d's halfedge %d has tail %d", v, he, m.heVertex[he])
		}
	}
	for f := 0; f < capF; f++ {
		if f >= m.nFacesFillCount && !m.faceIsBoundaryLoop(f) {
			if m.fHalfedge[f] != invalidInd {
				return fail("unused face slot %d is populated", f)
			}
			continue
		}
		if m.faceIsDead(f) {
			continue
		}
		he := m.fHalfedge[f]
		if he < 0 || he >= m.nHalfedgesFillCount || m.halfedgeIsDead(he) {
			return fail("face %d has bad halfedge %d", f, he)
		}
		if m.heFace[he] != f {
			return fail("face %d's halfedge %d belongs to face %d", f, he, m.heFace[he])
		}
	}

	// next is a permutation of the live halfedges: injective, and each face
	// cycle closes on halfedges of that face.
	seenNext := make(map[int]int)
	for he := 0; he < m.nHalfedgesFillCount; he++ {
		if m.halfedgeIsDead(he) {
			continue
		}
		if prev, ok := seenNext[m.heNext[he]]; ok {
			return fail("halfedges %d and %d share next %d", prev, he, m.heNext[he])
		}
		seenNext[m.heNext[he]] = he
	}

	inFace := make(map[int]int)
	nLive := 0
	for f := 0; f < capF; f++ {
		if f >= m.nFacesFillCount && !m.faceIsBoundaryLoop(f) {
			continue
		}
		if m.faceIsDead(f) {
			continue
		}
		first := m.fHalfedge[f]
		he := first
		steps := 0
		for {
			if m.heFace[he] != f {
				return fail("face %d's cycle wanders into face %d at halfedge %d", f, m.heFace[he], he)
			}
			if _, ok := inFace[he]; ok {
				return fail("halfedge %d appears in two face cycles", he)
			}
			inFace[he] = f
			steps++
			if steps > m.nHalfedgesCount {
				return fail("face %d's cycle does not close", f)
			}
			he = m.heNext[he]
			if he == first {
				break
			}
		}
		if steps < 3 && !m.faceIsBoundaryLoop(f) {
			return fail("face %d has degree %d", f, steps)
		}
		nLive++
	}
	for he := 0; he < m.nHalfedgesFillCount; he++ {
		if m.halfedgeIsDead(he) {
			continue
		}
		if _, ok := inFace[he]; !ok {
			return fail("halfedge %d is in no face cycle", he)
		}
	}

	// Orbits around each vertex: rotating by next-of-twin from the canonical
	// halfedge must visit exactly the outgoing halfedges recorded in the
	// tail array, and for boundary vertices the canonical halfedge must be
	// interior with an exterior twin.
	tails := make(map[int]int)
	for he := 0; he < m.nHalfedgesFillCount; he++ {
		if !m.halfedgeIsDead(he) {
			tails[m.heVertex[he]]++
		}
	}
	for v := 0; v < m.nVerticesFillCount; v++ {
		if m.vertexIsDead(v) {
			continue
		}
		first := m.vHalfedge[v]
		he := first
		steps := 0
		boundary := false
		for {
			if m.heVertex[he] != v {
				return fail("vertex %d's rotation reaches halfedge %d with tail %d", v, he, m.heVertex[he])
			}
			if !m.heIsInterior(he) {
				boundary = true
			}
			steps++
			if steps > m.nHalfedgesCount {
				return fail("vertex %d's rotation does not close", v)
			}
			he = m.heNext[heTwin(he)]
			if he == first {
				break
			}
		}
		if steps != tails[v] {
			return fail("vertex %d's rotation visits %d halfedges but %d have it as tail", v, steps, tails[v])
		}
		if boundary {
			if !m.heIsInterior(first) || m.heIsInterior(heTwin(first)) {
				return fail("boundary vertex %d's halfedge %d is not interior with exterior twin", v, first)
			}
		}
	}

	// Counts.
	nV, nHe, nInt, nF, nBL := 0, 0, 0, 0, 0
	for v := 0; v < m.nVerticesFillCount; v++ {
		if !m.vertexIsDead(v) {
			nV++
		}
	}
	for he := 0; he < m.nHalfedgesFillCount; he++ {
		if m.halfedgeIsDead(he) {
			continue
		}
		nHe++
		if m.heIsInterior(he) {
			nInt++
		}
	}
	for f := 0; f < m.nFacesFillCount; f++ {
		if !m.faceIsDead(f) {
			nF++
		}
	}
	for j := 0; j < m.nBoundaryLoopsFillCount; j++ {
		if !m.faceIsDead(m.boundaryLoopIndToFaceInd(j)) {
			nBL++
		}
	}
	if nV != m.nVerticesCount {
		return fail("vertex count %d but %d live", m.nVerticesCount, nV)
	}
	if nHe != m.nHalfedgesCount {
		return fail("halfedge count %d but %d live", m.nHalfedgesCount, nHe)
	}
	if nInt != m.nInteriorHalfedgesCount {
		return fail("interior halfedge count %d but %d live", m.nInteriorHalfedgesCount, nInt)
	}
	if nF != m.nFacesCount {
		return fail("face count %d but %d live", m.nFacesCount, nF)
	}
	if nBL != m.nBoundaryLoopsCount {
		return fail("boundary loop count %d but %d live", m.nBoundaryLoopsCount, nBL)
	}
	if nLive != nF+nBL {
		return fail("face cycle walk covered %d faces, counts say %d", nLive, nF+nBL)
	}
	if m.isCompressedFlag && (nV != m.nVerticesFillCount || nHe != m.nHalfedgesFillCount || nF != m.nFacesFillCount) {
		return fail("mesh marked compressed but has dead slots")
	}
	return nil
}
