package hemesh

import "fmt"

// CallbackToken identifies one registered notification callback. Tokens are
// opaque; containers keep them only to deregister on teardown.
type CallbackToken uint64

type cbEntry[F any] struct {
	tok CallbackToken
	fn  F
}

type cbList[F any] struct {
	entries []cbEntry[F]
}

func (l *cbList[F]) add(tok CallbackToken, fn F) {
	l.entries = append(l.entries, cbEntry[F]{tok: tok, fn: fn})
}

func (l *cbList[F]) remove(tok CallbackToken) {
	for i, e := range l.entries {
		if e.tok == tok {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// cbSlot maps an element kind to its callback-list slot. Corners share the
// halfedge index space and boundary loops are never created or reordered
// after construction, so only four kinds carry lists.
func cbSlot(kind ElementKind) int {
	switch kind {
	case KindVertex:
		return 0
	case KindHalfedge, KindCorner:
		return 1
	case KindEdge:
		return 2
	case KindFace:
		return 3
	}
	panic(fmt.Sprintf("hemesh: element kind %v has no callback lists", kind))
}

// RegisterExpand subscribes fn to capacity growth of the given element kind.
// fn receives the new capacity and must leave the subscriber able to index
// up to that capacity; values of newly exposed slots are unspecified. The
// callback fires before any new slot is handed out.
func (m *Mesh) RegisterExpand(kind ElementKind, fn func(newCapacity int)) CallbackToken {
	m.nextCallbackToken++
	m.expandCBs[cbSlot(kind)].add(m.nextCallbackToken, fn)
	return m.nextCallbackToken
}

// UnregisterExpand removes a callback registered with RegisterExpand.
func (m *Mesh) UnregisterExpand(kind ElementKind, tok CallbackToken) {
	m.expandCBs[cbSlot(kind)].remove(tok)
}

// RegisterPermute subscribes fn to index permutations of the given element
// kind, as applied by Compress and Canonicalize. fn receives a permutation p
// such that newData[i] = oldData[p[i]]; len(p) is the new element count, and
// subscribers may shrink to it.
func (m *Mesh) RegisterPermute(kind ElementKind, fn func(perm []int)) CallbackToken {
	m.nextCallbackToken++
	m.permuteCBs[cbSlot(kind)].add(m.nextCallbackToken, fn)
	return m.nextCallbackToken
}

// UnregisterPermute removes a callback registered with RegisterPermute.
func (m *Mesh) UnregisterPermute(kind ElementKind, tok CallbackToken) {
	m.permuteCBs[cbSlot(kind)].remove(tok)
}

// RegisterRelease subscribes fn to Release, so containers holding a mesh
// reference can drop it instead of deregistering against a dead mesh.
func (m *Mesh) RegisterRelease(fn func()) CallbackToken {
	m.nextCallbackToken++
	m.releaseCBs.add(m.nextCallbackToken, fn)
	return m.nextCallbackToken
}

// UnregisterRelease removes a callback registered with RegisterRelease.
func (m *Mesh) UnregisterRelease(tok CallbackToken) {
	m.releaseCBs.remove(tok)
}

// Release notifies all subscribers that the mesh is going away and clears
// every callback list. Containers and dynamic handles detach themselves and
// must not be used with this mesh afterwards.
func (m *Mesh) Release() {
	for _, e := range m.releaseCBs.entries {
		e.fn()
	}
	m.releaseCBs.entries = nil
	for i := range m.expandCBs {
		m.expandCBs[i].entries = nil
	}
	for i := range m.permuteCBs {
		m.permuteCBs[i].entries = nil
	}
}

func (m *Mesh) expandNotify(kind ElementKind, newCap int) {
	for _, e := range m.expandCBs[cbSlot(kind)].entries {
		e.fn(newCap)
	}
}

func (m *Mesh) permuteNotify(kind ElementKind, perm []int) {
	for _, e := range m.permuteCBs[cbSlot(kind)].entries {
		e.fn(perm)
	}
}

// ---------------------------------------------------------------------------
// Capacities
// ---------------------------------------------------------------------------

// NVerticesCapacity returns the size of the vertex buffers. Dependent
// containers must hold at least this many slots before the next expand.
func (m *Mesh) NVerticesCapacity() int { return m.nVerticesCapacityCount }

// NHalfedgesCapacity returns the size of the halfedge buffers. Always even.
func (m *Mesh) NHalfedgesCapacity() int { return m.nHalfedgesCapacityCount }

// NEdgesCapacity returns the size of the edge index space.
func (m *Mesh) NEdgesCapacity() int { return m.nHalfedgesCapacityCount / 2 }

// NFacesCapacity returns the size of the shared face buffer, covering real
// faces and boundary loops together.
func (m *Mesh) NFacesCapacity() int { return m.nFacesCapacityCount }

// NBoundaryLoopsCapacity returns the number of boundary-loop slots in use at
// the back of the face buffer.
func (m *Mesh) NBoundaryLoopsCapacity() int { return m.nBoundaryLoopsFillCount }

func elementCapacity(m *Mesh, kind ElementKind) int {
	switch kind {
	case KindVertex:
		return m.NVerticesCapacity()
	case KindHalfedge, KindCorner:
		return m.NHalfedgesCapacity()
	case KindEdge:
		return m.NEdgesCapacity()
	case KindFace:
		return m.nFacesCapacityCount
	case KindBoundaryLoop:
		return m.NBoundaryLoopsCapacity()
	}
	return 0
}

// ---------------------------------------------------------------------------
// Slot allocation. Capacity grows geometrically (doubling), and expand
// callbacks fire before the caller sees the new slot.
// ---------------------------------------------------------------------------

func growIndexSlice(s []int, newCap int) []int {
	out := make([]int, newCap)
	copy(out, s)
	for i := len(s); i < newCap; i++ {
		out[i] = invalidInd
	}
	return out
}

// getNewVertex allocates a fresh vertex slot. The caller must wire its
// halfedge before the operation returns.
func (m *Mesh) getNewVertex() int {
	if m.nVerticesFillCount == m.nVerticesCapacityCount {
		newCap := 2 * m.nVerticesCapacityCount
		if newCap < 1 {
			newCap = 1
		}
		m.vHalfedge = growIndexSlice(m.vHalfedge, newCap)
		m.nVerticesCapacityCount = newCap
		m.expandNotify(KindVertex, newCap)
	}
	ind := m.nVerticesFillCount
	m.nVerticesFillCount++
	m.nVerticesCount++
	m.vHalfedge[ind] = invalidInd
	return ind
}

// getNewEdgePair allocates a fresh edge: two consecutive halfedge slots, the
// even one first. The caller wires next/vertex/face and accounts for the
// interior-halfedge count when it assigns faces.
func (m *Mesh) getNewEdgePair() (int, int) {
	if m.nHalfedgesFillCount == m.nHalfedgesCapacityCount {
		newCap := 2 * m.nHalfedgesCapacityCount
		if newCap < 2 {
			newCap = 2
		}
		m.heNext = growIndexSlice(m.heNext, newCap)
		m.heVertex = growIndexSlice(m.heVertex, newCap)
		m.heFace = growIndexSlice(m.heFace, newCap)
		m.nHalfedgesCapacityCount = newCap
		m.expandNotify(KindHalfedge, newCap)
		m.expandNotify(KindEdge, newCap/2)
	}
	ha := m.nHalfedgesFillCount
	m.nHalfedgesFillCount += 2
	m.nHalfedgesCount += 2
	m.heNext[ha] = invalidInd
	m.heNext[ha+1] = invalidInd
	return ha, ha + 1
}

// getNewFace allocates a fresh real face slot. Growing the face buffer moves
// the boundary-loop block to the new tail, so every exterior halfedge's face
// index is shifted along with it.
func (m *Mesh) getNewFace() int {
	if m.nFacesFillCount == m.nFacesCapacityCount-m.nBoundaryLoopsFillCount {
		oldCap := m.nFacesCapacityCount
		newCap := 2 * oldCap
		if newCap < 1 {
			newCap = 1
		}
		delta := newCap - oldCap
		loopLow := oldCap - m.nBoundaryLoopsFillCount

		buf := make([]int, newCap)
		for i := range buf {
			buf[i] = invalidInd
		}
		copy(buf, m.fHalfedge[:m.nFacesFillCount])
		copy(buf[loopLow+delta:], m.fHalfedge[loopLow:oldCap])
		m.fHalfedge = buf

		for i := 0; i < m.nHalfedgesFillCount; i++ {
			if m.heNext[i] == invalidInd {
				continue
			}
			if m.heFace[i] >= loopLow {
				m.heFace[i] += delta
			}
		}

		m.nFacesCapacityCount = newCap
		m.expandNotify(KindFace, newCap)
	}
	ind := m.nFacesFillCount
	m.nFacesFillCount++
	m.nFacesCount++
	m.fHalfedge[ind] = invalidInd
	return ind
}

// ---------------------------------------------------------------------------
// Tombstones. Deletion marks slots dead and fixes counts; memory is only
// reclaimed by Compress, and no notification fires for a delete alone.
// ---------------------------------------------------------------------------

func (m *Mesh) vertexIsDead(iV int) bool    { return m.vHalfedge[iV] == invalidInd }
func (m *Mesh) halfedgeIsDead(iHe int) bool { return m.heNext[iHe] == invalidInd }
func (m *Mesh) edgeIsDead(iE int) bool      { return m.halfedgeIsDead(eHalfedge(iE)) }
func (m *Mesh) faceIsDead(iF int) bool      { return m.fHalfedge[iF] == invalidInd }

func (m *Mesh) deleteVertex(iV int) {
	m.vHalfedge[iV] = invalidInd
	m.nVerticesCount--
	m.isCompressedFlag = false
}

// deleteEdgePair tombstones an edge and both of its halfedges.
func (m *Mesh) deleteEdgePair(iE int) {
	for _, he := range [2]int{eHalfedge(iE), eHalfedge(iE) + 1} {
		if m.heIsInterior(he) {
			m.nInteriorHalfedgesCount--
		}
		m.heNext[he] = invalidInd
		m.heVertex[he] = invalidInd
		m.heFace[he] = invalidInd
	}
	m.nHalfedgesCount -= 2
	m.isCompressedFlag = false
}

func (m *Mesh) deleteFace(iF int) {
	m.fHalfedge[iF] = invalidInd
	if m.faceIsBoundaryLoop(iF) {
		m.nBoundaryLoopsCount--
	} else {
		m.nFacesCount--
	}
	m.isCompressedFlag = false
}
