// Package hemesh implements an array-backed halfedge mesh for manifold
// polygon meshes. Connectivity lives in five dense index arrays; halfedges
// are allocated in twin pairs so that twin(h) is h with its low bit flipped.
// Deletions leave tombstones that are reclaimed by an explicit Compress pass,
// and per-element data containers stay valid across structural changes via
// expand and permute callbacks.
package hemesh
