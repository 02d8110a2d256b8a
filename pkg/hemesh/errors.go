package hemesh

import "github.com/pkg/errors"

// Errors
var (
	ErrBadPolygon           = errors.New("polygon has fewer than 3 vertices")
	ErrBadVertexIndex       = errors.New("bad polygon vertex index")
	ErrRepeatedOrientedEdge = errors.New("oriented edge appears twice (inconsistent winding or non-manifold edge)")
	ErrNonManifoldEdge      = errors.New("edge has more than two incident faces")
	ErrNonManifoldVertex    = errors.New("vertex has a disconnected incident-face fan")
	ErrUnreferencedVertex   = errors.New("vertex is not referenced by any polygon")
	ErrNoSharedFace         = errors.New("vertices do not share a face")
	ErrAmbiguousSharedFace  = errors.New("vertices share more than one face")
	ErrAlreadyConnected     = errors.New("vertices are already adjacent in the face")
	ErrInvalidConnectivity  = errors.New("invalid halfedge connectivity")
	ErrVectorSizeMismatch   = errors.New("vector length does not match element count")
)
