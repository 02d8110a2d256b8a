package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/hemesh/pkg/hemesh"
	"github.com/chazu/hemesh/pkg/soup"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms DSL source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: split-edge -> split_edge
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpMesh wraps a mesh so it can be passed between builtins.
type sexpMesh struct {
	m *hemesh.Mesh
}

func (s *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %dv %de %df)", s.m.NVertices(), s.m.NEdges(), s.m.NFaces())
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpVertex wraps a vertex handle so it can be returned from `vertex`
// and consumed by `connect` and friends.
type sexpVertex struct {
	v hemesh.Vertex
}

func (s *sexpVertex) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vertex %d)", s.v.Index())
}
func (s *sexpVertex) Type() *zygo.RegisteredType { return nil }

// sexpEdge wraps an edge handle.
type sexpEdge struct {
	e hemesh.Edge
}

func (s *sexpEdge) SexpString(ps *zygo.PrintState) string {
	he := s.e.Halfedge()
	return fmt.Sprintf("(edge %d %d)", he.Vertex().Index(), he.TipVertex().Index())
}
func (s *sexpEdge) Type() *zygo.RegisteredType { return nil }

// sexpFace wraps a face handle.
type sexpFace struct {
	f hemesh.Face
}

func (s *sexpFace) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(face %d)", s.f.Index())
}
func (s *sexpFace) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_vertices) and plain strings ("vertices").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVertex extracts a vertex handle from a sexpVertex.
func toVertex(s zygo.Sexp) (hemesh.Vertex, error) {
	if v, ok := s.(*sexpVertex); ok {
		return v.v, nil
	}
	return hemesh.Vertex{}, fmt.Errorf("expected vertex, got %T (%s)", s, s.SexpString(nil))
}

// toEdge extracts an edge handle from a sexpEdge.
func toEdge(s zygo.Sexp) (hemesh.Edge, error) {
	if e, ok := s.(*sexpEdge); ok {
		return e.e, nil
	}
	return hemesh.Edge{}, fmt.Errorf("expected edge, got %T (%s)", s, s.SexpString(nil))
}

// toFace extracts a face handle from a sexpFace.
func toFace(s zygo.Sexp) (hemesh.Face, error) {
	if f, ok := s.(*sexpFace); ok {
		return f.f, nil
	}
	return hemesh.Face{}, fmt.Errorf("expected face, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Element lookup
// ---------------------------------------------------------------------------

func vertexByInd(m *hemesh.Mesh, i int) (hemesh.Vertex, error) {
	for v := range m.Vertices() {
		if v.Index() == i {
			return v, nil
		}
	}
	return hemesh.Vertex{}, fmt.Errorf("no vertex %d", i)
}

func faceByInd(m *hemesh.Mesh, i int) (hemesh.Face, error) {
	for f := range m.Faces() {
		if f.Index() == i {
			return f, nil
		}
	}
	return hemesh.Face{}, fmt.Errorf("no face %d", i)
}

func edgeBetween(m *hemesh.Mesh, a, b int) (hemesh.Edge, error) {
	for e := range m.Edges() {
		he := e.Halfedge()
		ta, tb := he.Vertex().Index(), he.TipVertex().Index()
		if (ta == a && tb == b) || (ta == b && tb == a) {
			return e, nil
		}
	}
	return hemesh.Edge{}, fmt.Errorf("no edge between %d and %d", a, b)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// session holds the mesh a script is building. Builtins close over it,
// so one sandbox sees exactly one session.
type session struct {
	mesh *hemesh.Mesh
}

func (s *session) current() (*hemesh.Mesh, error) {
	if s.mesh == nil {
		return nil, fmt.Errorf("no mesh yet, call (mesh ...) first")
	}
	return s.mesh, nil
}

// registerBuiltins installs all mesh DSL builtins into a zygomys environment.
// The builtins operate on the provided session, populating its mesh during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sess *session) {

	// -----------------------------------------------------------------------
	// (mesh "0 1 2 ; 0 2 3")
	// (mesh (list (list 0 1 2) (list 0 2 3)) :canonicalize true)
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires a face list or soup string")
		}

		var polygons [][]int
		switch src := pa.positional[0].(type) {
		case *zygo.SexpStr:
			polys, err := soup.Parse(src.S)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
			}
			polygons = polys
		default:
			faces, err := sexpListToSlice(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
			}
			for i, face := range faces {
				verts, err := sexpListToSlice(face)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("mesh: face %d: %w", i, err)
				}
				poly := make([]int, len(verts))
				for j, v := range verts {
					n, err := toInt(v)
					if err != nil {
						return zygo.SexpNull, fmt.Errorf("mesh: face %d: %w", i, err)
					}
					poly[j] = n
				}
				polygons = append(polygons, poly)
			}
		}

		m, err := hemesh.NewFromPolygons(polygons)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}

		if v, ok := pa.kw["canonicalize"]; ok {
			c, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: canonicalize: %w", err)
			}
			if c {
				m.Canonicalize()
			}
		}

		sess.mesh = m
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (vertex 3), (edge 0 2), (face 0)
	// -----------------------------------------------------------------------
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("vertex requires an index argument")
		}
		i, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex: %w", err)
		}
		v, err := vertexByInd(m, i)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex: %w", err)
		}
		return &sexpVertex{v: v}, nil
	})

	env.AddFunction("edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("edge requires two vertex indices")
		}
		a, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: %w", err)
		}
		b, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: %w", err)
		}
		e, err := edgeBetween(m, a, b)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: %w", err)
		}
		return &sexpEdge{e: e}, nil
	})

	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("face requires an index argument")
		}
		i, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: %w", err)
		}
		f, err := faceByInd(m, i)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: %w", err)
		}
		return &sexpFace{f: f}, nil
	})

	// -----------------------------------------------------------------------
	// (flip (edge 0 2))
	// -----------------------------------------------------------------------
	env.AddFunction("flip", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("flip requires an edge argument")
		}
		e, err := toEdge(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("flip: %w", err)
		}
		return &zygo.SexpBool{Val: m.Flip(e)}, nil
	})

	// -----------------------------------------------------------------------
	// (split-edge (edge 0 2))
	//
	// Note: registered as "split_edge" because zygomys does not support
	// hyphens in identifiers. The preprocessor converts split-edge to
	// split_edge in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("split_edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("split-edge requires an edge argument")
		}
		e, err := toEdge(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("split-edge: %w", err)
		}
		return &sexpVertex{v: m.SplitEdge(e)}, nil
	})

	// -----------------------------------------------------------------------
	// (collapse-edge (edge 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("collapse_edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("collapse-edge requires an edge argument")
		}
		e, err := toEdge(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("collapse-edge: %w", err)
		}
		v := m.CollapseEdge(e)
		if v.IsNull() {
			return zygo.SexpNull, nil
		}
		return &sexpVertex{v: v}, nil
	})

	// -----------------------------------------------------------------------
	// (insert-vertex (face 0))
	// -----------------------------------------------------------------------
	env.AddFunction("insert_vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("insert-vertex requires a face argument")
		}
		f, err := toFace(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-vertex: %w", err)
		}
		return &sexpVertex{v: m.InsertVertex(f)}, nil
	})

	// -----------------------------------------------------------------------
	// (connect (vertex 0) (vertex 2))
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("connect requires two vertex arguments")
		}
		vA, err := toVertex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: %w", err)
		}
		vB, err := toVertex(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: %w", err)
		}
		he, err := m.ConnectVertices(vA, vB)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: %w", err)
		}
		return &sexpEdge{e: he.Edge()}, nil
	})

	// -----------------------------------------------------------------------
	// (triangulate) or (triangulate (face 0))
	// -----------------------------------------------------------------------
	env.AddFunction("triangulate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) > 0 {
			f, err := toFace(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("triangulate: %w", err)
			}
			m.Triangulate(f)
			return &zygo.SexpInt{Val: int64(m.NFaces())}, nil
		}
		// Snapshot first: triangulating adds faces while we walk.
		var faces []hemesh.Face
		for f := range m.Faces() {
			faces = append(faces, f)
		}
		for _, f := range faces {
			m.Triangulate(f)
		}
		return &zygo.SexpInt{Val: int64(m.NFaces())}, nil
	})

	// -----------------------------------------------------------------------
	// (remove-face (face 0))
	// -----------------------------------------------------------------------
	env.AddFunction("remove_face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("remove-face requires a face argument")
		}
		f, err := toFace(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-face: %w", err)
		}
		return &zygo.SexpBool{Val: m.RemoveFaceAlongBoundary(f)}, nil
	})

	// -----------------------------------------------------------------------
	// (compress), (canonicalize), (validate)
	// -----------------------------------------------------------------------
	env.AddFunction("compress", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		m.Compress()
		return &sexpMesh{m: m}, nil
	})

	env.AddFunction("canonicalize", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		m.Canonicalize()
		return &sexpMesh{m: m}, nil
	})

	env.AddFunction("validate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := m.ValidateConnectivity(); err != nil {
			return zygo.SexpNull, fmt.Errorf("validate: %w", err)
		}
		return &zygo.SexpBool{Val: true}, nil
	})

	// -----------------------------------------------------------------------
	// (count :vertices), (count :edges), (count :boundary-loops), ...
	// -----------------------------------------------------------------------
	env.AddFunction("count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("count requires an element kind keyword")
		}
		kind, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("count: %w", err)
		}

		var n int
		switch kind {
		case "vertices":
			n = m.NVertices()
		case "halfedges":
			n = m.NHalfedges()
		case "interior-halfedges":
			n = m.NInteriorHalfedges()
		case "corners":
			n = m.NCorners()
		case "edges":
			n = m.NEdges()
		case "faces":
			n = m.NFaces()
		case "boundary-loops":
			n = m.NBoundaryLoops()
		default:
			return zygo.SexpNull, fmt.Errorf("count: unknown element kind %q", kind)
		}
		return &zygo.SexpInt{Val: int64(n)}, nil
	})

	// -----------------------------------------------------------------------
	// (euler), (genus), (soup)
	// -----------------------------------------------------------------------
	env.AddFunction("euler", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpInt{Val: int64(m.EulerCharacteristic())}, nil
	})

	env.AddFunction("genus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpInt{Val: int64(m.Genus())}, nil
	})

	env.AddFunction("soup", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := sess.current()
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: soup.Format(m.FaceVertexList())}, nil
	})
}
