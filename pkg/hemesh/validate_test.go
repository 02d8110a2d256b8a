package hemesh

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestValidateDetectsCorruption(t *testing.T) {
	corruptions := []struct {
		name string
		mung func(m *Mesh)
		hint string
	}{
		{"bad next", func(m *Mesh) { m.heNext[0] = 99 }, "bad next"},
		{"bad tail", func(m *Mesh) { m.heVertex[0] = -3 }, "bad vertex"},
		{"bad face", func(m *Mesh) { m.heFace[0] = 42 }, "bad face"},
		{"vertex tail mismatch", func(m *Mesh) { m.vHalfedge[0] = m.vHalfedge[1] }, "tail"},
		{"shared next", func(m *Mesh) { m.heNext[2] = m.heNext[0] }, "share next"},
		{"wrong count", func(m *Mesh) { m.nVerticesCount++ }, "vertex count"},
		{"wrong interior count", func(m *Mesh) { m.nInteriorHalfedgesCount-- }, "interior"},
		{"false compressed flag", func(m *Mesh) {
			m.CollapseEdge(findEdge(m, 0, 1))
			m.isCompressedFlag = true
		}, "compressed"},
	}
	for _, tc := range corruptions {
		t.Run(tc.name, func(t *testing.T) {
			m := mustMesh(t, tetrahedronSoup())
			tc.mung(m)
			err := m.ValidateConnectivity()
			if err == nil {
				t.Fatal("corruption not detected")
			}
			if !stderrors.Is(err, ErrInvalidConnectivity) {
				t.Fatalf("error %v does not wrap ErrInvalidConnectivity", err)
			}
			if !strings.Contains(err.Error(), tc.hint) {
				t.Errorf("error %q does not mention %q", err, tc.hint)
			}
		})
	}
}

func TestValidateAcceptsEveryFixture(t *testing.T) {
	for _, polys := range [][][]int{
		quadSoup(), splitQuadSoup(), pentagonSoup(), stripSoup(), tetrahedronSoup(),
		{{0, 1, 2}, {3, 4, 5}},
	} {
		m := mustMesh(t, polys) // mustMesh validates internally
		m.Canonicalize()
		if err := m.ValidateConnectivity(); err != nil {
			t.Errorf("canonical form of %v: %v", polys, err)
		}
	}
}
