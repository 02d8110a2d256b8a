// Package soup reads and writes the compact polygon-soup text form used by
// scripts and tests: faces are runs of vertex indices separated by
// semicolons, so "0 1 2 ; 0 2 3" is a quad split into two triangles.
package soup

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/chazu/hemesh/pkg/hemesh"
)

// SoupExpr is the parse tree of a polygon-soup string.
type SoupExpr struct {
	Faces []*FacePoly `(@@ (";" @@)*)?`
}

// FacePoly is one face: a run of vertex indices.
type FacePoly struct {
	Verts []int `@Int+`
}

var parseSoupExpr = participle.MustBuild[SoupExpr]()

// Parse reads a polygon-soup string into a polygon list. Vertex indices are
// 0-based; validity beyond being non-negative integers is left to mesh
// construction.
func Parse(src string) ([][]int, error) {
	expr, err := parseSoupExpr.ParseString("", src)
	if err != nil {
		return nil, errors.Wrap(err, "soup: parse")
	}
	polys := make([][]int, 0, len(expr.Faces))
	for _, f := range expr.Faces {
		polys = append(polys, f.Verts)
	}
	return polys, nil
}

// Format writes a polygon list back to soup text. Parse(Format(p)) returns p.
func Format(polys [][]int) string {
	var sb strings.Builder
	for fi, poly := range polys {
		if fi > 0 {
			sb.WriteString(" ; ")
		}
		for si, v := range poly {
			if si > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(v))
		}
	}
	return sb.String()
}

// Build parses src and constructs the mesh in one step.
func Build(src string) (*hemesh.Mesh, error) {
	polys, err := Parse(src)
	if err != nil {
		return nil, err
	}
	m, err := hemesh.NewFromPolygons(polys)
	if err != nil {
		return nil, errors.Wrap(err, "soup: build")
	}
	return m, nil
}
