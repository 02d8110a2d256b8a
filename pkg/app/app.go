// Package app is the embedding facade. It exposes script evaluation as
// JSON-serializable values so UI bindings and services can call it
// without touching mesh handles directly.
package app

import (
	"log"

	"github.com/chazu/hemesh/pkg/engine"
	"github.com/chazu/hemesh/pkg/soup"
)

// App bundles an evaluation engine behind binding-friendly methods.
type App struct {
	engine *engine.Engine
}

// MeshStats is the JSON-serializable summary of an evaluated mesh.
type MeshStats struct {
	Vertices      int  `json:"vertices"`
	Edges         int  `json:"edges"`
	Faces         int  `json:"faces"`
	BoundaryLoops int  `json:"boundaryLoops"`
	Euler         int  `json:"euler"`
	Genus         int  `json:"genus"`
	Triangular    bool `json:"triangular"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Soup   string          `json:"soup"`
	Stats  *MeshStats      `json:"stats"`
	Errors []EvalErrorData `json:"errors"`
}

// New creates a new App with a fresh engine.
func New() *App {
	return &App{
		engine: engine.NewEngine(),
	}
}

// Evaluate takes Lisp source and returns the resulting mesh as soup
// text plus summary statistics. This is the primary binding called by
// an editor frontend.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Errors: []EvalErrorData{},
	}

	m, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: err.Error(),
		})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// A script that never builds a mesh is a valid empty program.
	if m == nil {
		return result
	}

	result.Soup = soup.Format(m.FaceVertexList())
	result.Stats = &MeshStats{
		Vertices:      m.NVertices(),
		Edges:         m.NEdges(),
		Faces:         m.NFaces(),
		BoundaryLoops: m.NBoundaryLoops(),
		Euler:         m.EulerCharacteristic(),
		Genus:         m.Genus(),
		Triangular:    m.IsTriangular(),
	}
	return result
}
