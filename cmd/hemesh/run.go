package main

import (
	"fmt"
	"os"
	"time"

	"github.com/plan-systems/klog"

	"github.com/chazu/hemesh/pkg/engine"
	"github.com/chazu/hemesh/pkg/soup"
)

// runScript evaluates a mesh script and prints the resulting face list
// as soup text on stdout.
func runScript(pathname string) {
	src, err := os.ReadFile(pathname)
	if err != nil {
		klog.Fatalf("read %s: %v", pathname, err)
	}

	eng := engine.NewEngine()
	startTime := time.Now()

	m, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		klog.Fatalf("evaluate %s: %v", pathname, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			klog.Errorf("%s: %s", pathname, e.Error())
		}
		klog.Flush()
		os.Exit(1)
	}
	if m == nil {
		klog.Warningf("%s produced no mesh", pathname)
		return
	}

	klog.Infof("evaluated %s in %v", pathname, time.Since(startTime))
	klog.Infof("mesh: %d vertices, %d edges, %d faces, %d boundary loops, euler %d",
		m.NVertices(), m.NEdges(), m.NFaces(), m.NBoundaryLoops(), m.EulerCharacteristic())

	fmt.Println(soup.Format(m.FaceVertexList()))
}
