package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plan-systems/klog"
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	pathname := flag.Arg(0)
	if pathname == "" {
		fmt.Fprintln(os.Stderr, "usage: hemesh <script.lisp>")
		os.Exit(2)
	}

	runScript(pathname)

	klog.Flush()
}
