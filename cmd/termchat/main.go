package main

import (
	"os"
)

func main() {
	wiring := defaultCommandWiring(os.Stdin, os.Stdout, os.Stderr)
	root := newRootCommand(wiring)
	exitOnErr(root.Name(), root.Execute(), wiring.stderr)
}
