// Command txflow deploys a contract and sends state-changing calls to it.
package main

import (
	"os"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := newRootCmd(a).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
