//go:build !windows || !cgo
// +build !windows !cgo

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "refreshenv-ca is a windows custom action DLL; build it with cgo and -buildmode=c-shared")
	os.Exit(1)
}
