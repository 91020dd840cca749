package main

import (
	"os"

	"github.com/tomprince/bitburner-src/internal/cmd/nsresolve"
)

func main() {
	os.Exit(nsresolve.Run(os.Args[1:]))
}
