package main

import (
	"os"

	"github.com/tomprince/bitburner-src/internal/cmd/nsbuild"
)

func main() {
	os.Exit(nsbuild.Run(os.Args[1:]))
}
