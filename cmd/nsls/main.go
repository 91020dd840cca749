package main

import (
	"os"

	"github.com/tomprince/bitburner-src/internal/cmd/nsls"
)

func main() {
	os.Exit(nsls.Run(os.Args[1:]))
}
