package main

import (
	"os"

	"github.com/tomprince/bitburner-src/internal/cmd/nsfind"
)

func main() {
	os.Exit(nsfind.Run(os.Args[1:]))
}
