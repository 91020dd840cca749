package loader

import (
	"strings"

	"github.com/tomprince/bitburner-src/internal/paths"
)

// OutputExtension is appended to a script path to name its compiled output.
const OutputExtension = ".mjs"

// OutputPath returns the slash-separated output file for p, relative to the
// output directory. The source extension is kept so that /a.js and /a.ts
// cannot collide.
func OutputPath(p paths.ScriptFilePath) string {
	return strings.TrimPrefix(string(p), "/") + OutputExtension
}

// RelativeURL returns the relative URL from the output of from to the output
// of to. It always begins with "./" or "../".
func RelativeURL(from, to paths.ScriptFilePath) string {
	fromDir := strings.Split(string(paths.FilePath(from).Dir()), "/")
	toDir := strings.Split(string(paths.FilePath(to).Dir()), "/")
	// Both end with an empty element after the trailing "/".
	fromDir = fromDir[1 : len(fromDir)-1]
	toDir = toDir[1 : len(toDir)-1]

	common := 0
	for common < len(fromDir) && common < len(toDir) && fromDir[common] == toDir[common] {
		common++
	}

	var b strings.Builder
	if common == len(fromDir) {
		b.WriteString("./")
	}
	for range len(fromDir) - common {
		b.WriteString("../")
	}
	for _, seg := range toDir[common:] {
		b.WriteString(seg)
		b.WriteByte('/')
	}
	b.WriteString(paths.FilePath(to).Base())
	b.WriteString(OutputExtension)
	return b.String()
}
