// Package filetype classifies content files by extension.
package filetype

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the language of a content file.
type Type int

const (
	// PlainText is a .txt file.
	PlainText Type = iota
	// JSON is a .json file.
	JSON
	// JS is a plain ECMAScript module (.js).
	JS
	// JSX is JavaScript with JSX syntax (.jsx).
	JSX
	// TS is TypeScript (.ts).
	TS
	// TSX is TypeScript with JSX syntax (.tsx).
	TSX
	// Legacy is a script from the historical .script namespace.
	Legacy
)

// ErrUnsupportedExtension is returned for filenames outside the known set.
var ErrUnsupportedExtension = errors.New("unsupported extension")

// Feature describes which syntax extensions a file type needs.
type Feature struct {
	IsReact      bool
	IsTypeScript bool
}

// Of classifies filename by the text after its last ".".
func Of(filename string) (Type, error) {
	ext := filename[strings.LastIndexByte(filename, '.')+1:]
	switch ext {
	case "txt":
		return PlainText, nil
	case "json":
		return JSON, nil
	case "js":
		return JS, nil
	case "jsx":
		return JSX, nil
	case "ts":
		return TS, nil
	case "tsx":
		return TSX, nil
	case "script":
		return Legacy, nil
	}
	return 0, fmt.Errorf("%w: %q (filename %q)", ErrUnsupportedExtension, ext, filename)
}

// Feature returns the syntax features of t.
func (t Type) Feature() Feature {
	return Feature{
		IsReact:      t == JSX || t == TSX,
		IsTypeScript: t == TS || t == TSX,
	}
}

// IsScript reports whether t is executable script source.
func (t Type) IsScript() bool {
	switch t {
	case JS, JSX, TS, TSX, Legacy:
		return true
	}
	return false
}

// Transformable reports whether t must be lowered to plain JavaScript
// before it can run.
func (t Type) Transformable() bool {
	switch t {
	case JSX, TS, TSX:
		return true
	}
	return false
}

// LanguageID returns the editor language used to display t.
func (t Type) LanguageID() string {
	switch t {
	case PlainText:
		return "plaintext"
	case JSON:
		return "json"
	case TS, TSX:
		return "typescript"
	default:
		return "javascript"
	}
}

// String returns the extension-style name of t.
func (t Type) String() string {
	switch t {
	case PlainText:
		return "plaintext"
	case JSON:
		return "json"
	case JS:
		return "js"
	case JSX:
		return "jsx"
	case TS:
		return "ts"
	case TSX:
		return "tsx"
	case Legacy:
		return "legacy"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// AllTypes returns every defined Type.
func AllTypes() []Type {
	return []Type{PlainText, JSON, JS, JSX, TS, TSX, Legacy}
}
