// Package parser parses script sources into syntax trees with tree-sitter.
//
// The grammar is chosen from the file type: plain JavaScript and legacy
// scripts use the ECMAScript grammar with JSX rejected, JSX files use the same
// grammar with JSX allowed, and TypeScript files use the typescript or tsx
// grammar. Parsing is synchronous and every call uses its own parser, so
// concurrent calls do not interfere.
package parser

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/tomprince/bitburner-src/internal/script/filetype"
)

// ErrUnsupportedFileType is returned when asked to parse a non-script file.
var ErrUnsupportedFileType = errors.New("file type cannot be parsed")

// Position is a location in source text. Line and Column are 1-based;
// Column counts bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SyntaxError reports source the grammar rejected.
type SyntaxError struct {
	Pos     Position
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Message)
}

// AST is a parsed script. Call Close when done with it.
type AST struct {
	Type   filetype.Type
	Source []byte
	tree   *sitter.Tree
}

// Root returns the program node.
func (a *AST) Root() *sitter.Node {
	return a.tree.RootNode()
}

// Close releases the underlying tree.
func (a *AST) Close() {
	if a.tree != nil {
		a.tree.Close()
		a.tree = nil
	}
}

// Parse parses code as a module of type t.
func Parse(code []byte, t filetype.Type) (*AST, error) {
	lang, allowJSX, err := grammar(t)
	if err != nil {
		return nil, err
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)

	tree, err := p.ParseCtx(context.Background(), nil, code)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", t, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		serr := syntaxErrorAt(firstError(root), code)
		tree.Close()
		return nil, serr
	}
	if !allowJSX {
		if n := findType(root, "jsx_element", "jsx_self_closing_element"); n != nil {
			tree.Close()
			return nil, &SyntaxError{
				Pos:     position(n.StartPoint()),
				Offset:  int(n.StartByte()),
				Message: fmt.Sprintf("JSX syntax is not enabled for %s files", t),
			}
		}
	}
	return &AST{Type: t, Source: code, tree: tree}, nil
}

func grammar(t filetype.Type) (*sitter.Language, bool, error) {
	switch t {
	case filetype.JS, filetype.Legacy:
		return javascript.GetLanguage(), false, nil
	case filetype.JSX:
		return javascript.GetLanguage(), true, nil
	case filetype.TS:
		return typescript.GetLanguage(), false, nil
	case filetype.TSX:
		return tsx.GetLanguage(), true, nil
	}
	return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedFileType, t)
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	if found == nil {
		return root
	}
	return found
}

func syntaxErrorAt(n *sitter.Node, code []byte) *SyntaxError {
	msg := "unexpected input"
	switch {
	case n.IsMissing():
		msg = fmt.Sprintf("missing %s", n.Type())
	case n.EndByte() > n.StartByte():
		text := n.Content(code)
		if len(text) > 32 {
			text = text[:32] + "..."
		}
		msg = fmt.Sprintf("unexpected %q", text)
	}
	return &SyntaxError{
		Pos:     position(n.StartPoint()),
		Offset:  int(n.StartByte()),
		Message: msg,
	}
}

func findType(root *sitter.Node, types ...string) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		for _, typ := range types {
			if n.Type() == typ {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// walk visits nodes depth-first; fn returns false to skip a node's children.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}

func position(p sitter.Point) Position {
	return Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}
