package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// SpecifierKind says where a module specifier appeared.
type SpecifierKind int

const (
	// Import is the source of an import declaration.
	Import SpecifierKind = iota
	// Export is the source of an export ... from declaration.
	Export
	// Dynamic is the string literal argument of import().
	Dynamic
)

func (k SpecifierKind) String() string {
	switch k {
	case Import:
		return "import"
	case Export:
		return "export"
	case Dynamic:
		return "dynamic"
	}
	return "unknown"
}

// Specifier is a module specifier string literal in the source.
//
// Text is the decoded string value. Start and End delimit the whole literal,
// quotes included, as byte offsets, so replacing Source[Start:End] rewrites
// the specifier. Literals with escapes module code rejects are not reported.
type Specifier struct {
	Text     string
	Kind     SpecifierKind
	Start    int
	End      int
	StartPos Position
	EndPos   Position
}

// Static reports whether the specifier belongs to an import or export
// declaration.
func (s Specifier) Static() bool {
	return s.Kind != Dynamic
}

// Specifiers returns every module specifier in source order.
func (a *AST) Specifiers() []Specifier {
	var specs []Specifier
	walk(a.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			if s, ok := a.literal(n.ChildByFieldName("source"), Import); ok {
				specs = append(specs, s)
			}
			return false
		case "export_statement":
			if s, ok := a.literal(n.ChildByFieldName("source"), Export); ok {
				specs = append(specs, s)
				return false
			}
		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn != nil && fn.Type() == "import" {
				if args := n.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() > 0 {
					if s, ok := a.literal(args.NamedChild(0), Dynamic); ok {
						specs = append(specs, s)
					}
				}
			}
		}
		return true
	})
	return specs
}

// StaticSpecifiers returns the import and export declaration specifiers.
func (a *AST) StaticSpecifiers() []Specifier {
	var specs []Specifier
	for _, s := range a.Specifiers() {
		if s.Static() {
			specs = append(specs, s)
		}
	}
	return specs
}

// SpecifierAt returns the specifier whose literal contains the byte offset.
func (a *AST) SpecifierAt(offset int) (Specifier, bool) {
	for _, s := range a.Specifiers() {
		if offset >= s.Start && offset <= s.End {
			return s, true
		}
	}
	return Specifier{}, false
}

func (a *AST) literal(n *sitter.Node, kind SpecifierKind) (Specifier, bool) {
	if n == nil || n.Type() != "string" {
		return Specifier{}, false
	}
	raw := n.Content(a.Source)
	if len(raw) < 2 {
		return Specifier{}, false
	}
	text, ok := unquote(raw[1 : len(raw)-1])
	if !ok {
		return Specifier{}, false
	}
	return Specifier{
		Text:     text,
		Kind:     kind,
		Start:    int(n.StartByte()),
		End:      int(n.EndByte()),
		StartPos: position(n.StartPoint()),
		EndPos:   position(n.EndPoint()),
	}, true
}
