package lsp

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/paths"
	"github.com/tomprince/bitburner-src/internal/script/filetype"
	"github.com/tomprince/bitburner-src/internal/script/module"
	"github.com/tomprince/bitburner-src/internal/script/parser"
)

// resolvedSpecifier is an import in an open document and where it leads.
type resolvedSpecifier struct {
	spec   parser.Specifier
	result module.Result
}

// specifiers parses doc and resolves every specifier in it. It returns the
// parse error, if any, instead of specifiers.
func (s *Server) specifiers(doc *Document) ([]resolvedSpecifier, error) {
	typ, err := filetype.Of(string(doc.Path))
	if err != nil || !typ.IsScript() {
		return nil, nil
	}
	ast, err := parser.Parse([]byte(doc.Content), typ)
	if err != nil {
		return nil, err
	}
	specs := ast.Specifiers()
	ast.Close()

	srv, ok := s.registry.Get(doc.Host)
	if !ok {
		return nil, nil
	}
	base := paths.ScriptFilePath(doc.Path)
	out := make([]resolvedSpecifier, len(specs))
	for i, spec := range specs {
		out[i] = resolvedSpecifier{spec: spec, result: s.resolve(spec.Text, base, srv.Scripts())}
	}
	return out, nil
}

func (s *Server) handleDefinition(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DefinitionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	doc, ok := s.document(p.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	offset := offsetAt(doc.Content, p.Position)
	resolved, err := s.specifiers(doc)
	if err != nil {
		return nil, nil
	}
	for _, r := range resolved {
		if offset < r.spec.Start || offset > r.spec.End {
			continue
		}
		s.log.Debug("definition",
			zap.String("specifier", r.spec.Text),
			zap.Stringer("target", r.result.Path),
			zap.Bool("found", r.result.OK()),
		)
		if !r.result.OK() {
			return nil, nil
		}
		return []protocol.Location{{
			URI:   FileURI(doc.Host, paths.FilePath(r.result.Path)),
			Range: protocol.Range{},
		}}, nil
	}
	return nil, nil
}

func (s *Server) handleDocumentLink(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DocumentLinkParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	doc, ok := s.document(p.TextDocument.URI)
	if !ok {
		return []protocol.DocumentLink{}, nil
	}
	resolved, err := s.specifiers(doc)
	if err != nil {
		return []protocol.DocumentLink{}, nil
	}

	links := []protocol.DocumentLink{}
	for _, r := range resolved {
		if !r.result.OK() {
			continue
		}
		links = append(links, protocol.DocumentLink{
			Range:   specifierRange(doc.Content, r.spec),
			Target:  FileURI(doc.Host, paths.FilePath(r.result.Path)),
			Tooltip: string(r.result.Path),
		})
	}
	return links, nil
}

// specifierRange covers the specifier text inside its quotes.
func specifierRange(content string, spec parser.Specifier) protocol.Range {
	return protocol.Range{
		Start: positionAt(content, spec.Start+1),
		End:   positionAt(content, spec.End-1),
	}
}
