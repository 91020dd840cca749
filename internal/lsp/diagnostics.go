package lsp

import (
	"context"
	"errors"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/script/module"
	"github.com/tomprince/bitburner-src/internal/script/parser"
)

const diagnosticSource = "nsls"

// Diagnostics reports syntax errors and unresolved static imports in the
// open document at uri.
func (s *Server) Diagnostics(uri protocol.DocumentURI) []protocol.Diagnostic {
	doc, ok := s.document(uri)
	if !ok {
		return nil
	}
	return s.diagnose(doc)
}

func (s *Server) diagnose(doc *Document) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	resolved, err := s.specifiers(doc)
	if err != nil {
		var serr *parser.SyntaxError
		if errors.As(err, &serr) {
			pos := positionAt(doc.Content, serr.Offset)
			diags = append(diags, protocol.Diagnostic{
				Range:    protocol.Range{Start: pos, End: pos},
				Severity: protocol.DiagnosticSeverityError,
				Source:   diagnosticSource,
				Message:  serr.Message,
			})
		}
		return diags
	}

	for _, r := range resolved {
		if r.result.OK() || !r.spec.Static() {
			continue
		}
		rerr := &module.ResolutionError{Specifier: r.spec.Text, Base: r.result.Base, Tried: r.result.Tried}
		diags = append(diags, protocol.Diagnostic{
			Range:    specifierRange(doc.Content, r.spec),
			Severity: protocol.DiagnosticSeverityError,
			Source:   diagnosticSource,
			Message:  rerr.Error(),
		})
	}
	return diags
}

func (s *Server) publishDiagnostics(ctx context.Context, doc *Document) {
	if s.conn == nil {
		return
	}
	diags := s.diagnose(doc)
	s.notify(ctx, "textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     uint32(doc.Version),
		Diagnostics: diags,
	})
	s.log.Debug("published diagnostics", zap.String("uri", string(doc.URI)), zap.Int("count", len(diags)))
}
