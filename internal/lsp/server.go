package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/paths"
	"github.com/tomprince/bitburner-src/internal/script/module"
	"github.com/tomprince/bitburner-src/internal/server"
	"github.com/tomprince/bitburner-src/internal/version"
)

// ResolveFunc resolves an import specifier for navigation.
type ResolveFunc func(specifier string, base paths.ScriptFilePath, scripts module.ScriptLookup) module.Result

// Options holds the server's collaborators.
type Options struct {
	// Registry holds the hosts documents are written to. A fresh registry
	// is created when nil.
	Registry *server.Registry
	// Resolve defaults to module.Lookup.
	Resolve ResolveFunc
	Logger  *zap.Logger
	// OnExit is called when the client sends exit.
	OnExit func()
	// OnTrace, if set, receives a log level for each $/setTrace.
	OnTrace func(level string) error
}

// Server handles LSP requests.
type Server struct {
	conn     *Conn
	registry *server.Registry
	resolve  ResolveFunc
	log      *zap.Logger
	onExit   func()
	onTrace  func(string) error

	mu          sync.RWMutex
	initialized bool
	shutdown    bool
	documents   map[protocol.DocumentURI]*Document
}

// Document is an open text document.
type Document struct {
	URI     protocol.DocumentURI
	Host    string
	Path    paths.FilePath
	Version int32
	Content string
}

// NewServer returns a server over opts.
func NewServer(opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = server.NewRegistry()
	}
	if opts.Resolve == nil {
		opts.Resolve = module.Lookup
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		registry:  opts.Registry,
		resolve:   opts.Resolve,
		log:       opts.Logger,
		onExit:    opts.OnExit,
		onTrace:   opts.OnTrace,
		documents: make(map[protocol.DocumentURI]*Document),
	}
}

// SetConn sets the connection used for notifications.
func (s *Server) SetConn(conn *Conn) {
	s.conn = conn
}

// Handle routes a request to its method.
func (s *Server) Handle(ctx context.Context, req *Request) (any, error) {
	s.mu.RLock()
	shutdown := s.shutdown
	initialized := s.initialized
	s.mu.RUnlock()

	if shutdown && req.Method != "exit" {
		return nil, &ResponseError{Code: CodeInvalidRequest, Message: "server is shutting down"}
	}
	if !initialized {
		switch req.Method {
		case "initialize", "initialized", "shutdown", "exit":
		default:
			return nil, &ResponseError{Code: CodeInvalidRequest, Message: "server not initialized"}
		}
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(ctx, req.Params)
	case "initialized":
		return s.handleInitialized(ctx)
	case "shutdown":
		return s.handleShutdown(ctx)
	case "exit":
		return s.handleExit(ctx)

	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, req.Params)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, req.Params)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, req.Params)
	case "textDocument/didSave":
		return nil, nil

	case "textDocument/definition":
		return s.handleDefinition(ctx, req.Params)
	case "textDocument/documentLink":
		return s.handleDocumentLink(ctx, req.Params)

	case "$/setTrace":
		return s.handleSetTrace(ctx, req.Params)
	case "$/cancelRequest":
		return nil, nil
	}
	s.log.Debug("unhandled method", zap.String("method", req.Method))
	return nil, ErrMethodNotFound
}

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &ResponseError{Code: CodeInvalidParams, Message: fmt.Sprintf("parsing initialize params: %v", err)}
	}
	s.log.Info("initialize", zap.String("client", clientName(p.ClientInfo)))

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			DefinitionProvider:   true,
			DocumentLinkProvider: &protocol.DocumentLinkOptions{},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "nsls",
			Version: version.Version,
		},
	}, nil
}

func clientName(info *protocol.ClientInfo) string {
	if info == nil {
		return ""
	}
	return info.Name
}

func (s *Server) handleInitialized(ctx context.Context) (any, error) {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil, nil
}

func (s *Server) handleShutdown(ctx context.Context) (any, error) {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	s.log.Info("shutdown")
	return nil, nil
}

func (s *Server) handleExit(ctx context.Context) (any, error) {
	if s.onExit != nil {
		s.onExit()
	}
	return nil, nil
}

// traceLevels maps LSP trace values to log levels.
var traceLevels = map[string]string{
	"off":      "warn",
	"messages": "info",
	"verbose":  "debug",
}

func (s *Server) handleSetTrace(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	level, ok := traceLevels[p.Value]
	if !ok {
		return nil, &ResponseError{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown trace value %q", p.Value)}
	}
	if s.onTrace == nil {
		return nil, nil
	}
	return nil, s.onTrace(level)
}

func (s *Server) handleDidOpen(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	doc, err := s.store(p.TextDocument.URI, p.TextDocument.Version, p.TextDocument.Text)
	if err != nil {
		return nil, err
	}
	s.log.Debug("didOpen", zap.String("uri", string(doc.URI)))
	s.publishDiagnostics(ctx, doc)
	return nil, nil
}

func (s *Server) handleDidChange(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	if len(p.ContentChanges) == 0 {
		return nil, nil
	}
	// Full sync: the last change holds the whole text.
	text := p.ContentChanges[len(p.ContentChanges)-1].Text
	doc, err := s.store(p.TextDocument.URI, p.TextDocument.Version, text)
	if err != nil {
		return nil, err
	}
	s.publishDiagnostics(ctx, doc)
	return nil, nil
}

func (s *Server) handleDidClose(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	// The file stays on its server; only the editor state goes away.
	s.mu.Lock()
	delete(s.documents, p.TextDocument.URI)
	s.mu.Unlock()

	s.notify(ctx, "textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         p.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil, nil
}

// store records a document and writes it to its host.
func (s *Server) store(uri protocol.DocumentURI, version int32, text string) (*Document, error) {
	host, path, ok := ParseURI(uri)
	if !ok {
		return nil, &ResponseError{Code: CodeInvalidParams, Message: fmt.Sprintf("unsupported document URI %q", uri)}
	}
	if _, err := s.registry.GetOrCreate(host).WriteFile(string(path), text); err != nil {
		return nil, &ResponseError{Code: CodeInvalidParams, Message: err.Error()}
	}

	doc := &Document{URI: uri, Host: host, Path: path, Version: version, Content: text}
	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()
	return doc, nil
}

func (s *Server) document(uri protocol.DocumentURI) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[uri]
	return doc, ok
}

func (s *Server) notify(ctx context.Context, method string, params any) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Notify(ctx, method, params); err != nil {
		s.log.Warn("notify failed", zap.String("method", method), zap.Error(err))
	}
}
