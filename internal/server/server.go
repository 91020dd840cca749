// Package server holds the content files of in-game servers.
package server

import (
	"fmt"
	"sync"

	"github.com/tomprince/bitburner-src/internal/paths"
)

// DefaultHostname is the player's own server.
const DefaultHostname = "home"

// Server owns a host's scripts and text files. Both collections keep
// insertion order. Mutations take the write lock; callers that read
// ScriptFiles or TextFiles across several calls should hold RLock.
type Server struct {
	Hostname string

	mu        sync.RWMutex
	scripts   *paths.FileMap[paths.ScriptFilePath]
	textFiles *paths.FileMap[paths.TextFilePath]
}

// New returns an empty server.
func New(hostname string) *Server {
	if hostname == "" {
		hostname = DefaultHostname
	}
	return &Server{
		Hostname:  hostname,
		scripts:   paths.NewFileMap[paths.ScriptFilePath](),
		textFiles: paths.NewFileMap[paths.TextFilePath](),
	}
}

// RLock acquires the read lock.
func (s *Server) RLock() { s.mu.RLock() }

// RUnlock releases the read lock.
func (s *Server) RUnlock() { s.mu.RUnlock() }

// ScriptFiles returns the script collection.
func (s *Server) ScriptFiles() *paths.FileMap[paths.ScriptFilePath] { return s.scripts }

// TextFiles returns the text file collection.
func (s *Server) TextFiles() *paths.FileMap[paths.TextFilePath] { return s.textFiles }

// Script returns the script at p. It takes the read lock.
func (s *Server) Script(p paths.ScriptFilePath) (*paths.ContentFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scripts.Get(p)
}

// WriteFile creates or overwrites a content file. path is resolved against
// the root. An overwritten file keeps its position in the collection but is
// stored as a new *ContentFile, so files handed out earlier stay unchanged
// and can be read without the lock.
func (s *Server) WriteFile(path, content string) (*paths.ContentFile, error) {
	p, ok := paths.ResolveContentFilePath(path, "")
	if !ok {
		return nil, fmt.Errorf("write %q: %w", path, paths.ErrInvalidPath)
	}

	f := &paths.ContentFile{Filename: p, Content: content}
	s.mu.Lock()
	defer s.mu.Unlock()
	if paths.HasScriptExtension(string(p)) {
		s.scripts.Set(paths.ScriptFilePath(p), f)
	} else {
		s.textFiles.Set(paths.TextFilePath(p), f)
	}
	return f, nil
}

// RemoveFile deletes the file at p and reports whether it existed.
// It implements paths.FileRemover.
func (s *Server) RemoveFile(p paths.FilePath) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paths.HasScriptExtension(string(p)) {
		return s.scripts.Delete(paths.ScriptFilePath(p))
	}
	return s.textFiles.Delete(paths.TextFilePath(p))
}

// GetContentFile resolves path against base and returns the file there.
func (s *Server) GetContentFile(path, base string) (*paths.ContentFile, bool) {
	p, ok := paths.ResolveContentFilePath(path, base)
	if !ok {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if paths.HasScriptExtension(string(p)) {
		return s.scripts.Get(paths.ScriptFilePath(p))
	}
	return s.textFiles.Get(paths.TextFilePath(p))
}

// Glob returns the files matching pattern relative to dir.
func (s *Server) Glob(pattern string, dir paths.Directory) *paths.ContentFileMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paths.GlobbedFileMap(pattern, s, dir)
}

// Directories returns every directory implied by the server's files.
func (s *Server) Directories() paths.DirectorySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paths.ServerDirectories(s)
}

// ScriptView looks up scripts taking the read lock on every call. It
// satisfies module.ScriptLookup.
type ScriptView struct{ s *Server }

// Get returns the script at p.
func (v ScriptView) Get(p paths.ScriptFilePath) (*paths.ContentFile, bool) {
	return v.s.Script(p)
}

// Scripts returns a locking view of the script collection.
func (s *Server) Scripts() ScriptView {
	return ScriptView{s}
}
