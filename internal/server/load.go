package server

import (
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/tomprince/bitburner-src/internal/paths"
)

// LoadDir copies every content file under fsys onto a new server.
// Files whose names are not valid content paths are skipped and returned.
func LoadDir(fsys fs.FS, hostname string) (*Server, []string, error) {
	srv := New(hostname)
	var skipped []string
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name != "." && d.Name()[0] == '.' {
				return fs.SkipDir
			}
			return nil
		}
		if _, ok := paths.ResolveContentFilePath(name, ""); !ok {
			skipped = append(skipped, name)
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		_, err = srv.WriteFile(name, string(data))
		return err
	})
	if err != nil {
		return nil, skipped, fmt.Errorf("loading %s: %w", srv.Hostname, err)
	}
	return srv, skipped, nil
}

// Registry indexes servers by hostname.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*Server
}

// NewRegistry returns a registry holding servers.
func NewRegistry(servers ...*Server) *Registry {
	r := &Registry{servers: make(map[string]*Server)}
	for _, s := range servers {
		r.servers[s.Hostname] = s
	}
	return r
}

// Get returns the server named hostname. An empty hostname means home.
func (r *Registry) Get(hostname string) (*Server, bool) {
	if hostname == "" {
		hostname = DefaultHostname
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.servers[hostname]
	return s, ok
}

// GetOrCreate returns the named server, creating an empty one if needed.
func (r *Registry) GetOrCreate(hostname string) *Server {
	if hostname == "" {
		hostname = DefaultHostname
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.servers[hostname]
	if !ok {
		s = New(hostname)
		r.servers[hostname] = s
	}
	return s
}

// Hostnames returns the registered hostnames, sorted.
func (r *Registry) Hostnames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.servers))
	for name := range r.servers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
