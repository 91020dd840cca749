// Package loader compiles a script and everything it imports into runnable
// ES modules.
//
// Each script is lowered by the configured transform engine (or has its
// specifiers spliced when it is already JavaScript). Every import is resolved
// with the module package, compiled first, and replaced by the URL of its
// compiled output.
package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/paths"
	"github.com/tomprince/bitburner-src/internal/script/filetype"
	"github.com/tomprince/bitburner-src/internal/script/module"
	"github.com/tomprince/bitburner-src/internal/script/transform"
)

// ErrImportCycle matches every *CycleError.
var ErrImportCycle = errors.New("import cycle")

// CycleError reports a circular chain of imports. Cycle starts and ends with
// the same script.
type CycleError struct {
	Cycle []paths.ScriptFilePath
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, p := range e.Cycle {
		parts[i] = string(p)
	}
	return "import cycle: " + strings.Join(parts, " -> ")
}

func (e *CycleError) Is(target error) bool { return target == ErrImportCycle }

// URLFunc returns the URL a module at from uses to import the module at to.
type URLFunc func(from, to paths.ScriptFilePath) string

// Module is a compiled script.
type Module struct {
	Path paths.ScriptFilePath
	Type filetype.Type
	Code string
	// Imports maps each static specifier to the script it resolved to.
	Imports map[string]paths.ScriptFilePath
	// Deps lists resolved scripts in first-import order.
	Deps []paths.ScriptFilePath
	Hash string
}

// Options configures a Loader.
type Options struct {
	Engine    transform.Engine
	URL       URLFunc // defaults to RelativeURL
	CacheSize int     // defaults to 256
	Logger    *zap.Logger
}

// Loader compiles scripts read from a lookup. It is not safe for concurrent
// use.
type Loader struct {
	scripts module.ScriptLookup
	engine  transform.Engine
	url     URLFunc
	cache   *lru.Cache[paths.ScriptFilePath, *Module]
	log     *zap.Logger
}

// New returns a loader over scripts.
func New(scripts module.ScriptLookup, opts Options) (*Loader, error) {
	if opts.Engine == nil {
		return nil, errors.New("loader: no transform engine")
	}
	if opts.URL == nil {
		opts.URL = RelativeURL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cache, err := lru.New[paths.ScriptFilePath, *Module](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating module cache: %w", err)
	}
	return &Loader{
		scripts: scripts,
		engine:  opts.Engine,
		url:     opts.URL,
		cache:   cache,
		log:     opts.Logger,
	}, nil
}

// Purge drops every cached module.
func (l *Loader) Purge() { l.cache.Purge() }

// Compile compiles entries and their imports. Modules are returned in
// dependency order, each exactly once.
func (l *Loader) Compile(entries ...paths.ScriptFilePath) ([]*Module, error) {
	st := &compileState{
		status:  make(map[paths.ScriptFilePath]visitState),
		modules: make(map[paths.ScriptFilePath]*Module),
	}
	for _, entry := range entries {
		if _, err := l.compile(entry, st); err != nil {
			return nil, err
		}
	}
	return st.order, nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

type compileState struct {
	status  map[paths.ScriptFilePath]visitState
	modules map[paths.ScriptFilePath]*Module
	stack   []paths.ScriptFilePath
	order   []*Module
}

func (st *compileState) cycle(p paths.ScriptFilePath) *CycleError {
	i := len(st.stack) - 1
	for i > 0 && st.stack[i] != p {
		i--
	}
	cycle := append([]paths.ScriptFilePath(nil), st.stack[i:]...)
	return &CycleError{Cycle: append(cycle, p)}
}

func (l *Loader) compile(p paths.ScriptFilePath, st *compileState) (*Module, error) {
	switch st.status[p] {
	case visiting:
		return nil, st.cycle(p)
	case done:
		return st.modules[p], nil
	}

	file, ok := l.scripts.Get(p)
	if !ok {
		return nil, fmt.Errorf("loading %s: %w", p, module.ErrModuleNotFound)
	}
	typ, err := filetype.Of(string(p))
	if err != nil {
		return nil, err
	}

	st.status[p] = visiting
	st.stack = append(st.stack, p)

	hash := contentHash(file.Content)
	m, err := l.fromCache(p, hash, st)
	if m == nil && err == nil {
		m, err = l.build(p, typ, file.Content, hash, st)
	}
	if err != nil {
		return nil, err
	}

	st.stack = st.stack[:len(st.stack)-1]
	st.status[p] = done
	st.modules[p] = m
	st.order = append(st.order, m)
	return m, nil
}

// fromCache returns the cached module for p if its source is unchanged and
// every import still resolves to the same script. The imports are compiled
// so they appear in the output and cycles are still detected.
func (l *Loader) fromCache(p paths.ScriptFilePath, hash string, st *compileState) (*Module, error) {
	m, ok := l.cache.Get(p)
	if !ok || m.Hash != hash {
		return nil, nil
	}
	for spec, want := range m.Imports {
		if res := module.Lookup(spec, p, l.scripts); res.Path != want {
			l.log.Debug("import target changed", zap.Stringer("path", p), zap.String("specifier", spec))
			return nil, nil
		}
	}
	for _, dep := range m.Deps {
		if _, err := l.compile(dep, st); err != nil {
			return nil, err
		}
	}
	l.log.Debug("module cache hit", zap.Stringer("path", p))
	return m, nil
}

func (l *Loader) build(p paths.ScriptFilePath, typ filetype.Type, src, hash string, st *compileState) (*Module, error) {
	m := &Module{Path: p, Type: typ, Hash: hash, Imports: make(map[string]paths.ScriptFilePath)}
	resolve := func(spec string) (string, error) {
		res := module.Lookup(spec, p, l.scripts)
		if !res.OK() {
			return "", &module.ResolutionError{Specifier: spec, Base: p, Tried: res.Tried}
		}
		if _, err := l.compile(res.Path, st); err != nil {
			return "", err
		}
		if _, seen := m.Imports[spec]; !seen {
			m.Imports[spec] = res.Path
			m.Deps = appendUnique(m.Deps, res.Path)
		}
		return l.url(p, res.Path), nil
	}

	var err error
	switch {
	case typ.Transformable():
		m.Code, err = l.engine.Transform(string(p), src, typ, resolve)
	case typ == filetype.JS || typ == filetype.Legacy:
		m.Code, err = transform.RewriteSpecifiers(src, typ, resolve)
	default:
		err = fmt.Errorf("%s is not a script", p)
	}
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", p, err)
	}

	l.cache.Add(p, m)
	l.log.Debug("compiled module",
		zap.Stringer("path", p),
		zap.Stringer("type", typ),
		zap.String("engine", l.engine.Name()),
		zap.Int("imports", len(m.Deps)),
	)
	return m, nil
}

func appendUnique(list []paths.ScriptFilePath, p paths.ScriptFilePath) []paths.ScriptFilePath {
	for _, q := range list {
		if q == p {
			return list
		}
	}
	return append(list, p)
}

func contentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
