// Package transform lowers JSX and TypeScript scripts to plain ES module
// JavaScript and rewrites their import specifiers.
//
// Two engines implement the same contract. The bundle engine runs an esbuild
// build over the single file and intercepts every import through a resolve
// plugin. The transform engine runs esbuild's per-file transform and then
// splices the specifiers it finds in the output. Either way the resolver
// callback is invoked once per distinct static specifier with its original
// text, and type-only imports removed by type stripping never reach it.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/tomprince/bitburner-src/internal/script/filetype"
)

// ImportResolver maps an import specifier to the string that replaces it.
// Engines call it once per distinct specifier text; a specifier repeated in
// several declarations is resolved once and every occurrence gets the same
// replacement.
type ImportResolver func(specifier string) (string, error)

// Engine transforms one script.
type Engine interface {
	Name() string
	Transform(filename, code string, t filetype.Type, resolve ImportResolver) (string, error)
}

// Engine names accepted by New.
const (
	EngineBundle    = "bundle"
	EngineTransform = "transform"
)

var (
	// ErrNotTransformable is returned for file types that need no lowering.
	ErrNotTransformable = errors.New("file type is not transformable")
	// ErrUnknownEngine is returned by New for an unrecognized engine name.
	ErrUnknownEngine = errors.New("unknown transform engine")
	// ErrUnknownTarget is returned by New for an unrecognized target.
	ErrUnknownTarget = errors.New("unknown target")
)

// Options configures an engine.
type Options struct {
	Engine      string // bundle or transform; empty means bundle
	Target      string // es2015..es2022 or esnext; empty means es2020
	JSXFactory  string // empty means React.createElement
	JSXFragment string // empty means React.Fragment
}

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// Targets returns the accepted target names, sorted.
func Targets() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the engine described by opts.
func New(opts Options) (Engine, error) {
	cfg := engineConfig{
		factory:  opts.JSXFactory,
		fragment: opts.JSXFragment,
	}
	if cfg.factory == "" {
		cfg.factory = "React.createElement"
	}
	if cfg.fragment == "" {
		cfg.fragment = "React.Fragment"
	}
	target := strings.ToLower(opts.Target)
	if target == "" {
		target = "es2020"
	}
	var ok bool
	if cfg.target, ok = targets[target]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, opts.Target)
	}

	switch opts.Engine {
	case "", EngineBundle:
		return &bundleEngine{cfg}, nil
	case EngineTransform:
		return &transformEngine{cfg}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, opts.Engine)
}

type engineConfig struct {
	target   api.Target
	factory  string
	fragment string
}

func loaderFor(filename string, t filetype.Type) (api.Loader, error) {
	switch t {
	case filetype.JSX:
		return api.LoaderJSX, nil
	case filetype.TS:
		return api.LoaderTS, nil
	case filetype.TSX:
		return api.LoaderTSX, nil
	}
	return api.LoaderNone, fmt.Errorf("%w: %s is %s", ErrNotTransformable, filename, t)
}

// TransformError reports a failed transform. Line and Column are 1-based and
// zero when the failure has no source location.
type TransformError struct {
	Filename string
	Line     int
	Column   int
	Message  string
	Err      error
}

func (e *TransformError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Message)
}

func (e *TransformError) Unwrap() error { return e.Err }

// messageError converts the first esbuild error into a TransformError.
// cause, when set, is the resolver error that produced the message.
func messageError(filename string, msgs []api.Message, cause error) *TransformError {
	terr := &TransformError{Filename: filename, Err: cause}
	if len(msgs) == 0 {
		terr.Message = "transform failed"
		if cause != nil {
			terr.Message = cause.Error()
		}
		return terr
	}
	msg := msgs[0]
	terr.Message = msg.Text
	if cause != nil {
		terr.Message = cause.Error()
	}
	if loc := msg.Location; loc != nil {
		terr.Line = loc.Line
		terr.Column = loc.Column + 1
	}
	return terr
}
