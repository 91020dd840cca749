// Package module resolves import specifiers to scripts on a server.
//
// The rules are shared by every caller that follows imports, so the runtime
// loader and the editor always agree on where a specifier points.
package module

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomprince/bitburner-src/internal/paths"
)

// ErrModuleNotFound matches every *ResolutionError.
var ErrModuleNotFound = errors.New("module not found")

// ScriptLookup finds scripts by path.
type ScriptLookup interface {
	Get(path paths.ScriptFilePath) (*paths.ContentFile, bool)
}

// Candidates returns the paths a specifier imported from base may refer to,
// in priority order.
//
// A legacy base only sees legacy scripts. A specifier that already carries a
// script extension names exactly one path. Anything else is tried with each
// modern extension in turn. Candidates that do not resolve are dropped.
func Candidates(specifier string, base paths.ScriptFilePath) []paths.ScriptFilePath {
	if paths.IsLegacyScript(string(base)) {
		if p, ok := paths.ResolveScriptFilePath(specifier, string(base), paths.LegacyScriptExtension); ok {
			return []paths.ScriptFilePath{p}
		}
		return nil
	}
	if paths.HasScriptExtension(specifier) {
		if p, ok := paths.ResolveScriptFilePath(specifier, string(base), ""); ok {
			return []paths.ScriptFilePath{p}
		}
		return nil
	}
	var out []paths.ScriptFilePath
	for _, ext := range paths.ScriptExtensions {
		if p, ok := paths.ResolveScriptFilePath(specifier, string(base), ext); ok {
			out = append(out, p)
		}
	}
	return out
}

// Result is the outcome of a lookup. File is nil when nothing matched.
type Result struct {
	Specifier string
	Base      paths.ScriptFilePath
	Path      paths.ScriptFilePath
	File      *paths.ContentFile
	Tried     []paths.ScriptFilePath
}

// OK reports whether a script was found.
func (r Result) OK() bool { return r.File != nil }

// Lookup tries every candidate in order and records what it tried.
func Lookup(specifier string, base paths.ScriptFilePath, scripts ScriptLookup) Result {
	res := Result{Specifier: specifier, Base: base}
	for _, p := range Candidates(specifier, base) {
		res.Tried = append(res.Tried, p)
		if f, ok := scripts.Get(p); ok {
			res.Path = p
			res.File = f
			return res
		}
	}
	return res
}

// Resolve returns the script specifier refers to from base.
func Resolve(specifier string, base paths.ScriptFilePath, scripts ScriptLookup) (*paths.ContentFile, error) {
	res := Lookup(specifier, base, scripts)
	if !res.OK() {
		return nil, &ResolutionError{Specifier: specifier, Base: base, Tried: res.Tried}
	}
	return res.File, nil
}

// ResolutionError reports a specifier that matched no script.
type ResolutionError struct {
	Specifier string
	Base      paths.ScriptFilePath
	Tried     []paths.ScriptFilePath
}

func (e *ResolutionError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("cannot resolve %q from %s: invalid path", e.Specifier, e.Base)
	}
	tried := make([]string, len(e.Tried))
	for i, p := range e.Tried {
		tried[i] = string(p)
	}
	return fmt.Sprintf("cannot resolve %q from %s (tried %s)", e.Specifier, e.Base, strings.Join(tried, ", "))
}

// Is reports whether target is ErrModuleNotFound.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrModuleNotFound
}
