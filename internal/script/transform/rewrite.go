package transform

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tomprince/bitburner-src/internal/script/filetype"
	"github.com/tomprince/bitburner-src/internal/script/parser"
)

// rewriter memoizes an ImportResolver so each specifier is resolved once.
// esbuild may call plugins from several goroutines.
type rewriter struct {
	resolve ImportResolver

	mu   sync.Mutex
	seen map[string]string
	err  error
}

func newRewriter(resolve ImportResolver) *rewriter {
	return &rewriter{resolve: resolve, seen: make(map[string]string)}
}

func (r *rewriter) rewrite(specifier string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	if out, ok := r.seen[specifier]; ok {
		return out, nil
	}
	out, err := r.resolve(specifier)
	if err != nil {
		r.err = err
		return "", err
	}
	r.seen[specifier] = out
	return out, nil
}

func (r *rewriter) firstError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// RewriteSpecifiers replaces every static import and export specifier in code
// with the result of resolve. Dynamic imports are left alone. resolve is
// called once per distinct specifier; its first error aborts the rewrite.
func RewriteSpecifiers(code string, t filetype.Type, resolve ImportResolver) (string, error) {
	ast, err := parser.Parse([]byte(code), t)
	if err != nil {
		return "", err
	}
	specs := ast.StaticSpecifiers()
	ast.Close()
	if len(specs) == 0 {
		return code, nil
	}

	r := newRewriter(resolve)
	replacements := make([]string, len(specs))
	for i, s := range specs {
		out, err := r.rewrite(s.Text)
		if err != nil {
			return "", fmt.Errorf("resolving %q: %w", s.Text, err)
		}
		replacements[i] = strconv.Quote(out)
	}

	var b strings.Builder
	b.Grow(len(code))
	last := 0
	for i, s := range specs {
		b.WriteString(code[last:s.Start])
		b.WriteString(replacements[i])
		last = s.End
	}
	b.WriteString(code[last:])
	return b.String(), nil
}
