package paths

import (
	"iter"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// DirectorySet is the set of directories implied by a collection of files.
type DirectorySet map[Directory]struct{}

// Has reports whether d is in the set.
func (s DirectorySet) Has(d Directory) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the directories in lexical order.
func (s DirectorySet) Sorted() []Directory {
	return slices.Sorted(maps.Keys(s))
}

// AllDirectories derives every directory implied by files. The root is
// always present.
//
// Each file is peeled one segment at a time until an already known directory
// is reached. Every peel strictly shortens the string, so the loop terminates
// without recursion regardless of nesting depth.
func AllDirectories(files iter.Seq[FilePath]) DirectorySet {
	dirs := DirectorySet{Root: {}}
	for file := range files {
		p := string(file)
		for len(p) > 1 {
			i := strings.LastIndexByte(p[:len(p)-1], '/')
			if i == -1 {
				break
			}
			dir := Directory(p[:i+1])
			if dirs.Has(dir) {
				break
			}
			dirs[dir] = struct{}{}
			p = string(dir)
		}
	}
	return dirs
}

// ServerDirectories returns the directories implied by every content file on s.
func ServerDirectories(s ContentServer) DirectorySet {
	return AllDirectories(func(yield func(FilePath) bool) {
		for path := range AllContentFiles(s) {
			if !yield(path) {
				return
			}
		}
	})
}

// CompileGlob translates a glob pattern into an anchored regular expression.
//
// A pattern starting with "/" is matched from the root; any other pattern is
// anchored at currentDir. "*" matches any run of characters, including "/",
// and "?" matches exactly one character. Everything else is literal.
func CompileGlob(pattern string, currentDir Directory) *regexp.Regexp {
	if currentDir == "" {
		currentDir = Root
	}
	if rest, ok := strings.CutPrefix(pattern, "/"); ok {
		currentDir = Root
		pattern = rest
	}
	pattern = string(currentDir) + pattern

	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	// Every literal rune is quoted, so the expression always compiles.
	return regexp.MustCompile(b.String())
}

// GlobbedFileMap returns the content files on s whose paths match pattern.
// The returned map shares its *ContentFile values with s.
func GlobbedFileMap(pattern string, s ContentServer, currentDir Directory) *ContentFileMap {
	re := CompileGlob(pattern, currentDir)
	matches := NewContentFileMap()
	for path, file := range AllContentFiles(s) {
		if re.MatchString(string(path)) {
			matches.Set(path, file)
		}
	}
	return matches
}
