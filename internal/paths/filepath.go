// Package paths models the virtual, in-memory file namespace that scripts live in.
//
// There is no real filesystem behind these paths. A FilePath is a canonical
// absolute string such as "/lib/util.ts"; a Directory is a prefix ending in
// "/" that exists only because some file lives beneath it.
package paths

import (
	"errors"
	"strings"
	"unicode"
)

// FilePath is a canonical absolute path to a file.
//
// It always begins with "/", uses "/" as the separator, contains no "." or ".."
// segments and has a non-empty final segment.
type FilePath string

// Directory is a canonical absolute path prefix ending in "/".
type Directory string

// Root is the top of the namespace.
const Root Directory = "/"

// ErrInvalidPath is returned by operations that need a valid path and were
// handed one that escapes the root or contains a malformed segment.
var ErrInvalidPath = errors.New("invalid path")

// invalidSegmentChars may not appear in any path segment. The glob language
// uses '*' and '?', so allowing them in names would make patterns ambiguous.
const invalidSegmentChars = `*?[]!\~|#"'`

// ResolveFilePath resolves path against base into a canonical FilePath.
//
// Absolute paths (leading "/") ignore base. Relative paths are resolved
// against base's directory: a base ending in "/" is itself the directory,
// otherwise its final segment is dropped. An empty base means the root.
// "." segments are ignored and ".." removes one segment. The second result is
// false when ".." would climb past the root, when a segment is malformed, or
// when the result has no final file segment.
func ResolveFilePath(path, base string) (FilePath, bool) {
	last := path[strings.LastIndexByte(path, '/')+1:]
	if last == "" || last == "." || last == ".." {
		return "", false
	}
	segments, ok := resolveSegments(path, base)
	if !ok || len(segments) == 0 {
		return "", false
	}
	return FilePath("/" + strings.Join(segments, "/")), true
}

// ResolveDirectory resolves path against base into a canonical Directory.
// It follows the same rules as ResolveFilePath, but the result may be the root.
func ResolveDirectory(path, base string) (Directory, bool) {
	segments, ok := resolveSegments(path, base)
	if !ok {
		return "", false
	}
	if len(segments) == 0 {
		return Root, true
	}
	return Directory("/" + strings.Join(segments, "/") + "/"), true
}

// Dir returns the directory containing p.
func (p FilePath) Dir() Directory {
	return Directory(p[:strings.LastIndexByte(string(p), '/')+1])
}

// Base returns the final segment of p.
func (p FilePath) Base() string {
	return string(p[strings.LastIndexByte(string(p), '/')+1:])
}

// String implements fmt.Stringer.
func (p FilePath) String() string { return string(p) }

// String implements fmt.Stringer.
func (d Directory) String() string { return string(d) }

// resolveSegments returns the canonical segments of path relative to base.
func resolveSegments(path, base string) ([]string, bool) {
	var segments []string
	if !strings.HasPrefix(path, "/") {
		dir := base[:strings.LastIndexByte(base, '/')+1]
		var ok bool
		if segments, ok = appendSegments(nil, dir); !ok {
			return nil, false
		}
	}
	return appendSegments(segments, path)
}

func appendSegments(segments []string, path string) ([]string, bool) {
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) == 0 {
				return nil, false
			}
			segments = segments[:len(segments)-1]
		default:
			if !validSegment(seg) {
				return nil, false
			}
			segments = append(segments, seg)
		}
	}
	return segments, true
}

func validSegment(seg string) bool {
	if strings.ContainsAny(seg, invalidSegmentChars) {
		return false
	}
	return strings.IndexFunc(seg, unicode.IsSpace) == -1
}
