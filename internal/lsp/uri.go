package lsp

import (
	"net/url"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"go.lsp.dev/protocol"

	"github.com/tomprince/bitburner-src/internal/paths"
	"github.com/tomprince/bitburner-src/internal/server"
)

// ParseURI splits a file://<host>/<path> URI. An empty host means home.
func ParseURI(uri protocol.DocumentURI) (host string, path paths.FilePath, ok bool) {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return "", "", false
	}
	host = u.Host
	if host == "" {
		host = server.DefaultHostname
	}
	p, ok := paths.ResolveFilePath(u.Path, "")
	if !ok {
		return "", "", false
	}
	return host, p, true
}

// FileURI returns the document URI of path on host.
func FileURI(host string, path paths.FilePath) protocol.DocumentURI {
	u := url.URL{Scheme: "file", Host: host, Path: string(path)}
	return protocol.DocumentURI(u.String())
}

// offsetAt converts an LSP position, counted in UTF-16 code units, to a byte
// offset in content. Positions past the end of a line clamp to its end.
func offsetAt(content string, pos protocol.Position) int {
	offset := 0
	for line := uint32(0); line < pos.Line; line++ {
		i := strings.IndexByte(content[offset:], '\n')
		if i < 0 {
			return len(content)
		}
		offset += i + 1
	}
	units := uint32(0)
	for offset < len(content) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(content[offset:])
		if r == '\n' {
			break
		}
		units += uint32(utf16.RuneLen(r))
		offset += size
	}
	return offset
}

// positionAt converts a byte offset in content to an LSP position.
func positionAt(content string, offset int) protocol.Position {
	if offset > len(content) {
		offset = len(content)
	}
	var pos protocol.Position
	for _, r := range content[:offset] {
		if r == '\n' {
			pos.Line++
			pos.Character = 0
			continue
		}
		pos.Character += uint32(utf16.RuneLen(r))
	}
	return pos
}
