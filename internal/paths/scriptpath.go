package paths

import "strings"

// ScriptFilePath is a FilePath with a script extension.
type ScriptFilePath FilePath

// TextFilePath is a FilePath with a text extension.
type TextFilePath FilePath

// LegacyScriptExtension marks scripts from the historical single-extension
// namespace. Legacy scripts can only import other legacy scripts.
const LegacyScriptExtension = ".script"

// ScriptExtensions lists the modern script extensions in module resolution
// priority order.
var ScriptExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

// AllScriptExtensions is ScriptExtensions plus the legacy extension.
var AllScriptExtensions = []string{".js", ".jsx", ".ts", ".tsx", LegacyScriptExtension}

// TextExtensions lists the extensions of non-script content files.
var TextExtensions = []string{".txt", ".json"}

// HasScriptExtension reports whether path ends with any script extension.
// Only the suffix is checked.
func HasScriptExtension(path string) bool {
	return hasAnySuffix(path, AllScriptExtensions)
}

// HasTextExtension reports whether path ends with a text extension.
func HasTextExtension(path string) bool {
	return hasAnySuffix(path, TextExtensions)
}

// IsLegacyScript reports whether path ends with the legacy extension.
func IsLegacyScript(path string) bool {
	return strings.HasSuffix(path, LegacyScriptExtension)
}

// ResolveScriptFilePath resolves a player-supplied path to a script.
//
// If extensionToAdd is non-empty and path does not already end with it, it is
// appended before resolving; this is how import specifiers gain their
// implicit extension. The result is rejected unless it has a script extension.
func ResolveScriptFilePath(path, base, extensionToAdd string) (ScriptFilePath, bool) {
	if extensionToAdd != "" && !strings.HasSuffix(path, extensionToAdd) {
		path += extensionToAdd
	}
	resolved, ok := ResolveFilePath(path, base)
	if !ok || !HasScriptExtension(string(resolved)) {
		return "", false
	}
	return ScriptFilePath(resolved), true
}

// ResolveTextFilePath resolves path and accepts only text extensions.
func ResolveTextFilePath(path, base string) (TextFilePath, bool) {
	resolved, ok := ResolveFilePath(path, base)
	if !ok || !HasTextExtension(string(resolved)) {
		return "", false
	}
	return TextFilePath(resolved), true
}

// ResolveContentFilePath resolves path and accepts script or text extensions.
func ResolveContentFilePath(path, base string) (FilePath, bool) {
	resolved, ok := ResolveFilePath(path, base)
	if !ok {
		return "", false
	}
	if !HasScriptExtension(string(resolved)) && !HasTextExtension(string(resolved)) {
		return "", false
	}
	return resolved, true
}

// String implements fmt.Stringer.
func (p ScriptFilePath) String() string { return string(p) }

// String implements fmt.Stringer.
func (p TextFilePath) String() string { return string(p) }

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
