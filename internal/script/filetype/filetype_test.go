package filetype

import (
	"errors"
	"testing"
)

func TestOf(t *testing.T) {
	tests := []struct {
		filename string
		want     Type
	}{
		{"notes.txt", PlainText},
		{"data.json", JSON},
		{"/a/b/main.js", JS},
		{"view.jsx", JSX},
		{"lib.ts", TS},
		{"main.tsx", TSX},
		{"old.script", Legacy},
		{"archive.tar.ts", TS},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := Of(tt.filename)
			if err != nil {
				t.Fatalf("Of(%q) error: %v", tt.filename, err)
			}
			if got != tt.want {
				t.Errorf("Of(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestOf_Unsupported(t *testing.T) {
	for _, name := range []string{"x.unknown", "noext", "x.JS", "x."} {
		t.Run(name, func(t *testing.T) {
			_, err := Of(name)
			if !errors.Is(err, ErrUnsupportedExtension) {
				t.Errorf("Of(%q) error = %v, want ErrUnsupportedExtension", name, err)
			}
		})
	}
}

func TestType_Feature(t *testing.T) {
	tests := []struct {
		typ  Type
		want Feature
	}{
		{PlainText, Feature{}},
		{JSON, Feature{}},
		{JS, Feature{}},
		{JSX, Feature{IsReact: true}},
		{TS, Feature{IsTypeScript: true}},
		{TSX, Feature{IsReact: true, IsTypeScript: true}},
		{Legacy, Feature{}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := tt.typ.Feature(); got != tt.want {
				t.Errorf("%v.Feature() = %+v, want %+v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestType_Predicates(t *testing.T) {
	tests := []struct {
		typ           Type
		script        bool
		transformable bool
		language      string
	}{
		{PlainText, false, false, "plaintext"},
		{JSON, false, false, "json"},
		{JS, true, false, "javascript"},
		{JSX, true, true, "javascript"},
		{TS, true, true, "typescript"},
		{TSX, true, true, "typescript"},
		{Legacy, true, false, "javascript"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := tt.typ.IsScript(); got != tt.script {
				t.Errorf("IsScript() = %v, want %v", got, tt.script)
			}
			if got := tt.typ.Transformable(); got != tt.transformable {
				t.Errorf("Transformable() = %v, want %v", got, tt.transformable)
			}
			if got := tt.typ.LanguageID(); got != tt.language {
				t.Errorf("LanguageID() = %q, want %q", got, tt.language)
			}
		})
	}
}

func TestAllTypes(t *testing.T) {
	if got := len(AllTypes()); got != 7 {
		t.Errorf("len(AllTypes()) = %d, want 7", got)
	}
	if got := Type(42).String(); got != "Type(42)" {
		t.Errorf("Type(42).String() = %q", got)
	}
}
