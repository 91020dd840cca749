package nsresolve

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"lib/util.ts", "lib/util.js", "lib/helpers.script", "main.js"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := RunWithIO(context.Background(), []string{"-version"}, nil, &stdout, &stderr)

	if code != 0 {
		t.Errorf("RunWithIO(-version) returned %d, want 0", code)
	}
	if stdout.Len() == 0 {
		t.Error("RunWithIO(-version) produced no output")
	}
}

func TestRun_MissingArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := RunWithIO(context.Background(), []string{"root", "/main.js"}, nil, &stdout, &stderr)

	if code != 1 {
		t.Errorf("RunWithIO() returned %d, want 1", code)
	}
}

func TestRun_InvalidBase(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := RunWithIO(context.Background(), []string{t.TempDir(), "/notes.txt", "./a"}, nil, &stdout, &stderr)

	if code != 1 {
		t.Errorf("RunWithIO() returned %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "not a script path") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_Text(t *testing.T) {
	root := writeTree(t)

	tests := []struct {
		name string
		base string
		spec string
		want string
		code int
	}{
		{"first extension wins", "/main.js", "./lib/util", "./lib/util -> /lib/util.js\n", 0},
		{"explicit extension", "/main.js", "lib/util.ts", "lib/util.ts -> /lib/util.ts\n", 0},
		{"absolute", "/lib/x.tsx", "/main", "/main -> /main.js\n", 0},
		{"legacy base", "/old.script", "lib/helpers", "lib/helpers -> /lib/helpers.script\n", 0},
		{
			"legacy base ignores modern scripts", "/old.script", "main",
			"main: cannot resolve \"main\" from /old.script (tried /main.script)\n", 2,
		},
		{
			"escapes root", "/main.js", "../x",
			"../x: cannot resolve \"../x\" from /main.js: invalid path\n", 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := RunWithIO(context.Background(), []string{root, tt.base, tt.spec}, nil, &stdout, &stderr)
			if code != tt.code {
				t.Errorf("RunWithIO() returned %d, want %d; stderr: %s", code, tt.code, stderr.String())
			}
			if got := stdout.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_JSON(t *testing.T) {
	root := writeTree(t)

	var stdout, stderr bytes.Buffer
	code := RunWithIO(context.Background(), []string{"-json", root, "/main.js", "./lib/util", "./nope"}, nil, &stdout, &stderr)
	if code != 2 {
		t.Errorf("RunWithIO() returned %d, want 2", code)
	}

	var got []jsonResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	want := []jsonResult{
		{
			Specifier: "./lib/util",
			Base:      "/main.js",
			Resolved:  "/lib/util.js",
			Tried:     []string{"/lib/util.js"},
		},
		{
			Specifier: "./nope",
			Base:      "/main.js",
			Tried:     []string{"/nope.js", "/nope.jsx", "/nope.ts", "/nope.tsx"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}
