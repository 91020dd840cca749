package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomprince/bitburner-src/internal/paths"
	"github.com/tomprince/bitburner-src/internal/script/module"
	"github.com/tomprince/bitburner-src/internal/script/transform"
	"github.com/tomprince/bitburner-src/internal/server"
)

func newServer(t *testing.T, files map[string]string) *server.Server {
	t.Helper()
	srv := server.New("home")
	for name, content := range files {
		if _, err := srv.WriteFile(name, content); err != nil {
			t.Fatalf("WriteFile(%q): %v", name, err)
		}
	}
	return srv
}

func newLoader(t *testing.T, srv *server.Server, engine string) *Loader {
	t.Helper()
	e, err := transform.New(transform.Options{Engine: engine})
	if err != nil {
		t.Fatal(err)
	}
	l, err := New(srv.Scripts(), Options{Engine: e, CacheSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func modulePaths(mods []*Module) []paths.ScriptFilePath {
	var out []paths.ScriptFilePath
	for _, m := range mods {
		out = append(out, m.Path)
	}
	return out
}

func TestCompile_Graph(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/main.ts": `import { greet } from "./lib/greet";
import { View } from "./ui/view";
export async function main(ns: NS): Promise<void> {
  ns.tprint(greet("hi"), View);
}
`,
		"/lib/greet.js": `import { upper } from "../util";
export const greet = (s) => upper(s);
`,
		"/util.js":     `export const upper = (s) => s.toUpperCase();`,
		"/ui/view.tsx": `import { upper } from "/util.js"; export const View = <b>{upper("x")}</b>;`,
	})

	for _, engine := range []string{transform.EngineBundle, transform.EngineTransform} {
		t.Run(engine, func(t *testing.T) {
			mods, err := newLoader(t, srv, engine).Compile("/main.ts")
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			want := []paths.ScriptFilePath{"/util.js", "/lib/greet.js", "/ui/view.tsx", "/main.ts"}
			if diff := cmp.Diff(want, modulePaths(mods)); diff != "" {
				t.Fatalf("module order mismatch (-want +got):\n%s", diff)
			}

			main := mods[3]
			for _, url := range []string{`"./lib/greet.js.mjs"`, `"./ui/view.tsx.mjs"`} {
				if !strings.Contains(main.Code, url) {
					t.Errorf("main output missing %s:\n%s", url, main.Code)
				}
			}
			if strings.Contains(main.Code, ": NS") {
				t.Errorf("main output still has type annotations:\n%s", main.Code)
			}
			if got := mods[1].Code; !strings.Contains(got, `from "../util.js.mjs"`) {
				t.Errorf("greet output = %s", got)
			}
			if diff := cmp.Diff(map[string]paths.ScriptFilePath{"/util.js": "/util.js"}, mods[2].Imports); diff != "" {
				t.Errorf("view imports mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_Cycle(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/a.js": `import "./b"; export const a = 1;`,
		"/b.js": `import { c } from "./c"; export const b = c;`,
		"/c.js": `import { a } from "./a"; export const c = a;`,
	})
	_, err := newLoader(t, srv, transform.EngineTransform).Compile("/a.js")
	if !errors.Is(err, ErrImportCycle) {
		t.Fatalf("Compile() error = %v, want ErrImportCycle", err)
	}
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("Compile() error = %T, want *CycleError in chain", err)
	}
	want := []paths.ScriptFilePath{"/a.js", "/b.js", "/c.js", "/a.js"}
	if diff := cmp.Diff(want, cerr.Cycle); diff != "" {
		t.Errorf("Cycle mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_MissingImport(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/main.tsx": `import { x } from "./nowhere"; export default x;`,
	})
	for _, engine := range []string{transform.EngineBundle, transform.EngineTransform} {
		_, err := newLoader(t, srv, engine).Compile("/main.tsx")
		var rerr *module.ResolutionError
		if !errors.As(err, &rerr) {
			t.Fatalf("%s: Compile() error = %v, want *module.ResolutionError", engine, err)
		}
		if rerr.Specifier != "./nowhere" || len(rerr.Tried) != 4 {
			t.Errorf("%s: ResolutionError = %+v", engine, rerr)
		}
	}
}

func TestCompile_MissingEntry(t *testing.T) {
	l := newLoader(t, newServer(t, nil), transform.EngineBundle)
	if _, err := l.Compile("/nope.js"); !errors.Is(err, module.ErrModuleNotFound) {
		t.Errorf("Compile() error = %v, want ErrModuleNotFound", err)
	}
}

func TestCompile_Legacy(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/old.script": `import { f } from "lib"; f();`,
		"/lib.script": `export function f() {}`,
		"/lib.js":     `export function f() {}`,
	})
	mods, err := newLoader(t, srv, transform.EngineBundle).Compile("/old.script")
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if diff := cmp.Diff([]paths.ScriptFilePath{"/lib.script", "/old.script"}, modulePaths(mods)); diff != "" {
		t.Errorf("module order mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(mods[1].Code, `"./lib.script.mjs"`) {
		t.Errorf("legacy output = %s", mods[1].Code)
	}
}

func TestCompile_Cache(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/a.js": `import { b } from "./b"; export default b;`,
		"/b.js": `export const b = 1;`,
	})
	l := newLoader(t, srv, transform.EngineTransform)

	first, err := l.Compile("/a.js")
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Compile("/a.js")
	if err != nil {
		t.Fatal(err)
	}
	if first[1] != second[1] {
		t.Error("unchanged module was recompiled")
	}

	// Editing a dependency rebuilds it but not its importer.
	if _, err := srv.WriteFile("/b.js", `export const b = 2;`); err != nil {
		t.Fatal(err)
	}
	third, err := l.Compile("/a.js")
	if err != nil {
		t.Fatal(err)
	}
	if third[0] == first[0] {
		t.Error("edited module served from cache")
	}
	if third[1] != first[1] {
		t.Error("importer recompiled although its source and targets are unchanged")
	}

	l.Purge()
	fourth, err := l.Compile("/a.js")
	if err != nil {
		t.Fatal(err)
	}
	if fourth[1] == third[1] {
		t.Error("Purge() kept cached modules")
	}
}

func TestCompile_SharedDependency(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/x.js":    `import "./lib"; import "./y";`,
		"/y.js":    `import "./lib";`,
		"/lib.js":  `export {};`,
		"/z.js":    `import "./lib";`,
		"/data.js": `const j = import("./dynamic");`,
	})
	mods, err := newLoader(t, srv, transform.EngineTransform).Compile("/x.js", "/z.js", "/data.js")
	if err != nil {
		t.Fatal(err)
	}
	want := []paths.ScriptFilePath{"/lib.js", "/y.js", "/x.js", "/z.js", "/data.js"}
	if diff := cmp.Diff(want, modulePaths(mods)); diff != "" {
		t.Errorf("module order mismatch (-want +got):\n%s", diff)
	}
}

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		from, to paths.ScriptFilePath
		want     string
	}{
		{"/main.js", "/lib.ts", "./lib.ts.mjs"},
		{"/main.js", "/a/b/c.js", "./a/b/c.js.mjs"},
		{"/a/b/c.js", "/main.js", "../../main.js.mjs"},
		{"/a/b/c.js", "/a/d/e.js", "../d/e.js.mjs"},
		{"/a/x.js", "/a/y.js", "./y.js.mjs"},
	}
	for _, tt := range tests {
		if got := RelativeURL(tt.from, tt.to); got != tt.want {
			t.Errorf("RelativeURL(%s, %s) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
	if got := OutputPath("/lib/util.ts"); got != "lib/util.ts.mjs" {
		t.Errorf("OutputPath() = %q", got)
	}
}

func TestNew_RequiresEngine(t *testing.T) {
	if _, err := New(newServer(t, nil).Scripts(), Options{}); err == nil {
		t.Error("New() without an engine succeeded")
	}
}
