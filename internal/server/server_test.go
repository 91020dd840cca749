package server

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/tomprince/bitburner-src/internal/paths"
)

func TestWriteFile(t *testing.T) {
	s := New("")
	if s.Hostname != DefaultHostname {
		t.Errorf("Hostname = %q, want %q", s.Hostname, DefaultHostname)
	}
	for _, name := range []string{"b.js", "/lib/a.ts", "notes.txt", "old.script"} {
		if _, err := s.WriteFile(name, name); err != nil {
			t.Fatalf("WriteFile(%q) error: %v", name, err)
		}
	}

	first, _ := s.Script("/b.js")
	if _, err := s.WriteFile("/b.js", "updated"); err != nil {
		t.Fatal(err)
	}
	if first.Content != "b.js" {
		t.Errorf("earlier file changed to %q", first.Content)
	}

	wantScripts := []paths.ScriptFilePath{"/b.js", "/lib/a.ts", "/old.script"}
	if diff := cmp.Diff(wantScripts, s.ScriptFiles().Keys()); diff != "" {
		t.Errorf("ScriptFiles() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]paths.TextFilePath{"/notes.txt"}, s.TextFiles().Keys()); diff != "" {
		t.Errorf("TextFiles() mismatch (-want +got):\n%s", diff)
	}
	if f, ok := s.GetContentFile("a.ts", "/lib/x.js"); !ok || f.Content != "/lib/a.ts" {
		t.Errorf("GetContentFile(a.ts, /lib/x.js) = %v, %v", f, ok)
	}
	if f, ok := s.Scripts().Get("/b.js"); !ok || f.Content != "updated" {
		t.Errorf("Scripts().Get(/b.js) = %v, %v", f, ok)
	}
}

func TestWriteFile_Invalid(t *testing.T) {
	s := New("home")
	for _, name := range []string{"../x.js", "a b.js", "image.png", "dir/"} {
		if _, err := s.WriteFile(name, ""); !errors.Is(err, paths.ErrInvalidPath) {
			t.Errorf("WriteFile(%q) error = %v, want ErrInvalidPath", name, err)
		}
	}
}

func TestRemoveFile(t *testing.T) {
	s := New("home")
	f, _ := s.WriteFile("/a.txt", "")
	if !f.DeleteFromServer(s) {
		t.Fatal("DeleteFromServer() = false")
	}
	if _, ok := s.GetContentFile("/a.txt", ""); ok {
		t.Error("file still present after removal")
	}
	if s.RemoveFile("/a.txt") {
		t.Error("second RemoveFile() = true")
	}
}

func TestGlobAndDirectories(t *testing.T) {
	s := New("home")
	for _, name := range []string{"/x/a.js", "/x/y/b.txt", "/c.ts"} {
		if _, err := s.WriteFile(name, ""); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]paths.FilePath{"/x/a.js", "/x/y/b.txt"}, s.Glob("*", "/x/").Keys()); diff != "" {
		t.Errorf("Glob() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]paths.Directory{"/", "/x/", "/x/y/"}, s.Directories().Sorted()); diff != "" {
		t.Errorf("Directories() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"main.ts":         {Data: []byte("export {}")},
		"lib/util.js":     {Data: []byte("export const x = 1")},
		"readme.md":       {Data: []byte("# skipped")},
		".git/config":     {Data: []byte("")},
		"data/conf.json":  {Data: []byte("{}")},
		"bad name.js":     {Data: []byte("")},
		"legacy/a.script": {Data: []byte("tprint(1)")},
	}
	srv, skipped, err := LoadDir(fsys, "n00dles")
	if err != nil {
		t.Fatalf("LoadDir() error: %v", err)
	}
	if srv.Hostname != "n00dles" {
		t.Errorf("Hostname = %q", srv.Hostname)
	}
	wantScripts := []paths.ScriptFilePath{"/legacy/a.script", "/lib/util.js", "/main.ts"}
	if diff := cmp.Diff(wantScripts, srv.ScriptFiles().Keys()); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bad name.js", "readme.md"}, skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry(t *testing.T) {
	home := New("home")
	r := NewRegistry(home)
	if got, ok := r.Get(""); !ok || got != home {
		t.Errorf("Get(\"\") = %v, %v, want home", got, ok)
	}
	joes := r.GetOrCreate("joesguns")
	if again := r.GetOrCreate("joesguns"); again != joes {
		t.Error("GetOrCreate returned a different server")
	}
	if diff := cmp.Diff([]string{"home", "joesguns"}, r.Hostnames()); diff != "" {
		t.Errorf("Hostnames() mismatch (-want +got):\n%s", diff)
	}
}
