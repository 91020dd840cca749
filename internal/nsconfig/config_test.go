package nsconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			check: func(t *testing.T, cfg *Config) {
				if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
					t.Errorf("config mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "transform section",
			content: `
[transform]
engine = "transform"
target = "es2022"
jsx_factory = "h"
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Transform.Engine != "transform" || cfg.Transform.Target != "es2022" {
					t.Errorf("transform = %+v", cfg.Transform)
				}
				if cfg.Transform.JSXFactory != "h" {
					t.Errorf("jsx_factory = %q, want h", cfg.Transform.JSXFactory)
				}
				if cfg.Transform.JSXFragment != "React.Fragment" {
					t.Errorf("jsx_fragment = %q, want default", cfg.Transform.JSXFragment)
				}
			},
		},
		{
			name: "build and log",
			content: `
[build]
out_dir = "out"
cache_size = 16
hostname = "n00dles"

[log]
level = "debug"
format = "json"
`,
			check: func(t *testing.T, cfg *Config) {
				want := BuildConfig{OutDir: "out", CacheSize: 16, Hostname: "n00dles"}
				if cfg.Build != want {
					t.Errorf("build = %+v, want %+v", cfg.Build, want)
				}
				if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
					t.Errorf("log = %+v", cfg.Log)
				}
			},
		},
		{name: "unknown key", content: "[build]\nout = \"x\"\n", wantErr: true},
		{name: "malformed", content: "[transform\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig("test.toml", tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Transform.Engine = "babel"
	cfg.Transform.Target = "es3"
	cfg.Build.CacheSize = 0
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate() error = %v, want ErrInvalid", err)
	}
	for _, want := range []string{"transform.engine", "transform.target", "cache_size", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}

func TestDiscoverConfig(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvEngine, "")
	t.Setenv(EnvTarget, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvHostname, "")

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "scripts", "lib")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := DiscoverConfig(sub)
	if err != nil {
		t.Fatalf("DiscoverConfig() error: %v", err)
	}
	if path != "" || cfg.Build.OutDir != "dist" {
		t.Errorf("DiscoverConfig() with no file = %q, %+v", path, cfg.Build)
	}

	want := filepath.Join(root, ConfigFile)
	if err := os.WriteFile(want, []byte("[build]\nout_dir = \"bin\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, path, err = DiscoverConfig(sub)
	if err != nil {
		t.Fatalf("DiscoverConfig() error: %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.Build.OutDir != "bin" {
		t.Errorf("out_dir = %q, want bin", cfg.Build.OutDir)
	}

	t.Setenv(EnvEngine, "transform")
	cfg, _, err = DiscoverConfig(sub)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transform.Engine != "transform" {
		t.Errorf("engine = %q, want env override", cfg.Transform.Engine)
	}
}

func TestDiscoverConfig_EnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvLogLevel, "")

	cfg, got, err := DiscoverConfig(t.TempDir())
	if err != nil {
		t.Fatalf("DiscoverConfig() error: %v", err)
	}
	if got != path || cfg.Log.Level != "warn" {
		t.Errorf("DiscoverConfig() = %q, %+v", got, cfg.Log)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("LoadDotEnv() without a file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NSSCRIPT_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NSSCRIPT_TEST_DOTENV", "")
	os.Unsetenv("NSSCRIPT_TEST_DOTENV")
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv("NSSCRIPT_TEST_DOTENV"); got != "loaded" {
		t.Errorf("NSSCRIPT_TEST_DOTENV = %q, want loaded", got)
	}
}
