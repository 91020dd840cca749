package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomprince/bitburner-src/internal/nsconfig"
)

func TestExitCodes(t *testing.T) {
	if ExitOK != 0 {
		t.Errorf("ExitOK = %d, want 0", ExitOK)
	}
	if ExitError != 1 {
		t.Errorf("ExitError = %d, want 1", ExitError)
	}
	if ExitWarning != 2 {
		t.Errorf("ExitWarning = %d, want 2", ExitWarning)
	}
}

func TestWriteln(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{name: "no args", args: nil, want: "\n"},
		{name: "single arg", args: []any{"hello"}, want: "hello\n"},
		{name: "multiple args", args: []any{"hello", "world", 42}, want: "hello world 42\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			Writeln(&buf, tc.args...)
			if got := buf.String(); got != tc.want {
				t.Errorf("Writeln() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	Writef(&buf, "compiled %d modules", 3)
	Write(&buf, "!")
	if got := buf.String(); got != "compiled 3 modules!" {
		t.Errorf("output = %q", got)
	}
}

func TestSetup(t *testing.T) {
	t.Setenv(nsconfig.EnvConfig, "")
	t.Setenv(nsconfig.EnvEngine, "")
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, nsconfig.ConfigFile), []byte("[build]\nout_dir = \"out\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	env, err := Setup(dir, true, &stderr)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if env.Config.Build.OutDir != "out" || env.Config.Log.Level != "debug" {
		t.Errorf("config = %+v", env.Config)
	}
	if !strings.Contains(stderr.String(), "loaded config") {
		t.Errorf("debug log missing, stderr = %q", stderr.String())
	}
}

func TestSetup_Invalid(t *testing.T) {
	t.Setenv(nsconfig.EnvConfig, "")
	t.Setenv(nsconfig.EnvEngine, "")
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, nsconfig.ConfigFile), []byte("[transform]\nengine = \"swc\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Setup(dir, false, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), nsconfig.ConfigFile) {
		t.Errorf("Setup() error = %v, want one naming the config file", err)
	}
}
