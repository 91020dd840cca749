// Package cmdtest provides a testscript-based test harness for the ns CLI tools.
//
// Test files use the txtar format to hold input files and the commands to
// run against them.
//
// Example test file (testdata/nsresolve/legacy.txtar):
//
//	# Legacy scripts only import other legacy scripts
//	exec nsresolve . /old.script lib
//	stdout 'lib -> /lib.script'
//
//	-- old.script --
//	import { f } from "lib";
//	-- lib.script --
//	export function f() {}
package cmdtest

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/tomprince/bitburner-src/internal/cmd/nsbuild"
	"github.com/tomprince/bitburner-src/internal/cmd/nsfind"
	"github.com/tomprince/bitburner-src/internal/cmd/nsls"
	"github.com/tomprince/bitburner-src/internal/cmd/nsresolve"
	"github.com/tomprince/bitburner-src/internal/nsconfig"
)

// Run executes the testscript tests in the given directory.
func Run(t *testing.T, dir string) {
	testscript.Run(t, testscript.Params{
		Dir: dir,
		Setup: func(env *testscript.Env) error {
			// Keep the caller's environment from leaking into scripts.
			for _, key := range []string{
				nsconfig.EnvConfig,
				nsconfig.EnvEngine,
				nsconfig.EnvTarget,
				nsconfig.EnvLogLevel,
				nsconfig.EnvHostname,
			} {
				env.Setenv(key, "")
			}
			return nil
		},
	})
}

// Main is the TestMain function that should be called from test files.
// It sets up the CLI tools as testscript commands.
func Main(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"nsbuild":   wrapRun(nsbuild.Run),
		"nsfind":    wrapRun(nsfind.Run),
		"nsresolve": wrapRun(nsresolve.Run),
		"nsls":      wrapRun(nsls.Run),
	}))
}

// wrapRun wraps a Run(args []string) int function to func() int for testscript.
// The args are taken from os.Args[1:].
func wrapRun(run func(args []string) int) func() int {
	return func() int {
		return run(os.Args[1:])
	}
}
