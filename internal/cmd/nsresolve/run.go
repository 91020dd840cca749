package nsresolve

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"

	"github.com/tomprince/bitburner-src/internal/cli"
	"github.com/tomprince/bitburner-src/internal/paths"
	"github.com/tomprince/bitburner-src/internal/script/module"
	"github.com/tomprince/bitburner-src/internal/server"
	"github.com/tomprince/bitburner-src/internal/version"
)

// Run executes nsresolve with the given arguments.
// Returns exit code.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO allows custom IO for embedding/testing.
func RunWithIO(_ context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) int {
	var (
		jsonFlag    bool
		hostFlag    string
		versionFlag bool
		verboseFlag bool
	)

	fs := flag.NewFlagSet("nsresolve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&jsonFlag, "json", false, "output results as JSON")
	fs.StringVar(&hostFlag, "host", "", "hostname the scripts are loaded onto")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&verboseFlag, "v", false, "verbose logging to stderr")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: nsresolve [flags] <root> <base> <specifier...>")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Shows which script each import specifier refers to when imported")
		cli.Writeln(stderr, "from base, and every path that was tried.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Exits with status 2 if any specifier is unresolved.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Flags:")
		fs.PrintDefaults()
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Examples:")
		cli.Writeln(stderr, "  nsresolve scripts /main.ts ./lib/util")
		cli.Writeln(stderr, "  nsresolve -json scripts /old.script lib")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if versionFlag {
		cli.Writef(stdout, "nsresolve %s\n", version.String())
		return cli.ExitOK
	}

	if fs.NArg() < 3 {
		cli.Writeln(stderr, "nsresolve: expected a root, a base script and at least one specifier")
		fs.Usage()
		return cli.ExitError
	}
	root := fs.Arg(0)

	base, ok := paths.ResolveScriptFilePath(fs.Arg(1), "", "")
	if !ok {
		cli.Writef(stderr, "nsresolve: base %q is not a script path\n", fs.Arg(1))
		return cli.ExitError
	}

	env, err := cli.Setup(root, verboseFlag, stderr)
	if err != nil {
		cli.Writef(stderr, "nsresolve: %v\n", err)
		return cli.ExitError
	}
	defer func() { _ = env.Logger.Sync() }()
	if hostFlag == "" {
		hostFlag = env.Config.Build.Hostname
	}

	srv, _, err := server.LoadDir(os.DirFS(root), hostFlag)
	if err != nil {
		cli.Writef(stderr, "nsresolve: %v\n", err)
		return cli.ExitError
	}

	results := make([]module.Result, 0, fs.NArg()-2)
	for _, spec := range fs.Args()[2:] {
		results = append(results, module.Lookup(spec, base, srv.Scripts()))
	}

	if jsonFlag {
		return outputJSON(stdout, results)
	}
	return outputText(stdout, results)
}

func outputText(w io.Writer, results []module.Result) int {
	code := cli.ExitOK
	for _, r := range results {
		if r.OK() {
			cli.Writef(w, "%s -> %s\n", r.Specifier, r.Path)
			continue
		}
		code = cli.ExitWarning
		err := &module.ResolutionError{Specifier: r.Specifier, Base: r.Base, Tried: r.Tried}
		cli.Writef(w, "%s: %v\n", r.Specifier, err)
	}
	return code
}

type jsonResult struct {
	Specifier string   `json:"specifier"`
	Base      string   `json:"base"`
	Resolved  string   `json:"resolved,omitempty"`
	Tried     []string `json:"tried"`
}

func outputJSON(w io.Writer, results []module.Result) int {
	code := cli.ExitOK
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		jr := jsonResult{
			Specifier: r.Specifier,
			Base:      string(r.Base),
			Resolved:  string(r.Path),
			Tried:     make([]string, 0, len(r.Tried)),
		}
		for _, p := range r.Tried {
			jr.Tried = append(jr.Tried, string(p))
		}
		if !r.OK() {
			code = cli.ExitWarning
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return cli.ExitError
	}
	return code
}
