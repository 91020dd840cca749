package nsfind

import (
	"context"
	"flag"
	"io"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/cli"
	"github.com/tomprince/bitburner-src/internal/paths"
	"github.com/tomprince/bitburner-src/internal/script/filetype"
	"github.com/tomprince/bitburner-src/internal/server"
	"github.com/tomprince/bitburner-src/internal/version"
)

// Run executes nsfind with the given arguments.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO allows custom IO for testing.
func RunWithIO(_ context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) int {
	var (
		dirFlag     string
		hostFlag    string
		dirsFlag    bool
		typesFlag   bool
		versionFlag bool
		verboseFlag bool
	)

	fs := flag.NewFlagSet("nsfind", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&dirFlag, "dir", "/", "directory relative patterns are matched from")
	fs.StringVar(&hostFlag, "host", "", "hostname the files are loaded onto")
	fs.BoolVar(&dirsFlag, "dirs", false, "list directories instead of files")
	fs.BoolVar(&typesFlag, "types", false, "show the file type of each match")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&verboseFlag, "v", false, "verbose logging to stderr")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: nsfind [flags] <root> [pattern]")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Lists files under root the way the in-game ls command sees them.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Patterns use * and ? wildcards. A * matches across directories.")
		cli.Writeln(stderr, "With no pattern every file is listed.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Flags:")
		fs.PrintDefaults()
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Examples:")
		cli.Writeln(stderr, "  nsfind scripts '*.ts'          # All TypeScript files")
		cli.Writeln(stderr, "  nsfind -dir /lib scripts 'u*'  # Files in /lib starting with u")
		cli.Writeln(stderr, "  nsfind -dirs scripts           # Every directory")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if versionFlag {
		cli.Writef(stdout, "nsfind %s\n", version.String())
		return cli.ExitOK
	}

	if fs.NArg() == 0 || fs.NArg() > 2 {
		cli.Writeln(stderr, "nsfind: expected a root directory and an optional pattern")
		fs.Usage()
		return cli.ExitError
	}
	root := fs.Arg(0)

	env, err := cli.Setup(root, verboseFlag, stderr)
	if err != nil {
		cli.Writef(stderr, "nsfind: %v\n", err)
		return cli.ExitError
	}
	defer func() { _ = env.Logger.Sync() }()
	if hostFlag == "" {
		hostFlag = env.Config.Build.Hostname
	}

	dir, ok := paths.ResolveDirectory(dirFlag, "")
	if !ok {
		cli.Writef(stderr, "nsfind: invalid directory %q\n", dirFlag)
		return cli.ExitError
	}

	srv, skipped, err := server.LoadDir(os.DirFS(root), hostFlag)
	if err != nil {
		cli.Writef(stderr, "nsfind: %v\n", err)
		return cli.ExitError
	}
	for _, name := range skipped {
		env.Logger.Debug("skipping file", zap.String("name", name))
	}

	if dirsFlag {
		for _, d := range srv.Directories().Sorted() {
			cli.Writeln(stdout, d)
		}
		return cli.ExitOK
	}

	pattern := "*"
	if fs.NArg() == 2 {
		pattern = fs.Arg(1)
	}
	matches := srv.Glob(pattern, dir)

	if !typesFlag {
		for p := range matches.All() {
			cli.Writeln(stdout, p)
		}
		return cli.ExitOK
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for p := range matches.All() {
		typ, err := filetype.Of(string(p))
		if err != nil {
			cli.Writef(w, "%s\t-\n", p)
			continue
		}
		cli.Writef(w, "%s\t%s\n", p, typ)
	}
	_ = w.Flush()
	return cli.ExitOK
}
