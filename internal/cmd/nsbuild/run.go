package nsbuild

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/cli"
	"github.com/tomprince/bitburner-src/internal/loader"
	"github.com/tomprince/bitburner-src/internal/paths"
	"github.com/tomprince/bitburner-src/internal/script/transform"
	"github.com/tomprince/bitburner-src/internal/server"
	"github.com/tomprince/bitburner-src/internal/version"
)

// LockFile is created in the output directory while a build writes to it.
const LockFile = ".nsbuild.lock"

// ErrLocked is returned when another build holds the output directory.
var ErrLocked = errors.New("output directory is locked by another build")

// Run executes nsbuild with the given arguments.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO allows custom IO for testing.
func RunWithIO(ctx context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) int {
	var (
		engineFlag  string
		outFlag     string
		hostFlag    string
		watchFlag   bool
		diffFlag    bool
		versionFlag bool
		verboseFlag bool
	)

	fs := flag.NewFlagSet("nsbuild", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&engineFlag, "engine", "", "transform engine: bundle or transform (default from config)")
	fs.StringVar(&outFlag, "out", "", "output directory (default from config)")
	fs.StringVar(&hostFlag, "host", "", "hostname the scripts are loaded onto")
	fs.BoolVar(&watchFlag, "watch", false, "rebuild when files change")
	fs.BoolVar(&diffFlag, "diff", false, "print a unified diff of each source against its output")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&verboseFlag, "v", false, "verbose logging to stderr")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: nsbuild [flags] <dir> [entry...]")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Compiles scripts under dir to ES modules.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Each entry is a script path on the server, such as /main.ts. With no")
		cli.Writeln(stderr, "entries every script is compiled. Imports are resolved the way the game")
		cli.Writeln(stderr, "resolves them and rewritten to relative .mjs URLs.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Flags:")
		fs.PrintDefaults()
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Examples:")
		cli.Writeln(stderr, "  nsbuild scripts                   # Compile every script")
		cli.Writeln(stderr, "  nsbuild scripts /hack.ts          # Compile hack.ts and its imports")
		cli.Writeln(stderr, "  nsbuild -out build -watch scripts # Rebuild on change")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if versionFlag {
		cli.Writef(stdout, "nsbuild %s\n", version.String())
		return cli.ExitOK
	}

	if fs.NArg() == 0 {
		cli.Writeln(stderr, "nsbuild: no directory specified")
		fs.Usage()
		return cli.ExitError
	}
	dir := fs.Arg(0)

	env, err := cli.Setup(dir, verboseFlag, stderr)
	if err != nil {
		cli.Writef(stderr, "nsbuild: %v\n", err)
		return cli.ExitError
	}
	defer func() { _ = env.Logger.Sync() }()

	cfg := env.Config
	if engineFlag != "" {
		cfg.Transform.Engine = engineFlag
	}
	if outFlag != "" {
		cfg.Build.OutDir = outFlag
	}
	if hostFlag != "" {
		cfg.Build.Hostname = hostFlag
	}

	engine, err := transform.New(cfg.TransformOptions())
	if err != nil {
		cli.Writef(stderr, "nsbuild: %v\n", err)
		return cli.ExitError
	}

	srv, skipped, err := server.LoadDir(os.DirFS(dir), cfg.Build.Hostname)
	if err != nil {
		cli.Writef(stderr, "nsbuild: %v\n", err)
		return cli.ExitError
	}
	for _, name := range skipped {
		env.Logger.Debug("skipping file", zap.String("name", name))
	}

	ld, err := loader.New(srv.Scripts(), loader.Options{
		Engine:    engine,
		CacheSize: cfg.Build.CacheSize,
		Logger:    env.Logger,
	})
	if err != nil {
		cli.Writef(stderr, "nsbuild: %v\n", err)
		return cli.ExitError
	}

	entries, err := parseEntries(fs.Args()[1:])
	if err != nil {
		cli.Writef(stderr, "nsbuild: %v\n", err)
		return cli.ExitError
	}

	b := &builder{
		srv:     srv,
		loader:  ld,
		entries: entries,
		outDir:  cfg.Build.OutDir,
		diff:    diffFlag,
		stdout:  stdout,
		log:     env.Logger,
	}

	if err := b.build(); err != nil {
		cli.Writef(stderr, "nsbuild: %v\n", err)
		if !watchFlag {
			return cli.ExitError
		}
	}
	if !watchFlag {
		return cli.ExitOK
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := b.watch(ctx, dir, stderr); err != nil && ctx.Err() == nil {
		cli.Writef(stderr, "nsbuild: %v\n", err)
		return cli.ExitError
	}
	return cli.ExitOK
}

// parseEntries resolves entry arguments as script paths from the root.
func parseEntries(args []string) ([]paths.ScriptFilePath, error) {
	entries := make([]paths.ScriptFilePath, 0, len(args))
	for _, arg := range args {
		p, ok := paths.ResolveScriptFilePath(arg, "", "")
		if !ok {
			return nil, fmt.Errorf("entry %q: %w", arg, paths.ErrInvalidPath)
		}
		entries = append(entries, p)
	}
	return entries, nil
}

type builder struct {
	srv     *server.Server
	loader  *loader.Loader
	entries []paths.ScriptFilePath
	outDir  string
	diff    bool
	stdout  io.Writer
	log     *zap.Logger
}

// build compiles the entries, or every script when there are none, and
// writes the outputs while holding the output directory lock.
func (b *builder) build() error {
	entries := b.entries
	if len(entries) == 0 {
		b.srv.RLock()
		entries = b.srv.ScriptFiles().Keys()
		b.srv.RUnlock()
	}

	modules, err := b.loader.Compile(entries...)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return err
	}
	lock := flock.New(filepath.Join(b.outDir, LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", b.outDir, err)
	}
	if !locked {
		return fmt.Errorf("%s: %w", b.outDir, ErrLocked)
	}
	defer func() { _ = lock.Unlock() }()

	for _, m := range modules {
		out := filepath.Join(b.outDir, filepath.FromSlash(loader.OutputPath(m.Path)))
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte(m.Code), 0o644); err != nil {
			return err
		}
		b.log.Debug("wrote module", zap.Stringer("path", m.Path), zap.String("out", out))

		if b.diff {
			if err := b.writeDiff(m); err != nil {
				return err
			}
		}
	}
	cli.Writef(b.stdout, "compiled %d module(s) to %s\n", len(modules), b.outDir)
	return nil
}

func (b *builder) writeDiff(m *loader.Module) error {
	src, ok := b.srv.Script(m.Path)
	if !ok {
		return nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(src.Content),
		B:        difflib.SplitLines(m.Code),
		FromFile: string(m.Path),
		ToFile:   "/" + loader.OutputPath(m.Path),
		Context:  3,
	})
	if err != nil {
		return err
	}
	cli.Write(b.stdout, diff)
	if diff != "" && !strings.HasSuffix(diff, "\n") {
		cli.Writeln(b.stdout)
	}
	return nil
}
