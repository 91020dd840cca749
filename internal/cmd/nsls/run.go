package nsls

import (
	"context"
	"flag"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/cli"
	"github.com/tomprince/bitburner-src/internal/logging"
	"github.com/tomprince/bitburner-src/internal/lsp"
	"github.com/tomprince/bitburner-src/internal/server"
	"github.com/tomprince/bitburner-src/internal/version"
)

// Run executes nsls with the given arguments.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO allows custom IO for testing.
func RunWithIO(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		rootFlag    string
		hostFlag    string
		logFileFlag string
		versionFlag bool
		verboseFlag bool
	)

	fs := flag.NewFlagSet("nsls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&rootFlag, "root", "", "directory of scripts to preload onto the host")
	fs.StringVar(&hostFlag, "host", "", "hostname the root directory is loaded onto")
	fs.StringVar(&logFileFlag, "logfile", "", "append logs to this file")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&verboseFlag, "v", false, "verbose logging to stderr")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: nsls [flags]")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Language server for player scripts.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "The server communicates over stdio using JSON-RPC 2.0.")
		cli.Writeln(stderr, "Documents are addressed as file://<hostname>/<path>; an empty")
		cli.Writeln(stderr, "hostname means home.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Features:")
		cli.Writeln(stderr, "  - Go to definition on import specifiers")
		cli.Writeln(stderr, "  - Document links for imports")
		cli.Writeln(stderr, "  - Diagnostics for syntax errors and unresolved imports")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if versionFlag {
		cli.Writef(stdout, "nsls %s\n", version.String())
		return cli.ExitOK
	}

	// stdout carries the protocol, so logs go to stderr or -logfile.
	env, err := cli.Setup(rootFlag, verboseFlag, stderr)
	if err != nil {
		cli.Writef(stderr, "nsls: %v\n", err)
		return cli.ExitError
	}
	defer func() { _ = env.Logger.Sync() }()

	log := logging.NewNop()
	var onTrace func(string) error
	switch {
	case logFileFlag != "":
		cfg := env.Config.Logging()
		cfg.OutputPath = logFileFlag
		if err := logging.Init(cfg); err != nil {
			cli.Writef(stderr, "nsls: %v\n", err)
			return cli.ExitError
		}
		defer func() { _ = logging.Sync() }()
		log = logging.L()
		onTrace = logging.SetLevel
	case verboseFlag:
		log = env.Logger
	}
	log = log.Named("nsls")
	if hostFlag == "" {
		hostFlag = env.Config.Build.Hostname
	}

	registry := server.NewRegistry()
	if rootFlag != "" {
		srv, skipped, err := server.LoadDir(os.DirFS(rootFlag), hostFlag)
		if err != nil {
			cli.Writef(stderr, "nsls: %v\n", err)
			return cli.ExitError
		}
		for _, name := range skipped {
			log.Debug("skipping file", zap.String("name", name))
		}
		registry = server.NewRegistry(srv)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := lsp.NewServer(lsp.Options{
		Registry: registry,
		Logger:   log,
		OnExit:   cancel,
		OnTrace:  onTrace,
	})

	rwc := &stdioConn{
		Reader: stdin,
		Writer: stdout,
	}
	conn := lsp.NewConn(rwc, srv, log)
	srv.SetConn(conn)

	log.Info("starting server", zap.Strings("hosts", registry.Hostnames()))

	if err := conn.Run(ctx); err != nil && ctx.Err() == nil {
		cli.Writef(stderr, "nsls: %v\n", err)
		return cli.ExitError
	}

	log.Info("server stopped")
	return cli.ExitOK
}

// stdioConn wraps stdin/stdout as an io.ReadWriteCloser.
type stdioConn struct {
	io.Reader
	io.Writer
}

func (s *stdioConn) Close() error {
	return nil
}
