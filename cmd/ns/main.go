package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/tomprince/bitburner-src/internal/cli"
	"github.com/tomprince/bitburner-src/internal/cmd/nsbuild"
	"github.com/tomprince/bitburner-src/internal/cmd/nsfind"
	"github.com/tomprince/bitburner-src/internal/cmd/nsls"
	"github.com/tomprince/bitburner-src/internal/cmd/nsresolve"
	"github.com/tomprince/bitburner-src/internal/version"
)

// Tool runs a subcommand and returns its exit code.
type Tool func(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int

type command struct {
	tool Tool
	desc string
}

// commands maps short names to the built-in tools. Each is also reachable by
// its binary name, so "ns nsbuild" and "ns build" are the same.
var commands = map[string]command{
	"build":   {nsbuild.RunWithIO, "compile scripts to ES modules"},
	"find":    {nsfind.RunWithIO, "list files matching a pattern"},
	"resolve": {nsresolve.RunWithIO, "show where import specifiers lead"},
	"ls":      {nsls.RunWithIO, "language server (LSP)"},
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(stderr)
		return cli.ExitOK
	}

	name := args[0]
	switch name {
	case "version":
		cli.Writef(stdout, "ns %s\n", version.String())
		return cli.ExitOK
	case "help":
		printUsage(stderr)
		return cli.ExitOK
	}

	if cmd, ok := lookup(name); ok {
		return cmd.tool(ctx, args[1:], stdin, stdout, stderr)
	}
	return runExternal(ctx, name, args[1:], stdin, stdout, stderr)
}

func lookup(name string) (command, bool) {
	if cmd, ok := commands[name]; ok {
		return cmd, true
	}
	if short, ok := strings.CutPrefix(name, "ns"); ok {
		cmd, ok := commands[short]
		return cmd, ok
	}
	return command{}, false
}

// runExternal runs ns-<name> from PATH, the way git finds its subcommands.
func runExternal(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	path, err := exec.LookPath("ns-" + name)
	if err != nil {
		printUnknownCommandHelp(stderr, name)
		return cli.ExitWarning
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		cli.Writef(stderr, "ns: %v\n", err)
		return cli.ExitError
	}
	return cli.ExitOK
}

// printUnknownCommandHelp prints a helpful error message for unknown commands.
func printUnknownCommandHelp(w io.Writer, name string) {
	cli.Writef(w, "ns: unknown command %q\n", name)

	suggestions := findSimilarCommands(name)
	if len(suggestions) > 0 {
		cli.Writeln(w)
		cli.Writeln(w, "Did you mean one of these?")
		for _, s := range suggestions {
			cli.Writef(w, "  ns %-8s %s\n", s, commands[s].desc)
		}
	}
}

// findSimilarCommands finds built-in commands similar to the input.
func findSimilarCommands(input string) []string {
	var suggestions []string
	input = strings.ToLower(input)
	for name := range commands {
		if strings.HasPrefix(name, input) || strings.HasPrefix(input, name) || levenshtein(input, name) <= 2 {
			suggestions = append(suggestions, name)
		}
	}
	sort.Strings(suggestions)
	return suggestions
}

// levenshtein computes the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help"
}

func printUsage(w io.Writer) {
	cli.Writeln(w, "usage: ns <command> [args]")
	cli.Writeln(w)
	cli.Writeln(w, "script tools:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cli.Writef(w, "  %-12s %s\n", name, commands[name].desc)
	}
	cli.Writeln(w)
	cli.Writeln(w, "management:")
	cli.Writeln(w, "  version      show version")
	cli.Writeln(w)
	cli.Writeln(w, "unknown commands run ns-<command> from PATH")
}
