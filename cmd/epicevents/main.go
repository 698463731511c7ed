// Command epicevents is the Epic Events CRM command line.
//
//	epicevents [-json] <command> [flags]
//
// The process exit code reflects the outcome: 0 success, 2 usage, 3 not
// authenticated, 4 permission denied, 5 not found, 6 precondition failed,
// 7 invalid input, 8 storage failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/config"
	"github.com/diewo77/epic-events/internal/lib/sl"
)

const closeTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return apperr.ExitUnexpected
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.App.SlogLevel()}))
	slog.SetDefault(log)

	return execute(ctx, cfg, log, args, stdin, stdout, stderr)
}

// execute parses global flags, resolves the command and runs it against a
// freshly wired App.
func execute(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := flag.NewFlagSet("epicevents", flag.ContinueOnError)
	root.SetOutput(io.Discard)
	asJSON := root.Bool("json", false, "print results as JSON")
	if err := root.Parse(args); err != nil {
		return fail(stderr, usagef("%v", err))
	}

	cmd, rest, err := lookup(root.Args())
	if err != nil {
		return fail(stderr, err)
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Error("startup failed", sl.Err(err))
		return fail(stderr, apperr.Storage("startup", err))
	}
	app.in, app.out, app.json = stdin, stdout, *asJSON

	err = app.dispatch(ctx, cmd, rest)

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if cerr := app.Close(closeCtx); cerr != nil {
		log.Warn("shutdown incomplete", sl.Err(cerr))
	}
	return fail(stderr, err)
}

// lookup resolves "login" style and "client add" style command names.
func lookup(args []string) (command, []string, error) {
	if len(args) == 0 {
		return command{}, nil, usagef("missing command\n%s", usage())
	}
	if cmd, ok := commands[args[0]]; ok {
		return cmd, args[1:], nil
	}
	if len(args) >= 2 {
		if cmd, ok := commands[args[0]+" "+args[1]]; ok {
			return cmd, args[2:], nil
		}
	}
	return command{}, nil, usagef("unknown command %q\n%s", strings.Join(args[:min(2, len(args))], " "), usage())
}

func usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-16s %s\n", name, commands[name].summary)
	}
	return b.String()
}

// usageError reports a malformed command line.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// fail prints err and returns its exit code.
func fail(stderr io.Writer, err error) int {
	if err == nil {
		return apperr.ExitOK
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		return apperr.ExitUsage
	}
	return apperr.ExitCode(err)
}
