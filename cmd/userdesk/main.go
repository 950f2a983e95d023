package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/open-sspm/userdesk/internal/logging"
)

func main() {
	code := runMain(Execute, os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

func runMain(execute func() error, stderr io.Writer) int {
	if err := execute(); err != nil {
		return exitCodeForError(err, stderr)
	}
	return 0
}

func exitCodeForError(err error, stderr io.Writer) int {
	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.silent {
			emitCommandError(err, "command failed", ee.code, stderr)
		}
		return ee.code
	}

	if errors.Is(err, context.Canceled) {
		emitCommandError(err, "command canceled", exitCodeCanceled, stderr)
		return exitCodeCanceled
	}

	emitCommandError(err, "command failed", exitCodeFailure, stderr)
	return exitCodeFailure
}

func emitCommandError(err error, message string, exitCode int, stderr io.Writer) {
	ctx := currentCommandExecutionContext()
	if !ctx.UsesStructuredLog {
		if exitCode == exitCodeCanceled {
			fmt.Fprintln(stderr, "canceled")
			return
		}
		fmt.Fprintln(stderr, plainMessage(err))
		return
	}

	attrs := []any{"exit_code", exitCode}
	var ee *exitError
	if errors.As(err, &ee) && ee.reason != "" {
		attrs = append(attrs, "reason", ee.reason)
	}
	attrs = append(attrs, logging.ErrorAttrs(err)...)
	loggerForFatalPath(ctx, stderr).Error(message, attrs...)
}

func loggerForFatalPath(ctx commandExecutionContext, stderr io.Writer) *slog.Logger {
	cfg, err := logging.LoadConfigFromEnv()
	if err != nil {
		cfg = logging.DefaultConfig()
	}
	return logging.NewLogger(cfg, stderr, ctx.CommandPath)
}
