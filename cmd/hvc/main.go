// Command hvc runs the birdsong syllable classification pipeline described by
// a YAML task file.
//
// Usage:
//
//	hvc validate <config.yml>
//	hvc extract|select|predict <config.yml>
//	hvc run <config.yml>
//	hvc inspect <file.hvc|file.hvcmodel>
//	hvc runs [--limit n] [--serve]
//
// Settings are read from the environment, and from a .env file when present.
package main

import (
	"birdsong-lab/errors"
	"birdsong-lab/internal"
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the calling shell or scheduler.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hvc: %v\n", err)
	}
	os.Exit(code)
}

// run keeps every defer (catalog close, signal stop) ahead of os.Exit.
func run(args []string, stdout io.Writer) (int, error) {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(&app{config: config, log: logger})
	root.SetArgs(args)
	root.SetOut(stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		return exitCode(err), err
	}
	return exitOK, nil
}

// exitCode separates problems in the task file from failures while running it.
func exitCode(err error) int {
	var validation *errors.ValidationError
	switch {
	case stdErrors.Is(err, errors.ErrTaskDocument), stdErrors.As(err, &validation), stdErrors.Is(err, errUsage):
		return exitConfig
	default:
		return exitRuntime
	}
}
