package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/pullgridgo/internal/app"
	"github.com/specialistvlad/pullgridgo/internal/cli"
	"github.com/specialistvlad/pullgridgo/internal/hcl_adapter"
)

// main is the entrypoint for the pullgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on programmer errors in the compiled-in modules; turn
	// that into a clean error for the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	pullgrid := app.NewApp(outW, appConfig, hcl_adapter.NewLoader(), hcl_adapter.NewConverter())
	defer func() {
		if closeErr := pullgrid.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	err = pullgrid.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("Interrupted, shutting down.")
		return nil
	}
	return err
}
