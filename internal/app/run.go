package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/remote"
	"golang.org/x/sync/errgroup"
)

// Run builds the graph and drives it for the configured number of frames.
// A failing driver is logged and the run continues with the next frame.
// Run returns early with the context's error if ctx is cancelled; in that
// case the frames completed so far stand.
func (app *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	app.ctx = ctx
	app.logger.Debug("App.Run method started.")

	if _, err := app.healthCheckServer(); err != nil {
		return err
	}
	if err := app.Build(); err != nil {
		return err
	}
	if app.config.RemoteURL != "" {
		client, err := remote.Dial(ctx, remote.Options{URL: app.config.RemoteURL}, remote.NewHandler(app.graph, app.converter))
		if err != nil {
			return fmt.Errorf("failed to connect remote control: %w", err)
		}
		app.remote = client
	}

	drivers := app.graph.Drivers(ctx)
	if len(drivers) == 0 {
		app.logger.Warn("No driver modules found in graph, execution not required.")
		return nil
	}

	app.logger.Info("🚀 Starting frame loop...", "drivers", len(drivers), "frames", app.config.Frames, "workers", app.config.WorkerCount)
	failed := 0
	for frame := 0; app.config.Frames == 0 || frame < app.config.Frames; frame++ {
		if frame > 0 && app.config.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(app.config.Interval):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		failed += app.RunFrame(ctx, frame)
	}
	app.logger.Info("🏁 Frame loop finished.", "frames", app.config.Frames, "failed_drivers", failed)
	return nil
}

// RunFrame runs every driver once, at most WorkerCount at a time, and
// returns how many of them failed.
func (app *App) RunFrame(ctx context.Context, frame int) int {
	logger := ctxlog.FromContext(ctx).With("frame", frame)
	var failed atomic.Int32

	var g errgroup.Group
	g.SetLimit(app.config.WorkerCount)
	for _, d := range app.graph.Drivers(ctx) {
		g.Go(func() error {
			if err := runDriver(ctx, d, frame); err != nil {
				failed.Add(1)
				logger.Warn("Driver frame failed.", "module", d.Core().Name(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug("Frame complete.", "failed", failed.Load())
	return int(failed.Load())
}

// runDriver turns a panicking driver into an error.
func runDriver(ctx context.Context, d module.Driver, frame int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("driver panicked: %v", r)
		}
	}()
	return d.Frame(ctx, frame)
}

// Close saves the presentation state, releases every module and stops the
// servers. It reports every failure. Only the first call has an effect.
func (app *App) Close() error {
	if app.closed {
		return nil
	}
	app.closed = true

	var errs *multierror.Error
	if err := app.saveState(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if app.remote != nil {
		app.remote.Close(app.ctx)
		app.remote = nil
	}
	app.graph.Close(app.ctx)
	if err := app.closeHealthCheckServer(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
