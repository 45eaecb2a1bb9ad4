package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.design/x/hotkey/mainthread"
	"gopkg.in/yaml.v3"

	"github.com/offlinefirst/grabber/pkg/config"
	"github.com/offlinefirst/grabber/pkg/eventtap"
	"github.com/offlinefirst/grabber/pkg/metrics"
	"github.com/offlinefirst/grabber/pkg/modifiers"
)

type runOptions struct {
	planOnly bool
	strict   bool
}

// runOnMain runs fn while the main thread services the main run loop, where
// Quartz delivers tap events. mainthread.Init exits the process once fn
// returns, so failures exit here.
var runOnMain = func(fn func() error) error {
	mainthread.Init(func() {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	})
	return nil
}

// callOnMain runs fn on the main thread and waits for it.
var callOnMain = mainthread.Call

// tapPlatform overrides the host event tap platform in tests.
var tapPlatform eventtap.Platform

func (rc *RootCommand) newRunCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Grab pointer events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rc.ensureAppContext()
			if err != nil {
				return err
			}
			if opts.planOnly {
				return printRunPlan(app, rc.stdout)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runOnMain(func() error {
				return runGrabber(ctx, app, opts, rc.stdout)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.planOnly, "plan-only", false, "Print the resolved configuration without grabbing events")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with an error when the event tap cannot be installed")
	return cmd
}

func runGrabber(ctx context.Context, app *AppContext, opts runOptions, stdout io.Writer) error {
	if app == nil {
		return fmt.Errorf("application context unavailable")
	}
	cfg := app.Config
	logger := app.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("run command invoked", zap.String("config_source", cfg.Source), zap.Bool("strict", opts.strict))

	locked, err := cfg.LockedModifiers()
	if err != nil {
		return fmt.Errorf("resolve locked modifiers: %w", err)
	}
	mods := modifiers.NewManager()
	mods.SetLocked(locked)

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(cfg.Metrics.ListenAddr, logger.Named("metrics"))
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer server.Stop()
		fmt.Fprintf(stdout, "Metrics: http://%s/metrics\n", server.Addr())
	}

	if !cfg.Tap.Enabled {
		fmt.Fprintln(stdout, "Event tap: disabled via config")
		return nil
	}

	if cfg.Source != config.Default().Source {
		watcher := config.NewWatcher(cfg.Source, func(next config.Config) {
			locked, err := next.LockedModifiers()
			if err != nil {
				logger.Warn("ignoring locked modifiers", zap.Error(err))
				return
			}
			mods.SetLocked(locked)
			logger.Info("locked modifiers updated", zap.String("locked", fmt.Sprint(mods.Locked())))
		}, logger.Named("config"))
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("config watcher unavailable", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	var manager *eventtap.Manager
	callOnMain(func() {
		manager = eventtap.New(metrics.Instrument(mods), metrics.Observe(nil), eventtap.Options{
			Platform: tapPlatform,
			Logger:   logger.Named("eventtap"),
		})
	})
	metrics.SetArmed(manager.Armed())
	defer func() {
		callOnMain(func() { manager.Close() })
		metrics.SetArmed(false)
	}()

	if err := manager.Err(); err != nil {
		env := eventtap.DetectEnvironment(nil)
		fmt.Fprintf(stdout, "Event tap: disarmed (%v)\n", err)
		if env.Guidance != "" {
			fmt.Fprintf(stdout, "  guidance: %s\n", env.Guidance)
		}
		if opts.strict {
			return err
		}
		fmt.Fprintln(stdout, "  pointer events pass through unmodified")
	} else {
		fmt.Fprintf(stdout, "Event tap: armed for %d pointer event types\n", len(eventtap.WatchedEvents))
		if held := mods.Locked(); len(held) > 0 {
			fmt.Fprintf(stdout, "  locked modifiers: %v\n", held)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	return nil
}

func printRunPlan(app *AppContext, stdout io.Writer) error {
	fmt.Fprintf(stdout, "Resolved configuration (source: %s)\n", app.Config.Source)
	out, err := yaml.Marshal(app.Config)
	if err != nil {
		return fmt.Errorf("render configuration: %w", err)
	}
	_, err = stdout.Write(out)
	return err
}
