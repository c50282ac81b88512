package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"touchpanel/internal/app"
	"touchpanel/internal/config"
	"touchpanel/internal/cpu"
	"touchpanel/internal/disp"
	appLog "touchpanel/internal/log"
	"touchpanel/internal/monitor"
)

type flagConfig struct {
	configPath string
	driver     string
	dump       string
	dumpScale  int
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("touchpanel starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		if conf == nil {
			appLog.Error("failed to load config", err, "config_path", flags.configPath)
			os.Exit(1)
		}
		appLog.Warn("could not write default config, using defaults", "config_path", flags.configPath, "err", err.Error())
	}
	if flags.driver != "" {
		conf.Display.Driver = flags.driver
	}
	if !flags.debug {
		appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	}

	appLog.Info("effective config",
		"driver", conf.Display.Driver,
		"core", conf.Core,
		"touch", conf.Touch.Enabled,
		"tick_period", conf.Timing.TickPeriod.String(),
		"render_period", conf.Timing.RenderPeriod.String(),
		"monitor", conf.Monitor.Schedule,
		"dump", flags.dump,
	)

	drv, err := disp.New(conf.Display, disp.Options{DumpPath: flags.dump, DumpScale: flags.dumpScale})
	if err != nil {
		appLog.Error("failed to create display driver", err, "driver", conf.Display.Driver)
		os.Exit(1)
	}
	w, h := drv.Resolution()
	touch := disp.NewTouch(conf.Touch, w, h)

	task := app.New(app.Options{
		Driver:       drv,
		Touch:        touch,
		TickPeriod:   conf.Timing.TickPeriod,
		RenderPeriod: conf.Timing.RenderPeriod,
	})

	mon, err := monitor.New(conf.Monitor.Schedule, task.Stats)
	if err != nil {
		appLog.Error("invalid monitor schedule", err)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		// The render task owns this OS thread until it returns.
		if err := cpu.PinCurrentThread(conf.Core); err != nil {
			appLog.Warn("render task not pinned", "core", conf.Core, "err", err.Error())
		} else {
			appLog.Debug("render task pinned", "core", conf.Core, "affinity", cpu.Supported)
		}
		err := task.Run(gctx)
		if err == nil {
			// Monitor and signal watcher follow the render task.
			cancel()
		}
		return err
	})
	g.Go(func() error {
		return mon.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		appLog.Error("render task failed", err)
		os.Exit(1)
	}
	appLog.Info("touchpanel exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/touchpanel/config.yaml", "Path to config file")
	flag.StringVar(&cfg.driver, "driver", "", "Display driver: ili9341, fbdev or memory (overrides config if set)")
	flag.StringVar(&cfg.dump, "dump", "", "With --driver=memory, write the last frame to this PNG on exit")
	flag.IntVar(&cfg.dumpScale, "dump-scale", 2, "Enlargement factor of the --dump PNG")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
