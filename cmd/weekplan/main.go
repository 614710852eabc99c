package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"weekplan/internal/applog"
	"weekplan/internal/config"
	"weekplan/internal/engine"
	"weekplan/internal/remote"
	"weekplan/internal/timewin"
	"weekplan/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	applog.Info("weekplan starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		applog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	applog.SetLevel(applog.ParseLevel(conf.LogLevel))

	// CLI --listen overrides the config file if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	loc := conf.Location()
	applog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"remote_configured", conf.Remote.URL != "",
		"once", flags.once,
	)

	var provider remote.Provider
	if conf.Remote.URL != "" {
		provider = remote.NewClient(conf.Remote.URL, conf.Remote.Token, loc)
	}

	eng := engine.New(engine.Config{
		FirstDay:          timewin.ParseFirstDay(conf.WeekStart),
		Location:          loc,
		WeeklyBudgetHours: conf.WeeklyBudgetHours,
		StartHour:         conf.StartHour,
		EndHour:           conf.EndHour,
	}, provider)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		applog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	snap := eng.Refresh(ctx)
	if conf.SeedSampleWeek && provider == nil && len(snap.Activities) == 0 {
		applog.Info("seeding sample week")
		eng.SeedSampleWeek(ctx)
	}

	if flags.once {
		snap = eng.Snapshot()
		applog.Info("single refresh complete",
			"window_start", snap.Window.Start.Format(time.RFC3339),
			"activity_count", len(snap.Activities),
			"free_hours", snap.Totals.Free,
		)
		return
	}

	// Periodic remote refresh on the configured cron schedule.
	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		applog.Debug("scheduled refresh")
		eng.Refresh(ctx)
	}); err != nil {
		applog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, eng).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			applog.Error("HTTP server shutdown failed", err)
		}
	}()

	applog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	applog.Info("weekplan exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/weekplan/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+derive cycle, log a summary, and exit")

	flag.Parse()

	return cfg
}
