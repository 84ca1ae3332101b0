package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"ArbiOps/internal/alerts"
	"ArbiOps/internal/backend"
	"ArbiOps/internal/config"
	"ArbiOps/internal/health"
	"ArbiOps/internal/logstream"
	"ArbiOps/internal/marketplace"
	"ArbiOps/internal/metrics"
	"ArbiOps/internal/notifier"
	"ArbiOps/internal/opportunity"
	"ArbiOps/internal/pipeline"
	"ArbiOps/internal/recorder"
	"ArbiOps/internal/scheduler"
	"ArbiOps/internal/server"
	"ArbiOps/internal/simulation"
	"ArbiOps/internal/wallet"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load config
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cfgPath := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	if cfg.Logging.File != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAge,
			Compress:   cfg.Logging.Compress,
		}))
	}
	log.Println("[INFO] ArbiOps starting...")

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	// Init log source
	var source logstream.Source
	if cfg.LogSource.Mock {
		source = logstream.NewMockSource()
	} else {
		if cfg.LogSource.APIKey == "" {
			log.Println("[WARN] log_source.api_key is empty, every tick will use fallback lines")
		}
		genai := logstream.NewGenAISource(cfg.LogSource.BaseURL, cfg.LogSource.APIKey, cfg.LogSource.Model, cfg.Proxy)
		source = logstream.NewBreakerSource(genai, cfg.LogSource.BreakerFailures, cfg.LogSource.BreakerCooldown)
	}
	log.Printf("[INFO] log source: %s", source.Name())

	selector, err := pipeline.New(cfg.Simulation.Selector, rng)
	if err != nil {
		log.Fatalf("[FATAL] stage selector: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	m := metrics.New()
	c := scheduler.NewCron()

	loop, err := simulation.NewLoop(simulation.Options{
		Interval:       cfg.Simulation.Interval,
		RequestTimeout: cfg.LogSource.Timeout,
		Controls:       cfg.Controls(),
		Announce:       *cfg.Simulation.Announce,
	}, simulation.Deps{
		Source:   source,
		Selector: selector,
		Ticker:   scheduler.NewCronTicker(c),
		Rand:     rng,
		Recorder: rec,
		Metrics:  m,
	})
	if err != nil {
		log.Fatalf("[FATAL] init simulation: %v", err)
	}

	// Alerts and Telegram
	store := alerts.NewSeededStore()
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if tn.Enabled() {
		store.SetForwarder(tn)
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, c)
	sched.Loop = loop
	sched.Alerts = store
	sched.Metrics = m

	deps := server.Deps{Sim: loop, Alerts: store, Metrics: m}

	// Backend-driven services are only wired when a backend is configured
	if cfg.Backend.BaseURL != "" {
		client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Proxy, cfg.Backend.Timeout)
		deps.Marketplace = marketplace.NewService(client)
		deps.Opportunities = opportunity.NewService(client, store)
		deps.Wallet = wallet.NewService(client, rec, store)
		deps.Health = health.NewChecker(client, nil, store)
		deps.Settings = client

		sched.Marketplace = deps.Marketplace
		sched.Opportunities = deps.Opportunities
		sched.Wallet = deps.Wallet
		sched.Health = deps.Health
		log.Printf("[INFO] backend: %s", cfg.Backend.BaseURL)
	} else {
		log.Println("[WARN] backend.base_url is empty, marketplace, wallet and health routes are disabled")
	}

	if err := sched.RegisterAll(cfg.Schedule.HealthCron, cfg.Schedule.OpportunitiesCron, cfg.Schedule.MarketplaceCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	sched.RunStartupJobs()

	if os.Getenv("AUTO_START") == "true" {
		log.Println("[INFO] AUTO_START enabled, starting the simulation")
		loop.Start("startup")
	}

	srv := server.New(deps)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, cfg.Server.Addr) })
	if tn.Enabled() {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
		log.Println("[INFO] Telegram polling started")
	} else {
		log.Println("[INFO] Telegram disabled: no bot token configured")
	}

	log.Println("[INFO] ArbiOps is running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil {
		log.Printf("[ERROR] %v", err)
	}

	log.Println("[INFO] shutdown signal received, stopping...")
	loop.Close()
	sched.Stop()
	if deps.Opportunities != nil {
		deps.Opportunities.Wait()
	}
	store.Wait()
	log.Println("[INFO] ArbiOps stopped")
}
