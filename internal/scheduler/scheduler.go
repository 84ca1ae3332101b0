package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"ArbiOps/internal/alerts"
	"ArbiOps/internal/health"
	"ArbiOps/internal/marketplace"
	"ArbiOps/internal/metrics"
	"ArbiOps/internal/model"
	"ArbiOps/internal/notifier"
	"ArbiOps/internal/opportunity"
	"ArbiOps/internal/simulation"
	"ArbiOps/internal/wallet"
)

// JobTimeout bounds one background job run.
const JobTimeout = 30 * time.Second

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron          *cron.Cron
	Loop          *simulation.Loop
	Health        *health.Checker
	Opportunities *opportunity.Service
	Marketplace   *marketplace.Service
	Wallet        *wallet.Service
	Alerts        *alerts.Store
	Metrics       *metrics.Metrics
	Ctx           context.Context
}

// NewScheduler creates a new Scheduler over an existing cron instance, usually the
// one passed to NewCronTicker.
func NewScheduler(ctx context.Context, c *cron.Cron) *Scheduler {
	return &Scheduler{Cron: c, Ctx: ctx}
}

// RegisterAll registers the health, opportunity and marketplace refresh jobs.
// Jobs whose service is nil are skipped.
func (s *Scheduler) RegisterAll(healthCron, opportunitiesCron, marketplaceCron string) error {
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
		skip bool
	}{
		{"health", healthCron, s.healthCheck, s.Health == nil},
		{"opportunities", opportunitiesCron, s.refreshOpportunities, s.Opportunities == nil},
		{"marketplace", marketplaceCron, s.refreshMarketplace, s.Marketplace == nil},
	}
	for _, j := range jobs {
		if j.skip {
			continue
		}
		job := cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))).Then(s.wrap(j.name, j.run))
		if _, err := s.Cron.AddJob(j.spec, job); err != nil {
			return fmt.Errorf("register %s task: %w", j.name, err)
		}
	}
	return nil
}

// RunStartupJobs runs every registered job once in the background.
func (s *Scheduler) RunStartupJobs() {
	if s.Marketplace != nil {
		go s.wrap("marketplace", s.refreshMarketplace).Run()
	}
	if s.Opportunities != nil {
		go s.wrap("opportunities", s.refreshOpportunities).Run()
	}
	if s.Health != nil {
		go s.wrap("health", s.healthCheck).Run()
	}
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) wrap(name string, run func(ctx context.Context) error) cron.FuncJob {
	return func() {
		ctx, cancel := context.WithTimeout(s.Ctx, JobTimeout)
		defer cancel()
		err := run(ctx)
		if err != nil {
			log.Printf("[ERROR] %s job: %v", name, err)
		}
		s.Metrics.ObserveJob(name, err)
	}
}

func (s *Scheduler) healthCheck(ctx context.Context) error {
	results := s.Health.CheckAll(ctx)
	healthy := 0
	for _, r := range results {
		if r.Status == model.HealthHealthy {
			healthy++
		}
	}
	log.Printf("[INFO] health check: %d/%d services healthy", healthy, len(results))
	return nil
}

func (s *Scheduler) refreshOpportunities(ctx context.Context) error {
	return s.Opportunities.Refresh(ctx)
}

func (s *Scheduler) refreshMarketplace(ctx context.Context) error {
	return s.Marketplace.Refresh(ctx)
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/status":
		return notifier.FormatSnapshot(s.Loop.Snapshot())
	case "/start":
		if !s.Loop.Start("telegram") {
			return "Already running."
		}
		return "▶️ Sequence started."
	case "/stop":
		if !s.Loop.Stop("telegram") {
			return "Already idle."
		}
		return "⏹ Sequence aborted."
	case "/pause":
		if !s.Loop.Pause("telegram") {
			return "Nothing to pause."
		}
		return "⏸ Sequence paused."
	case "/wallet":
		if s.Wallet == nil {
			return "Wallet is not configured."
		}
		w, err := s.Wallet.Load(ctx)
		if err != nil {
			log.Printf("[ERROR] wallet command: %v", err)
			return "❌ Wallet unavailable: " + err.Error()
		}
		return notifier.FormatWallet(w)
	case "/alerts":
		if s.Alerts == nil {
			return notifier.FormatAlerts(nil)
		}
		return notifier.FormatAlerts(s.Alerts.List(true))
	default:
		return notifier.Help
	}
}
