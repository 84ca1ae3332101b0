// Package server exposes the dashboard over HTTP and websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ArbiOps/internal/alerts"
	"ArbiOps/internal/health"
	"ArbiOps/internal/marketplace"
	"ArbiOps/internal/metrics"
	"ArbiOps/internal/model"
	"ArbiOps/internal/opportunity"
	"ArbiOps/internal/wallet"
)

// Simulation is the control surface of the simulation loop.
type Simulation interface {
	Snapshot() *model.Snapshot
	Subscribe(buffer int) (<-chan *model.Snapshot, func())
	Start(origin string) bool
	Stop(origin string) bool
	Pause(origin string) bool
	Toggle(origin string) model.SystemStatus
	SetControls(c model.Controls) error
}

// SettingsStore loads and saves the arbitrage settings.
type SettingsStore interface {
	Settings(ctx context.Context) (model.ArbitrageSettings, error)
	SaveSettings(ctx context.Context, s model.ArbitrageSettings) error
}

// ErrUnknownAction is returned for a control action other than toggle, start,
// stop or pause.
var ErrUnknownAction = errors.New("unknown action")

// Deps are the services behind the API. Everything but Sim may be nil, in
// which case the matching routes are not registered.
type Deps struct {
	Sim           Simulation
	Marketplace   *marketplace.Service
	Opportunities *opportunity.Service
	Wallet        *wallet.Service
	Alerts        *alerts.Store
	Health        *health.Checker
	Settings      SettingsStore
	Metrics       *metrics.Metrics
}

// Server is the dashboard HTTP server.
type Server struct {
	deps   Deps
	hub    *Hub
	engine *gin.Engine
}

// New builds the gin engine and registers every route.
func New(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), observe(deps.Metrics))

	s := &Server{deps: deps, hub: NewHub(deps.Sim, deps.Metrics), engine: r}
	s.routes()
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Println("[INFO] HTTP server stopped")
	return nil
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}
	r.GET("/ws", func(c *gin.Context) { s.hub.handle(c.Writer, c.Request) })

	api := r.Group("/api")
	{
		sim := api.Group("/simulation")
		sim.GET("", s.getSimulation)
		sim.POST("/:action", s.postAction)
		sim.PUT("/controls", s.putControls)
		api.GET("/pipeline/stages", s.getStages)
	}
	if s.deps.Marketplace != nil {
		api.GET("/marketplace", s.getListings)
		api.GET("/marketplace/stats", s.getMarketplaceStats)
	}
	if s.deps.Opportunities != nil {
		opp := api.Group("/opportunities")
		opp.GET("", s.getOpportunities)
		opp.POST("/refresh", s.refreshOpportunities)
		opp.POST("/:id/list", s.listOpportunity)
		opp.POST("/:id/dismiss", s.dismissOpportunity)
	}
	if s.deps.Wallet != nil {
		w := api.Group("/wallet")
		w.GET("", s.getWallet)
		w.POST("/payouts", s.postPayout)
		w.POST("/auto-payout", s.postAutoPayout)
	}
	if s.deps.Alerts != nil {
		a := api.Group("/alerts")
		a.GET("", s.getAlerts)
		a.POST("/read-all", s.readAllAlerts)
		a.POST("/:id/read", s.readAlert)
		a.DELETE("/:id", s.deleteAlert)
	}
	if s.deps.Settings != nil {
		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.putSettings)
	}
	if s.deps.Health != nil {
		api.GET("/health/services", s.getServiceHealth)
		api.POST("/health/services/check", s.checkServiceHealth)
	}
}

// observe records request metrics by route template.
func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// applyAction runs a named control action and reports whether the status changed.
func applyAction(sim Simulation, action, origin string) (bool, model.SystemStatus, error) {
	switch action {
	case "toggle":
		before := sim.Snapshot().Status
		after := sim.Toggle(origin)
		return before != after, after, nil
	case "start":
		changed := sim.Start(origin)
		return changed, sim.Snapshot().Status, nil
	case "stop":
		changed := sim.Stop(origin)
		return changed, sim.Snapshot().Status, nil
	case "pause":
		changed := sim.Pause(origin)
		return changed, sim.Snapshot().Status, nil
	default:
		return false, "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}
