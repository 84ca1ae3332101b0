package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ArbiOps/internal/alerts"
	"ArbiOps/internal/model"
	"ArbiOps/internal/opportunity"
	"ArbiOps/internal/simulation"
	"ArbiOps/internal/wallet"
)

// snapshotView adds the user-facing ROAS figure to a snapshot.
type snapshotView struct {
	*model.Snapshot
	DisplayROI float64 `json:"display_roi"`
}

func newSnapshotView(s *model.Snapshot) snapshotView {
	return snapshotView{Snapshot: s, DisplayROI: s.DisplayROI()}
}

func (s *Server) getSimulation(c *gin.Context) {
	c.JSON(http.StatusOK, newSnapshotView(s.deps.Sim.Snapshot()))
}

func (s *Server) postAction(c *gin.Context) {
	changed, status, err := applyAction(s.deps.Sim, c.Param("action"), "api")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed, "status": status})
}

func (s *Server) putControls(c *gin.Context) {
	var ctl model.Controls
	if err := c.ShouldBindJSON(&ctl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := s.deps.Sim.SetControls(ctl)
	switch {
	case errors.Is(err, model.ErrInvalidControls):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, simulation.ErrControlsLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"controls": ctl, "risk_level": ctl.RiskLevel()})
	}
}

type stageView struct {
	model.StageInfo
	Active bool `json:"active"`
}

func (s *Server) getStages(c *gin.Context) {
	active := s.deps.Sim.Snapshot().ActiveStage
	out := make([]stageView, len(model.StageCatalog))
	for i, info := range model.StageCatalog {
		out[i] = stageView{StageInfo: info, Active: info.ID == active}
	}
	c.JSON(http.StatusOK, gin.H{"stages": out, "active": active})
}

func (s *Server) getListings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"listings": s.deps.Marketplace.Listings()})
}

func (s *Server) getMarketplaceStats(c *gin.Context) {
	resp := gin.H{"stats": s.deps.Marketplace.Stats()}
	if err := s.deps.Marketplace.LastError(); err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getOpportunities(c *gin.Context) {
	crit := opportunity.DefaultCriteria()
	if v := c.Query("minMargin"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minMargin must be a number"})
			return
		}
		crit.MinMargin = f
	}
	if v := c.Query("maxPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice must be a number"})
			return
		}
		crit.MaxPrice = f
	}
	opps := s.deps.Opportunities.List(crit)
	c.JSON(http.StatusOK, gin.H{
		"opportunities": opps,
		"count":         len(opps),
		"criteria":      crit,
		"updatedAt":     s.deps.Opportunities.UpdatedAt(),
	})
}

func (s *Server) refreshOpportunities(c *gin.Context) {
	if err := s.deps.Opportunities.Refresh(c.Request.Context()); err != nil {
		log.Printf("[ERROR] refresh opportunities: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(s.deps.Opportunities.List(opportunity.Criteria{}))})
}

func (s *Server) listOpportunity(c *gin.Context) {
	res, err := s.deps.Opportunities.AutoList(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, opportunity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, opportunity.ErrInvalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case err != nil:
		log.Printf("[ERROR] auto-list: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) dismissOpportunity(c *gin.Context) {
	if err := s.deps.Opportunities.Dismiss(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": c.Param("id")})
}

func (s *Server) getWallet(c *gin.Context) {
	w, err := s.deps.Wallet.Load(c.Request.Context())
	if err != nil {
		log.Printf("[ERROR] load wallet: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, w)
}

type payoutBody struct {
	Amount      decimal.Decimal `json:"amount"`
	BankAccount string          `json:"bankAccount"`
}

func (s *Server) postPayout(c *gin.Context) {
	var body payoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := s.deps.Wallet.RequestPayout(c.Request.Context(), model.PayoutRequest{
		Amount:      body.Amount,
		BankAccount: body.BankAccount,
	})
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount), errors.Is(err, wallet.ErrNoBankAccount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wallet.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusAccepted, gin.H{"status": "submitted"})
	}
}

func (s *Server) postAutoPayout(c *gin.Context) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled is required"})
		return
	}
	if err := s.deps.Wallet.SetAutoPayout(c.Request.Context(), *body.Enabled); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"autoPayoutEnabled": *body.Enabled})
}

func (s *Server) getAlerts(c *gin.Context) {
	unread := c.Query("filter") == "unread" || c.Query("unread") == "true"
	c.JSON(http.StatusOK, gin.H{
		"alerts":      s.deps.Alerts.List(unread),
		"unreadCount": s.deps.Alerts.UnreadCount(),
	})
}

func (s *Server) readAllAlerts(c *gin.Context) {
	s.deps.Alerts.MarkAllRead()
	c.JSON(http.StatusOK, gin.H{"unreadCount": 0})
}

func (s *Server) readAlert(c *gin.Context) {
	s.alertResult(c, s.deps.Alerts.MarkRead(c.Param("id")))
}

func (s *Server) deleteAlert(c *gin.Context) {
	s.alertResult(c, s.deps.Alerts.Delete(c.Param("id")))
}

func (s *Server) alertResult(c *gin.Context, err error) {
	if errors.Is(err, alerts.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": s.deps.Alerts.UnreadCount()})
}

func (s *Server) getSettings(c *gin.Context) {
	st, err := s.deps.Settings.Settings(c.Request.Context())
	resp := gin.H{"settings": st}
	if err != nil {
		log.Printf("[WARN] load settings, using defaults: %v", err)
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) putSettings(c *gin.Context) {
	var st model.ArbitrageSettings
	if err := c.ShouldBindJSON(&st); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := st.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.deps.Settings.SaveSettings(c.Request.Context(), st); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": st})
}

func (s *Server) getServiceHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": s.deps.Health.Results()})
}

func (s *Server) checkServiceHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": s.deps.Health.CheckAll(c.Request.Context())})
}
