package model

// SystemStatus drives whether the simulation loop runs.
type SystemStatus string

const (
	StatusIdle   SystemStatus = "IDLE"
	StatusActive SystemStatus = "ACTIVE"
	StatusPaused SystemStatus = "PAUSED"
)

// PipelineStage is one of the six illustrative phases of the arbitrage workflow.
// The zero value means no stage is active.
type PipelineStage string

const (
	StageNone           PipelineStage = ""
	StageFindProducts   PipelineStage = "FIND_PRODUCTS"
	StageCreateListings PipelineStage = "CREATE_LISTINGS"
	StageGenerateAds    PipelineStage = "GENERATE_ADS"
	StageRunCampaigns   PipelineStage = "RUN_CAMPAIGNS"
	StageOptimizeROI    PipelineStage = "OPTIMIZE_ROI"
	StageFulfillOrders  PipelineStage = "FULFILL_ORDERS"
)

// Stages lists every pipeline stage in workflow order.
var Stages = []PipelineStage{
	StageFindProducts,
	StageCreateListings,
	StageGenerateAds,
	StageRunCampaigns,
	StageOptimizeROI,
	StageFulfillOrders,
}

// StageInfo is the display metadata the dashboard shows for a stage.
type StageInfo struct {
	ID          PipelineStage `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ActiveText  string        `json:"active_text"`
}

// StageCatalog holds display metadata in workflow order.
var StageCatalog = []StageInfo{
	{StageFindProducts, "Find Products", "Scans 13+ retailers every 60s. 10,000+ products/hr.", "SCANNING RETAILERS..."},
	{StageCreateListings, "Create Listings", "Auto-generates SEO pages with checkout.", "GENERATING PAGES..."},
	{StageGenerateAds, "Generate Ads", "Converts images to video ads in 30s.", "RENDERING VIDEOS..."},
	{StageRunCampaigns, "Run Campaigns", "Deploys to YT, TikTok, Meta automatically.", "CAMPAIGNS LIVE..."},
	{StageOptimizeROI, "Optimize ROI", "Real-time budget shifts. Target: 300% ROAS.", "OPTIMIZING 24/7..."},
	{StageFulfillOrders, "Fulfill Orders", "Auto-purchase & ship. Zero inventory.", "PROCESSING ORDERS..."},
}

// Valid reports whether s is one of the six stages.
func (s PipelineStage) Valid() bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

// Info returns the catalog entry for s.
func (s PipelineStage) Info() (StageInfo, bool) {
	for _, info := range StageCatalog {
		if info.ID == s {
			return info, true
		}
	}
	return StageInfo{}, false
}
