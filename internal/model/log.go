package model

// LogCategory tags a terminal log line.
type LogCategory string

const (
	CategoryScan     LogCategory = "SCAN"
	CategoryList     LogCategory = "LIST"
	CategoryAd       LogCategory = "AD"
	CategoryCampaign LogCategory = "CAMPAIGN"
	CategoryROI      LogCategory = "ROI"
	CategoryFulfill  LogCategory = "FULFILL"
	CategorySystem   LogCategory = "SYSTEM"
)

// GeneratedCategories are the categories an external log source may emit.
// SYSTEM is reserved for lines produced by the loop itself.
var GeneratedCategories = []LogCategory{
	CategoryScan, CategoryList, CategoryAd, CategoryCampaign, CategoryROI, CategoryFulfill,
}

// Generated reports whether c may come from an external log source.
func (c LogCategory) Generated() bool {
	for _, g := range GeneratedCategories {
		if g == c {
			return true
		}
	}
	return false
}

// LogEntry is one immutable line of the dashboard terminal.
type LogEntry struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Category  LogCategory `json:"category"`
	Message   string      `json:"message"`
}

// LogTimeLayout formats LogEntry.Timestamp.
const LogTimeLayout = "15:04:05"
