package analytics

import (
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/domain/visitor"
)

// Overview holds the dashboard's headline counters.
type Overview struct {
	UniqueVisitors     int     `json:"uniqueVisitors"`
	VisitorsToday      int     `json:"visitorsToday"`
	VisitorChangePct   float64 `json:"visitorChangePct"`
	TotalSessions      int     `json:"totalSessions"`
	ActiveSessions     int     `json:"activeSessions"`
	AvgSessionDuration float64 `json:"avgSessionDuration"`
	TotalChats         int     `json:"totalChats"`
	ChatsToday         int     `json:"chatsToday"`
	AvgChatMessages    float64 `json:"avgChatMessages"`
	AvgChatDuration    float64 `json:"avgChatDuration"`
}

// PageCount is one row of the top-pages breakdown.
type PageCount struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// TrendPoint is one day of the trailing 30-day trend.
type TrendPoint struct {
	Date        string `json:"date"`
	NewVisitors int    `json:"newVisitors"`
	PageViews   int    `json:"pageViews"`
	NewChats    int    `json:"newChats"`
}

// VisitorRow is one visitor in the grouped listing, enriched with
// chat-derived fields joined by fingerprint.
type VisitorRow struct {
	Fingerprint string             `json:"fingerprint"`
	Name        string             `json:"name,omitempty"`
	Phone       string             `json:"phone,omitempty"`
	Location    string             `json:"location,omitempty"`
	DeviceType  visitor.DeviceType `json:"deviceType,omitempty"`
	Browser     string             `json:"browser,omitempty"`
	VisitCount  int                `json:"visitCount"`
	LastSeen    time.Time          `json:"lastSeen"`
	Intent      intent.Category    `json:"intent,omitempty"`
	HasChatted  bool               `json:"hasChatted"`
	HasBooked   bool               `json:"hasBooked"`
}

// VisitorGroup is the visitor listing for one calendar day, newest first.
type VisitorGroup struct {
	Day      string       `json:"day"`
	Visitors []VisitorRow `json:"visitors"`
}

// ChannelStats is the contact-click tally for one channel.
type ChannelStats struct {
	Total int `json:"total"`
	Today int `json:"today"`
}

// ContactClickStats breaks contact clicks out per channel.
type ContactClickStats struct {
	Total     int                                     `json:"total"`
	Today     int                                     `json:"today"`
	ByChannel map[visitor.ContactChannel]ChannelStats `json:"byChannel"`
}

// DashboardReport is the full reporting payload for one time window.
type DashboardReport struct {
	Filter        Filter                  `json:"filter"`
	Window        Window                  `json:"window"`
	Overview      Overview                `json:"overview"`
	Devices       map[string]int          `json:"devices"`
	Browsers      map[string]int          `json:"browsers"`
	Intents       map[intent.Category]int `json:"intents"`
	TopPages      []PageCount             `json:"topPages"`
	Trend         []TrendPoint            `json:"trend"`
	VisitorGroups []VisitorGroup          `json:"visitorGroups"`
	ContactClicks ContactClickStats       `json:"contactClicks"`
}

// LiveStats is the payload pushed over the live dashboard stream.
type LiveStats struct {
	ActiveVisitors int       `json:"activeVisitors"`
	VisitorsToday  int       `json:"visitorsToday"`
	PageViewsToday int       `json:"pageViewsToday"`
	ChatsToday     int       `json:"chatsToday"`
	Timestamp      time.Time `json:"timestamp"`
}
