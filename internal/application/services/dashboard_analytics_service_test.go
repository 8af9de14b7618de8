package services

import (
	"testing"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/analytics"
	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/domain/visitor"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboardService(t *testing.T) (*DashboardAnalyticsService, *manager.Manager) {
	t.Helper()
	classifier := intent.NewClassifier()
	cacheManager := manager.NewManager(classifier, nil, logging.NewDiscardLogger())
	service := NewDashboardAnalyticsService(cacheManager, classifier, 30*time.Minute, 10, 30, logging.NewDiscardLogger(), performance.NewTracker())
	return service, cacheManager
}

func TestComputeDashboardEmptyStores(t *testing.T) {
	service, _ := newTestDashboardService(t)

	report := service.ComputeDashboard(analytics.Filter30Days, nil, nil)
	require.NotNil(t, report)

	assert.Equal(t, analytics.Filter30Days, report.Filter)
	assert.Zero(t, report.Overview.UniqueVisitors)
	assert.Zero(t, report.Overview.VisitorChangePct)
	assert.Empty(t, report.TopPages)
	assert.Empty(t, report.VisitorGroups)
	assert.Len(t, report.Trend, 30, "trend always spans the full trailing range")
	assert.Zero(t, report.ContactClicks.Total)
}

func TestComputeDashboardCountsAndBreakdowns(t *testing.T) {
	service, cacheManager := newTestDashboardService(t)
	now := time.Now().UTC()
	visitors := cacheManager.Visitors()

	visitors.RecordVisit("fp-today", visitor.Attributes{DeviceType: visitor.DeviceMobile, Browser: "Safari"}, now)
	visitors.RecordVisit("fp-yesterday", visitor.Attributes{DeviceType: visitor.DeviceDesktop, Browser: "Firefox"}, now.AddDate(0, 0, -1))
	visitors.RecordVisit("fp-old", visitor.Attributes{DeviceType: visitor.DeviceDesktop, Browser: "Firefox"}, now.AddDate(0, 0, -40))

	session := visitors.StartSession("fp-today", now.Add(-10*time.Minute))
	visitors.AppendPageView("fp-today", session.ID, "/services", "Services", "", now)
	visitors.AppendPageView("fp-today", session.ID, "/services", "Services", "", now)
	visitors.AppendPageView("fp-today", session.ID, "/contact", "Contact", "", now)
	visitors.AppendContactClick("fp-today", visitor.ChannelPhone, "tel:+33400000000", "/contact", now)

	report := service.ComputeDashboard(analytics.Filter7Days, nil, nil)

	assert.Equal(t, 2, report.Overview.UniqueVisitors, "the 40-day-old visitor is outside the window")
	assert.Equal(t, 1, report.Overview.VisitorsToday)
	assert.Equal(t, 1, report.Overview.TotalSessions)
	assert.Equal(t, 1, report.Overview.ActiveSessions)

	require.Len(t, report.TopPages, 2)
	assert.Equal(t, analytics.PageCount{Path: "/services", Views: 2}, report.TopPages[0])
	assert.Equal(t, analytics.PageCount{Path: "/contact", Views: 1}, report.TopPages[1])

	assert.Equal(t, 1, report.Devices["mobile"])
	assert.Equal(t, 1, report.Devices["desktop"])
	assert.Equal(t, 1, report.Browsers["Safari"])

	assert.Equal(t, 1, report.ContactClicks.Total)
	assert.Equal(t, 1, report.ContactClicks.ByChannel[visitor.ChannelPhone].Today)

	// Trend buckets page views on the current day.
	last := report.Trend[len(report.Trend)-1]
	assert.Equal(t, now.Format("2006-01-02"), last.Date)
	assert.Equal(t, 3, last.PageViews)
	assert.Equal(t, 1, last.NewVisitors)
}

func TestComputeDashboardTopPagesLimit(t *testing.T) {
	service, cacheManager := newTestDashboardService(t)
	now := time.Now().UTC()
	visitors := cacheManager.Visitors()
	visitors.RecordVisit("fp-1", visitor.Attributes{}, now)
	session := visitors.StartSession("fp-1", now)

	paths := []string{"/a", "/b", "/c", "/d", "/e", "/f", "/g", "/h", "/i", "/j", "/k", "/l"}
	for i, path := range paths {
		for j := 0; j <= i; j++ {
			visitors.AppendPageView("fp-1", session.ID, path, "", "", now)
		}
	}

	report := service.ComputeDashboard(analytics.FilterToday, nil, nil)
	require.Len(t, report.TopPages, 10)
	assert.Equal(t, "/l", report.TopPages[0].Path, "most viewed first")
	assert.Equal(t, 12, report.TopPages[0].Views)
}

func TestComputeDashboardVisitorGroups(t *testing.T) {
	service, cacheManager := newTestDashboardService(t)
	now := time.Now().UTC()

	cacheManager.Visitors().RecordVisit("fp-1", visitor.Attributes{DeviceType: visitor.DeviceMobile}, now)
	cacheManager.Visitors().MarkChatted("fp-1")

	chatSession := cacheManager.Chats().Start("fp-1", "Claire", "0601020304", "mobile", "Safari", &chat.Location{Country: "France", City: "Nice"}, now)
	cacheManager.Chats().AppendMessage(chatSession.ID, chat.SenderUser, "je veux un rendez-vous demain", now)
	cacheManager.Chats().AppendMessage(chatSession.ID, chat.SenderAssistant, "C'est noté, votre rendez-vous est confirmé.", now)

	report := service.ComputeDashboard(analytics.FilterToday, nil, nil)
	require.Len(t, report.VisitorGroups, 1)

	group := report.VisitorGroups[0]
	assert.Contains(t, group.Day, frenchMonths[now.Month()-1], "day heading is in French")
	require.Len(t, group.Visitors, 1)

	row := group.Visitors[0]
	assert.Equal(t, "Claire", row.Name)
	assert.Equal(t, "0601020304", row.Phone)
	assert.Equal(t, "Nice, France", row.Location)
	assert.Equal(t, intent.CategoryAppointment, row.Intent)
	assert.True(t, row.HasChatted)
	assert.True(t, row.HasBooked, "assistant confirmation marks the booking")

	assert.Equal(t, 1, report.Intents[intent.CategoryAppointment])
}

func TestComputeDashboardHasBookedNeedsAppointmentIntent(t *testing.T) {
	service, cacheManager := newTestDashboardService(t)
	now := time.Now().UTC()

	cacheManager.Visitors().RecordVisit("fp-1", visitor.Attributes{}, now)
	chatSession := cacheManager.Chats().Start("fp-1", "", "", "", "", nil, now)
	cacheManager.Chats().AppendMessage(chatSession.ID, chat.SenderUser, "quel est le prix ?", now)
	cacheManager.Chats().AppendMessage(chatSession.ID, chat.SenderAssistant, "C'est confirmé.", now)

	report := service.ComputeDashboard(analytics.FilterToday, nil, nil)
	require.Len(t, report.VisitorGroups, 1)
	assert.False(t, report.VisitorGroups[0].Visitors[0].HasBooked, "confirmation without appointment intent does not count")
}

func TestDayOverDayChange(t *testing.T) {
	tests := []struct {
		name      string
		yesterday int
		today     int
		expected  float64
	}{
		{"no traffic either day", 0, 0, 0},
		{"traffic from nothing", 0, 5, 100},
		{"doubled", 4, 8, 100},
		{"halved", 8, 4, -50},
		{"flat", 6, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, dayOverDayChange(tt.yesterday, tt.today), 0.0001)
		})
	}
}

func TestFrenchDayLabel(t *testing.T) {
	assert.Equal(t, "lundi 31 août 2026", frenchDayLabel("2026-08-31"))
	assert.Equal(t, "dimanche 15 juin 2025", frenchDayLabel("2025-06-15"))
	assert.Equal(t, "not-a-date", frenchDayLabel("not-a-date"))
}

func TestComputeLiveStats(t *testing.T) {
	service, cacheManager := newTestDashboardService(t)
	now := time.Now().UTC()
	visitors := cacheManager.Visitors()

	visitors.RecordVisit("fp-active", visitor.Attributes{}, now.Add(-5*time.Minute))
	active := visitors.StartSession("fp-active", now.Add(-5*time.Minute))
	visitors.AppendPageView("fp-active", active.ID, "/", "", "", now.Add(-5*time.Minute))

	visitors.RecordVisit("fp-idle", visitor.Attributes{}, now.Add(-2*time.Hour))
	idle := visitors.StartSession("fp-idle", now.Add(-2*time.Hour))
	visitors.AppendPageView("fp-idle", idle.ID, "/", "", "", now.Add(-2*time.Hour))

	stats := service.ComputeLiveStats()
	assert.Equal(t, 1, stats.ActiveVisitors, "only visitors with a page view inside the activity window")
	assert.False(t, stats.Timestamp.IsZero())
}

func TestComputeDashboardActiveSessionsFollowPageViewRecency(t *testing.T) {
	service, cacheManager := newTestDashboardService(t)
	now := time.Now().UTC()
	visitors := cacheManager.Visitors()

	// The browser never sent session-end, so the tracker still flags the
	// session active two hours after the last page view.
	visitors.RecordVisit("fp-stale", visitor.Attributes{}, now.Add(-2*time.Hour))
	stale := visitors.StartSession("fp-stale", now.Add(-2*time.Hour))
	visitors.AppendPageView("fp-stale", stale.ID, "/", "", "", now.Add(-2*time.Hour))

	report := service.ComputeDashboard(analytics.Filter7Days, nil, nil)
	assert.Equal(t, 1, report.Overview.TotalSessions)
	assert.Equal(t, 0, report.Overview.ActiveSessions, "no page view inside the activity window")

	visitors.AppendPageView("fp-stale", stale.ID, "/services", "", "", now)
	report = service.ComputeDashboard(analytics.Filter7Days, nil, nil)
	assert.Equal(t, 1, report.Overview.ActiveSessions)
}
