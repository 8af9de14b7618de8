package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/analytics"
	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/domain/visitor"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
)

var frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var frenchMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}

// DashboardAnalyticsService computes the reporting payloads from the
// in-memory stores. Report computation never fails: whatever the stores
// hold, a report comes back.
type DashboardAnalyticsService struct {
	cacheManager  *manager.Manager
	classifier    *intent.Classifier
	activeWindow  time.Duration
	topPagesLimit int
	trendDays     int
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewDashboardAnalyticsService creates a new reporting service.
func NewDashboardAnalyticsService(cacheManager *manager.Manager, classifier *intent.Classifier, activeWindow time.Duration, topPagesLimit, trendDays int, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DashboardAnalyticsService {
	return &DashboardAnalyticsService{
		cacheManager:  cacheManager,
		classifier:    classifier,
		activeWindow:  activeWindow,
		topPagesLimit: topPagesLimit,
		trendDays:     trendDays,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// ComputeDashboard builds the full report for one time window.
func (s *DashboardAnalyticsService) ComputeDashboard(filter analytics.Filter, customStart, customEnd *time.Time) *analytics.DashboardReport {
	start := time.Now()
	marker := s.perfTracker.StartOperation("compute_dashboard")
	defer marker.Complete()

	now := time.Now().UTC()
	window := analytics.ResolveWindow(filter, customStart, customEnd, now)

	visitors := s.cacheManager.Visitors().Visitors()
	sessions := s.cacheManager.Visitors().Sessions()
	pageViews := s.cacheManager.Visitors().PageViews()
	contactClicks := s.cacheManager.Visitors().ContactClicks()
	chats := s.cacheManager.Chats().Sessions()

	chatsByFingerprint := groupChatsByFingerprint(chats)

	report := &analytics.DashboardReport{
		Filter:        filter,
		Window:        window,
		Overview:      s.computeOverview(window, now, visitors, sessions, pageViews, chats),
		Devices:       make(map[string]int),
		Browsers:      make(map[string]int),
		Intents:       make(map[intent.Category]int),
		TopPages:      s.computeTopPages(window, pageViews),
		Trend:         s.computeTrend(now, visitors, pageViews, chats),
		VisitorGroups: s.computeVisitorGroups(window, visitors, chatsByFingerprint),
		ContactClicks: s.computeContactClicks(now, contactClicks),
	}

	for _, v := range visitors {
		if !window.Contains(v.LastSeen) {
			continue
		}
		if v.DeviceType != "" {
			report.Devices[string(v.DeviceType)]++
		}
		if v.Browser != "" {
			report.Browsers[v.Browser]++
		}
	}
	for _, c := range chats {
		if window.Contains(c.StartedAt) {
			report.Intents[c.Intent]++
		}
	}

	s.logger.Analytics().Info("Dashboard computed", "filter", filter, "visitors", len(visitors), "chats", len(chats), "duration", time.Since(start))
	marker.SetSuccess(true)
	return report
}

// ComputeLiveStats builds the payload for the live dashboard stream.
func (s *DashboardAnalyticsService) ComputeLiveStats() analytics.LiveStats {
	now := time.Now().UTC()
	today := analytics.ResolveWindow(analytics.FilterToday, nil, nil, now)
	pageViews := s.cacheManager.Visitors().PageViews()

	stats := analytics.LiveStats{Timestamp: now}
	stats.ActiveVisitors = activeFingerprintCount(pageViews, now.Add(-s.activeWindow))
	for _, v := range s.cacheManager.Visitors().Visitors() {
		if today.Contains(v.LastSeen) {
			stats.VisitorsToday++
		}
	}
	for _, pv := range pageViews {
		if today.Contains(pv.Timestamp) {
			stats.PageViewsToday++
		}
	}
	for _, c := range s.cacheManager.Chats().Sessions() {
		if today.Contains(c.StartedAt) {
			stats.ChatsToday++
		}
	}
	return stats
}

func (s *DashboardAnalyticsService) computeOverview(window analytics.Window, now time.Time, visitors []visitor.Visitor, sessions []visitor.Session, pageViews []visitor.PageView, chats []chat.Session) analytics.Overview {
	today := analytics.ResolveWindow(analytics.FilterToday, nil, nil, now)
	yesterdayRef := now.AddDate(0, 0, -1)
	yesterday := analytics.ResolveWindow(analytics.FilterToday, nil, nil, yesterdayRef)

	var overview analytics.Overview
	visitorsYesterday := 0
	for _, v := range visitors {
		if window.Contains(v.LastSeen) || window.Contains(v.FirstSeen) {
			overview.UniqueVisitors++
		}
		if today.Contains(v.LastSeen) {
			overview.VisitorsToday++
		}
		if yesterday.Contains(v.LastSeen) {
			visitorsYesterday++
		}
	}
	overview.VisitorChangePct = dayOverDayChange(visitorsYesterday, overview.VisitorsToday)

	// Active for reporting means a page view within the trailing activity
	// window. The session tracker's Active flag is a separate lifecycle
	// signal: a visitor whose browser never sent session-end must not be
	// reported active forever.
	overview.ActiveSessions = activeFingerprintCount(pageViews, now.Add(-s.activeWindow))

	var sessionDurationTotal int64
	closedSessions := 0
	for _, sess := range sessions {
		if !window.Contains(sess.StartedAt) {
			continue
		}
		overview.TotalSessions++
		if !sess.Active {
			sessionDurationTotal += sess.Duration
			closedSessions++
		}
	}
	if closedSessions > 0 {
		overview.AvgSessionDuration = float64(sessionDurationTotal) / float64(closedSessions)
	}

	var chatMessagesTotal int
	var chatDurationTotal int64
	closedChats := 0
	for _, c := range chats {
		if !window.Contains(c.StartedAt) {
			continue
		}
		overview.TotalChats++
		chatMessagesTotal += c.MessageCount
		if today.Contains(c.StartedAt) {
			overview.ChatsToday++
		}
		if c.EndedAt != nil {
			chatDurationTotal += c.Duration
			closedChats++
		}
	}
	if overview.TotalChats > 0 {
		overview.AvgChatMessages = float64(chatMessagesTotal) / float64(overview.TotalChats)
	}
	if closedChats > 0 {
		overview.AvgChatDuration = float64(chatDurationTotal) / float64(closedChats)
	}
	return overview
}

func (s *DashboardAnalyticsService) computeTopPages(window analytics.Window, pageViews []visitor.PageView) []analytics.PageCount {
	counts := make(map[string]int)
	for _, pv := range pageViews {
		if window.Contains(pv.Timestamp) {
			counts[pv.Path]++
		}
	}

	pages := make([]analytics.PageCount, 0, len(counts))
	for path, views := range counts {
		pages = append(pages, analytics.PageCount{Path: path, Views: views})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Views != pages[j].Views {
			return pages[i].Views > pages[j].Views
		}
		return pages[i].Path < pages[j].Path
	})
	if len(pages) > s.topPagesLimit {
		pages = pages[:s.topPagesLimit]
	}
	return pages
}

// computeTrend always covers the trailing fixed number of days, regardless
// of the report's filter.
func (s *DashboardAnalyticsService) computeTrend(now time.Time, visitors []visitor.Visitor, pageViews []visitor.PageView, chats []chat.Session) []analytics.TrendPoint {
	type dayBucket struct {
		newVisitors int
		pageViews   int
		newChats    int
	}
	buckets := make(map[string]*dayBucket, s.trendDays)
	trend := make([]analytics.TrendPoint, 0, s.trendDays)
	for i := s.trendDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		buckets[date] = &dayBucket{}
		trend = append(trend, analytics.TrendPoint{Date: date})
	}

	for _, v := range visitors {
		if bucket, ok := buckets[v.FirstSeen.UTC().Format("2006-01-02")]; ok {
			bucket.newVisitors++
		}
	}
	for _, pv := range pageViews {
		if bucket, ok := buckets[pv.Timestamp.UTC().Format("2006-01-02")]; ok {
			bucket.pageViews++
		}
	}
	for _, c := range chats {
		if bucket, ok := buckets[c.StartedAt.UTC().Format("2006-01-02")]; ok {
			bucket.newChats++
		}
	}

	for i := range trend {
		bucket := buckets[trend[i].Date]
		trend[i].NewVisitors = bucket.newVisitors
		trend[i].PageViews = bucket.pageViews
		trend[i].NewChats = bucket.newChats
	}
	return trend
}

func (s *DashboardAnalyticsService) computeVisitorGroups(window analytics.Window, visitors []visitor.Visitor, chatsByFingerprint map[string][]chat.Session) []analytics.VisitorGroup {
	rowsByDay := make(map[string][]analytics.VisitorRow)
	for _, v := range visitors {
		if !window.Contains(v.LastSeen) {
			continue
		}
		row := analytics.VisitorRow{
			Fingerprint: v.Fingerprint,
			DeviceType:  v.DeviceType,
			Browser:     v.Browser,
			VisitCount:  v.VisitCount,
			LastSeen:    v.LastSeen,
			HasChatted:  v.HasChatted,
		}
		s.enrichFromChats(&row, chatsByFingerprint[v.Fingerprint])
		day := v.LastSeen.UTC().Format("2006-01-02")
		rowsByDay[day] = append(rowsByDay[day], row)
	}

	days := make([]string, 0, len(rowsByDay))
	for day := range rowsByDay {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	groups := make([]analytics.VisitorGroup, 0, len(days))
	for _, day := range days {
		rows := rowsByDay[day]
		sort.Slice(rows, func(i, j int) bool { return rows[i].LastSeen.After(rows[j].LastSeen) })
		groups = append(groups, analytics.VisitorGroup{
			Day:      frenchDayLabel(day),
			Visitors: rows,
		})
	}
	return groups
}

// enrichFromChats joins the visitor row with its most recent chat session:
// captured name and phone, detected intent, location, and whether the
// assistant confirmed an appointment.
func (s *DashboardAnalyticsService) enrichFromChats(row *analytics.VisitorRow, chats []chat.Session) {
	if len(chats) == 0 {
		return
	}
	latest := chats[0]
	for _, c := range chats[1:] {
		if c.StartedAt.After(latest.StartedAt) {
			latest = c
		}
	}

	row.Intent = latest.Intent
	for _, c := range chats {
		if row.Name == "" && c.Name != "" {
			row.Name = c.Name
		}
		if row.Phone == "" && c.Phone != "" {
			row.Phone = c.Phone
		}
		if c.Intent == intent.CategoryAppointment && s.classifier.ConfirmsBooking(c.AssistantTexts()) {
			row.HasBooked = true
		}
	}
	if latest.Location != nil && latest.Location.City != "" {
		row.Location = fmt.Sprintf("%s, %s", latest.Location.City, latest.Location.Country)
	} else if latest.Location != nil {
		row.Location = latest.Location.Country
	}
}

func (s *DashboardAnalyticsService) computeContactClicks(now time.Time, clicks []visitor.ContactClick) analytics.ContactClickStats {
	today := analytics.ResolveWindow(analytics.FilterToday, nil, nil, now)
	stats := analytics.ContactClickStats{
		ByChannel: make(map[visitor.ContactChannel]analytics.ChannelStats),
	}
	for _, click := range clicks {
		stats.Total++
		channel := stats.ByChannel[click.Channel]
		channel.Total++
		if today.Contains(click.Timestamp) {
			stats.Today++
			channel.Today++
		}
		stats.ByChannel[click.Channel] = channel
	}
	return stats
}

// dayOverDayChange follows the dashboard's convention: no traffic either
// day reads as 0%, traffic appearing from nothing reads as +100%.
func dayOverDayChange(yesterday, today int) float64 {
	if yesterday == 0 {
		if today == 0 {
			return 0
		}
		return 100
	}
	return float64(today-yesterday) / float64(yesterday) * 100
}

// activeFingerprintCount counts the distinct visitors with a page view after
// the cutoff. This is the reporting-side activity signal.
func activeFingerprintCount(pageViews []visitor.PageView, cutoff time.Time) int {
	active := make(map[string]struct{})
	for _, pv := range pageViews {
		if pv.Timestamp.After(cutoff) {
			active[pv.Fingerprint] = struct{}{}
		}
	}
	return len(active)
}

func groupChatsByFingerprint(chats []chat.Session) map[string][]chat.Session {
	grouped := make(map[string][]chat.Session)
	for _, c := range chats {
		grouped[c.Fingerprint] = append(grouped[c.Fingerprint], c)
	}
	return grouped
}

// frenchDayLabel renders an ISO day as the dashboard's French heading, for
// example "lundi 31 août 2026".
func frenchDayLabel(isoDay string) string {
	t, err := time.Parse("2006-01-02", isoDay)
	if err != nil {
		return isoDay
	}
	return fmt.Sprintf("%s %d %s %d", frenchWeekdays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}
