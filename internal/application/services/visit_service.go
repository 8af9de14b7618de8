package services

import (
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/visitor"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
)

// PageViewRequest carries a page view event from the tracking snippet.
type PageViewRequest struct {
	Fingerprint string `json:"fingerprint" binding:"required"`
	SessionID   string `json:"sessionId"`
	Path        string `json:"path" binding:"required"`
	Title       string `json:"title"`
	Referrer    string `json:"referrer"`

	DeviceType     string `json:"deviceType"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
	OS             string `json:"os"`
	ScreenWidth    int    `json:"screenWidth"`
	ScreenHeight   int    `json:"screenHeight"`
	Language       string `json:"language"`
}

// ContactClickRequest carries a click on an email, phone or whatsapp link.
// Value is the raw link target (mailto/tel/wa.me); Timestamp is the client
// clock reading, used when present so offline-queued clicks keep their real
// moment.
type ContactClickRequest struct {
	Fingerprint string     `json:"fingerprint" binding:"required"`
	Channel     string     `json:"channel" binding:"required"`
	Value       string     `json:"value"`
	Page        string     `json:"page"`
	Timestamp   *time.Time `json:"timestamp"`
}

// VisitService processes visitor-facing tracking events.
type VisitService struct {
	cacheManager *manager.Manager
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewVisitService creates a new visit service.
func NewVisitService(cacheManager *manager.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *VisitService {
	return &VisitService{
		cacheManager: cacheManager,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// ProcessPageView upserts the visitor, resolves its session and appends the
// page view. It returns the session id the client should carry forward: the
// supplied one when it is still active and owned by the same visitor, a
// fresh one otherwise.
func (s *VisitService) ProcessPageView(req PageViewRequest, clientIP string) string {
	start := time.Now()
	marker := s.perfTracker.StartOperation("process_page_view")
	defer marker.Complete()

	now := time.Now().UTC()
	visitors := s.cacheManager.Visitors()

	visitors.RecordVisit(req.Fingerprint, visitor.Attributes{
		IPAddress:      clientIP,
		DeviceType:     visitor.DeviceType(req.DeviceType),
		Browser:        req.Browser,
		BrowserVersion: req.BrowserVersion,
		OS:             req.OS,
		ScreenWidth:    req.ScreenWidth,
		ScreenHeight:   req.ScreenHeight,
		Language:       req.Language,
		Referrer:       req.Referrer,
	}, now)

	sessionID := req.SessionID
	if !s.sessionUsable(sessionID, req.Fingerprint) {
		session := visitors.StartSession(req.Fingerprint, now)
		sessionID = session.ID
	}

	visitors.AppendPageView(req.Fingerprint, sessionID, req.Path, req.Title, req.Referrer, now)

	s.logger.Events().Debug("Page view processed", "fingerprint", req.Fingerprint, "path", req.Path, "sessionId", sessionID, "duration", time.Since(start))
	marker.SetSuccess(true)
	return sessionID
}

// ProcessSessionEnd closes a session. Ending an unknown or already closed
// session is acknowledged without effect.
func (s *VisitService) ProcessSessionEnd(sessionID string) {
	marker := s.perfTracker.StartOperation("process_session_end")
	defer marker.Complete()

	now := time.Now().UTC()
	ended := s.cacheManager.Visitors().EndSession(sessionID, now)
	s.logger.Events().Debug("Session end processed", "sessionId", sessionID, "ended", ended)
	marker.SetSuccess(true)
}

// ProcessContactClick records a click on a contact channel link. Clicks from
// unknown visitors are dropped.
func (s *VisitService) ProcessContactClick(req ContactClickRequest) {
	marker := s.perfTracker.StartOperation("process_contact_click")
	defer marker.Complete()

	channel := visitor.ContactChannel(req.Channel)
	switch channel {
	case visitor.ChannelEmail, visitor.ChannelPhone, visitor.ChannelWhatsApp:
	default:
		s.logger.Events().Warn("Contact click with unknown channel dropped", "fingerprint", req.Fingerprint, "channel", req.Channel)
		return
	}

	when := time.Now().UTC()
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		when = req.Timestamp.UTC()
	}

	_, recorded := s.cacheManager.Visitors().AppendContactClick(req.Fingerprint, channel, req.Value, req.Page, when)
	if !recorded {
		s.logger.Events().Warn("Contact click from unknown visitor dropped", "fingerprint", req.Fingerprint, "channel", req.Channel)
		return
	}

	s.logger.Events().Debug("Contact click processed", "fingerprint", req.Fingerprint, "channel", channel)
	marker.SetSuccess(true)
}

func (s *VisitService) sessionUsable(sessionID, fingerprint string) bool {
	if sessionID == "" {
		return false
	}
	session, exists := s.cacheManager.Visitors().GetSession(sessionID)
	return exists && session.Active && session.Fingerprint == fingerprint
}
