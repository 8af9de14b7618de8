package services

import (
	"testing"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/domain/visitor"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVisitService(t *testing.T) (*VisitService, *manager.Manager) {
	t.Helper()
	cacheManager := manager.NewManager(intent.NewClassifier(), nil, logging.NewDiscardLogger())
	return NewVisitService(cacheManager, logging.NewDiscardLogger(), performance.NewTracker()), cacheManager
}

func TestProcessPageViewCreatesVisitorAndSession(t *testing.T) {
	service, cacheManager := newTestVisitService(t)

	sessionID := service.ProcessPageView(PageViewRequest{
		Fingerprint: "fp-1",
		Path:        "/",
		Title:       "Accueil",
		DeviceType:  "mobile",
		Browser:     "Safari",
	}, "203.0.113.7")
	require.NotEmpty(t, sessionID)

	v, ok := cacheManager.Visitors().GetVisitor("fp-1")
	require.True(t, ok)
	assert.Equal(t, 1, v.VisitCount)
	assert.Equal(t, "203.0.113.7", v.IPAddress)
	assert.Equal(t, visitor.DeviceMobile, v.DeviceType)

	session, ok := cacheManager.Visitors().GetSession(sessionID)
	require.True(t, ok)
	assert.True(t, session.Active)
	assert.Len(t, cacheManager.Visitors().PageViews(), 1)
}

func TestProcessPageViewReusesActiveSession(t *testing.T) {
	service, _ := newTestVisitService(t)

	first := service.ProcessPageView(PageViewRequest{Fingerprint: "fp-1", Path: "/"}, "")
	second := service.ProcessPageView(PageViewRequest{Fingerprint: "fp-1", SessionID: first, Path: "/services"}, "")

	assert.Equal(t, first, second, "a still-active session carries forward")
}

func TestProcessPageViewRejectsForeignSession(t *testing.T) {
	service, _ := newTestVisitService(t)

	other := service.ProcessPageView(PageViewRequest{Fingerprint: "fp-other", Path: "/"}, "")
	mine := service.ProcessPageView(PageViewRequest{Fingerprint: "fp-1", SessionID: other, Path: "/"}, "")

	assert.NotEqual(t, other, mine, "a session owned by another visitor is never reused")
}

func TestProcessPageViewStartsFreshSessionAfterEnd(t *testing.T) {
	service, _ := newTestVisitService(t)

	first := service.ProcessPageView(PageViewRequest{Fingerprint: "fp-1", Path: "/"}, "")
	service.ProcessSessionEnd(first)
	second := service.ProcessPageView(PageViewRequest{Fingerprint: "fp-1", SessionID: first, Path: "/"}, "")

	assert.NotEqual(t, first, second)
}

func TestProcessSessionEndUnknownIsNoop(t *testing.T) {
	service, _ := newTestVisitService(t)
	// Must not panic or create anything.
	service.ProcessSessionEnd("missing")
}

func TestProcessContactClick(t *testing.T) {
	service, cacheManager := newTestVisitService(t)
	service.ProcessPageView(PageViewRequest{Fingerprint: "fp-1", Path: "/contact"}, "")

	service.ProcessContactClick(ContactClickRequest{Fingerprint: "fp-1", Channel: "phone", Value: "tel:+33400000000", Page: "/contact"})
	clicks := cacheManager.Visitors().ContactClicks()
	require.Len(t, clicks, 1)
	assert.Equal(t, "tel:+33400000000", clicks[0].Value)
	assert.Equal(t, "/contact", clicks[0].Page)
	assert.False(t, clicks[0].Timestamp.IsZero(), "server time stamps a click without a client timestamp")

	// Unknown channel and unknown visitor are both dropped.
	service.ProcessContactClick(ContactClickRequest{Fingerprint: "fp-1", Channel: "pigeon"})
	service.ProcessContactClick(ContactClickRequest{Fingerprint: "fp-unknown", Channel: "email"})
	assert.Len(t, cacheManager.Visitors().ContactClicks(), 1)
}

func TestProcessContactClickKeepsClientTimestamp(t *testing.T) {
	service, cacheManager := newTestVisitService(t)
	service.ProcessPageView(PageViewRequest{Fingerprint: "fp-1", Path: "/contact"}, "")

	clicked := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	service.ProcessContactClick(ContactClickRequest{
		Fingerprint: "fp-1",
		Channel:     "email",
		Value:       "mailto:contact@azurnet.fr",
		Timestamp:   &clicked,
	})

	clicks := cacheManager.Visitors().ContactClicks()
	require.Len(t, clicks, 1)
	assert.Equal(t, clicked, clicks[0].Timestamp, "an offline-queued click keeps its client moment")
}
