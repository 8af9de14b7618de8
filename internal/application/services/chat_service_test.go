package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/domain/visitor"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/email"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeoResolver struct {
	location *chat.Location
	calls    int
}

func (s *stubGeoResolver) Lookup(ctx context.Context, ip string) *chat.Location {
	s.calls++
	return s.location
}

type stubEmailService struct {
	mu       sync.Mutex
	sessions []chat.Session
}

func (s *stubEmailService) SendLeadNotification(session chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, session)
	return nil
}

func (s *stubEmailService) sent() []chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Session(nil), s.sessions...)
}

func newTestChatService(t *testing.T, geoResolver *stubGeoResolver, emailService *stubEmailService) (*ChatService, *manager.Manager) {
	t.Helper()
	cacheManager := manager.NewManager(intent.NewClassifier(), nil, logging.NewDiscardLogger())
	var emails email.Service
	if emailService != nil {
		emails = emailService
	}
	service := NewChatService(cacheManager, geoResolver, emails, logging.NewDiscardLogger(), performance.NewTracker())
	return service, cacheManager
}

func TestStartChatResolvesLocationAndMarksVisitor(t *testing.T) {
	resolver := &stubGeoResolver{location: &chat.Location{Country: "France", City: "Nice"}}
	service, cacheManager := newTestChatService(t, resolver, nil)

	cacheManager.Visitors().RecordVisit("fp-1", visitor.Attributes{}, time.Now().UTC())

	session := service.StartChat(context.Background(), ChatStartRequest{Fingerprint: "fp-1"}, "203.0.113.7")

	assert.Equal(t, 1, resolver.calls)
	require.NotNil(t, session.Location)
	assert.Equal(t, "Nice", session.Location.City)

	v, ok := cacheManager.Visitors().GetVisitor("fp-1")
	require.True(t, ok)
	assert.True(t, v.HasChatted)
}

func TestFullConversationFlow(t *testing.T) {
	emailService := &stubEmailService{}
	service, cacheManager := newTestChatService(t, &stubGeoResolver{}, emailService)

	session := service.StartChat(context.Background(), ChatStartRequest{Fingerprint: "fp-1"}, "")

	updated, ok := service.ProcessMessage(ChatMessageRequest{
		SessionID: session.ID,
		Sender:    string(chat.SenderUser),
		Text:      "Quel est le prix pour un nettoyage de bureau ?",
	})
	require.True(t, ok)
	assert.Equal(t, intent.CategoryPrice, updated.Intent)

	require.True(t, service.SetUserInfo(ChatUserInfoRequest{SessionID: session.ID, Name: "Claire", Phone: "0601020304"}))

	ended, ok := service.EndChat(session.ID)
	require.True(t, ok)
	require.NotNil(t, ended.EndedAt)

	// The lead email goes out asynchronously.
	require.Eventually(t, func() bool { return len(emailService.sent()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "Claire", emailService.sent()[0].Name)

	got, ok := cacheManager.Chats().Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, intent.CategoryPrice, got.Intent)
}

func TestEndChatWithoutContactSkipsEmail(t *testing.T) {
	emailService := &stubEmailService{}
	service, _ := newTestChatService(t, &stubGeoResolver{}, emailService)

	session := service.StartChat(context.Background(), ChatStartRequest{Fingerprint: "fp-1"}, "")
	_, ok := service.EndChat(session.ID)
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, emailService.sent(), "anonymous sessions never notify")
}

func TestProcessMessageRejectsUnknownSender(t *testing.T) {
	service, _ := newTestChatService(t, &stubGeoResolver{}, nil)
	session := service.StartChat(context.Background(), ChatStartRequest{Fingerprint: "fp-1"}, "")

	_, ok := service.ProcessMessage(ChatMessageRequest{SessionID: session.ID, Sender: "robot", Text: "hi"})
	assert.False(t, ok)
}

func TestReclassifyAllThroughService(t *testing.T) {
	service, _ := newTestChatService(t, &stubGeoResolver{}, nil)
	session := service.StartChat(context.Background(), ChatStartRequest{Fingerprint: "fp-1"}, "")
	service.ProcessMessage(ChatMessageRequest{SessionID: session.ID, Sender: string(chat.SenderUser), Text: "bonjour"})

	assert.Equal(t, 0, service.ReclassifyAll(), "append already classified everything")
}
