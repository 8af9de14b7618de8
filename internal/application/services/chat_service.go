package services

import (
	"context"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/email"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/geo"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
)

// ChatStartRequest opens a conversation for a visitor.
type ChatStartRequest struct {
	Fingerprint string `json:"fingerprint" binding:"required"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	DeviceType  string `json:"deviceType"`
	Browser     string `json:"browser"`
}

// ChatMessageRequest appends one message to a conversation.
type ChatMessageRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Sender    string `json:"sender" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// ChatUserInfoRequest attaches contact details captured mid-conversation.
type ChatUserInfoRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

// ChatService orchestrates chat sessions: geo enrichment on start, message
// logging with live intent classification, and lead notification on end.
type ChatService struct {
	cacheManager *manager.Manager
	geoResolver  geo.Resolver
	emailService email.Service
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewChatService creates a new chat service. emailService may be nil when
// lead notifications are not configured.
func NewChatService(cacheManager *manager.Manager, geoResolver geo.Resolver, emailService email.Service, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ChatService {
	return &ChatService{
		cacheManager: cacheManager,
		geoResolver:  geoResolver,
		emailService: emailService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// StartChat opens a conversation. The geo lookup runs before any store
// mutation so a slow lookup never holds a store lock.
func (s *ChatService) StartChat(ctx context.Context, req ChatStartRequest, clientIP string) chat.Session {
	start := time.Now()
	marker := s.perfTracker.StartOperation("start_chat")
	defer marker.Complete()

	var location *chat.Location
	if s.geoResolver != nil && clientIP != "" {
		location = s.geoResolver.Lookup(ctx, clientIP)
	}

	now := time.Now().UTC()
	session := s.cacheManager.Chats().Start(req.Fingerprint, req.Name, req.Phone, req.DeviceType, req.Browser, location, now)
	s.cacheManager.Visitors().MarkChatted(req.Fingerprint)

	s.logger.Chat().Info("Chat session started", "sessionId", session.ID, "fingerprint", req.Fingerprint, "duration", time.Since(start))
	marker.SetSuccess(true)
	return session
}

// ProcessMessage appends a message. User messages recompute the session
// intent inside the store. Returns false for unknown sessions.
func (s *ChatService) ProcessMessage(req ChatMessageRequest) (chat.Session, bool) {
	marker := s.perfTracker.StartOperation("process_chat_message")
	defer marker.Complete()

	sender := chat.Sender(req.Sender)
	if sender != chat.SenderUser && sender != chat.SenderAssistant {
		s.logger.Chat().Warn("Chat message with unknown sender dropped", "sessionId", req.SessionID, "sender", req.Sender)
		return chat.Session{}, false
	}

	now := time.Now().UTC()
	session, ok := s.cacheManager.Chats().AppendMessage(req.SessionID, sender, req.Text, now)
	if !ok {
		s.logger.Chat().Warn("Chat message for unknown session dropped", "sessionId", req.SessionID)
		return chat.Session{}, false
	}

	s.logger.Chat().Debug("Chat message processed", "sessionId", req.SessionID, "sender", sender, "intent", session.Intent)
	marker.SetSuccess(true)
	return session, true
}

// SetUserInfo attaches contact details to a running conversation.
func (s *ChatService) SetUserInfo(req ChatUserInfoRequest) bool {
	updated := s.cacheManager.Chats().SetUserInfo(req.SessionID, req.Name, req.Phone)
	if updated {
		s.logger.Chat().Info("Chat user info captured", "sessionId", req.SessionID, "hasName", req.Name != "", "hasPhone", req.Phone != "")
	}
	return updated
}

// EndChat closes a conversation. When contact details were captured, the
// lead notification email goes out asynchronously so the caller never waits
// on the email provider.
func (s *ChatService) EndChat(sessionID string) (chat.Session, bool) {
	marker := s.perfTracker.StartOperation("end_chat")
	defer marker.Complete()

	now := time.Now().UTC()
	session, ended := s.cacheManager.Chats().End(sessionID, now)
	if !ended {
		return chat.Session{}, false
	}

	s.logger.Chat().Info("Chat session ended", "sessionId", sessionID, "messages", session.MessageCount, "intent", session.Intent, "durationSeconds", session.Duration)
	marker.SetSuccess(true)

	if s.emailService != nil && (session.Name != "" || session.Phone != "") {
		go s.sendLeadNotification(session)
	}
	return session, true
}

// ReclassifyAll re-runs intent classification over every stored session.
func (s *ChatService) ReclassifyAll() int {
	marker := s.perfTracker.StartOperation("reclassify_chats")
	defer marker.Complete()

	changed := s.cacheManager.Chats().ReclassifyAll()
	marker.SetSuccess(true)
	return changed
}

func (s *ChatService) sendLeadNotification(session chat.Session) {
	start := time.Now()
	if err := s.emailService.SendLeadNotification(session); err != nil {
		s.logger.Email().Error("Lead notification failed", "sessionId", session.ID, "error", err.Error())
		return
	}
	s.logger.Email().Info("Lead notification sent", "sessionId", session.ID, "duration", time.Since(start))
}
