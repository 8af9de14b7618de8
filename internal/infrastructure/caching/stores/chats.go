package stores

import (
	"sync"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/types"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/security"
)

// ChatStore owns chat sessions and their ordered message logs. Intent is
// recomputed under the store lock after every appended user message, so a
// session's intent and message log can never be observed out of sync.
type ChatStore struct {
	sessions map[string]*chat.Session

	// byFingerprint is the inverted index from visitor fingerprint to the
	// session ids it owns.
	byFingerprint map[string][]string

	classifier *intent.Classifier
	mu         sync.RWMutex
	logger     *logging.ChanneledLogger
	onMutate   func()
}

// NewChatStore creates an empty chat store using the given classifier.
func NewChatStore(classifier *intent.Classifier, logger *logging.ChanneledLogger) *ChatStore {
	if logger != nil {
		logger.Store().Info("Initializing chat store")
	}
	return &ChatStore{
		sessions:      make(map[string]*chat.Session),
		byFingerprint: make(map[string][]string),
		classifier:    classifier,
		logger:        logger,
	}
}

// SetMutationHook registers the callback fired after every mutation.
func (cs *ChatStore) SetMutationHook(fn func()) {
	cs.mu.Lock()
	cs.onMutate = fn
	cs.mu.Unlock()
}

func (cs *ChatStore) notifyMutation() {
	cs.mu.RLock()
	fn := cs.onMutate
	cs.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Start creates a new conversation for a visitor. Intent starts at the
// catch-all category until the first user message arrives.
func (cs *ChatStore) Start(fingerprint, name, phone, deviceType, browser string, location *chat.Location, now time.Time) chat.Session {
	start := time.Now()
	session := &chat.Session{
		ID:          security.GenerateULID(),
		Fingerprint: fingerprint,
		Name:        name,
		Phone:       phone,
		DeviceType:  deviceType,
		Browser:     browser,
		Location:    location,
		Messages:    []chat.Message{},
		StartedAt:   now,
		Intent:      intent.CategoryOther,
	}

	cs.mu.Lock()
	cs.sessions[session.ID] = session
	cs.byFingerprint[fingerprint] = append(cs.byFingerprint[fingerprint], session.ID)
	result := cs.copyLocked(session)
	cs.mu.Unlock()

	if cs.logger != nil {
		cs.logger.Store().Debug("Store operation", "operation", "start", "type", "chat_session", "fingerprint", fingerprint, "sessionId", result.ID, "duration", time.Since(start))
	}
	cs.notifyMutation()
	return result
}

// AppendMessage appends to a session's message log and, for user messages,
// recomputes the session intent from all user messages so far. Unknown
// session ids are a no-op.
func (cs *ChatStore) AppendMessage(sessionID string, sender chat.Sender, text string, now time.Time) (chat.Session, bool) {
	start := time.Now()
	cs.mu.Lock()
	session, exists := cs.sessions[sessionID]
	if !exists {
		cs.mu.Unlock()
		if cs.logger != nil {
			cs.logger.Store().Debug("Store operation", "operation", "append_message", "type", "chat_session", "sessionId", sessionID, "hit", false, "reason", "not_found")
		}
		return chat.Session{}, false
	}

	session.Messages = append(session.Messages, chat.Message{
		Sender:    sender,
		Text:      text,
		Timestamp: now,
	})
	session.MessageCount = len(session.Messages)
	if sender == chat.SenderUser {
		session.Intent = cs.classifier.Classify(session.UserTexts())
	}
	result := cs.copyLocked(session)
	cs.mu.Unlock()

	if cs.logger != nil {
		cs.logger.Store().Debug("Store operation", "operation", "append_message", "type", "chat_session", "sessionId", sessionID, "sender", sender, "messageCount", result.MessageCount, "intent", result.Intent, "duration", time.Since(start))
	}
	cs.notifyMutation()
	return result, true
}

// SetUserInfo overwrites the session's name and phone where a non-empty
// value is supplied. Unknown session ids are a no-op.
func (cs *ChatStore) SetUserInfo(sessionID, name, phone string) bool {
	cs.mu.Lock()
	session, exists := cs.sessions[sessionID]
	if exists {
		if name != "" {
			session.Name = name
		}
		if phone != "" {
			session.Phone = phone
		}
	}
	cs.mu.Unlock()

	if cs.logger != nil {
		cs.logger.Store().Debug("Store operation", "operation", "set_user_info", "type", "chat_session", "sessionId", sessionID, "hit", exists)
	}
	if exists {
		cs.notifyMutation()
	}
	return exists
}

// End stamps end time and duration. Ending a missing or already-ended
// session is a no-op.
func (cs *ChatStore) End(sessionID string, now time.Time) (chat.Session, bool) {
	cs.mu.Lock()
	session, exists := cs.sessions[sessionID]
	ended := exists && session.EndedAt == nil
	var result chat.Session
	if ended {
		endTime := now
		session.EndedAt = &endTime
		session.Duration = int64(now.Sub(session.StartedAt).Seconds())
	}
	if exists {
		result = cs.copyLocked(session)
	}
	cs.mu.Unlock()

	if cs.logger != nil {
		cs.logger.Store().Debug("Store operation", "operation", "end", "type", "chat_session", "sessionId", sessionID, "hit", ended)
	}
	if ended {
		cs.notifyMutation()
	}
	return result, ended
}

// Get returns a copy of a session by id.
func (cs *ChatStore) Get(sessionID string) (chat.Session, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if session, exists := cs.sessions[sessionID]; exists {
		return cs.copyLocked(session), true
	}
	return chat.Session{}, false
}

// Sessions returns a copy of every chat session.
func (cs *ChatStore) Sessions() []chat.Session {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	result := make([]chat.Session, 0, len(cs.sessions))
	for _, session := range cs.sessions {
		result = append(result, cs.copyLocked(session))
	}
	return result
}

// SessionsByFingerprint returns copies of the sessions owned by a visitor.
func (cs *ChatStore) SessionsByFingerprint(fingerprint string) []chat.Session {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	ids := cs.byFingerprint[fingerprint]
	result := make([]chat.Session, 0, len(ids))
	for _, id := range ids {
		if session, exists := cs.sessions[id]; exists {
			result = append(result, cs.copyLocked(session))
		}
	}
	return result
}

// ReclassifyAll re-derives every session's intent from its message log and
// returns how many sessions changed category. Used for backfilling after
// keyword-table changes.
func (cs *ChatStore) ReclassifyAll() int {
	start := time.Now()
	cs.mu.Lock()
	changed := 0
	for _, session := range cs.sessions {
		category := cs.classifier.Classify(session.UserTexts())
		if category != session.Intent {
			session.Intent = category
			changed++
		}
	}
	total := len(cs.sessions)
	cs.mu.Unlock()

	if cs.logger != nil {
		cs.logger.Store().Info("Chat sessions reclassified", "total", total, "changed", changed, "duration", time.Since(start))
	}
	if changed > 0 {
		cs.notifyMutation()
	}
	return changed
}

// copyLocked deep-copies a session. Caller holds cs.mu.
func (cs *ChatStore) copyLocked(session *chat.Session) chat.Session {
	result := *session
	result.Messages = make([]chat.Message, len(session.Messages))
	copy(result.Messages, session.Messages)
	if session.Location != nil {
		location := *session.Location
		result.Location = &location
	}
	return result
}

// Export serializes the store into its snapshot document.
func (cs *ChatStore) Export() *types.ChatState {
	start := time.Now()
	cs.mu.RLock()
	state := types.NewChatState()
	for id, session := range cs.sessions {
		state.Sessions[id] = cs.copyLocked(session)
	}
	state.SavedAt = time.Now().UTC()
	cs.mu.RUnlock()

	if cs.logger != nil {
		cs.logger.Store().Debug("Store operation", "operation", "export", "type", "chat_state", "sessions", len(state.Sessions), "duration", time.Since(start))
	}
	return state
}

// Import replaces the store contents with a snapshot document and rebuilds
// the fingerprint index. Mutation hooks do not fire.
func (cs *ChatStore) Import(state *types.ChatState) {
	if state == nil {
		return
	}
	start := time.Now()
	cs.mu.Lock()
	cs.sessions = make(map[string]*chat.Session, len(state.Sessions))
	cs.byFingerprint = make(map[string][]string)
	for id := range state.Sessions {
		session := state.Sessions[id]
		if session.Messages == nil {
			session.Messages = []chat.Message{}
		}
		if session.Intent == "" {
			session.Intent = intent.CategoryOther
		}
		cs.sessions[id] = &session
		cs.byFingerprint[session.Fingerprint] = append(cs.byFingerprint[session.Fingerprint], id)
	}
	cs.mu.Unlock()

	if cs.logger != nil {
		cs.logger.Store().Info("Chat state imported", "sessions", len(state.Sessions), "duration", time.Since(start))
	}
}

// Summary returns store sizes for monitoring.
func (cs *ChatStore) Summary() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return map[string]any{
		"sessions":     len(cs.sessions),
		"fingerprints": len(cs.byFingerprint),
	}
}
