// Package stores provides the authoritative in-memory stores of the engine.
package stores

import (
	"sync"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/visitor"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/types"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/security"
)

// VisitorStore owns visitor records, browsing sessions and the append-only
// page-view and contact-click logs. All access goes through the store's
// mutex; read methods hand out copies so reporting observes a consistent
// snapshot without holding the lock.
type VisitorStore struct {
	visitors      map[string]*visitor.Visitor
	sessions      map[string]*visitor.Session
	pageViews     []visitor.PageView
	contactClicks []visitor.ContactClick

	// activeSession is the inverted index enforcing at most one active
	// session per visitor.
	activeSession map[string]string

	mu       sync.RWMutex
	logger   *logging.ChanneledLogger
	onMutate func()
}

// NewVisitorStore creates an empty visitor store.
func NewVisitorStore(logger *logging.ChanneledLogger) *VisitorStore {
	if logger != nil {
		logger.Store().Info("Initializing visitor store")
	}
	return &VisitorStore{
		visitors:      make(map[string]*visitor.Visitor),
		sessions:      make(map[string]*visitor.Session),
		activeSession: make(map[string]string),
		logger:        logger,
	}
}

// SetMutationHook registers the callback fired after every mutation. The
// manager wires this to the persistence gateway's save scheduling.
func (vs *VisitorStore) SetMutationHook(fn func()) {
	vs.mu.Lock()
	vs.onMutate = fn
	vs.mu.Unlock()
}

// notifyMutation must be called outside the store lock.
func (vs *VisitorStore) notifyMutation() {
	vs.mu.RLock()
	fn := vs.onMutate
	vs.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// RecordVisit creates or merges the visitor record for a fingerprint. A new
// record starts with visit counter 1 and firstSeen = lastSeen = now; an
// existing one gets lastSeen refreshed, the counter incremented and observed
// attributes overwritten.
func (vs *VisitorStore) RecordVisit(fingerprint string, attrs visitor.Attributes, now time.Time) visitor.Visitor {
	start := time.Now()
	vs.mu.Lock()

	v, exists := vs.visitors[fingerprint]
	if !exists {
		v = &visitor.Visitor{
			Fingerprint: fingerprint,
			FirstSeen:   now,
			LastSeen:    now,
			VisitCount:  1,
		}
		vs.visitors[fingerprint] = v
	} else {
		v.LastSeen = now
		v.VisitCount++
	}
	v.Merge(attrs)
	result := *v
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Store().Debug("Store operation", "operation", "record_visit", "type", "visitor", "fingerprint", fingerprint, "created", !exists, "visitCount", result.VisitCount, "duration", time.Since(start))
	}
	vs.notifyMutation()
	return result
}

// MarkChatted flags the visitor as having used the chat widget. Unknown
// fingerprints are a no-op.
func (vs *VisitorStore) MarkChatted(fingerprint string) {
	vs.mu.Lock()
	v, exists := vs.visitors[fingerprint]
	changed := exists && !v.HasChatted
	if changed {
		v.HasChatted = true
	}
	vs.mu.Unlock()

	if changed {
		if vs.logger != nil {
			vs.logger.Store().Debug("Store operation", "operation", "mark_chatted", "type", "visitor", "fingerprint", fingerprint)
		}
		vs.notifyMutation()
	}
}

// GetVisitor returns a copy of the visitor record for a fingerprint.
func (vs *VisitorStore) GetVisitor(fingerprint string) (visitor.Visitor, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	if v, exists := vs.visitors[fingerprint]; exists {
		return *v, true
	}
	return visitor.Visitor{}, false
}

// StartSession opens a new active session for the visitor, implicitly closing
// any session left active from an earlier visit.
func (vs *VisitorStore) StartSession(fingerprint string, now time.Time) visitor.Session {
	start := time.Now()
	vs.mu.Lock()

	closedPrevious := false
	if previousID, exists := vs.activeSession[fingerprint]; exists {
		if previous, ok := vs.sessions[previousID]; ok && previous.Active {
			vs.closeSessionLocked(previous, now)
			closedPrevious = true
		}
		delete(vs.activeSession, fingerprint)
	}

	session := &visitor.Session{
		ID:          security.GenerateULID(),
		Fingerprint: fingerprint,
		StartedAt:   now,
		Active:      true,
	}
	vs.sessions[session.ID] = session
	vs.activeSession[fingerprint] = session.ID
	result := *session
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Store().Debug("Store operation", "operation", "start_session", "type", "session", "fingerprint", fingerprint, "sessionId", result.ID, "closedPrevious", closedPrevious, "duration", time.Since(start))
	}
	vs.notifyMutation()
	return result
}

// EndSession closes an active session. Ending a missing or already-closed
// session is a no-op, not an error.
func (vs *VisitorStore) EndSession(sessionID string, now time.Time) bool {
	vs.mu.Lock()
	session, exists := vs.sessions[sessionID]
	closed := exists && session.Active
	if closed {
		vs.closeSessionLocked(session, now)
		delete(vs.activeSession, session.Fingerprint)
	}
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Store().Debug("Store operation", "operation", "end_session", "type", "session", "sessionId", sessionID, "hit", closed)
	}
	if closed {
		vs.notifyMutation()
	}
	return closed
}

// closeSessionLocked stamps end time and duration. Caller holds vs.mu.
func (vs *VisitorStore) closeSessionLocked(session *visitor.Session, now time.Time) {
	ended := now
	session.EndedAt = &ended
	session.Duration = int64(now.Sub(session.StartedAt).Seconds())
	session.Active = false
}

// GetSession returns a copy of a session by id.
func (vs *VisitorStore) GetSession(sessionID string) (visitor.Session, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	if session, exists := vs.sessions[sessionID]; exists {
		return *session, true
	}
	return visitor.Session{}, false
}

// ActiveSessionID returns the id of the visitor's active session, if any.
func (vs *VisitorStore) ActiveSessionID(fingerprint string) (string, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	id, exists := vs.activeSession[fingerprint]
	return id, exists
}

// AppendPageView appends to the page-view log. The visitor must already be
// registered; unknown fingerprints are dropped as a no-op.
func (vs *VisitorStore) AppendPageView(fingerprint, sessionID, path, title, referrer string, now time.Time) (visitor.PageView, bool) {
	start := time.Now()
	vs.mu.Lock()
	if _, exists := vs.visitors[fingerprint]; !exists {
		vs.mu.Unlock()
		if vs.logger != nil {
			vs.logger.Store().Debug("Store operation", "operation", "append", "type", "pageview", "fingerprint", fingerprint, "hit", false, "reason", "unknown_visitor")
		}
		return visitor.PageView{}, false
	}

	pv := visitor.PageView{
		ID:          security.GenerateULID(),
		Fingerprint: fingerprint,
		SessionID:   sessionID,
		Path:        path,
		Title:       title,
		Referrer:    referrer,
		Timestamp:   now,
	}
	vs.pageViews = append(vs.pageViews, pv)
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Store().Debug("Store operation", "operation", "append", "type", "pageview", "fingerprint", fingerprint, "path", path, "duration", time.Since(start))
	}
	vs.notifyMutation()
	return pv, true
}

// AppendContactClick appends to the contact-click log. Unknown fingerprints
// are dropped as a no-op.
func (vs *VisitorStore) AppendContactClick(fingerprint string, channel visitor.ContactChannel, value, page string, now time.Time) (visitor.ContactClick, bool) {
	vs.mu.Lock()
	if _, exists := vs.visitors[fingerprint]; !exists {
		vs.mu.Unlock()
		if vs.logger != nil {
			vs.logger.Store().Debug("Store operation", "operation", "append", "type", "contact_click", "fingerprint", fingerprint, "hit", false, "reason", "unknown_visitor")
		}
		return visitor.ContactClick{}, false
	}

	cc := visitor.ContactClick{
		ID:          security.GenerateULID(),
		Fingerprint: fingerprint,
		Channel:     channel,
		Value:       value,
		Page:        page,
		Timestamp:   now,
	}
	vs.contactClicks = append(vs.contactClicks, cc)
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Store().Debug("Store operation", "operation", "append", "type", "contact_click", "fingerprint", fingerprint, "channel", channel)
	}
	vs.notifyMutation()
	return cc, true
}

// Visitors returns a copy of every visitor record.
func (vs *VisitorStore) Visitors() []visitor.Visitor {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	result := make([]visitor.Visitor, 0, len(vs.visitors))
	for _, v := range vs.visitors {
		result = append(result, *v)
	}
	return result
}

// Sessions returns a copy of every session.
func (vs *VisitorStore) Sessions() []visitor.Session {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	result := make([]visitor.Session, 0, len(vs.sessions))
	for _, s := range vs.sessions {
		result = append(result, *s)
	}
	return result
}

// PageViews returns a copy of the page-view log.
func (vs *VisitorStore) PageViews() []visitor.PageView {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	result := make([]visitor.PageView, len(vs.pageViews))
	copy(result, vs.pageViews)
	return result
}

// ContactClicks returns a copy of the contact-click log.
func (vs *VisitorStore) ContactClicks() []visitor.ContactClick {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	result := make([]visitor.ContactClick, len(vs.contactClicks))
	copy(result, vs.contactClicks)
	return result
}

// Export serializes the store into its snapshot document.
func (vs *VisitorStore) Export() *types.VisitorState {
	start := time.Now()
	vs.mu.RLock()

	state := types.NewVisitorState()
	for id, v := range vs.visitors {
		state.Visitors[id] = *v
	}
	for id, s := range vs.sessions {
		state.Sessions[id] = *s
	}
	state.PageViews = make([]visitor.PageView, len(vs.pageViews))
	copy(state.PageViews, vs.pageViews)
	state.ContactClicks = make([]visitor.ContactClick, len(vs.contactClicks))
	copy(state.ContactClicks, vs.contactClicks)
	state.SavedAt = time.Now().UTC()
	vs.mu.RUnlock()

	if vs.logger != nil {
		vs.logger.Store().Debug("Store operation", "operation", "export", "type", "visitor_state", "visitors", len(state.Visitors), "sessions", len(state.Sessions), "pageViews", len(state.PageViews), "duration", time.Since(start))
	}
	return state
}

// Import replaces the store contents with a snapshot document and rebuilds
// the active-session index. Mutation hooks do not fire: a load is not a
// mutation.
func (vs *VisitorStore) Import(state *types.VisitorState) {
	if state == nil {
		return
	}
	start := time.Now()
	vs.mu.Lock()

	vs.visitors = make(map[string]*visitor.Visitor, len(state.Visitors))
	for id := range state.Visitors {
		v := state.Visitors[id]
		vs.visitors[id] = &v
	}
	vs.sessions = make(map[string]*visitor.Session, len(state.Sessions))
	vs.activeSession = make(map[string]string)
	for id := range state.Sessions {
		s := state.Sessions[id]
		vs.sessions[id] = &s
		if s.Active {
			vs.activeSession[s.Fingerprint] = id
		}
	}
	vs.pageViews = make([]visitor.PageView, len(state.PageViews))
	copy(vs.pageViews, state.PageViews)
	vs.contactClicks = make([]visitor.ContactClick, len(state.ContactClicks))
	copy(vs.contactClicks, state.ContactClicks)
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Store().Info("Visitor state imported", "visitors", len(state.Visitors), "sessions", len(state.Sessions), "pageViews", len(state.PageViews), "contactClicks", len(state.ContactClicks), "duration", time.Since(start))
	}
}

// Summary returns store sizes for monitoring.
func (vs *VisitorStore) Summary() map[string]any {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return map[string]any{
		"visitors":       len(vs.visitors),
		"sessions":       len(vs.sessions),
		"activeSessions": len(vs.activeSession),
		"pageViews":      len(vs.pageViews),
		"contactClicks":  len(vs.contactClicks),
	}
}
