package manager

import (
	"sync"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/stores"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/types"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
)

// SnapshotGateway is the persistence surface the manager drives. Mutations
// schedule a debounced save; shutdown flushes synchronously.
type SnapshotGateway interface {
	Load() (*types.VisitorState, *types.ChatState, error)
	ScheduleSave()
	Flush() error
}

// Manager owns the in-memory stores and their link to snapshot persistence.
type Manager struct {
	visitorStore *stores.VisitorStore
	chatStore    *stores.ChatStore
	gateway      SnapshotGateway
	logger       *logging.ChanneledLogger
	loadOnce     sync.Once
	loadErr      error

	notifyMu sync.RWMutex
	notify   func()
}

// NewManager wires the stores to the gateway. Every store mutation after
// this point schedules a debounced snapshot save and pings the mutation
// notifier, when one is registered.
func NewManager(classifier *intent.Classifier, gateway SnapshotGateway, logger *logging.ChanneledLogger) *Manager {
	m := &Manager{
		visitorStore: stores.NewVisitorStore(logger),
		chatStore:    stores.NewChatStore(classifier, logger),
		gateway:      gateway,
		logger:       logger,
	}
	m.visitorStore.SetMutationHook(m.onMutation)
	m.chatStore.SetMutationHook(m.onMutation)
	return m
}

// SetMutationNotifier registers an out-of-band callback invoked after every
// store mutation, alongside the debounced save. Used by the live stats
// broadcaster.
func (m *Manager) SetMutationNotifier(fn func()) {
	m.notifyMu.Lock()
	m.notify = fn
	m.notifyMu.Unlock()
}

func (m *Manager) onMutation() {
	if m.gateway != nil {
		m.gateway.ScheduleSave()
	}
	m.notifyMu.RLock()
	notify := m.notify
	m.notifyMu.RUnlock()
	if notify != nil {
		notify()
	}
}

// Load restores both stores from the last snapshot. It runs at most once;
// later calls return the first result. A missing or unreadable snapshot
// leaves the stores empty and is not an error for the caller.
func (m *Manager) Load() error {
	m.loadOnce.Do(func() {
		if m.gateway == nil {
			return
		}
		start := time.Now()
		visitorState, chatState, err := m.gateway.Load()
		if err != nil {
			m.logger.Persist().Warn("Snapshot load failed, starting with empty stores", "error", err)
			m.loadErr = err
			return
		}
		m.visitorStore.Import(visitorState)
		m.chatStore.Import(chatState)
		m.logger.Persist().Info("Snapshot restored", "duration", time.Since(start))
	})
	return m.loadErr
}

// Flush forces a synchronous snapshot save. Called during shutdown.
func (m *Manager) Flush() error {
	if m.gateway == nil {
		return nil
	}
	return m.gateway.Flush()
}

// Visitors returns the visitor store.
func (m *Manager) Visitors() *stores.VisitorStore {
	return m.visitorStore
}

// Chats returns the chat session store.
func (m *Manager) Chats() *stores.ChatStore {
	return m.chatStore
}

// Summary reports store sizes for the health endpoint.
func (m *Manager) Summary() map[string]any {
	return map[string]any{
		"visitors": m.visitorStore.Summary(),
		"chats":    m.chatStore.Summary(),
	}
}
