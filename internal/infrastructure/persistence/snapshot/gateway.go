// Package snapshot persists whole-store snapshots with debounced writes.
// A burst of mutations collapses into a single save once the store has been
// quiet for the configured debounce period.
package snapshot

import (
	"sync"
	"time"

	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/types"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
)

// Backend writes and reads the two snapshot documents. Implementations are
// the JSON file store and the SQL store.
type Backend interface {
	LoadVisitorState() (*types.VisitorState, error)
	LoadChatState() (*types.ChatState, error)
	SaveVisitorState(state *types.VisitorState) error
	SaveChatState(state *types.ChatState) error
}

// Gateway connects the in-memory stores to a snapshot backend. At most one
// save runs at a time: a synchronous flush waits out a debounced save that
// is already writing instead of racing it.
type Gateway struct {
	backend        Backend
	debouncer      *Debouncer
	exportVisitors func() *types.VisitorState
	exportChats    func() *types.ChatState
	logger         *logging.ChanneledLogger

	saveMu sync.Mutex
}

// NewGateway creates a gateway over the given backend. Bind must be called
// before any save can run.
func NewGateway(backend Backend, debounce time.Duration, logger *logging.ChanneledLogger) *Gateway {
	g := &Gateway{
		backend: backend,
		logger:  logger,
	}
	g.debouncer = NewDebouncer(debounce, g.save)
	return g
}

// Bind registers the store exporters the gateway snapshots from.
func (g *Gateway) Bind(exportVisitors func() *types.VisitorState, exportChats func() *types.ChatState) {
	g.exportVisitors = exportVisitors
	g.exportChats = exportChats
}

// Load reads both snapshot documents. A missing snapshot yields empty state
// documents rather than an error.
func (g *Gateway) Load() (*types.VisitorState, *types.ChatState, error) {
	start := time.Now()
	visitorState, err := g.backend.LoadVisitorState()
	if err != nil {
		return nil, nil, err
	}
	chatState, err := g.backend.LoadChatState()
	if err != nil {
		return nil, nil, err
	}
	g.logger.Persist().Info("Snapshots loaded", "visitors", len(visitorState.Visitors), "chatSessions", len(chatState.Sessions), "duration", time.Since(start))
	return visitorState, chatState, nil
}

// ScheduleSave arms or re-arms the debounce timer. Cheap to call from every
// store mutation.
func (g *Gateway) ScheduleSave() {
	g.debouncer.Trigger()
}

// Flush cancels any pending debounce and saves synchronously.
func (g *Gateway) Flush() error {
	g.debouncer.Stop()
	return g.save()
}

func (g *Gateway) save() error {
	g.saveMu.Lock()
	defer g.saveMu.Unlock()

	if g.exportVisitors == nil || g.exportChats == nil {
		return nil
	}
	start := time.Now()
	visitorState := g.exportVisitors()
	chatState := g.exportChats()

	if err := g.backend.SaveVisitorState(visitorState); err != nil {
		g.logger.Persist().Error("Visitor snapshot save failed", "error", err.Error())
		return err
	}
	if err := g.backend.SaveChatState(chatState); err != nil {
		g.logger.Persist().Error("Chat snapshot save failed", "error", err.Error())
		return err
	}

	g.logger.Persist().Debug("Snapshots saved", "visitors", len(visitorState.Visitors), "chatSessions", len(chatState.Sessions), "duration", time.Since(start))
	return nil
}
