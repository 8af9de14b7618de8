// Package messaging pushes live dashboard statistics to connected
// websocket clients.
package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/analytics"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// LiveClient represents a single connected dashboard client.
type LiveClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// LiveBroadcaster manages all connected dashboard clients and pushes a
// stats snapshot on every tick. A store mutation can also force an
// immediate push through Notify.
type LiveBroadcaster struct {
	clients    map[*LiveClient]bool
	register   chan *LiveClient
	unregister chan *LiveClient
	notify     chan struct{}
	statsFn    func() analytics.LiveStats
	interval   time.Duration
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewLiveBroadcaster creates a broadcaster reading stats from statsFn.
func NewLiveBroadcaster(statsFn func() analytics.LiveStats, interval time.Duration, logger *logging.ChanneledLogger) *LiveBroadcaster {
	return &LiveBroadcaster{
		clients:    make(map[*LiveClient]bool),
		register:   make(chan *LiveClient),
		unregister: make(chan *LiveClient),
		notify:     make(chan struct{}, 1),
		statsFn:    statsFn,
		interval:   interval,
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *LiveBroadcaster) Run() {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Live().Debug("Live client registered", "clients", count)
			b.push()

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Live().Debug("Live client unregistered", "clients", count)

		case <-ticker.C:
			b.push()

		case <-b.notify:
			b.push()
		}
	}
}

// Register queues a client for registration.
func (b *LiveBroadcaster) Register(client *LiveClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *LiveBroadcaster) Unregister(client *LiveClient) {
	b.unregister <- client
}

// Notify requests an out-of-band push. Coalesces while a push is pending.
func (b *LiveBroadcaster) Notify() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// ClientCount returns the number of connected dashboard clients.
func (b *LiveBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *LiveBroadcaster) push() {
	b.mu.RLock()
	hasClients := len(b.clients) > 0
	b.mu.RUnlock()
	if !hasClients {
		return
	}

	stats := b.statsFn()
	payload, err := json.Marshal(stats)
	if err != nil {
		b.logger.Live().Error("Failed to marshal live stats", "error", err.Error())
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer, drop this frame for it.
		}
	}
}
