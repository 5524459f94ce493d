// Package messaging provides the websocket broadcaster behind the admin
// ops feed: invalidation, warming and cleanup events plus a periodic
// cache-stats tick.
package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

const statsInterval = 30 * time.Second

// OpsClient represents a single connected admin dashboard client.
type OpsClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// OpsEvent is the wire format pushed to connected clients.
type OpsEvent struct {
	Kind       string         `json:"kind"`
	EntityType string         `json:"entityType,omitempty"`
	EntityID   string         `json:"entityId,omitempty"`
	Operation  string         `json:"operation,omitempty"`
	Removed    int            `json:"removed,omitempty"`
	Duration   string         `json:"duration,omitempty"`
	Stats      map[string]any `json:"stats,omitempty"`
	At         time.Time      `json:"at"`
}

// OpsBroadcaster fans events out to every connected client. Slow clients
// drop messages rather than stall the feed.
type OpsBroadcaster struct {
	clients    map[*OpsClient]bool
	register   chan *OpsClient
	unregister chan *OpsClient
	events     chan OpsEvent
	stats      interfaces.StatsCollector
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewOpsBroadcaster creates a new broadcaster instance.
func NewOpsBroadcaster(stats interfaces.StatsCollector, logger *logging.ChanneledLogger) *OpsBroadcaster {
	return &OpsBroadcaster{
		clients:    make(map[*OpsClient]bool),
		register:   make(chan *OpsClient),
		unregister: make(chan *OpsClient),
		events:     make(chan OpsEvent, 64),
		stats:      stats,
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *OpsBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			if b.logger != nil {
				b.logger.System().Debug("Ops client registered", "clients", b.clientCount())
			}

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			if b.logger != nil {
				b.logger.System().Debug("Ops client unregistered", "clients", b.clientCount())
			}

		case event := <-b.events:
			b.broadcast(event)

		case <-ticker.C:
			b.broadcastStats(ctx)
		}
	}
}

// Register queues a client for registration.
func (b *OpsBroadcaster) Register(client *OpsClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *OpsBroadcaster) Unregister(client *OpsClient) {
	b.unregister <- client
}

// PublishInvalidation satisfies the invalidation engine's publisher hook.
func (b *OpsBroadcaster) PublishInvalidation(entityType, entityID, operation string, removed int) {
	b.publish(OpsEvent{
		Kind:       "invalidation",
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Removed:    removed,
		At:         time.Now().UTC(),
	})
}

// PublishCleanup satisfies the cleanup worker's publisher hook.
func (b *OpsBroadcaster) PublishCleanup(removed int, duration time.Duration) {
	b.publish(OpsEvent{
		Kind:     "cleanup",
		Removed:  removed,
		Duration: duration.String(),
		At:       time.Now().UTC(),
	})
}

// PublishWarming reports a completed cache warm cycle.
func (b *OpsBroadcaster) PublishWarming(operation string, duration time.Duration) {
	b.publish(OpsEvent{
		Kind:      "warming",
		Operation: operation,
		Duration:  duration.String(),
		At:        time.Now().UTC(),
	})
}

func (b *OpsBroadcaster) publish(event OpsEvent) {
	select {
	case b.events <- event:
	default:
		if b.logger != nil {
			b.logger.System().Warn("Ops event queue full, dropping event", "kind", event.Kind)
		}
	}
}

func (b *OpsBroadcaster) broadcast(event OpsEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		if b.logger != nil {
			b.logger.System().Error("Failed to marshal ops event", "error", err.Error())
		}
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}

func (b *OpsBroadcaster) broadcastStats(ctx context.Context) {
	if b.clientCount() == 0 || b.stats == nil {
		return
	}

	stats, err := b.stats.CacheStats(ctx)
	if err != nil {
		if b.logger != nil {
			b.logger.System().Warn("Ops stats tick failed", "error", err.Error())
		}
		return
	}

	b.broadcast(OpsEvent{Kind: "stats", Stats: stats, At: time.Now().UTC()})
}

func (b *OpsBroadcaster) clientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *OpsBroadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		close(client.Send)
		delete(b.clients, client)
	}
}

// WritePump pushes queued messages to the websocket connection. Runs as a
// goroutine per client; exits when the send channel closes.
func (c *OpsClient) WritePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
