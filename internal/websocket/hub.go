// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

// Package websocket provides the live event feed. Every access event the
// engine records is pushed to all connected guard stations and dashboards.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/campuswatch/campuswatch/internal/logging"
	"github.com/campuswatch/campuswatch/internal/metrics"
	"github.com/campuswatch/campuswatch/internal/models"
)

// Message types for the event feed.
const (
	MessageTypeAccessEvent = "access_event"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// Message is the envelope for every frame sent over the feed.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// It implements suture.Service and the access log's Broadcaster interface.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Serve runs the hub until the context is canceled. Lifecycle events take
// priority over broadcasts so client state is consistent before messages
// are fanned out; Go's select picks randomly among ready channels, hence
// the staged selects.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// String identifies the hub in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Inc()
	logging.Info().
		Uint64("client_id", client.ID()).
		Int("total_clients", total).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		metrics.WSConnectionsActive.Dec()
	}
	total := len(h.clients)
	h.mu.Unlock()

	logging.Info().
		Uint64("client_id", client.ID()).
		Int("total_clients", total).
		Msg("websocket client disconnected")
}

// shutdown closes all clients and logs the reason. Context cancellation is
// expected during graceful shutdown, so it is not logged as an error.
func (h *Hub) shutdown(ctx context.Context) {
	closed := h.closeAllClients()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

// broadcastToClients fans a message out to every connected client in client
// ID order. Slow clients whose send buffers are full are dropped rather
// than allowed to stall the feed.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnectionsActive.Dec()
		metrics.WSEventsDropped.Inc()
	}
}

// closeAllClients closes every connected client, returning how many were
// connected.
func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnectionsActive.Dec()
	}

	return len(clients)
}

// BroadcastEvent pushes a recorded access event to all connected clients.
// Non-blocking: if the broadcast buffer is full the event is dropped with
// a warning, never stalling the gate write path.
func (h *Hub) BroadcastEvent(entry *models.AccessLogEntry) {
	message := Message{
		Type: MessageTypeAccessEvent,
		Data: entry,
	}

	select {
	case h.broadcast <- message:
		metrics.WSEventsBroadcast.Inc()
	default:
		metrics.WSEventsDropped.Inc()
		logging.Warn().Msg("broadcast channel full, dropping access event")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
