package handlers

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// ConnRegistry tracks the live clients of every room. The gateway owns the
// single instance and hands it to whatever needs fan-out.
type ConnRegistry struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Client
	logger zerolog.Logger
}

func NewConnRegistry(logger zerolog.Logger) *ConnRegistry {
	return &ConnRegistry{
		rooms:  make(map[string]map[string]*Client),
		logger: logger,
	}
}

// Join adds a client to its room's broadcast group.
func (r *ConnRegistry) Join(roomID string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(map[string]*Client)
	}
	r.rooms[roomID][client.ID] = client
}

// Leave drops a client from its room's group; the last one out removes the
// group entirely.
func (r *ConnRegistry) Leave(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clients, ok := r.rooms[roomID]; ok {
		delete(clients, connID)
		if len(clients) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// Broadcast marshals the event once and queues it to every client in the
// room except excludeConnID. A client with a full buffer loses the frame
// rather than stalling the sender.
func (r *ConnRegistry) Broadcast(roomID string, event interface{}, excludeConnID string) {
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Str("room_id", roomID).Msg("marshal broadcast")
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, client := range r.rooms[roomID] {
		if id == excludeConnID {
			continue
		}
		if !client.enqueue(data) {
			r.logger.Warn().Str("conn_id", id).Str("room_id", roomID).Msg("send buffer full, frame dropped")
		}
	}
}

// RoomSize reports how many connections a room currently has.
func (r *ConnRegistry) RoomSize(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
