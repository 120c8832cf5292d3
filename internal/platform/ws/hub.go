package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Session represents a single WebSocket connection. Frames queued on Send
// are delivered by the connection's write pump; a full buffer drops the
// frame instead of blocking the hub.
type Session struct {
	ID   string
	Send chan []byte

	topics map[string]struct{}
}

// NewSession builds a session with the given identifier and a buffered
// outbound queue.
func NewSession(id string) *Session {
	return &Session{
		ID:     id,
		Send:   make(chan []byte, 256),
		topics: make(map[string]struct{}),
	}
}

// Hub tracks connected sessions and their topic subscriptions. All
// operations are safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	topics   map[string]map[*Session]struct{}
	sessions map[*Session]struct{}
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		topics:   make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]struct{}),
		log:      log,
	}
}

// Register adds a session to the hub.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s] = struct{}{}
}

// Unregister removes a session from the hub and every topic, and closes
// its Send channel.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s]; !ok {
		return
	}
	for topic := range s.topics {
		h.removeFromTopic(topic, s)
	}
	delete(h.sessions, s)
	close(s.Send)
}

// Subscribe adds the session to a topic.
func (h *Hub) Subscribe(s *Session, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Session]struct{})
	}
	h.topics[topic][s] = struct{}{}
	s.topics[topic] = struct{}{}
}

// Unsubscribe removes the session from a topic.
func (h *Hub) Unsubscribe(s *Session, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromTopic(topic, s)
	delete(s.topics, topic)
}

func (h *Hub) removeFromTopic(topic string, s *Session) {
	if subscribers, ok := h.topics[topic]; ok {
		delete(subscribers, s)
		if len(subscribers) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Broadcast delivers a frame to every session subscribed to its
// destination topic.
func (h *Hub) Broadcast(frame ServerFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Str("destination", frame.Destination).Msg("marshal broadcast frame")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.topics[frame.Destination] {
		select {
		case s.Send <- data:
		default:
			// Session buffer full; drop rather than block.
		}
	}
}

// SendTo delivers a frame to exactly one session.
func (h *Hub) SendTo(s *Session, frame ServerFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Str("destination", frame.Destination).Msg("marshal private frame")
		return
	}

	select {
	case s.Send <- data:
	default:
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// TopicCount returns the number of sessions subscribed to a topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
