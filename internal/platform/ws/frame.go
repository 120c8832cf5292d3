// Package ws provides the realtime transport: a hub-and-spoke WebSocket
// layer where sessions subscribe to topics, send commands to application
// destinations and receive private replies on a per-session queue.
package ws

import (
	"encoding/json"
	"time"
)

// Frame types accepted from clients.
const (
	FrameSend        = "send"
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
)

// AppPrefix marks destinations that address command handlers rather than
// topics.
const AppPrefix = "/app/"

// UserQueue is the per-session reply destination. It is private: frames
// addressed to it reach only the session that issued the command.
const UserQueue = "/user/queue/erezept"

// Frame is an inbound client message.
type Frame struct {
	Type        string          `json:"type"`
	Destination string          `json:"destination"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// ServerFrame is an outbound message, both for topic broadcasts and for
// private replies.
type ServerFrame struct {
	Destination string      `json:"destination"`
	Timestamp   time.Time   `json:"timestamp"`
	Body        interface{} `json:"body"`
}

// NewServerFrame stamps a body with its destination and the current time.
func NewServerFrame(destination string, body interface{}) ServerFrame {
	return ServerFrame{Destination: destination, Timestamp: nowUTC(), Body: body}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// ErrorResponse is the private error payload sent back to a session whose
// command failed.
type ErrorResponse struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}
