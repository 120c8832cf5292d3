package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler upgrades HTTP connections, registers sessions with the hub and
// feeds inbound frames to the router.
type Handler struct {
	hub    *Hub
	router *Router
	log    zerolog.Logger
}

func NewHandler(hub *Hub, router *Router, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, router: router, log: log}
}

// RegisterRoutes registers the WebSocket endpoint.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleConnect)
}

// HandleConnect performs the upgrade handshake and starts the session's
// read and write pumps.
func (h *Handler) HandleConnect(c echo.Context) error {
	req := c.Request()
	h.log.Info().
		Str("origin", req.Header.Get("Origin")).
		Str("forwarded_for", req.Header.Get("X-Forwarded-For")).
		Str("remote", req.RemoteAddr).
		Msg("websocket handshake")

	conn, err := upgrader.Upgrade(c.Response(), req, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return err
	}

	session := NewSession(uuid.New().String())
	h.hub.Register(session)
	h.log.Info().Str("session_id", session.ID).Msg("websocket session established")

	go h.writePump(session, conn)
	go h.readPump(context.Background(), session, conn)

	return nil
}

func (h *Handler) readPump(ctx context.Context, s *Session, conn *gorillawebsocket.Conn) {
	defer func() {
		h.hub.Unregister(s)
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			code := closeCode(err)
			h.log.Info().Str("session_id", s.ID).Int("close_code", code).Msg("websocket session closed")
			return
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			h.log.Debug().Str("session_id", s.ID).Err(err).Msg("malformed frame ignored")
			continue
		}

		h.log.Debug().
			Str("session_id", s.ID).
			Str("type", frame.Type).
			Str("destination", frame.Destination).
			Msg("frame received")

		switch frame.Type {
		case FrameSubscribe:
			h.hub.Subscribe(s, frame.Destination)
		case FrameUnsubscribe:
			h.hub.Unsubscribe(s, frame.Destination)
		case FrameSend:
			h.router.Dispatch(ctx, s, frame)
		default:
			h.log.Debug().Str("session_id", s.ID).Str("type", frame.Type).Msg("unknown frame type ignored")
		}
	}
}

func (h *Handler) writePump(s *Session, conn *gorillawebsocket.Conn) {
	defer conn.Close()

	for message := range s.Send {
		if err := conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			return
		}
	}
}

func closeCode(err error) int {
	var closeErr *gorillawebsocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code
	}
	return gorillawebsocket.CloseAbnormalClosure
}
