package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HandlerFunc executes one command. arg carries the trailing path variable
// for variable commands ("" for fixed ones). The returned body is sent as
// a private reply on the session's user queue; a nil body suppresses the
// reply.
type HandlerFunc func(ctx context.Context, s *Session, arg string, payload json.RawMessage) (interface{}, error)

// ErrorMapper turns a handler error into the private ErrorResponse payload.
type ErrorMapper func(err error) ErrorResponse

type route struct {
	command string // fixed command, or prefix when variable
	fn      HandlerFunc
}

// Router dispatches send frames addressed to /app/ destinations onto
// registered command handlers. Commands registered with a trailing dot
// match any destination with that prefix and receive the remainder as arg.
type Router struct {
	hub      *Hub
	fixed    map[string]route
	variable []route
	mapErr   ErrorMapper
}

func NewRouter(hub *Hub, mapErr ErrorMapper) *Router {
	if mapErr == nil {
		mapErr = defaultErrorMapper
	}
	return &Router{hub: hub, fixed: make(map[string]route), mapErr: mapErr}
}

// Handle registers a handler for a command. A command ending in "." is
// variable: "erezept.read." matches "erezept.read.42" with arg "42".
func (r *Router) Handle(command string, fn HandlerFunc) {
	rt := route{command: command, fn: fn}
	if strings.HasSuffix(command, ".") {
		r.variable = append(r.variable, rt)
		return
	}
	r.fixed[command] = rt
}

// Dispatch resolves the frame destination to a handler, runs it, and sends
// the reply or the mapped error privately to the calling session.
func (r *Router) Dispatch(ctx context.Context, s *Session, frame Frame) {
	command, ok := strings.CutPrefix(frame.Destination, AppPrefix)
	if !ok || command == "" {
		r.sendError(s, fmt.Errorf("unknown destination %q", frame.Destination))
		return
	}

	rt, arg, found := r.resolve(command)
	if !found {
		r.sendError(s, fmt.Errorf("unknown command %q", command))
		return
	}

	body, err := rt.fn(ctx, s, arg, frame.Payload)
	if err != nil {
		r.sendError(s, err)
		return
	}
	if body != nil {
		r.hub.SendTo(s, NewServerFrame(UserQueue, body))
	}
}

func (r *Router) resolve(command string) (route, string, bool) {
	if rt, ok := r.fixed[command]; ok {
		return rt, "", true
	}
	var best route
	bestLen := -1
	for _, rt := range r.variable {
		if strings.HasPrefix(command, rt.command) && len(rt.command) > bestLen {
			best = rt
			bestLen = len(rt.command)
		}
	}
	if bestLen < 0 {
		return route{}, "", false
	}
	return best, command[bestLen:], true
}

func (r *Router) sendError(s *Session, err error) {
	r.hub.SendTo(s, NewServerFrame(UserQueue, r.mapErr(err)))
}

func defaultErrorMapper(err error) ErrorResponse {
	return ErrorResponse{
		Status:    http.StatusInternalServerError,
		Message:   err.Error(),
		Timestamp: nowUTC(),
	}
}
