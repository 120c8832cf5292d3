package erezept

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/zeta/testfachdienst/internal/platform/ws"
)

// WSHandler exposes the prescription commands over the realtime transport.
// Creates and updates broadcast the stored record to the shared topic in
// addition to the private reply; deletes reply with an acknowledgement only.
type WSHandler struct {
	svc   *Service
	hub   *ws.Hub
	topic string
}

// NewWSHandler builds the realtime handler. topic is the broadcast
// destination, already carrying any configured path prefix.
func NewWSHandler(svc *Service, hub *ws.Hub, topic string) *WSHandler {
	return &WSHandler{svc: svc, hub: hub, topic: topic}
}

// Topic returns the shared broadcast destination.
func (h *WSHandler) Topic() string {
	return h.topic
}

func (h *WSHandler) Register(r *ws.Router) {
	r.Handle("erezept.create", h.Create)
	r.Handle("erezept.list", h.List)
	r.Handle("erezept.read.", h.Read)
	r.Handle("erezept.update.", h.Update)
	r.Handle("erezept.delete.", h.Delete)
}

// Create persists a new prescription. The caller must not reference an
// existing id or business key. Status is forced to CREATED while the
// caller-supplied issuedAt is kept.
func (h *WSHandler) Create(ctx context.Context, _ *ws.Session, _ string, payload json.RawMessage) (interface{}, error) {
	var e Erezept
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, validationError(map[string]string{"payload": err.Error()})
	}
	if e.Status == "" {
		e.Status = StatusCreated
	}
	if err := e.Validate(time.Now()); err != nil {
		return nil, err
	}

	if e.ID != 0 {
		exists, err := h.svc.ExistsByID(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, conflictf("ERezept with id=%d already exists", e.ID)
		}
	}
	exists, err := h.svc.ExistsByPrescriptionID(ctx, e.PrescriptionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictf("ERezept with prescriptionId=%s already exists", e.PrescriptionID)
	}

	e.ID = 0
	e.Status = StatusCreated
	saved, err := h.svc.Save(ctx, &e)
	if err != nil {
		return nil, err
	}

	h.hub.Broadcast(ws.NewServerFrame(h.topic, saved))
	return saved, nil
}

// List replies privately with every stored prescription.
func (h *WSHandler) List(ctx context.Context, _ *ws.Session, _ string, _ json.RawMessage) (interface{}, error) {
	return h.svc.List(ctx)
}

// Read replies privately with one prescription by id.
func (h *WSHandler) Read(ctx context.Context, _ *ws.Session, arg string, _ json.RawMessage) (interface{}, error) {
	id, err := parseCommandID(arg)
	if err != nil {
		return nil, err
	}
	return h.svc.GetByID(ctx, id)
}

// Update overwrites the stored record with the patch while preserving the
// original issuedAt. Changing the business key triggers a uniqueness
// re-check.
func (h *WSHandler) Update(ctx context.Context, _ *ws.Session, arg string, payload json.RawMessage) (interface{}, error) {
	id, err := parseCommandID(arg)
	if err != nil {
		return nil, err
	}
	existing, err := h.svc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var patch Erezept
	if err := json.Unmarshal(payload, &patch); err != nil {
		return nil, validationError(map[string]string{"payload": err.Error()})
	}

	if patch.PrescriptionID != existing.PrescriptionID {
		exists, err := h.svc.ExistsByPrescriptionID(ctx, patch.PrescriptionID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, conflictf("ERezept with prescriptionId=%s already exists", patch.PrescriptionID)
		}
	}

	patch.ID = existing.ID
	patch.IssuedAt = existing.IssuedAt
	if patch.Status == "" {
		patch.Status = existing.Status
	}
	if err := patch.Validate(time.Now()); err != nil {
		return nil, err
	}

	saved, err := h.svc.Save(ctx, &patch)
	if err != nil {
		return nil, err
	}

	h.hub.Broadcast(ws.NewServerFrame(h.topic, saved))
	return saved, nil
}

// Delete removes the record and replies privately with an acknowledgement.
// No broadcast occurs.
func (h *WSHandler) Delete(ctx context.Context, _ *ws.Session, arg string, _ json.RawMessage) (interface{}, error) {
	id, err := parseCommandID(arg)
	if err != nil {
		return nil, err
	}
	deleted, err := h.svc.DeleteIfExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, notFoundf("ERezept with id=%d not found", id)
	}
	return map[string]interface{}{"id": id, "status": "deleted"}, nil
}

func parseCommandID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, validationError(map[string]string{"id": "invalid id " + strconv.Quote(arg)})
	}
	return id, nil
}

// WSErrorMapper translates domain errors into the private error payload of
// the realtime channel.
func WSErrorMapper(err error) ws.ErrorResponse {
	resp := ws.ErrorResponse{
		Status:    http.StatusInternalServerError,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
	if de := AsError(err); de != nil {
		resp.Status = de.HTTPStatus()
		resp.Message = de.Message
		resp.Details = de.Details
	}
	return resp
}
