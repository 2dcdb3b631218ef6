package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cimillas/events-api/internal/app"
	"github.com/cimillas/events-api/internal/domain"
	"github.com/cimillas/events-api/internal/lib/logger/sl"
)

// EventsPath is the collection route; single events live under EventsPath + "/{id}".
const EventsPath = "/api/events"

// EventService is the minimal interface needed for the event endpoints.
type EventService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type EventHandlers struct {
	svc     EventService
	log     *slog.Logger
	mode    StatusMode
	metrics *Metrics
}

// NewEventHandlers wires the event endpoints. metrics may be nil.
func NewEventHandlers(svc EventService, log *slog.Logger, mode StatusMode, metrics *Metrics) *EventHandlers {
	if log == nil {
		log = sl.Discard()
	}
	return &EventHandlers{
		svc:     svc,
		log:     log,
		mode:    mode,
		metrics: metrics,
	}
}

// Register mounts the collection and item routes on mux.
func (h *EventHandlers) Register(mux *http.ServeMux) {
	mux.Handle(EventsPath, h.Collection())
	mux.Handle(EventsPath+"/", h.Routes())
}

// Routes dispatches "/api/events/" to the collection and "/api/events/{id}" to the item handler.
func (h *EventHandlers) Routes() http.HandlerFunc {
	collection := h.Collection()
	item := h.Item()
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseEventPath(r.URL.Path)
		switch {
		case !ok:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		case id == "":
			collection(w, r)
		default:
			item(w, r)
		}
	}
}

// Collection handles create and list.
func (h *EventHandlers) Collection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			events, err := h.svc.ListEvents(r.Context())
			if err != nil {
				h.fail(w, "list", msgFetchFailed, err)
				return
			}
			resp := make([]eventResponse, 0, len(events))
			for _, event := range events {
				resp = append(resp, toEventResponse(event))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createEventRequest
			if err := decodeBody(w, r, &req); err != nil {
				h.failDecode(w, "create", msgCreateFailed, err)
				return
			}

			event, err := h.svc.CreateEvent(r.Context(), req.input())
			if err != nil {
				h.fail(w, "create", msgCreateFailed, err)
				return
			}
			writeJSON(w, http.StatusCreated, toEventResponse(event))
		default:
			w.Header().Set("Allow", "GET, POST")
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// Item handles update and delete of a single event.
func (h *EventHandlers) Item() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseEventPath(r.URL.Path)
		if !ok || id == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodPut:
			var req updateEventRequest
			if err := decodeBody(w, r, &req); err != nil {
				h.failDecode(w, "update", msgUpdateFailed, err)
				return
			}
			patch, err := req.patch(id)
			if err != nil {
				h.fail(w, "update", msgUpdateFailed, err)
				return
			}

			event, err := h.svc.UpdateEvent(r.Context(), id, patch)
			if err != nil {
				h.fail(w, "update", msgUpdateFailed, err)
				return
			}
			if event == nil {
				// unknown id: 200 with a null body
				writeJSON(w, http.StatusOK, nil)
				return
			}
			writeJSON(w, http.StatusOK, toEventResponse(*event))
		case http.MethodDelete:
			if err := h.svc.DeleteEvent(r.Context(), id); err != nil {
				h.fail(w, "delete", msgDeleteFailed, err)
				return
			}
			writeJSON(w, http.StatusOK, messageResponse{Message: "deleted"})
		default:
			w.Header().Set("Allow", "PUT, DELETE")
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func (h *EventHandlers) fail(w http.ResponseWriter, op, msg string, err error) {
	status, code := classify(err, h.mode)
	log := h.log.With(slog.String("op", op), slog.String("code", code), sl.Err(err))
	if code == codeValidationFailed || code == codeInvalidID {
		log.Warn("event request rejected")
	} else {
		log.Error("event operation failed")
	}
	h.metrics.observeFailure(op, code)
	writeError(w, status, code, msg)
}

func (h *EventHandlers) failDecode(w http.ResponseWriter, op, msg string, err error) {
	switch {
	case errors.Is(err, errBodyTooBig):
		h.metrics.observeFailure(op, codePayloadTooLarge)
		writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, err.Error())
	case errors.Is(err, errInvalidBody):
		h.metrics.observeFailure(op, codeInvalidRequestBody)
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
	default:
		h.fail(w, op, msg, err)
	}
}

// parseEventPath returns the id segment under EventsPath. The collection
// itself (with or without trailing slash) yields an empty id.
func parseEventPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, EventsPath)
	if !ok {
		return "", false
	}
	if rest == "" || rest == "/" {
		return "", true
	}
	if rest[0] != '/' {
		return "", false
	}
	id := strings.TrimSuffix(rest[1:], "/")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
