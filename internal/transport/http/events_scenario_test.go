package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cimillas/events-api/internal/app"
	"github.com/cimillas/events-api/internal/clock"
	"github.com/cimillas/events-api/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
)

var errStoreBoom = errors.New("store exploded")

type apiErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// eventsAPI is a full router over the in-memory repository.
type eventsAPI struct {
	t       *testing.T
	handler http.Handler
}

func newEventsAPI(t *testing.T, repo app.EventRepository, now time.Time) *eventsAPI {
	t.Helper()
	svc := app.NewEventService(nil, repo, clock.NewFixed(now))
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	return &eventsAPI{
		t: t,
		handler: NewRouter(RouterConfig{
			Events:      NewEventHandlers(svc, nil, StatusFlat, metrics),
			Metrics:     metrics,
			Gatherer:    reg,
			CORSOrigins: []string{"*"},
		}),
	}
}

func (a *eventsAPI) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *eventsAPI) list() []eventResponse {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/api/events", "")
	if rec.Code != http.StatusOK {
		a.t.Fatalf("list: expected status 200, got %d", rec.Code)
	}
	var events []eventResponse
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		a.t.Fatalf("decode list: %v", err)
	}
	return events
}

func TestEventsAPI_LaunchScenario(t *testing.T) {
	now := time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)
	api := newEventsAPI(t, testutil.NewMemoryEventRepository(), now)

	if events := api.list(); len(events) != 0 {
		t.Fatalf("expected empty list, got %d events", len(events))
	}

	rec := api.do(http.MethodPost, "/api/events", `{"name":"Launch","date":"2024-05-01","location":"HQ"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var created eventResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.Name != "Launch" || created.Location != "HQ" {
		t.Fatalf("unexpected created event %+v", created)
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, created.CreatedAt)
	}

	events := api.list()
	if len(events) != 1 || events[0] != created {
		t.Fatalf("expected list to contain created event, got %+v", events)
	}

	rec = api.do(http.MethodPut, "/api/events/"+created.ID, `{"location":"Remote"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d", rec.Code)
	}
	var updated eventResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	want := created
	want.Location = "Remote"
	if updated != want {
		t.Fatalf("expected %+v, got %+v", want, updated)
	}

	rec = api.do(http.MethodDelete, "/api/events/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected status 200, got %d", rec.Code)
	}
	var msg messageResponse
	if err := json.NewDecoder(rec.Body).Decode(&msg); err != nil || msg.Message != "deleted" {
		t.Fatalf("expected deleted message, got %+v (%v)", msg, err)
	}

	if events := api.list(); len(events) != 0 {
		t.Fatalf("expected event to be gone, got %+v", events)
	}
}

func TestEventsAPI_RequiredFieldRejection(t *testing.T) {
	api := newEventsAPI(t, testutil.NewMemoryEventRepository(), time.Now())

	bodies := []string{
		`{"date":"2024-05-01","location":"HQ"}`,
		`{"name":"Launch","location":"HQ"}`,
		`{"name":"Launch","date":"2024-05-01"}`,
		`{}`,
		``,
	}
	for _, body := range bodies {
		rec := api.do(http.MethodPost, "/api/events", body)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%q: expected status 500, got %d", body, rec.Code)
		}
		var resp apiErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("%q: decode: %v", body, err)
		}
		if resp.Error != msgCreateFailed || resp.Code != codeValidationFailed {
			t.Fatalf("%q: unexpected error response %+v", body, resp)
		}
	}

	if events := api.list(); len(events) != 0 {
		t.Fatalf("expected no events stored, got %d", len(events))
	}
}

func TestEventsAPI_DeleteUnknownIsSilent(t *testing.T) {
	api := newEventsAPI(t, testutil.NewMemoryEventRepository(), time.Now())

	rec := api.do(http.MethodDelete, "/api/events/999", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"message\":\"deleted\"}\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestEventsAPI_UpdateUnknownReturnsNull(t *testing.T) {
	api := newEventsAPI(t, testutil.NewMemoryEventRepository(), time.Now())

	rec := api.do(http.MethodPut, "/api/events/999", `{"location":"Remote"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "null\n" {
		t.Fatalf("expected null body, got %q", body)
	}
}

func TestEventsAPI_MalformedIDFails(t *testing.T) {
	api := newEventsAPI(t, testutil.NewMemoryEventRepository(), time.Now())

	rec := api.do(http.MethodPut, "/api/events/not-an-id", `{"location":"Remote"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("update: expected status 500, got %d", rec.Code)
	}
	rec = api.do(http.MethodDelete, "/api/events/not-an-id", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("delete: expected status 500, got %d", rec.Code)
	}
	var resp apiErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != msgDeleteFailed || resp.Code != codeInvalidID {
		t.Fatalf("unexpected error response %+v", resp)
	}
}

func TestEventsAPI_StoreFailure(t *testing.T) {
	repo := testutil.NewMemoryEventRepository()
	api := newEventsAPI(t, repo, time.Now())
	repo.Err = errStoreBoom

	cases := []struct {
		method, path, body, msg string
	}{
		{http.MethodPost, "/api/events", `{"name":"Launch","date":"2024-05-01","location":"HQ"}`, msgCreateFailed},
		{http.MethodGet, "/api/events", "", msgFetchFailed},
		{http.MethodPut, "/api/events/1", `{"location":"Remote"}`, msgUpdateFailed},
		{http.MethodDelete, "/api/events/1", "", msgDeleteFailed},
	}
	for _, c := range cases {
		rec := api.do(c.method, c.path, c.body)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected status 500, got %d", c.method, c.path, rec.Code)
		}
		var resp apiErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("%s %s: decode: %v", c.method, c.path, err)
		}
		if resp.Error != c.msg {
			t.Fatalf("%s %s: expected %q, got %q", c.method, c.path, c.msg, resp.Error)
		}
	}
}

func TestEventsAPI_TrailingDataIsNotStored(t *testing.T) {
	api := newEventsAPI(t, testutil.NewMemoryEventRepository(), time.Now())

	rec := api.do(http.MethodPost, "/api/events", `{"name":"A","date":"2024-05-01","location":"HQ"} trailing`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if events := api.list(); len(events) != 0 {
		t.Fatalf("expected no events stored, got %+v", events)
	}
}

func TestEventsAPI_NullDescriptionClears(t *testing.T) {
	api := newEventsAPI(t, testutil.NewMemoryEventRepository(), time.Now())

	rec := api.do(http.MethodPost, "/api/events", `{"name":"Launch","date":"2024-05-01","location":"HQ","description":"kickoff"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d", rec.Code)
	}
	var created eventResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = api.do(http.MethodPut, "/api/events/"+created.ID, `{"description":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d", rec.Code)
	}
	events := api.list()
	if len(events) != 1 || events[0].Description != "" {
		t.Fatalf("expected description cleared, got %+v", events)
	}
	if events[0].Name != "Launch" || events[0].Location != "HQ" {
		t.Fatalf("expected other fields kept, got %+v", events[0])
	}
}

func TestEventsAPI_EpochMillisDate(t *testing.T) {
	api := newEventsAPI(t, testutil.NewMemoryEventRepository(), time.Now())

	rec := api.do(http.MethodPost, "/api/events", `{"name":"Launch","date":1714521600000,"location":"HQ"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var created eventResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC); !created.Date.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, created.Date)
	}
}
