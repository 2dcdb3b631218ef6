package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cimillas/events-api/internal/app"
	"github.com/cimillas/events-api/internal/domain"
)

const maxBodyBytes = 100 << 10

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var (
	errInvalidBody = errors.New("invalid request body")
	errBodyTooBig  = errors.New("request body too large")
)

// eventTime accepts RFC 3339 timestamps, zone-less timestamps, plain dates and
// integer Unix milliseconds. Zone-less inputs are read as UTC.
type eventTime struct {
	time.Time
}

func (t *eventTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')) {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: numeric date must be integer milliseconds", domain.ErrValidation)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: date must be a string", domain.ErrValidation)
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: unrecognized date %q", domain.ErrValidation, raw)
}

func (t *eventTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// nullableString tells an explicit null apart from an absent field.
type nullableString struct {
	Set   bool
	Value string
}

func (s *nullableString) UnmarshalJSON(data []byte) error {
	s.Set = true
	if bytes.Equal(data, []byte("null")) {
		s.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &s.Value); err != nil {
		return fmt.Errorf("%w: field description has the wrong type", domain.ErrValidation)
	}
	return nil
}

func (s nullableString) ptr() *string {
	if !s.Set {
		return nil
	}
	v := s.Value
	return &v
}

type createEventRequest struct {
	Name        string    `json:"name"`
	Date        eventTime `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   eventTime `json:"createdAt"`
}

func (r createEventRequest) input() app.CreateEventInput {
	return app.CreateEventInput{
		Name:        r.Name,
		Date:        r.Date.Time,
		Location:    r.Location,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.ptr(),
	}
}

// updateEventRequest carries only the fields the client sent. An "id" echoed
// back from a previous response is accepted when it matches the path. A null
// description clears it.
type updateEventRequest struct {
	ID          *string        `json:"id"`
	Name        *string        `json:"name"`
	Date        *eventTime     `json:"date"`
	Location    *string        `json:"location"`
	Description nullableString `json:"description"`
	CreatedAt   *eventTime     `json:"createdAt"`
}

func (r updateEventRequest) patch(pathID string) (domain.EventPatch, error) {
	if r.ID != nil && *r.ID != pathID {
		return domain.EventPatch{}, fmt.Errorf("%w: id is immutable", domain.ErrValidation)
	}
	patch := domain.EventPatch{
		Name:        r.Name,
		Location:    r.Location,
		Description: r.Description.ptr(),
	}
	if r.Date != nil {
		if r.Date.IsZero() {
			return domain.EventPatch{}, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrDateRequired)
		}
		patch.Date = r.Date.ptr()
	}
	if r.CreatedAt != nil {
		patch.CreatedAt = r.CreatedAt.ptr()
	}
	return patch, nil
}

// decodeBody fills dst from the request body. An empty body leaves dst untouched.
// Malformed JSON, including anything after the first value, yields
// errInvalidBody; unknown fields and values of the wrong shape are validation
// failures.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		err = dec.Decode(&struct{}{})
		if errors.Is(err, io.EOF) {
			return nil
		}
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) {
			return errBodyTooBig
		}
		return errInvalidBody
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &sizeErr):
		return errBodyTooBig
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return errInvalidBody
	case errors.Is(err, domain.ErrValidation):
		return err
	case errors.As(err, &typeErr):
		return fmt.Errorf("%w: field %s has the wrong type", domain.ErrValidation, typeErr.Field)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.TrimPrefix(err.Error(), "json: "))
	default:
		return errInvalidBody
	}
}

type eventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toEventResponse(event domain.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Date:        event.Date,
		Location:    event.Location,
		Description: event.Description,
		CreatedAt:   event.CreatedAt,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}
