package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cimillas/events-api/internal/clock"
	"github.com/cimillas/events-api/internal/domain"
	"github.com/cimillas/events-api/internal/lib/logger/sl"
	"github.com/go-playground/validator/v10"
)

// EventRepository is the persistence contract behind EventService.
// UpdateEvent returns (nil, nil) when no event has the given id, and
// DeleteEvent returns nil in the same situation.
type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type EventService struct {
	log      *slog.Logger
	repo     EventRepository
	clock    clock.Clock
	validate *validator.Validate
}

func NewEventService(log *slog.Logger, repo EventRepository, clk clock.Clock) *EventService {
	if log == nil {
		log = sl.Discard()
	}
	return &EventService{
		log:      log,
		repo:     repo,
		clock:    clk,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type CreateEventInput struct {
	Name        string    `validate:"required"`
	Date        time.Time `validate:"required"`
	Location    string    `validate:"required"`
	Description string
	CreatedAt   *time.Time
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	const op = "app.CreateEvent"
	log := s.log.With(slog.String("op", op))

	if err := s.validate.Struct(in); err != nil {
		log.Debug("rejected event", sl.Err(err))
		return domain.Event{}, validationError(err)
	}

	createdAt := s.clock.Now()
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		createdAt = in.CreatedAt.UTC()
	}

	event, err := s.repo.CreateEvent(ctx, domain.Event{
		Name:        in.Name,
		Date:        in.Date.UTC(),
		Location:    in.Location,
		Description: in.Description,
		CreatedAt:   createdAt,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("event created", slog.String("id", event.ID))
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.ListEvents: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// UpdateEvent applies patch to the event with the given id. A nil event with a
// nil error means the id matched nothing.
func (s *EventService) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	const op = "app.UpdateEvent"

	if id == "" {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrInvalidID)
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrValidation, err)
	}
	if patch.Date != nil {
		d := patch.Date.UTC()
		patch.Date = &d
	}
	if patch.CreatedAt != nil {
		c := patch.CreatedAt.UTC()
		patch.CreatedAt = &c
	}

	event, err := s.repo.UpdateEvent(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if event == nil {
		s.log.Debug("update matched no event", slog.String("op", op), slog.String("id", id))
	}
	return event, nil
}

// DeleteEvent removes the event if it exists. Deleting an unknown id is not an error.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	const op = "app.DeleteEvent"

	if id == "" {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidID)
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var requiredFieldErrors = map[string]error{
	"Name":     domain.ErrNameRequired,
	"Date":     domain.ErrDateRequired,
	"Location": domain.ErrLocationRequired,
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	causes := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if known, ok := requiredFieldErrors[fe.Field()]; ok {
			causes = append(causes, known)
			continue
		}
		causes = append(causes, fmt.Errorf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(causes...))
}
