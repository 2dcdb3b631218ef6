package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cimillas/events-api/internal/clock"
	"github.com/cimillas/events-api/internal/domain"
	"github.com/cimillas/events-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceNow = time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)

func newTestService(repo EventRepository) *EventService {
	return NewEventService(nil, repo, clock.NewFixed(serviceNow))
}

func launchInput() CreateEventInput {
	return CreateEventInput{
		Name:     "Launch",
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Location: "HQ",
	}
}

func TestEventService_CreateEvent_StampsCreatedAt(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())

	got, err := svc.CreateEvent(context.Background(), launchInput())
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Launch", got.Name)
	assert.Equal(t, "HQ", got.Location)
	assert.True(t, got.CreatedAt.Equal(serviceNow))
}

func TestEventService_CreateEvent_KeepsSuppliedCreatedAt(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())

	in := launchInput()
	supplied := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	in.CreatedAt = &supplied

	got, err := svc.CreateEvent(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(supplied))
}

func TestEventService_CreateEvent_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateEventInput)
		want   error
	}{
		{name: "missing name", mutate: func(in *CreateEventInput) { in.Name = "" }, want: domain.ErrNameRequired},
		{name: "missing date", mutate: func(in *CreateEventInput) { in.Date = time.Time{} }, want: domain.ErrDateRequired},
		{name: "missing location", mutate: func(in *CreateEventInput) { in.Location = "" }, want: domain.ErrLocationRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMemoryEventRepository()
			svc := newTestService(repo)

			in := launchInput()
			tt.mutate(&in)

			_, err := svc.CreateEvent(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, tt.want)

			events, err := repo.ListEvents(context.Background())
			require.NoError(t, err)
			assert.Empty(t, events, "rejected event must not reach the store")
		})
	}
}

func TestEventService_CreateEvent_ReportsEveryMissingField(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())

	_, err := svc.CreateEvent(context.Background(), CreateEventInput{Description: "only a description"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNameRequired)
	assert.ErrorIs(t, err, domain.ErrDateRequired)
	assert.ErrorIs(t, err, domain.ErrLocationRequired)
}

func TestEventService_CreateEvent_StoreError(t *testing.T) {
	repo := testutil.NewMemoryEventRepository()
	repo.Err = domain.ErrStoreUnavailable
	svc := newTestService(repo)

	_, err := svc.CreateEvent(context.Background(), launchInput())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestEventService_ListEvents_EmptyIsNotNil(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())

	events, err := svc.ListEvents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Len(t, events, 0)
}

func TestEventService_UpdateEvent_PartialFields(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())
	ctx := context.Background()

	in := launchInput()
	in.Description = gofakeit.Sentence(6)
	created, err := svc.CreateEvent(ctx, in)
	require.NoError(t, err)

	remote := "Remote"
	updated, err := svc.UpdateEvent(ctx, created.ID, domain.EventPatch{Location: &remote})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Remote", updated.Location)
	assert.Equal(t, created.Name, updated.Name)
	assert.True(t, created.Date.Equal(updated.Date))
	assert.Equal(t, created.Description, updated.Description)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
}

func TestEventService_UpdateEvent_UnknownIDReturnsNil(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())

	remote := "Remote"
	got, err := svc.UpdateEvent(context.Background(), "42", domain.EventPatch{Location: &remote})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEventService_UpdateEvent_RejectsBlankRequiredField(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, launchInput())
	require.NoError(t, err)

	blank := ""
	_, err = svc.UpdateEvent(ctx, created.ID, domain.EventPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrNameRequired)
}

func TestEventService_UpdateEvent_InvalidID(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())

	_, err := svc.UpdateEvent(context.Background(), "", domain.EventPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.UpdateEvent(context.Background(), "not-a-number", domain.EventPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestEventService_DeleteEvent(t *testing.T) {
	svc := newTestService(testutil.NewMemoryEventRepository())
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, launchInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(ctx, created.ID))
	require.NoError(t, svc.DeleteEvent(ctx, created.ID), "second delete must be silent")

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	err = svc.DeleteEvent(ctx, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidID))
}
