package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/repo"
	"github.com/mfeldt/trip-sentinel/testutil"
)

// newTestRepo opens a transaction against the test database and returns a
// TripStateRepo backed by that transaction. The transaction is automatically
// rolled back when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; migrations are applied by TestMain.
func newTestRepo(t *testing.T) repo.TripStateRepo {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test.
		_ = tx.Rollback(context.Background())
	})

	return repo.NewTripStateRepo(tx)
}

// stateFixture returns a minimal trip state with one scheduled coastal stop.
func stateFixture() domain.TripState {
	sched := time.Date(2026, 7, 4, 14, 0, 0, 0, time.UTC)
	return domain.TripState{
		ID:       uuid.New(),
		Name:     "Oregon Coast Loop",
		Timezone: "America/Los_Angeles",
		Days: []domain.Day{{
			Date: "2026-07-04",
			Activities: []domain.Activity{{
				ID:                 "act-1",
				Name:               "Tidepools at Yaquina Head",
				Coords:             &domain.Position{Lat: 44.6767, Lon: -124.0793},
				Category:           domain.CategorySoft,
				ScheduledAt:        &sched,
				PlannedDurationMin: 60,
				State:              domain.StatePending,
				Tags:               []string{domain.TagOutdoor},
			}},
		}},
		Bookings: []domain.Booking{{
			Kind:     domain.BookingLodging,
			Name:     "Beachside Inn",
			CheckIn:  "2026-07-04",
			CheckOut: "2026-07-06",
		}},
	}
}

func TestTripStateRepo_CreateAndGet(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	input := stateFixture()
	created, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero(), "CreatedAt should be set")

	got, err := r.Get(ctx, input.ID)

	require.NoError(t, err)
	assert.Equal(t, input.ID, got.ID)
	assert.Equal(t, "Oregon Coast Loop", got.Name)
	require.Len(t, got.Days, 1)
	require.Len(t, got.Days[0].Activities, 1)
	act := got.Days[0].Activities[0]
	assert.Equal(t, domain.StatePending, act.State)
	require.NotNil(t, act.Coords)
	assert.Equal(t, 44.6767, act.Coords.Lat)
	require.NotNil(t, act.ScheduledAt)
	assert.True(t, act.ScheduledAt.Equal(*input.Days[0].Activities[0].ScheduledAt))
}

func TestTripStateRepo_Get_NotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Get(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripStateRepo_Save_RoundTripsMutations(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	state := stateFixture()
	_, err := r.Create(ctx, state)
	require.NoError(t, err)

	// Mutate the way a heartbeat would: transition an activity and record an
	// alert send time.
	now := time.Date(2026, 7, 4, 13, 30, 0, 0, time.UTC)
	state.Days[0].Activities[0].State = domain.StateArrived
	state.Days[0].Activities[0].ArrivedAt = &now
	state.AlertRecord = map[string]time.Time{string(domain.AlertWeather): now}
	state.LastPosition = &domain.PositionSample{
		Position: domain.Position{Lat: 44.6767, Lon: -124.0793},
		At:       now,
	}

	require.NoError(t, r.Save(ctx, state))

	got, err := r.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateArrived, got.Days[0].Activities[0].State)
	require.NotNil(t, got.Days[0].Activities[0].ArrivedAt)
	assert.True(t, got.Days[0].Activities[0].ArrivedAt.Equal(now))
	require.Contains(t, got.AlertRecord, string(domain.AlertWeather))
	require.NotNil(t, got.LastPosition)
	assert.Equal(t, 44.6767, got.LastPosition.Lat)
}

func TestTripStateRepo_Save_NotFound(t *testing.T) {
	r := newTestRepo(t)

	err := r.Save(context.Background(), stateFixture())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripStateRepo_ListIDs(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first := stateFixture()
	second := stateFixture()
	second.ID = uuid.New()
	second.Name = "Cascades Weekend"

	_, err := r.Create(ctx, first)
	require.NoError(t, err)
	_, err = r.Create(ctx, second)
	require.NoError(t, err)

	ids, err := r.ListIDs(ctx)

	require.NoError(t, err)
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}
