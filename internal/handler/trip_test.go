package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code, body.Error.Message
}

func TestCreateTrip_Created(t *testing.T) {
	trips := &mockTripServicer{
		create: func(_ context.Context, state domain.TripState) (domain.TripState, error) {
			state.ID = uuid.New()
			return state, nil
		},
	}
	h := newTestRouter(trips, nil, nil)

	payload := `{"name":"Oregon Coast Loop","timezone":"America/Los_Angeles","days":[{"date":"2026-07-04","activities":[{"name":"Tidepool Walk","coords":{"lat":45,"lon":-124}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(payload))
	rec := do(h, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.TripState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "Oregon Coast Loop", got.Name)
}

func TestCreateTrip_MalformedBody(t *testing.T) {
	h := newTestRouter(&mockTripServicer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(`{not json`))
	rec := do(h, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "bad_request", code)
}

func TestCreateTrip_UnknownFieldRejected(t *testing.T) {
	h := newTestRouter(&mockTripServicer{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(`{"nmae":"typo"}`))
	rec := do(h, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTrip_ValidationError(t *testing.T) {
	trips := &mockTripServicer{
		create: func(_ context.Context, _ domain.TripState) (domain.TripState, error) {
			return domain.TripState{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
		},
	}
	h := newTestRouter(trips, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(`{"name":""}`))
	rec := do(h, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	code, message := decodeError(t, rec)
	assert.Equal(t, "validation_error", code)
	assert.Equal(t, "name is required", message, "the sentinel prefix is stripped from the client message")
}

func TestGetTrip_Found(t *testing.T) {
	id := uuid.New()
	trips := &mockTripServicer{
		get: func(_ context.Context, got uuid.UUID) (domain.TripState, error) {
			assert.Equal(t, id, got)
			return domain.TripState{ID: id, Name: "Oregon Coast Loop"}, nil
		},
	}
	h := newTestRouter(trips, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/trips/"+id.String(), nil)
	rec := do(h, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.TripState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, id, got.ID)
}

func TestGetTrip_NotFound(t *testing.T) {
	trips := &mockTripServicer{
		get: func(_ context.Context, _ uuid.UUID) (domain.TripState, error) {
			return domain.TripState{}, domain.ErrNotFound
		},
	}
	h := newTestRouter(trips, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/trips/"+uuid.NewString(), nil)
	rec := do(h, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "not_found", code)
}

func TestGetTrip_InvalidID(t *testing.T) {
	h := newTestRouter(&mockTripServicer{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/trips/not-a-uuid", nil)
	rec := do(h, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTrip_InternalErrorHidesDetails(t *testing.T) {
	trips := &mockTripServicer{
		get: func(_ context.Context, _ uuid.UUID) (domain.TripState, error) {
			return domain.TripState{}, fmt.Errorf("repo.TripStateRepo.Get: connection refused to 10.0.0.5")
		},
	}
	h := newTestRouter(trips, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/trips/"+uuid.NewString(), nil)
	rec := do(h, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	_, message := decodeError(t, rec)
	assert.NotContains(t, message, "10.0.0.5", "internals never leak to the client")
}

func TestCreateTrip_RoundTripsBody(t *testing.T) {
	// The handler decodes into the domain document directly; make sure a
	// marshaled state survives the trip through the endpoint.
	var received domain.TripState
	trips := &mockTripServicer{
		create: func(_ context.Context, state domain.TripState) (domain.TripState, error) {
			received = state
			return state, nil
		},
	}
	h := newTestRouter(trips, nil, nil)

	state := domain.TripState{
		Name:     "Oregon Coast Loop",
		Timezone: "America/Los_Angeles",
		Days: []domain.Day{{
			Date: "2026-07-04",
			Activities: []domain.Activity{{
				Name:     "Tidepool Walk",
				Coords:   &domain.Position{Lat: 45, Lon: -124},
				Category: domain.CategoryHard,
				Tags:     []string{domain.TagOutdoor},
			}},
		}},
	}
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/trips", bytes.NewReader(raw))
	rec := do(h, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, received.Days, 1)
	assert.Equal(t, []string{domain.TagOutdoor}, received.Days[0].Activities[0].Tags)
}
