// Package repo contains all database access logic for Trip Sentinel.
// The trip state is stored as a single JSONB document per trip: the
// orchestrator loads it once, mutates it in memory, and saves it once per
// heartbeat, so the row is the unit of persistence. No business logic lives
// here, only SQL and (de)serialization.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripStateRepo defines the persistence operations for trip-state documents.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the orchestrator to be unit-tested with a mock.
type TripStateRepo interface {
	// Create inserts a new trip-state document. The ID must already be set.
	Create(ctx context.Context, state domain.TripState) (domain.TripState, error)

	// Get retrieves a trip state by its UUID.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Get(ctx context.Context, id uuid.UUID) (domain.TripState, error)

	// Save overwrites the document of an existing trip.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Save(ctx context.Context, state domain.TripState) error

	// ListIDs returns the IDs of every stored trip, oldest first.
	// The heartbeat loop iterates these each cycle.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// pgTripStateRepo is the Postgres implementation of TripStateRepo.
type pgTripStateRepo struct {
	db db
}

// NewTripStateRepo constructs a TripStateRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx for
// rollback isolation.
func NewTripStateRepo(db db) TripStateRepo {
	return &pgTripStateRepo{db: db}
}

// Create inserts a new trip-state row.
func (r *pgTripStateRepo) Create(ctx context.Context, state domain.TripState) (domain.TripState, error) {
	now := time.Now().UTC()
	state.CreatedAt = now
	state.UpdatedAt = now

	doc, err := json.Marshal(state)
	if err != nil {
		return domain.TripState{}, fmt.Errorf("repo.TripStateRepo.Create: marshal: %w", err)
	}

	const q = `
		INSERT INTO trip_states (id, doc, created_at, updated_at)
		VALUES (@id, @doc, @created_at, @updated_at)`

	_, err = r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":         state.ID,
		"doc":        doc,
		"created_at": state.CreatedAt,
		"updated_at": state.UpdatedAt,
	})
	if err != nil {
		return domain.TripState{}, fmt.Errorf("repo.TripStateRepo.Create: %w", err)
	}
	return state, nil
}

// Get retrieves a trip state by primary key and unmarshals the document.
func (r *pgTripStateRepo) Get(ctx context.Context, id uuid.UUID) (domain.TripState, error) {
	const q = `SELECT doc FROM trip_states WHERE id = @id`

	var doc []byte
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripState{}, fmt.Errorf("repo.TripStateRepo.Get: %w", domain.ErrNotFound)
		}
		return domain.TripState{}, fmt.Errorf("repo.TripStateRepo.Get: %w", err)
	}

	var state domain.TripState
	if err := json.Unmarshal(doc, &state); err != nil {
		return domain.TripState{}, fmt.Errorf("repo.TripStateRepo.Get: unmarshal: %w", err)
	}
	// The document is authoritative, but the ID column is the lookup key.
	state.ID = id
	return state, nil
}

// Save overwrites an existing trip-state document.
func (r *pgTripStateRepo) Save(ctx context.Context, state domain.TripState) error {
	state.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("repo.TripStateRepo.Save: marshal: %w", err)
	}

	const q = `
		UPDATE trip_states
		SET doc        = @doc,
		    updated_at = @updated_at
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":         state.ID,
		"doc":        doc,
		"updated_at": state.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("repo.TripStateRepo.Save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripStateRepo.Save: %w", domain.ErrNotFound)
	}
	return nil
}

// ListIDs returns all stored trip IDs ordered by creation time.
func (r *pgTripStateRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	const q = `SELECT id FROM trip_states ORDER BY created_at`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripStateRepo.ListIDs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.TripStateRepo.ListIDs: scan: %w", err)
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripStateRepo.ListIDs: rows: %w", err)
	}

	return ids, nil
}
