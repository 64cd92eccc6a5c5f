// Package repo contains the database access logic for tripdesk's local
// audit journal. The travel backend owns the trip data itself; the only
// thing this service persists is the history of reviewer actions.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/safariops/tripdesk/internal/domain"
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

// ReviewEventRepo defines the persistence operations for the audit journal.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type ReviewEventRepo interface {
	// Insert appends one event and returns the persisted record (with
	// DB-generated id and created_at populated).
	Insert(ctx context.Context, event domain.ReviewEvent) (domain.ReviewEvent, error)

	// List returns a page of events, newest first, plus the total count.
	List(ctx context.Context, page domain.PaginationParams) ([]domain.ReviewEvent, int64, error)
}

// pgReviewEventRepo is the Postgres implementation of ReviewEventRepo.
type pgReviewEventRepo struct {
	db db
}

// NewReviewEventRepo constructs a ReviewEventRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx for
// rollback isolation.
func NewReviewEventRepo(db db) ReviewEventRepo {
	return &pgReviewEventRepo{db: db}
}

// Insert appends one review event and returns the full persisted record.
func (r *pgReviewEventRepo) Insert(ctx context.Context, event domain.ReviewEvent) (domain.ReviewEvent, error) {
	const q = `
		INSERT INTO review_events (action, trip_name, log_count, acted_by, outcome, detail)
		VALUES (@action, @trip_name, @log_count, @acted_by, @outcome, @detail)
		RETURNING id, action, trip_name, log_count, acted_by, outcome, detail, created_at`

	args := pgx.NamedArgs{
		"action":    event.Action,
		"trip_name": event.TripName,
		"log_count": event.LogCount,
		"acted_by":  event.ActedBy,
		"outcome":   event.Outcome,
		"detail":    event.Detail,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanReviewEvent(row)
	if err != nil {
		return domain.ReviewEvent{}, fmt.Errorf("repo.ReviewEventRepo.Insert: %w", err)
	}
	return result, nil
}

// List returns one page of events ordered by created_at descending, along
// with the total row count for pagination.
func (r *pgReviewEventRepo) List(ctx context.Context, page domain.PaginationParams) ([]domain.ReviewEvent, int64, error) {
	const countQ = `SELECT count(*) FROM review_events`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewEventRepo.List: count: %w", err)
	}

	const q = `
		SELECT id, action, trip_name, log_count, acted_by, outcome, detail, created_at
		FROM review_events
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": page.Limit, "offset": page.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewEventRepo.List: %w", err)
	}
	defer rows.Close()

	events := []domain.ReviewEvent{}
	for rows.Next() {
		e, err := scanReviewEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ReviewEventRepo.List: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewEventRepo.List: rows: %w", err)
	}

	return events, total, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanReviewEvent
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanReviewEvent maps a single database row into a domain.ReviewEvent.
func scanReviewEvent(s scanner) (domain.ReviewEvent, error) {
	var (
		e  domain.ReviewEvent
		id pgtype.UUID
	)

	err := s.Scan(&id, &e.Action, &e.TripName, &e.LogCount, &e.ActedBy, &e.Outcome, &e.Detail, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReviewEvent{}, domain.ErrNotFound
		}
		return domain.ReviewEvent{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	return e, nil
}
