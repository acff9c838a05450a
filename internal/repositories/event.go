package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
)

const eventColumns = "id, sequence, class, origin, payload, received_at"

// EventRepository persists [models.EventRecord] values in the events table.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository with the given database connection
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts rec with a generated ID and the next sequence number.
func (r *EventRepository) Create(rec *models.EventRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidEvent, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(tx, "events")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO events (id, sequence, class, origin, payload, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, id, sequence, rec.Class, rec.Origin, rec.Payload, rec.ReceivedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event: %w", err)
	}

	rec.SetID(id)
	rec.Sequence = sequence
	return nil
}

// Get retrieves an event by ID.
func (r *EventRepository) Get(id string) (*models.EventRecord, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

	rec, err := scanEvent(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event not found: %s", id)
	}
	return rec, err
}

// List returns up to limit events, newest first. A non-positive limit returns every event;
// a non-empty class keeps only events of that class.
func (r *EventRepository) List(limit int, class string) ([]*models.EventRecord, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := []any{}

	if class != "" {
		query += " WHERE class = ?"
		args = append(args, class)
	}

	query += " ORDER BY sequence DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var records []*models.EventRecord
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

// Count returns the number of journaled events, optionally restricted to class.
func (r *EventRepository) Count(class string) (int, error) {
	query := "SELECT COUNT(*) FROM events"
	args := []any{}
	if class != "" {
		query += " WHERE class = ?"
		args = append(args, class)
	}

	var n int
	if err := r.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// Prune deletes events received before the cutoff and returns how many were removed.
func (r *EventRepository) Prune(before time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM events WHERE received_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanEvent scans a single row from [sql.Row] or [sql.Rows] into a [models.EventRecord]
func scanEvent(s scanner) (*models.EventRecord, error) {
	var (
		id         string
		sequence   int
		class      string
		origin     string
		payload    string
		receivedAt time.Time
	)

	if err := s.Scan(&id, &sequence, &class, &origin, &payload, &receivedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	rec := models.NewEventRecord(class, origin, payload, receivedAt)
	rec.SetID(id)
	rec.Sequence = sequence
	return rec, nil
}
