package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/trace"
)

// ReadEvents returns the events of a session ordered by seq ASC, id ASC
// COLLATE BINARY. An unknown session yields an empty slice.
func (s *Store) ReadEvents(ctx context.Context, sessionID string) ([]trace.Event, error) {
	return s.QueryEvents(ctx, sessionID, EventFilter{})
}

// EventFilter narrows QueryEvents. Zero fields match everything.
type EventFilter struct {
	Key   string
	Phase handler.Phase
}

// QueryEvents returns the events of a session that match f, in the same
// order as ReadEvents.
func (s *Store) QueryEvents(ctx context.Context, sessionID string, f EventFilter) ([]trace.Event, error) {
	query := `
		SELECT id, session_id, seq, phase, key, value, args
		FROM events
		WHERE session_id = ?`
	args := []any{sessionID}
	if f.Key != "" {
		query += ` AND key = ?`
		args = append(args, f.Key)
	}
	if f.Phase != "" {
		query += ` AND phase = ?`
		args = append(args, string(f.Phase))
	}
	query += `
		ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []trace.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (trace.Event, error) {
	var (
		e            trace.Event
		phase        string
		value, argsS string
	)
	if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &phase, &e.Key, &value, &argsS); err != nil {
		return trace.Event{}, fmt.Errorf("scan event: %w", err)
	}
	e.Phase = handler.Phase(phase)
	e.Value = json.RawMessage(value)
	e.Args = json.RawMessage(argsS)
	return e, nil
}

// Sessions returns every session ordered by created_at_seq, then id.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at_seq
		FROM sessions
		ORDER BY created_at_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.CreatedAtSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// CountEvents returns the number of events recorded for a session.
func (s *Store) CountEvents(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq recorded for a session, or 0 if it has no
// events.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM events WHERE session_id = ?`, sessionID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}
