package store

import (
	"context"
	"fmt"

	"github.com/roach88/ghostrap/internal/trace"
)

// Session is one recorded scenario run.
type Session struct {
	ID           string
	Name         string
	CreatedAtSeq int64
}

// WriteSession records a session. Writing an existing ID is a no-op.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, created_at_seq)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.Name, sess.CreatedAtSeq)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteEvents appends events in one transaction. Events whose ID, or whose
// session and seq, are already stored are skipped, so re-writing a trace is
// idempotent. The session of every event must exist.
func (s *Store) WriteEvents(ctx context.Context, events []trace.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write events: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (id, session_id, seq, phase, key, value, args)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write events: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		args := string(e.Args)
		if args == "" {
			args = "null"
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID,
			e.SessionID,
			e.Seq,
			string(e.Phase),
			e.Key,
			string(e.Value),
			args,
		); err != nil {
			return fmt.Errorf("write event seq=%d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write events: commit: %w", err)
	}
	return nil
}
