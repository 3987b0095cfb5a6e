package journal

import (
	"context"
	"fmt"
	"time"
)

// Entry kinds.
const (
	KindStatus  = "status"
	KindFailure = "failure"
)

// Entry is one notification attempt.
type Entry struct {
	SentAt    time.Time
	Kind      string
	Cursor    int64
	Text      string
	Delivered bool
	Err       string
}

// Record appends e. A zero SentAt is stamped with the current time.
func (d *DB) Record(ctx context.Context, e Entry) error {
	if e.SentAt.IsZero() {
		e.SentAt = time.Now()
	}
	_, err := d.ExecContext(ctx,
		`INSERT INTO deliveries (sent_at, kind, cursor, text, delivered, error) VALUES (?, ?, ?, ?, ?, ?)`,
		e.SentAt.UTC(), e.Kind, e.Cursor, e.Text, e.Delivered, e.Err,
	)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.Kind, err)
	}
	return nil
}
