package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eliseohh/homeworkbot/internal/journal"
	"github.com/eliseohh/homeworkbot/internal/logging"
	"github.com/eliseohh/homeworkbot/internal/practicum"
)

// DefaultInterval is the fixed pause between polls. There is no backoff:
// a failing iteration waits exactly as long as a successful one.
const DefaultInterval = 600 * time.Second

const failurePrefix = "Program failure: "

// Fetcher returns the raw status body for everything since from.
type Fetcher interface {
	Fetch(ctx context.Context, from int64) ([]byte, error)
}

// Notifier delivers one message to the operator chat.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Journal receives every notification attempt.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

type Options struct {
	Interval time.Duration
	// Cursor is the from_date of the first poll.
	Cursor  int64
	Journal Journal
	Logger  *slog.Logger
}

// Poller runs the fetch, check, format, notify cycle. It is single-threaded:
// Run and Poll must not be called concurrently.
type Poller struct {
	fetcher  Fetcher
	notifier Notifier
	journal  Journal
	logger   *slog.Logger
	interval time.Duration
	wait     func(ctx context.Context, d time.Duration) error

	cursor     int64
	prevReport string
}

func New(fetcher Fetcher, notifier Notifier, opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  fetcher,
		notifier: notifier,
		journal:  opts.Journal,
		logger:   opts.Logger,
		interval: interval,
		wait:     sleep,
		cursor:   opts.Cursor,
	}
}

// Run polls until ctx is cancelled. Processing errors never stop it; the
// only return value is the context error.
func (p *Poller) Run(ctx context.Context) error {
	logging.Info(p.logger, "poller started",
		slog.Duration(logging.FieldInterval, p.interval),
		slog.Int64(logging.FieldCursor, p.cursor),
	)
	for {
		_ = p.Poll(ctx)
		if err := p.wait(ctx, p.interval); err != nil {
			logging.Info(p.logger, "poller stopped", slog.Int64(logging.FieldCursor, p.cursor))
			return err
		}
	}
}

// Poll runs one iteration. A processing error is logged and reported to the
// chat before being returned; delivery failures are only logged.
func (p *Poller) Poll(ctx context.Context) error {
	start := time.Now()
	err := p.check(ctx)
	if err == nil {
		logging.Debug(p.logger, "poll finished",
			slog.Int64(logging.FieldCursor, p.cursor),
			slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
		)
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	p.fail(ctx, err)
	return err
}

// Cursor is the from_date the next poll will use.
func (p *Poller) Cursor() int64 {
	return p.cursor
}

// LastReport is the last status message delivered.
func (p *Poller) LastReport() string {
	return p.prevReport
}

func (p *Poller) check(ctx context.Context) error {
	body, err := p.fetcher.Fetch(ctx, p.cursor)
	if err != nil {
		return err
	}

	resp, err := practicum.CheckResponse(body)
	if resp.CurrentDate != nil {
		p.cursor = *resp.CurrentDate
	}
	if err != nil {
		return err
	}

	if len(resp.Homeworks) == 0 {
		logging.Info(p.logger, "no updates", slog.Int64(logging.FieldCursor, p.cursor))
		return nil
	}

	hw := resp.Homeworks[0]
	report, err := practicum.ParseStatus(hw)
	if err != nil {
		return fmt.Errorf("homework %q: %w", hw.Name, err)
	}
	if report == p.prevReport {
		logging.Debug(p.logger, "status unchanged",
			slog.String(logging.FieldHomework, hw.Name),
			slog.String(logging.FieldStatus, hw.Status),
		)
		return nil
	}

	if err := p.deliver(ctx, journal.KindStatus, report); err != nil {
		// Left unrecorded so the next poll retries the same message.
		logging.Error(p.logger, "status notification not delivered", err,
			slog.String(logging.FieldHomework, hw.Name),
		)
		return nil
	}
	p.prevReport = report
	logging.Info(p.logger, "status notification sent",
		slog.String(logging.FieldHomework, hw.Name),
		slog.String(logging.FieldStatus, hw.Status),
	)
	return nil
}

// fail reports a processing error. A failed report is logged and dropped.
func (p *Poller) fail(ctx context.Context, err error) {
	logging.Error(p.logger, "poll failed", err,
		slog.String(logging.FieldKind, practicum.Kind(err)),
		slog.Int64(logging.FieldCursor, p.cursor),
	)
	if dErr := p.deliver(ctx, journal.KindFailure, failurePrefix+err.Error()); dErr != nil {
		logging.Error(p.logger, "failure report not delivered", dErr)
	}
}

func (p *Poller) deliver(ctx context.Context, kind, text string) error {
	err := p.notifier.Notify(ctx, text)
	p.record(ctx, kind, text, err)
	return err
}

func (p *Poller) record(ctx context.Context, kind, text string, sendErr error) {
	if p.journal == nil {
		return
	}
	entry := journal.Entry{
		Kind:      kind,
		Cursor:    p.cursor,
		Text:      text,
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		entry.Err = sendErr.Error()
	}
	if err := p.journal.Record(ctx, entry); err != nil {
		logging.Error(p.logger, "journal write failed", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
