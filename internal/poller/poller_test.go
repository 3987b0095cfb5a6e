package poller

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliseohh/homeworkbot/internal/bot"
	"github.com/eliseohh/homeworkbot/internal/journal"
	"github.com/eliseohh/homeworkbot/internal/practicum"
	"github.com/eliseohh/homeworkbot/internal/testutil"
)

type fetchResult struct {
	body string
	err  error
}

type fakeFetcher struct {
	results []fetchResult
	froms   []int64
}

func (f *fakeFetcher) Fetch(ctx context.Context, from int64) ([]byte, error) {
	f.froms = append(f.froms, from)
	if len(f.results) == 0 {
		return []byte(`{"homeworks": [], "current_date": 0}`), nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

type fakeNotifier struct {
	sent []string
	// failures counts down; while positive every Notify fails.
	failures int
	failAll  bool
}

func (n *fakeNotifier) Notify(ctx context.Context, text string) error {
	if n.failAll || n.failures > 0 {
		n.failures--
		return &bot.DeliveryError{Chat: "42", Err: errors.New("chat not found")}
	}
	n.sent = append(n.sent, text)
	return nil
}

type fakeJournal struct {
	entries []journal.Entry
	err     error
}

func (j *fakeJournal) Record(ctx context.Context, e journal.Entry) error {
	j.entries = append(j.entries, e)
	return j.err
}

func approvedBody(date string) string {
	return `{"homeworks": [{"homework_name": "hw_bot.zip", "status": "approved"}], "current_date": ` + date + `}`
}

func newTestPoller(f *fakeFetcher, n *fakeNotifier, j *fakeJournal) (*Poller, *testutil.Buffer) {
	logger, buf := testutil.NewBufferLogger()
	opts := Options{Cursor: 1000, Logger: logger}
	if j != nil {
		opts.Journal = j
	}
	return New(f, n, opts), buf
}

func TestPollApprovedSendsOnce(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{body: approvedBody("1100")}}}
	n := &fakeNotifier{}
	p, _ := newTestPoller(f, n, nil)

	require.NoError(t, p.Poll(context.Background()))

	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "hw_bot.zip")
	assert.Contains(t, n.sent[0], `Review status changed for "hw_bot.zip": reviewed, no issues, approved`)
	assert.Equal(t, n.sent[0], p.LastReport())
}

func TestPollDeduplicatesSameStatus(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{body: approvedBody("1100")},
		{body: approvedBody("1200")},
	}}
	n := &fakeNotifier{}
	p, buf := newTestPoller(f, n, nil)

	require.NoError(t, p.Poll(context.Background()))
	require.NoError(t, p.Poll(context.Background()))

	assert.Len(t, n.sent, 1)
	assert.Contains(t, buf.String(), "status unchanged")
}

func TestPollSendsOnStatusChange(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{body: `{"homeworks": [{"homework_name": "hw.zip", "status": "reviewing"}], "current_date": 1}`},
		{body: `{"homeworks": [{"homework_name": "hw.zip", "status": "rejected"}], "current_date": 2}`},
	}}
	n := &fakeNotifier{}
	p, _ := newTestPoller(f, n, nil)

	require.NoError(t, p.Poll(context.Background()))
	require.NoError(t, p.Poll(context.Background()))

	require.Len(t, n.sent, 2)
	assert.Contains(t, n.sent[0], "taken up for review")
	assert.Contains(t, n.sent[1], "reviewer has comments")
}

func TestPollAdvancesCursor(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{body: `{"homeworks": [], "current_date": 1500}`},
		{body: `{"homeworks": [], "current_date": 1600}`},
	}}
	p, _ := newTestPoller(f, &fakeNotifier{}, nil)

	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, int64(1500), p.Cursor())
	require.NoError(t, p.Poll(context.Background()))

	assert.Equal(t, []int64{1000, 1500}, f.froms)
	assert.Equal(t, int64(1600), p.Cursor())
}

func TestPollKeepsCursorWithoutCurrentDate(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{body: `{"homeworks": []}`},
		{body: `{"homeworks": [], "current_date": null}`},
	}}
	n := &fakeNotifier{}
	p, _ := newTestPoller(f, n, nil)

	assert.ErrorIs(t, p.Poll(context.Background()), practicum.ErrMissingKey)
	assert.Equal(t, int64(1000), p.Cursor())
	assert.ErrorIs(t, p.Poll(context.Background()), practicum.ErrWrongType)
	assert.Equal(t, int64(1000), p.Cursor())
	assert.Equal(t, []int64{1000, 1000}, f.froms)
}

func TestPollAdvancesCursorEvenWhenHomeworksInvalid(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{body: `{"homeworks": "x", "current_date": 4242}`}}}
	p, _ := newTestPoller(f, &fakeNotifier{}, nil)

	assert.ErrorIs(t, p.Poll(context.Background()), practicum.ErrWrongType)
	assert.Equal(t, int64(4242), p.Cursor())
}

func TestPollEmptyListLogsNoUpdates(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{body: `{"homeworks": [], "current_date": 1}`}}}
	n := &fakeNotifier{}
	j := &fakeJournal{}
	p, buf := newTestPoller(f, n, j)

	require.NoError(t, p.Poll(context.Background()))

	assert.Empty(t, n.sent)
	assert.Empty(t, j.entries)
	assert.Contains(t, buf.String(), "no updates")
}

func TestPollBadStatusReportsFailure(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{err: &practicum.StatusError{Code: 503, Body: "maintenance"}}}}
	n := &fakeNotifier{}
	p, buf := newTestPoller(f, n, nil)

	err := p.Poll(context.Background())
	require.ErrorIs(t, err, practicum.ErrBadStatus)

	require.Len(t, n.sent, 1)
	assert.True(t, strings.HasPrefix(n.sent[0], failurePrefix))
	assert.Contains(t, n.sent[0], "unexpected response status 503")
	assert.Contains(t, buf.String(), "poll failed")
	assert.Contains(t, buf.String(), "kind=protocol")
	assert.Empty(t, p.LastReport())
}

func TestPollUnknownStatusReportsFailure(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{body: `{"homeworks": [{"homework_name": "hw.zip", "status": "lost"}], "current_date": 7}`},
	}}
	n := &fakeNotifier{}
	p, _ := newTestPoller(f, n, nil)

	err := p.Poll(context.Background())
	require.ErrorIs(t, err, practicum.ErrUnknownStatus)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], `"lost"`)
	assert.Contains(t, n.sent[0], `"hw.zip"`)
	assert.Equal(t, int64(7), p.Cursor())
}

func TestPollDeliveryFailureDoesNotEscalate(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{body: approvedBody("1")}}}
	n := &fakeNotifier{failAll: true}
	j := &fakeJournal{}
	p, buf := newTestPoller(f, n, j)

	require.NoError(t, p.Poll(context.Background()))

	// Only the status attempt; no failure report about the failed delivery.
	require.Len(t, j.entries, 1)
	assert.Equal(t, journal.KindStatus, j.entries[0].Kind)
	assert.False(t, j.entries[0].Delivered)
	assert.Contains(t, j.entries[0].Err, "chat not found")
	assert.Empty(t, p.LastReport())
	assert.Contains(t, buf.String(), "status notification not delivered")
	assert.NotContains(t, buf.String(), "poll failed")
}

func TestPollRetriesUndeliveredStatus(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{body: approvedBody("1")},
		{body: approvedBody("2")},
	}}
	n := &fakeNotifier{failures: 1}
	p, _ := newTestPoller(f, n, nil)

	require.NoError(t, p.Poll(context.Background()))
	assert.Empty(t, n.sent)
	require.NoError(t, p.Poll(context.Background()))
	require.Len(t, n.sent, 1)
	assert.Equal(t, n.sent[0], p.LastReport())
}

func TestPollFailedFailureReportIsOnlyLogged(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{err: practicum.ErrEndpointUnavailable}}}
	n := &fakeNotifier{failAll: true}
	j := &fakeJournal{}
	p, buf := newTestPoller(f, n, j)

	err := p.Poll(context.Background())
	require.ErrorIs(t, err, practicum.ErrEndpointUnavailable)

	require.Len(t, j.entries, 1)
	assert.Equal(t, journal.KindFailure, j.entries[0].Kind)
	assert.False(t, j.entries[0].Delivered)
	assert.Contains(t, buf.String(), "failure report not delivered")
	assert.Contains(t, buf.String(), "kind=transport")
}

func TestPollJournalsDeliveries(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{body: approvedBody("1300")},
		{err: errors.New("boom")},
	}}
	j := &fakeJournal{}
	p, _ := newTestPoller(f, &fakeNotifier{}, j)

	require.NoError(t, p.Poll(context.Background()))
	require.Error(t, p.Poll(context.Background()))

	require.Len(t, j.entries, 2)
	assert.Equal(t, journal.KindStatus, j.entries[0].Kind)
	assert.Equal(t, int64(1300), j.entries[0].Cursor)
	assert.True(t, j.entries[0].Delivered)
	assert.Equal(t, journal.KindFailure, j.entries[1].Kind)
	assert.Equal(t, failurePrefix+"boom", j.entries[1].Text)
}

func TestPollJournalErrorIsLogged(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{body: approvedBody("1")}}}
	n := &fakeNotifier{}
	p, buf := newTestPoller(f, n, &fakeJournal{err: errors.New("disk full")})

	require.NoError(t, p.Poll(context.Background()))
	assert.Len(t, n.sent, 1)
	assert.Contains(t, buf.String(), "journal write failed")
}

func TestPollCancelledContextIsNotReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFetcher{results: []fetchResult{{err: ctx.Err()}}}
	n := &fakeNotifier{}
	p, _ := newTestPoller(f, n, nil)

	assert.ErrorIs(t, p.Poll(ctx), context.Canceled)
	assert.Empty(t, n.sent)
}

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{err: practicum.ErrEndpointUnavailable},
		{body: `not json`},
		{body: approvedBody("1")},
	}}
	n := &fakeNotifier{}
	p, _ := newTestPoller(f, n, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	p.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		if len(waits) == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.froms, 3)
	assert.Equal(t, []time.Duration{DefaultInterval, DefaultInterval, DefaultInterval}, waits)

	require.Len(t, n.sent, 3)
	assert.True(t, strings.HasPrefix(n.sent[0], failurePrefix))
	assert.True(t, strings.HasPrefix(n.sent[1], failurePrefix))
	assert.Contains(t, n.sent[1], "malformed response body")
	assert.Contains(t, n.sent[2], "approved")
}

func TestNewDefaultsInterval(t *testing.T) {
	p := New(&fakeFetcher{}, &fakeNotifier{}, Options{})
	assert.Equal(t, DefaultInterval, p.interval)

	p = New(&fakeFetcher{}, &fakeNotifier{}, Options{Interval: time.Minute})
	assert.Equal(t, time.Minute, p.interval)
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}
