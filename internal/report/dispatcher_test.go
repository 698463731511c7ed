package report

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSink struct {
	release chan struct{}
	got     chan Event
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Send(_ context.Context, e Event) error {
	<-s.release
	s.got <- e
	return nil
}

func (s *blockingSink) Close() error { return nil }

type failingSink struct{}

func (failingSink) Name() string                      { return "failing" }
func (failingSink) Send(context.Context, Event) error { return errors.New("broker down") }
func (failingSink) Close() error                      { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNew_StampsEvent(t *testing.T) {
	e := New(ContractSigned, LevelInfo, "contract signed", map[string]any{"client_id": 1})
	assert.NotEqual(t, [16]byte{}, [16]byte(e.ID))
	assert.Equal(t, ContractSigned, e.Name)
	assert.WithinDuration(t, time.Now(), e.At, time.Second)
}

func TestDispatcher_DeliversToEverySink(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	d := NewDispatcher(discardLogger(), 8, first, failingSink{}, second)

	d.Report(context.Background(), New(EventCreated, LevelInfo, "event created", nil))
	d.Report(context.Background(), New(ClientCreated, LevelInfo, "client created", nil))

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{EventCreated, ClientCreated}, first.Names())
	assert.Equal(t, first.Names(), second.Names())
	assert.Zero(t, d.Dropped())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), got: make(chan Event, 8)}
	d := NewDispatcher(discardLogger(), 1, sink)

	// The worker takes the first event and blocks in Send; the second fills
	// the buffer, so the third is dropped.
	d.Report(context.Background(), New("first", LevelInfo, "", nil))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	d.Report(context.Background(), New("second", LevelInfo, "", nil))
	d.Report(context.Background(), New("third", LevelInfo, "", nil))

	assert.Equal(t, uint64(1), d.Dropped())

	close(sink.release)
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, sink.got, 2)
}

func TestDispatcher_CloseDeadline(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), got: make(chan Event, 1)}
	d := NewDispatcher(discardLogger(), 4, sink)
	d.Report(context.Background(), New("stuck", LevelInfo, "", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(sink.release)
}

func TestDispatcher_ReportAfterClose(t *testing.T) {
	d := NewDispatcher(discardLogger(), 4)
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()), "second close is a no-op")

	d.Report(context.Background(), New("late", LevelInfo, "", nil))
	assert.Equal(t, uint64(1), d.Dropped())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	e := New(FailedLogin, LevelWarning, "login failed", map[string]any{"email": "x@example.com"})
	require.NoError(t, s.Send(context.Background(), e))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "event=FailedLogin")
	assert.Contains(t, out, e.ID.String())
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	r.Report(context.Background(), New("ignored", LevelInfo, "", nil))
}
