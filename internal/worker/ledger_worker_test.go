package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tadbirbot/internal/models"
)

type fakeWriter struct {
	mu   sync.Mutex
	rows []*models.LedgerRow
	err  error
}

func (f *fakeWriter) UpsertUser(ctx context.Context, row *models.LedgerRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func newTestWorker(t *testing.T, writer *fakeWriter) (*LedgerWorker, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	logger := zerolog.Nop()
	return NewLedgerWorker(writer, client, &logger), s
}

func testRow(ticketID string) *models.LedgerRow {
	return &models.LedgerRow{
		TicketID: ticketID,
		FullName: "Test User",
		Phone:    "+998901234567",
		Paid:     true,
	}
}

func TestEnqueuePushesToRedis(t *testing.T) {
	writer := &fakeWriter{}
	w, s := newTestWorker(t, writer)

	err := w.Enqueue(context.Background(), testRow("TCK-AAAA0001"))
	require.NoError(t, err)

	raw, err := s.Lpop(ledgerQueueKey)
	require.NoError(t, err)

	var row models.LedgerRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))
	assert.Equal(t, "TCK-AAAA0001", row.TicketID)
}

func TestEnqueueValidation(t *testing.T) {
	writer := &fakeWriter{}
	w, _ := newTestWorker(t, writer)

	assert.Error(t, w.Enqueue(context.Background(), nil))
	assert.Error(t, w.Enqueue(context.Background(), &models.LedgerRow{FullName: "No Ticket"}))
}

func TestEnqueueMemoryFallback(t *testing.T) {
	writer := &fakeWriter{}
	logger := zerolog.Nop()
	w := NewLedgerWorker(writer, nil, &logger)

	err := w.Enqueue(context.Background(), testRow("TCK-AAAA0002"))
	require.NoError(t, err)

	select {
	case row := <-w.queue:
		assert.Equal(t, "TCK-AAAA0002", row.TicketID)
	default:
		t.Fatal("expected row in memory queue")
	}
}

func TestProcessSuccess(t *testing.T) {
	writer := &fakeWriter{}
	w, _ := newTestWorker(t, writer)

	w.process(context.Background(), testRow("TCK-AAAA0003"))
	assert.Equal(t, 1, writer.count())

	count, err := w.DeadLetterCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestProcessFailureGoesToDeadLetter(t *testing.T) {
	writer := &fakeWriter{err: errors.New("sheets unavailable")}
	w, _ := newTestWorker(t, writer)

	w.process(context.Background(), testRow("TCK-AAAA0004"))

	count, err := w.DeadLetterCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestResyncReplaysDeadLetter(t *testing.T) {
	writer := &fakeWriter{err: errors.New("sheets unavailable")}
	w, _ := newTestWorker(t, writer)

	w.process(context.Background(), testRow("TCK-AAAA0005"))
	w.process(context.Background(), testRow("TCK-AAAA0006"))

	writer.mu.Lock()
	writer.err = nil
	writer.mu.Unlock()

	synced, err := w.Resync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Equal(t, 2, writer.count())

	count, err := w.DeadLetterCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestResyncStopsOnFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("sheets unavailable")}
	w, _ := newTestWorker(t, writer)

	w.process(context.Background(), testRow("TCK-AAAA0007"))

	synced, err := w.Resync(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, synced)

	// Строка должна вернуться в dead-letter, а не потеряться
	count, derr := w.DeadLetterCount(context.Background())
	require.NoError(t, derr)
	assert.Equal(t, int64(1), count)
}

func TestStartDrainsQueue(t *testing.T) {
	writer := &fakeWriter{}
	w, _ := newTestWorker(t, writer)

	require.NoError(t, w.Enqueue(context.Background(), testRow("TCK-AAAA0008")))
	require.NoError(t, w.Enqueue(context.Background(), testRow("TCK-AAAA0009")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return writer.count() == 2
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop")
	}
}
