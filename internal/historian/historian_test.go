// internal/historian/historian_test.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu        sync.Mutex
	batches   [][]cache.HandActionRecord
	abandoned []uuid.UUID
	fail      bool
}

func (w *fakeWriter) WriteBatch(_ context.Context, recs []cache.HandActionRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("db down")
	}
	w.batches = append(w.batches, recs)
	return nil
}

func (w *fakeWriter) MarkAbandoned(_ context.Context, id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.abandoned = append(w.abandoned, id)
	return nil
}

func (w *fakeWriter) written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

// chanQueue serves payloads pushed by the test.
type chanQueue chan string

func (q chanQueue) Pop(ctx context.Context, timeout time.Duration) (string, bool, error) {
	select {
	case p := <-q:
		return p, true, nil
	case <-time.After(timeout):
		return "", false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func record(t *testing.T, gameID uuid.UUID, idx int) string {
	t.Helper()
	data, err := json.Marshal(cache.HandActionRecord{
		RoomID:      uuid.New(),
		GameID:      gameID,
		HandNumber:  1,
		ActionIndex: idx,
		ActionType:  "card_played",
		Timestamp:   time.Now().UnixMilli(),
	})
	require.NoError(t, err)
	return string(data)
}

func TestIngestFlushesFullBatch(t *testing.T) {
	w := &fakeWriter{}
	cfg := DefaultConfig()
	cfg.BatchSize = 3
	s := NewService(nil, w, cfg, nil)
	game := uuid.New()

	ctx := context.Background()
	s.Ingest(ctx, record(t, game, 1))
	s.Ingest(ctx, record(t, game, 2))
	assert.Equal(t, 0, w.written())
	assert.Equal(t, 2, s.Pending())

	s.Ingest(ctx, record(t, game, 3))
	require.Len(t, w.batches, 1)
	assert.Len(t, w.batches[0], 3)
	assert.Equal(t, 0, s.Pending())
}

func TestIngestDropsGarbage(t *testing.T) {
	w := &fakeWriter{}
	s := NewService(nil, w, DefaultConfig(), nil)
	s.Ingest(context.Background(), "{not json")
	assert.Equal(t, 0, s.Pending())
}

func TestFailedFlushKeepsRecords(t *testing.T) {
	w := &fakeWriter{fail: true}
	s := NewService(nil, w, DefaultConfig(), nil)
	ctx := context.Background()
	s.Ingest(ctx, record(t, uuid.New(), 1))
	s.Flush(ctx)
	assert.Equal(t, 1, s.Pending())

	w.fail = false
	s.Flush(ctx)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 1, w.written())
}

func TestSweepMarksIdleGamesAbandoned(t *testing.T) {
	w := &fakeWriter{}
	cfg := DefaultConfig()
	cfg.Inactivity = time.Minute
	s := NewService(nil, w, cfg, nil)
	start := time.Now()
	s.now = func() time.Time { return start }

	idle, busy := uuid.New(), uuid.New()
	ctx := context.Background()
	s.Ingest(ctx, record(t, idle, 1))

	s.now = func() time.Time { return start.Add(50 * time.Second) }
	s.Ingest(ctx, record(t, busy, 1))

	s.now = func() time.Time { return start.Add(90 * time.Second) }
	s.SweepInactive(ctx)
	assert.Equal(t, []uuid.UUID{idle}, w.abandoned)

	s.SweepInactive(ctx)
	assert.Len(t, w.abandoned, 1, "abandoned games are only marked once")
}

func TestRunDrainsQueueAndFlushesOnShutdown(t *testing.T) {
	w := &fakeWriter{}
	q := make(chanQueue, 10)
	cfg := DefaultConfig()
	cfg.BatchSize = 100
	cfg.FlushDelay = time.Hour
	cfg.PopTimeout = 10 * time.Millisecond
	s := NewService(q, w, cfg, nil)

	game := uuid.New()
	for i := 1; i <= 5; i++ {
		q <- record(t, game, i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Pending() == 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("historian did not stop")
	}
	assert.Equal(t, 5, w.written())
}
