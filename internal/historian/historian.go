// Package historian drains the hand action stream from Redis into Postgres.
package historian

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/swick/internal/cache"
	"github.com/jason-s-yu/swick/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Queue yields raw queued records. ok is false when the wait timed out.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (payload string, ok bool, err error)
}

// Writer persists batches and closes out idle games.
type Writer interface {
	WriteBatch(ctx context.Context, recs []cache.HandActionRecord) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) error
}

// RedisQueue pops from a Redis list with BLPOP.
type RedisQueue struct {
	Client *redis.Client
	Name   string
}

func (q RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, bool, error) {
	res, err := q.Client.BLPop(ctx, timeout, q.Name).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return "", false, nil
	}
	return res[1], true, nil
}

// PGWriter writes into the hands / hand_actions tables.
type PGWriter struct {
	Pool *pgxpool.Pool
}

func (w PGWriter) WriteBatch(ctx context.Context, recs []cache.HandActionRecord) error {
	return database.BeginTxFunc(ctx, w.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := database.InsertHandActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("InsertHandActionTx: %w", err)
			}
		}
		return nil
	})
}

func (w PGWriter) MarkAbandoned(ctx context.Context, gameID uuid.UUID) error {
	return database.BeginTxFunc(ctx, w.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := database.MarkGameAbandonedTx(ctx, tx, gameID)
		return err
	})
}

// Config tunes batching and abandonment.
type Config struct {
	BatchSize     int
	FlushDelay    time.Duration
	PopTimeout    time.Duration
	Inactivity    time.Duration // duration until a game is marked abandoned
	SweepInterval time.Duration
}

// DefaultConfig mirrors the environment defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     20,
		FlushDelay:    500 * time.Millisecond,
		PopTimeout:    3 * time.Second,
		Inactivity:    10 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Service batches queued records into the writer and marks games abandoned
// once no action has arrived for Config.Inactivity.
type Service struct {
	queue  Queue
	writer Writer
	cfg    Config
	log    *logrus.Entry

	lastActivity sync.Map // map[uuid.UUID]time.Time

	batchMu sync.Mutex
	batch   []cache.HandActionRecord

	now func() time.Time
}

// NewService builds a historian over queue and writer.
func NewService(queue Queue, writer Writer, cfg Config, logger *logrus.Entry) *Service {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	return &Service{
		queue:  queue,
		writer: writer,
		cfg:    cfg,
		log:    logger.WithField("component", "historian"),
		batch:  make([]cache.HandActionRecord, 0, cfg.BatchSize),
		now:    time.Now,
	}
}

// Run starts the read and inactivity loops and blocks until ctx is done. The
// pending batch is flushed before returning.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.readLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.inactivityLoop(ctx)
	}()

	s.log.Info("swick-historian service started")
	<-ctx.Done()
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Flush(flushCtx)
	s.log.Info("swick-historian shut down")
}

// readLoop pops records until ctx is done, flushing on the ticker or when
// the batch is full.
func (s *Service) readLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FlushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx)
		default:
			payload, ok, err := s.queue.Pop(ctx, s.cfg.PopTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Errorf("pop: %v", err)
				time.Sleep(s.cfg.FlushDelay)
				continue
			}
			if !ok {
				continue
			}
			s.Ingest(ctx, payload)
		}
	}
}

// Ingest decodes one queued payload and adds it to the batch.
func (s *Service) Ingest(ctx context.Context, payload string) {
	rec, err := cache.DecodeHandAction(payload)
	if err != nil {
		s.log.Warnf("dropping record: %v", err)
		return
	}
	s.lastActivity.Store(rec.GameID, s.now())

	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.cfg.BatchSize
	s.batchMu.Unlock()

	if full {
		s.Flush(ctx)
	}
}

// Flush writes the current batch in one transaction. On failure the records
// are put back in front of the batch for the next attempt.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := make([]cache.HandActionRecord, len(s.batch))
	copy(pending, s.batch)
	s.batch = s.batch[:0]
	s.batchMu.Unlock()

	if err := s.writer.WriteBatch(ctx, pending); err != nil {
		s.log.Errorf("flush %d actions: %v", len(pending), err)
		s.batchMu.Lock()
		s.batch = append(pending, s.batch...)
		s.batchMu.Unlock()
		return
	}
	s.log.Debugf("flushed %d actions", len(pending))
}

// Pending reports how many records wait for the next flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

func (s *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepInactive(ctx)
		}
	}
}

// SweepInactive marks every game idle for longer than Config.Inactivity as
// abandoned and stops tracking it.
func (s *Service) SweepInactive(ctx context.Context) {
	now := s.now()
	s.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.cfg.Inactivity {
			return true
		}
		if err := s.writer.MarkAbandoned(ctx, gameID); err != nil {
			s.log.Errorf("failed to mark game %v abandoned: %v", gameID, err)
			return true
		}
		s.log.Infof("marked game %v abandoned after inactivity", gameID)
		s.lastActivity.Delete(gameID)
		return true
	})
}
