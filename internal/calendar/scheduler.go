package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
	"github.com/rental-calendar-hub/backend/internal/websocket"
)

// Scheduler drives the reconciler across all syncable connections on a
// fixed interval, with single-flight execution: at most one batch is in
// flight process-wide, and a trigger received while a batch is running
// returns the previous snapshot instead of starting a second one.
type Scheduler struct {
	cron           *cron.Cron
	reconciler     *Reconciler
	connectionRepo *storage.ConnectionRepository
	broadcaster    *websocket.EventBroadcaster
	logger         *zap.Logger

	interval     time.Duration
	initialDelay time.Duration
	initialTimer *time.Timer

	mu       sync.Mutex
	running  bool
	snapshot models.BatchSnapshot
}

// NewScheduler creates a batch scheduler. interval is the fixed time between
// scheduled batches; initialDelay schedules one batch shortly after startup
// so operators do not wait a full interval for first results.
func NewScheduler(
	reconciler *Reconciler,
	connectionRepo *storage.ConnectionRepository,
	hub *websocket.Hub,
	logger *zap.Logger,
	interval, initialDelay time.Duration,
) *Scheduler {
	if interval < time.Minute {
		interval = 30 * time.Minute
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub, logger)
	}

	return &Scheduler{
		cron:           cron.New(),
		reconciler:     reconciler,
		connectionRepo: connectionRepo,
		broadcaster:    broadcaster,
		logger:         logger,
		interval:       interval,
		initialDelay:   initialDelay,
		snapshot:       models.BatchSnapshot{Results: []models.SyncRunResult{}},
	}
}

// Start begins the periodic timer and schedules the initial batch.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@every "+s.interval.String(), func() {
		s.RunBatch(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	s.initialTimer = time.AfterFunc(s.initialDelay, func() {
		s.RunBatch(context.Background())
	})

	s.logger.Info("sync scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("initial_delay", s.initialDelay),
	)

	return nil
}

// Stop halts the timer and waits for cron jobs to return. An in-flight
// batch finishes on its own; there is no mid-batch cancellation.
func (s *Scheduler) Stop() {
	if s.initialTimer != nil {
		s.initialTimer.Stop()
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("sync scheduler stopped")
}

// RunBatch executes one reconciliation batch if none is running. It returns
// the resulting snapshot and whether this call actually started a batch;
// when a batch is already in flight the previous snapshot is returned
// unchanged.
func (s *Scheduler) RunBatch(ctx context.Context) (models.BatchSnapshot, bool) {
	s.mu.Lock()
	if s.running {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, false
	}
	s.running = true
	s.mu.Unlock()

	results := s.runAll(ctx)

	now := time.Now().UTC()
	next := now.Add(s.interval)

	s.mu.Lock()
	s.running = false
	s.snapshot = models.BatchSnapshot{
		LastRunAt: &now,
		NextRunAt: &next,
		Results:   results,
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBatchCompleted(snap)
	}

	return snap, true
}

// runAll attempts every syncable connection sequentially. One connection's
// failure never prevents the rest from being attempted.
func (s *Scheduler) runAll(ctx context.Context) []models.SyncRunResult {
	connections, err := s.connectionRepo.ListSyncable(ctx)
	if err != nil {
		s.logger.Error("listing syncable connections failed", zap.Error(err))
		return []models.SyncRunResult{}
	}

	s.logger.Info("sync batch started", zap.Int("connections", len(connections)))

	results := make([]models.SyncRunResult, 0, len(connections))
	for _, conn := range connections {
		result, err := s.reconciler.Reconcile(ctx, conn.ID)
		if err != nil && s.broadcaster != nil {
			s.broadcaster.BroadcastSyncRunError(*result)
		}
		if err == nil && s.broadcaster != nil {
			s.broadcaster.BroadcastSyncRunCompleted(*result)
		}
		results = append(results, *result)
	}

	return results
}

// Status returns the current scheduler snapshot.
func (s *Scheduler) Status() models.BatchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the snapshot under the held lock.
func (s *Scheduler) snapshotLocked() models.BatchSnapshot {
	snap := s.snapshot
	snap.IsRunning = s.running
	snap.Results = make([]models.SyncRunResult, len(s.snapshot.Results))
	copy(snap.Results, s.snapshot.Results)
	return snap
}
