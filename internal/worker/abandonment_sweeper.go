package worker

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
)

const (
	stateAbandoned = "abandoned"
	stateDeleted   = "deleted"

	stageListIdle      = "list_idle"
	stageAbandon       = "abandon"
	stageListAbandoned = "list_abandoned"
	stageDelete        = "delete"

	defaultSweepInterval = 10 * time.Minute
	defaultIdleAfter     = 3 * time.Hour
	defaultDeleteAfter   = 7 * 24 * time.Hour
)

// CartSweepRepository is the part of the cart store the sweeper needs.
type CartSweepRepository interface {
	ListIdle(ctx context.Context, before time.Time) ([]string, error)
	MarkAbandoned(ctx context.Context, cartID string, before time.Time) (bool, error)
	ListAbandoned(ctx context.Context, before time.Time) ([]string, error)
	DeleteAbandoned(ctx context.Context, cartID string, before time.Time) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, message interface{}) error
}

// SweepResult summarises one pass. Skipped counts carts whose state changed
// between the scan and the conditional write.
type SweepResult struct {
	Marked  int
	Deleted int
	Skipped int
	Failed  int
}

type AbandonmentSweeper struct {
	carts     CartSweepRepository
	publisher EventPublisher
	metrics   *metrics.MetricsManager
	log       logger.Logger
	cfg       config.SweeperConfig
	now       func() time.Time
}

type Option func(*AbandonmentSweeper)

func WithClock(now func() time.Time) Option {
	return func(s *AbandonmentSweeper) {
		s.now = now
	}
}

// NewAbandonmentSweeper builds a sweeper. publisher and m may be nil; non-positive
// durations in cfg fall back to the defaults.
func NewAbandonmentSweeper(
	carts CartSweepRepository,
	publisher EventPublisher,
	m *metrics.MetricsManager,
	log logger.Logger,
	cfg config.SweeperConfig,
	opts ...Option,
) *AbandonmentSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = defaultIdleAfter
	}
	if cfg.DeleteAfter <= 0 {
		cfg.DeleteAfter = defaultDeleteAfter
	}
	s := &AbandonmentSweeper{
		carts:     carts,
		publisher: publisher,
		metrics:   m,
		log:       log.With("component", "abandonment_sweeper"),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps once immediately and then on every interval tick until ctx is done.
func (s *AbandonmentSweeper) Run(ctx context.Context) error {
	s.log.Infof("Sweeper started: interval=%s idle_after=%s delete_after=%s",
		s.cfg.Interval, s.cfg.IdleAfter, s.cfg.DeleteAfter)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper stopped")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce marks idle carts abandoned and deletes carts abandoned for too long.
// A failure on one cart is logged and counted; the pass continues.
func (s *AbandonmentSweeper) RunOnce(ctx context.Context) SweepResult {
	started := time.Now()
	now := s.now()
	idleBefore := now.Add(-s.cfg.IdleAfter)
	deleteBefore := now.Add(-s.cfg.DeleteAfter)

	var result SweepResult
	failures := make(map[string]int)
	fail := func(stage string) {
		failures[stage]++
		result.Failed++
	}

	idle, err := s.carts.ListIdle(ctx, idleBefore)
	if err != nil {
		s.log.Errorf("Sweeper: failed to list idle carts: %v", err)
		fail(stageListIdle)
	}
	for _, cartID := range idle {
		if ctx.Err() != nil {
			break
		}
		marked, err := s.carts.MarkAbandoned(ctx, cartID, idleBefore)
		if err != nil {
			s.log.Errorf("Sweeper: failed to mark cart %s abandoned: %v", cartID, err)
			fail(stageAbandon)
			continue
		}
		if !marked {
			result.Skipped++
			continue
		}
		result.Marked++
		s.publish(ctx, entity.SubjectCartAbandoned, cartID, stateAbandoned, now)
	}

	abandoned, err := s.carts.ListAbandoned(ctx, deleteBefore)
	if err != nil {
		s.log.Errorf("Sweeper: failed to list abandoned carts: %v", err)
		fail(stageListAbandoned)
	}
	for _, cartID := range abandoned {
		if ctx.Err() != nil {
			break
		}
		deleted, err := s.carts.DeleteAbandoned(ctx, cartID, deleteBefore)
		if err != nil {
			s.log.Errorf("Sweeper: failed to delete abandoned cart %s: %v", cartID, err)
			fail(stageDelete)
			continue
		}
		if !deleted {
			result.Skipped++
			continue
		}
		result.Deleted++
		s.publish(ctx, entity.SubjectCartDeleted, cartID, stateDeleted, now)
	}

	took := time.Since(started)
	s.metrics.ObserveSweep(result.Marked, result.Deleted, failures, took)
	if result.Marked > 0 || result.Deleted > 0 || result.Failed > 0 {
		s.log.Infow("Sweep finished",
			"marked", result.Marked,
			"deleted", result.Deleted,
			"skipped", result.Skipped,
			"failed", result.Failed,
			"took", took.String(),
		)
	}
	return result
}

func (s *AbandonmentSweeper) publish(ctx context.Context, subject, cartID, state string, at time.Time) {
	if s.publisher == nil {
		return
	}
	event := entity.CartLifecycleEvent{CartID: cartID, State: state, OccurredAt: at}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.log.Warnf("Sweeper: failed to publish %s for cart %s: %v", subject, cartID, err)
	}
}
