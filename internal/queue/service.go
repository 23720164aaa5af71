package queue

import (
	"context"
	"time"

	"mdhub/internal/broker"
	"mdhub/internal/config"
	"mdhub/internal/logger"
	"mdhub/pkg/errors"
	"mdhub/pkg/metrics"
)

// drainTimeout bounds the background drain kicked off by a resume; the drain
// runs detached from the request that triggered it.
const drainTimeout = 5 * time.Minute

type Service interface {
	Current(ctx context.Context) (*Status, error)
	Set(ctx context.Context, req SetStatusRequest) (*Status, error)
	History(ctx context.Context, limit int) ([]Status, error)
	RetryDeadLetter(ctx context.Context) (*broker.RetryResult, error)
	Depths(ctx context.Context) (*DepthReport, error)
	Depth(ctx context.Context, kind string) (int, error)
}

type service struct {
	repo      Repository
	transport broker.Transport
	cfg       config.RabbitMQConfig
	logger    logger.Logger
}

func NewService(repo Repository, transport broker.Transport, cfg config.RabbitMQConfig, log logger.Logger) Service {
	return &service{
		repo:      repo,
		transport: transport,
		cfg:       cfg,
		logger:    log,
	}
}

func (s *service) Current(ctx context.Context) (*Status, error) {
	status, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence)
	}
	return status, nil
}

// Set appends a new status row. Whenever the new masterdata flag is running,
// the parked messages are drained back to the primary queue in the background,
// so re-posting a running status recovers from an earlier failed drain. A
// drain failure is logged but never fails the status change itself, since the
// new status row is already authoritative.
func (s *service) Set(ctx context.Context, req SetStatusRequest) (*Status, error) {
	status := &Status{
		PausedEvents:     *req.PausedEvents,
		PausedMasterdata: *req.PausedMasterdata,
		UpdatedBy:        req.UpdatedBy,
	}

	if err := s.repo.Insert(ctx, status); err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence)
	}

	metrics.SetQueuePaused("events", status.PausedEvents)
	metrics.SetQueuePaused("masterdata", status.PausedMasterdata)

	s.logger.InfowCtx(ctx, "Queue status changed",
		"paused_events", status.PausedEvents,
		"paused_masterdata", status.PausedMasterdata,
		"updated_by", status.UpdatedBy,
	)

	if !status.PausedMasterdata {
		go s.drainHolding()
	}

	return status, nil
}

func (s *service) drainHolding() {
	defer func() {
		if err := errors.RecoverPanic(recover()); err != nil {
			s.logger.Errorw("Holding queue drain panicked", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	moved, err := s.transport.DrainHolding(ctx)
	if err != nil {
		s.logger.Errorw("Holding queue drain failed after resume",
			"moved", moved,
			"error", err,
		)
		return
	}

	s.logger.Infow("Holding queue drain completed after resume",
		"moved", moved,
	)
}

func (s *service) History(ctx context.Context, limit int) ([]Status, error) {
	history, err := s.repo.History(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence)
	}
	return history, nil
}

func (s *service) RetryDeadLetter(ctx context.Context) (*broker.RetryResult, error) {
	return s.transport.RetryDeadLetter(ctx)
}

func (s *service) Depths(ctx context.Context) (*DepthReport, error) {
	report := &DepthReport{}

	var err error
	if report.Primary, err = s.transport.Depth(ctx, s.cfg.PrimaryQueue); err != nil {
		return nil, err
	}
	if report.Holding, err = s.transport.Depth(ctx, s.cfg.HoldingQueue); err != nil {
		return nil, err
	}
	if report.DeadLetter, err = s.transport.Depth(ctx, s.cfg.DeadLetterQueue); err != nil {
		return nil, err
	}

	return report, nil
}

// Depth resolves a queue kind (primary, holding, dead-letter) to its
// configured queue name and reports its message count.
func (s *service) Depth(ctx context.Context, kind string) (int, error) {
	var queue string
	switch kind {
	case "primary":
		queue = s.cfg.PrimaryQueue
	case "holding":
		queue = s.cfg.HoldingQueue
	case "dead-letter":
		queue = s.cfg.DeadLetterQueue
	default:
		return 0, errors.ErrValidation.WithDetail("message", "queue must be one of primary, holding, dead-letter")
	}

	return s.transport.Depth(ctx, queue)
}
