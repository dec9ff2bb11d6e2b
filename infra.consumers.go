package main

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// Reconciler recomputes books availability from their approved loans.
type Reconciler interface {
	Reconcile(ctx context.Context, bookID string) (ReconcileReport, error)
	ReconcileAll(ctx context.Context) ([]ReconcileReport, error)
}

type reconcileConsumer struct {
	logger     *zap.Logger
	queue      Queuer
	reconciler Reconciler
}

// NewReconcileConsumer provides the worker which drains the repair tasks.
func NewReconcileConsumer(logger *zap.Logger, q Queuer, r Reconciler) Consumer {
	return &reconcileConsumer{logger, q, r}
}

func (rc *reconcileConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, task, err := rc.queue.Pop(ctx, qids...)
		if ctx.Err() != nil {
			rc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if errors.Is(err, redis.Nil) {
			continue
		}

		if err != nil {
			rc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			// avoid spinning while the queue backend is down.
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		rc.handle(ctx, qid, task)
	}
}

func (rc *reconcileConsumer) handle(ctx context.Context, qid string, task ReconcileTask) {
	logger := rc.logger.With(
		zap.String("qid", qid),
		zap.String("book.id", task.BookID),
		zap.String("loan.id", task.LoanID),
		zap.String("reason", task.Reason),
	)

	if task.BookID == "" {
		reports, err := rc.reconciler.ReconcileAll(ctx)
		if err != nil {
			logger.Error("consumer: failed to reconcile all books", zap.Error(err))
		}
		logger.Info("consumer: reconciled all books", zap.Int("books", len(reports)))
		return
	}

	report, err := rc.reconciler.Reconcile(ctx, task.BookID)
	if errors.Is(err, ErrNotFound) {
		logger.Warn("consumer: book to reconcile does not exist")
		return
	}
	if err != nil {
		logger.Error("consumer: failed to reconcile book", zap.Error(err))
		return
	}
	logger.Info("consumer: reconciled book", zap.Bool("repaired", report.Repaired), zap.Int("before", report.Before), zap.Int("after", report.After))
}

// PeriodicReconciler runs a full reconciliation at a fixed interval.
type PeriodicReconciler struct {
	logger     *zap.Logger
	clock      TickerClocker
	interval   time.Duration
	reconciler Reconciler
}

func NewPeriodicReconciler(logger *zap.Logger, clock TickerClocker, interval time.Duration, r Reconciler) *PeriodicReconciler {
	return &PeriodicReconciler{logger: logger, clock: clock, interval: interval, reconciler: r}
}

// Run blocks until the context is done. A non positive interval disables it.
func (pr *PeriodicReconciler) Run(ctx context.Context) error {
	if pr.interval <= 0 {
		pr.logger.Info("reconciler: periodic run disabled")
		return nil
	}
	ticker := pr.clock.NewTicker(pr.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			pr.logger.Info("reconciler: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		case <-ticker.C:
			reports, err := pr.reconciler.ReconcileAll(ctx)
			repaired := 0
			for _, r := range reports {
				if r.Repaired {
					repaired++
				}
			}
			if err != nil {
				pr.logger.Error("reconciler: periodic run failed", zap.Int("books", len(reports)), zap.Error(err))
				continue
			}
			pr.logger.Info("reconciler: periodic run done", zap.Int("books", len(reports)), zap.Int("repaired", repaired))
		}
	}
}
