package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"livrocaixa/internal/amqp"
	"livrocaixa/internal/core"
)

// PendingStore is the part of the activity journal the relay needs.
type PendingStore interface {
	Pending(ctx context.Context, limit int) ([]core.Activity, error)
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, cause error) error
}

type Publisher interface {
	PublishActivity(ctx context.Context, msg amqp.ActivityMessage) error
}

// ActivityRelay drains unpublished journal entries to the message broker.
type ActivityRelay struct {
	store     PendingStore
	publisher Publisher
	batchSize int
	logger    *slog.Logger
}

func NewActivityRelay(store PendingStore, publisher Publisher, batchSize int, logger *slog.Logger) *ActivityRelay {
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityRelay{
		store:     store,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger,
	}
}

// RelayResult counts the outcome of one batch.
type RelayResult struct {
	Published int
	Failed    int
}

// RelayPending publishes one batch, oldest first. A publish failure marks
// that entry and the batch continues with the next one.
func (r *ActivityRelay) RelayPending(ctx context.Context) (RelayResult, error) {
	var res RelayResult

	pending, err := r.store.Pending(ctx, r.batchSize)
	if err != nil {
		return res, fmt.Errorf("get pending activity: %w", err)
	}
	if len(pending) == 0 {
		return res, nil
	}

	r.logger.InfoContext(ctx, "Relaying pending activity", "count", len(pending))

	for _, a := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := r.publisher.PublishActivity(ctx, amqp.NewActivityMessage(a)); err != nil {
			res.Failed++
			r.logger.ErrorContext(ctx, "Failed to publish activity",
				"id", a.ID,
				"action", a.Action,
				"attempts", a.Attempts+1,
				"error", err)
			if markErr := r.store.MarkFailed(ctx, a.ID, err); markErr != nil {
				r.logger.ErrorContext(ctx, "Failed to mark publish error", "id", a.ID, "error", markErr)
			}
			continue
		}

		if err := r.store.MarkPublished(ctx, a.ID); err != nil {
			// The message is out; a repeat publish later is possible.
			r.logger.ErrorContext(ctx, "Failed to mark activity published", "id", a.ID, "error", err)
			continue
		}
		res.Published++
	}

	r.logger.InfoContext(ctx, "Relay batch finished", "published", res.Published, "failed", res.Failed)
	return res, nil
}

// Run relays immediately and then every interval until ctx is done.
func (r *ActivityRelay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RelayPending(ctx); err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "Relay batch failed", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "Activity relay stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}
