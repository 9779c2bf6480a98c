package activitylog

import (
	"context"
	"fmt"
	"sync"
	"time"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"
	"workspace-core-svc/src/internal/queue"
	"workspace-core-svc/src/internal/workspace"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Consumer drains the activity log queue on a fixed-delay schedule and
// persists each polled batch as a single transactional insert. A batch that
// fails conversion or persistence is dropped and logged; there is no retry
// and no dead-letter path.
type Consumer struct {
	source         queue.MessageSource
	repository     Repository
	contextService workspace.ContextService
	batchSize      int
	interval       time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewConsumer(source queue.MessageSource, repository Repository,
	contextService workspace.ContextService, cfg *config.Configuration) *Consumer {
	return &Consumer{
		source:         source,
		repository:     repository,
		contextService: contextService,
		batchSize:      cfg.Consumer.BatchSize,
		interval:       time.Duration(cfg.Consumer.PollingIntervalMs) * time.Millisecond,
	}
}

// Start launches the polling loop. The next poll is armed only after the
// current tick finishes, so slow batches throttle polling instead of
// overlapping it.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	logrus.WithFields(logrus.Fields{
		"batch_size":  c.batchSize,
		"interval_ms": c.interval.Milliseconds(),
	}).Info("Activity log consumer starting")

	go func() {
		defer close(c.done)

		timer := time.NewTimer(c.interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Activity log consumer stopped")
				return
			case <-timer.C:
				c.tick(ctx)
				timer.Reset(c.interval)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight tick to complete.
func (c *Consumer) Stop() {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		if c.done != nil {
			<-c.done
		}
	})
}

func (c *Consumer) tick(ctx context.Context) {
	batch, err := c.source.Poll(ctx, c.batchSize)
	if err != nil {
		logrus.WithError(err).Error("Failed to poll activity log queue")
		return
	}
	if len(batch) == 0 {
		return
	}

	result := c.processBatch(ctx, batch)
	if result.Err != nil {
		logrus.WithError(result.Err).WithFields(logrus.Fields{
			"received":  result.Received,
			"persisted": result.Persisted,
		}).Error("Failed to process activity log batch, dropping it")
		return
	}

	logrus.WithField("count", result.Persisted).Debug("Processed activity log batch")
}

// processBatch converts the batch in poll order and persists it
// all-or-nothing. Any single conversion failure discards the whole batch,
// matching the write-side contract that a tick is atomic.
func (c *Consumer) processBatch(ctx context.Context, batch []models.ActivityLogMessage) BatchResult {
	result := BatchResult{Received: len(batch)}

	logs := make([]*ActivityLog, 0, len(batch))
	for i := range batch {
		entry, err := c.convert(ctx, &batch[i])
		if err != nil {
			result.Err = err
			return result
		}
		logs = append(logs, entry)
	}

	if err := c.repository.InsertBatch(ctx, logs); err != nil {
		result.Err = err
		return result
	}

	result.Persisted = len(logs)
	return result
}

// convert maps one message to a persistable row, resolving the workspace
// via the context service when the message carries none.
func (c *Consumer) convert(ctx context.Context, message *models.ActivityLogMessage) (*ActivityLog, error) {
	activityType, err := ParseActivityType(message.ActivityType)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"activity_type": message.ActivityType,
			"created_by":    message.CreatedBy,
		}).Error("Unknown activity type in queue message")
		return nil, fmt.Errorf("%w: activity type %q: %v", models.ErrConversionFailed, message.ActivityType, err)
	}

	workspaceID := message.WorkspaceID
	if workspaceID == "" {
		workspaceID, err = c.contextService.ResolveDefaultWorkspace(ctx, message.CreatedBy)
		if err != nil {
			logrus.WithError(err).WithField("created_by", message.CreatedBy).Error("Failed to resolve workspace for message")
			return nil, fmt.Errorf("%w: resolving workspace for user %s: %v", models.ErrConversionFailed, message.CreatedBy, err)
		}
	}

	return FromMessage(message, activityType, workspaceID, uuid.NewString()), nil
}
