package queue

import (
	"context"
	"encoding/json"
	"time"
	"workspace-core-svc/src/clients"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// MessageSource is the narrow view of the activity log queue the
// consumer polls. An empty batch is not an error.
type MessageSource interface {
	Poll(ctx context.Context, batchSize int) ([]models.ActivityLogMessage, error)
}

type rabbitSource struct {
	channel   *amqp.Channel
	queueName string
	maxWait   time.Duration
}

// NewMessageSource wraps the shared RabbitMQ channel as a batch message source
// for the activity log queue.
func NewMessageSource(rabbit *clients.RabbitMQ, cfg *config.Configuration) MessageSource {
	return &rabbitSource{
		channel:   rabbit.Channel,
		queueName: cfg.Queue.RabbitMQ.ActivityLogQueue,
		maxWait:   time.Duration(cfg.Consumer.MaxWaitTimeMs) * time.Millisecond,
	}
}

// Poll drains up to batchSize messages from the queue. It waits up to the
// configured max wait time for the first message only; once the queue runs
// dry after that, the batch collected so far is returned.
// Payloads that cannot be decoded are acknowledged and skipped: they would
// never succeed on redelivery.
func (s *rabbitSource) Poll(ctx context.Context, batchSize int) ([]models.ActivityLogMessage, error) {
	var batch []models.ActivityLogMessage
	deadline := time.Now().Add(s.maxWait)

	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return batch, nil
		}

		delivery, ok, err := s.channel.Get(s.queueName, true)
		if err != nil {
			logrus.WithError(err).WithField("queue", s.queueName).Error("Failed to get message from queue")
			return batch, models.ErrQueuePoll
		}

		if !ok {
			if len(batch) > 0 || time.Now().After(deadline) {
				break
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		var message models.ActivityLogMessage
		if err := json.Unmarshal(delivery.Body, &message); err != nil {
			logrus.WithError(err).WithField("queue", s.queueName).Warn("Skipping malformed queue message")
			continue
		}

		batch = append(batch, message)
	}

	if len(batch) > 0 {
		logrus.WithFields(logrus.Fields{
			"queue": s.queueName,
			"count": len(batch),
		}).Debug("Polled messages from queue")
	}

	return batch, nil
}
