package clients

import (
	"encoding/json"
	"fmt"
	"time"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// EmailClient publishes notification messages to the email queue.
// The email service consumes them; delivery is fire-and-forget here.
type EmailClient struct {
	channel *amqp.Channel
	cfg     *config.RabbitMQConfig
	appLink string
}

// NewEmailClient creates a new email notification publisher
func NewEmailClient(cfg *config.Configuration, channel *amqp.Channel) *EmailClient {
	return &EmailClient{
		channel: channel,
		cfg:     &cfg.Queue.RabbitMQ,
		appLink: cfg.App.HostLink,
	}
}

// SendInvitation publishes a workspace invitation email message
func (c *EmailClient) SendInvitation(email, workspaceName, inviterName, invitationID string) error {
	message := models.EmailMessage{
		To:       email,
		Template: "workspace_invitation",
		Variables: map[string]string{
			"workspaceName":  workspaceName,
			"inviterName":    inviterName,
			"invitationLink": fmt.Sprintf("%s/invitations/%s", c.appLink, invitationID),
		},
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	err = c.channel.Publish(
		c.cfg.Exchange,
		c.cfg.EmailRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)

	if err != nil {
		logrus.WithError(err).Error("Failed to publish invitation email message")
		return models.ErrQueuePublish
	}

	logrus.WithFields(logrus.Fields{
		"email":       email,
		"workspace":   workspaceName,
		"exchange":    c.cfg.Exchange,
		"routing_key": c.cfg.EmailRoutingKey,
	}).Debug("Invitation email message published")

	return nil
}
