package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"tree-service/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationPublisher publishes donor notification events to RabbitMQ.
// Counters are atomic: the sync worker and the payment consumer publish
// concurrently.
type NotificationPublisher struct {
	conn              *RabbitMQConnection
	messagesPublished atomic.Int64
	messagesFailed    atomic.Int64
}

// NewNotificationPublisher creates a new donor notification publisher
func NewNotificationPublisher(conn *RabbitMQConnection) *NotificationPublisher {
	return &NotificationPublisher{conn: conn}
}

// Stats reports how many publishes succeeded and failed so far.
func (p *NotificationPublisher) Stats() (published, failed int64) {
	return p.messagesPublished.Load(), p.messagesFailed.Load()
}

// PublishDonationCompleted notifies the donor which trees their donation
// funded.
func (p *NotificationPublisher) PublishDonationCompleted(ctx context.Context, donation *models.Donation, trees []models.Tree) error {
	treeIDs := make([]string, 0, len(trees))
	for _, tree := range trees {
		treeIDs = append(treeIDs, tree.TreeID)
	}

	notification := DonorNotificationModel{
		Recipients: []string{donation.DonorEmail},
		Subject:    fmt.Sprintf("Your donation to %s is complete", donation.Institution),
		Body: fmt.Sprintf("Thank you %s! Your donation of %.2f funded %d tree(s) at %s.",
			donation.DonorName, donation.Amount, len(trees), donation.Institution),
		Data: map[string]any{
			"donation_id": donation.DonationID,
			"tree_ids":    treeIDs,
		},
	}

	return p.publish(ctx, notification)
}

// PublishTreeProcessed announces a newly ingested tree. Events carry
// identifiers only; message content is composed downstream.
func (p *NotificationPublisher) PublishTreeProcessed(ctx context.Context, treeID, institution string) error {
	notification := DonorNotificationModel{
		Subject: "New tree registered",
		Body:    fmt.Sprintf("Tree %s was registered for %s.", treeID, institution),
		Data: map[string]any{
			"tree_id":     treeID,
			"institution": institution,
		},
	}

	return p.publish(ctx, notification)
}

func (p *NotificationPublisher) publish(ctx context.Context, notification DonorNotificationModel) error {
	_, err := p.conn.Channel.QueueDeclare(
		DonorNotiQueue, // queue name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(notification)
	if err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",             // exchange
		DonorNotiQueue, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	slog.Info("Donor notification published",
		"queue", DonorNotiQueue,
		"subject", notification.Subject,
		"recipient_count", len(notification.Recipients),
		"published_total", p.messagesPublished.Add(1),
	)

	return nil
}
