package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"tree-service/internal/models"
	"tree-service/internal/services"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PaymentEvent represents the payment event data from the payment processor
type PaymentEvent struct {
	ID         string     `json:"id"`
	DonationID string     `json:"donation_id"`
	Status     string     `json:"status"`
	Amount     float64    `json:"amount"`
	PaidAt     *time.Time `json:"paid_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PaymentEventHandler defines the interface for handling payment events
type PaymentEventHandler interface {
	HandlePaymentEvent(ctx context.Context, event PaymentEvent) error
}

// PaymentConsumer consumes payment events from RabbitMQ
type PaymentConsumer struct {
	conn    *RabbitMQConnection
	handler PaymentEventHandler
}

// NewPaymentConsumer creates a new payment event consumer
func NewPaymentConsumer(conn *RabbitMQConnection, handler PaymentEventHandler) *PaymentConsumer {
	return &PaymentConsumer{
		conn:    conn,
		handler: handler,
	}
}

// Start begins consuming payment events
func (c *PaymentConsumer) Start(ctx context.Context) error {
	_, err := c.conn.Channel.QueueDeclare(
		PaymentEventsQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	msgs, err := c.conn.Channel.Consume(
		PaymentEventsQueue,
		"",    // consumer tag (auto-generated)
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	slog.Info("Payment consumer started", "queue", PaymentEventsQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("Payment consumer stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Warn("Payment consumer channel closed")
					return
				}
				c.processMessage(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *PaymentConsumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	var event PaymentEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		slog.Error("failed to unmarshal payment event", "error", err)
		// Reject the message and don't requeue (malformed message)
		msg.Nack(false, false)
		return
	}

	slog.Info("Received payment event",
		"payment_id", event.ID,
		"donation_id", event.DonationID,
		"amount", event.Amount,
		"status", event.Status,
	)

	if err := c.handler.HandlePaymentEvent(ctx, event); err != nil {
		slog.Error("failed to handle payment event",
			"payment_id", event.ID,
			"error", err,
		)
		// Requeue the message for retry
		msg.Nack(false, true)
		return
	}

	msg.Ack(false)
	slog.Info("Payment event processed successfully", "payment_id", event.ID)
}

// DonationPaymentHandler routes payment events into the donation service.
type DonationPaymentHandler struct {
	donationService *services.DonationService
}

func NewDonationPaymentHandler(donationService *services.DonationService) *DonationPaymentHandler {
	return &DonationPaymentHandler{donationService: donationService}
}

// HandlePaymentEvent completes or closes the referenced donation. Events
// for unknown donations are dropped, not retried.
func (h *DonationPaymentHandler) HandlePaymentEvent(ctx context.Context, event PaymentEvent) error {
	if event.DonationID == "" {
		slog.Warn("payment event without donation_id, dropping", "payment_id", event.ID)
		return nil
	}

	switch models.PaymentStatus(event.Status) {
	case models.PaymentCompleted:
		return h.donationService.CompleteDonationPayment(ctx, event.DonationID, event.ID)
	case models.PaymentFailed, models.PaymentRefunded:
		return h.donationService.FailDonationPayment(ctx, event.DonationID, event.ID, models.PaymentStatus(event.Status))
	default:
		slog.Info("ignoring payment event status", "payment_id", event.ID, "status", event.Status)
		return nil
	}
}
