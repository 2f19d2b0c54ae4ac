package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/luminacrm/lumina/internal/entity"
)

// LeadEventPayload is the message published for every status transition.
type LeadEventPayload struct {
	LeadID         string  `json:"lead_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Company        string  `json:"company,omitempty"`
	Value          float64 `json:"value"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previous_status"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishStatusChange(ctx context.Context, lead entity.Lead, previous entity.Status) error {
	payload := LeadEventPayload{
		LeadID:         lead.ID,
		Name:           lead.Name,
		Email:          lead.Email,
		Company:        lead.Company,
		Value:          lead.Value,
		Status:         lead.Status.Wire(),
		PreviousStatus: previous.Wire(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %v", err)
	}

	return nil
}
