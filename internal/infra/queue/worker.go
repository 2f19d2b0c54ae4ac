package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AlertSender delivers a notification for a lead event.
type AlertSender interface {
	SendStatusAlert(payload LeadEventPayload) error
}

type Worker struct {
	Channel *amqp.Channel
	Mailer  AlertSender
}

func NewWorker(ch *amqp.Channel, mailer AlertSender) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadEventPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("worker: invalid JSON: %s", err)
				// Malformed message. Reject without requeue so it dead-letters.
				d.Nack(false, false)
				continue
			}

			if err := w.processMessage(payload); err != nil {
				log.Printf("worker: failed to process event for lead %s: %s", payload.LeadID, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf("worker waiting on queue %q", queueName)
	<-forever
}

func (w *Worker) processMessage(payload LeadEventPayload) error {
	switch payload.Status {
	case "converted", "lost":
		log.Printf("worker: lead %s moved %s -> %s, sending alert", payload.LeadID, payload.PreviousStatus, payload.Status)
		return w.Mailer.SendStatusAlert(payload)
	default:
		// Nothing to notify for routine transitions. Ack and move on.
		return nil
	}
}
