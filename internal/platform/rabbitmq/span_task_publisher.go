package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

type SpanTaskPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewSpanTaskPublisher(conn *amqp.Connection, queueName string) *SpanTaskPublisher {
	return &SpanTaskPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *SpanTaskPublisher) Publish(ctx context.Context, task model.SpanLocateTask) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal locate task failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish locate task failed: %w", err)
	}
	return nil
}
