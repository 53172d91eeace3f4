package messaging

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

var _ ports.DonorEventPublisher = (*RabbitMQBroker)(nil)

func (rmq *RabbitMQBroker) PublishDonorTriaged(ctx context.Context, evt ports.DonorTriagedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Type:         ports.EventDonorTriaged,
				MessageId:    evt.DonorID,
				Body:         body,
			},
		)
	})
	return err
}
