package broker

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/notifgate/notifgate/pkg/notify"
)

const (
	// Exchange receives every message the gateway publishes.
	Exchange = "notifications.direct"

	// ReportQueue carries delivery reports from workers back to the gateway.
	ReportQueue = "notifications.reports"
	// ReportRoutingKey routes delivery reports to ReportQueue.
	ReportRoutingKey = "reports"

	// ReportDeadExchange and ReportDeadQueue hold reports the consumer
	// rejected: malformed payloads and failed source authentication.
	ReportDeadExchange = "notifications.reports.dlx"
	ReportDeadQueue    = "notifications.reports.dead"

	queuePrefix = "notifications."
)

// QueueName returns the destination queue for a delivery channel. One
// destination per channel, fixed for the life of the topology.
func QueueName(c notify.Channel) string {
	return queuePrefix + string(c)
}

// DeclareTopology declares the exchange, the per-channel priority queues and
// the delivery-report queue with its dead-letter pair. Declarations are
// idempotent; every gateway instance runs this at startup.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(Exchange, "direct", true, false, false, false, nil); err != nil {
		return errors.Join(ErrTopology, err)
	}

	for _, channel := range notify.Channels() {
		q := QueueName(channel)
		_, err := ch.QueueDeclare(q, true, false, false, false, amqp.Table{
			"x-max-priority": int32(notify.MaxPriority),
		})
		if err != nil {
			return errors.Join(ErrTopology, err)
		}
		if err := ch.QueueBind(q, string(channel), Exchange, false, nil); err != nil {
			return errors.Join(ErrTopology, err)
		}
	}

	if err := ch.ExchangeDeclare(ReportDeadExchange, "fanout", true, false, false, false, nil); err != nil {
		return errors.Join(ErrTopology, err)
	}
	if _, err := ch.QueueDeclare(ReportDeadQueue, true, false, false, false, nil); err != nil {
		return errors.Join(ErrTopology, err)
	}
	if err := ch.QueueBind(ReportDeadQueue, "", ReportDeadExchange, false, nil); err != nil {
		return errors.Join(ErrTopology, err)
	}

	_, err := ch.QueueDeclare(ReportQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": ReportDeadExchange,
	})
	if err != nil {
		return errors.Join(ErrTopology, err)
	}
	if err := ch.QueueBind(ReportQueue, ReportRoutingKey, Exchange, false, nil); err != nil {
		return errors.Join(ErrTopology, err)
	}

	return nil
}
