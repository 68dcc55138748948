// Package audit publishes admin actions to RabbitMQ for the platform's
// audit pipeline. The dashboard only emits; consumers live downstream.
package audit

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

const (
	ActionEventCreated    = "event_created"
	ActionEventUpdated    = "event_updated"
	ActionEventDeleted    = "event_deleted"
	ActionTicketValidated = "ticket_validated"
)

// Entry is one recorded admin action.
type Entry struct {
	Actor   string    `json:"actor"`
	Action  string    `json:"action"`
	Subject string    `json:"subject"`
	At      time.Time `json:"at"`
}

// Publisher is nil-safe: a nil publisher silently drops every record, which
// is how the dashboard runs when RabbitMQ is not configured.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func New(url, exchange, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to connect to RabbitMQ")
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		zlog.Logger.Error().Err(err).Msg("failed to open RabbitMQ channel")
		return nil, err
	}

	publisher := &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to declare exchange")
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to declare queue")
		return nil, err
	}

	if err := ch.QueueBind(
		queue,
		"",
		exchange,
		false,
		nil,
	); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to bind queue")
		return nil, err
	}

	zlog.Logger.Info().Msgf("RabbitMQ audit publisher initialized (exchange=%s, queue=%s)", exchange, queue)

	return publisher, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	zlog.Logger.Info().Msg("RabbitMQ connection closed")
}

// Record publishes one audit entry. Failures are logged and never bubble
// up: auditing must not fail the admin action it describes.
func (p *Publisher) Record(actor, action, subject string) {
	if p == nil {
		return
	}

	entry := Entry{
		Actor:   actor,
		Action:  action,
		Subject: subject,
		At:      time.Now().UTC(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to marshal audit entry")
		return
	}

	err = p.channel.Publish(
		p.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to publish audit entry to RabbitMQ")
	} else {
		zlog.Logger.Debug().Str("action", action).Str("subject", subject).Msg("audit entry published")
	}
}
