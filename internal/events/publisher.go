package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/pkg/utils"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes low-stock alerts to the pos.events topic exchange.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   channel
}

// NewAMQPPublisher dials the broker and declares the exchange so publishing never fails on missing infra.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	log.Info().Str("exchange", Exchange).Msg("AMQP publisher ready")
	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func newPublisherWithChannel(ch channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *AMQPPublisher) NotifyLowStock(ctx context.Context, alert models.LowStockAlert) error {
	env := NewLowStockEnvelope(alert, utils.RequestIDFromContext(ctx))
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", LowStockEventName, err)
	}
	if err := p.publishJSON(ctx, LowStockRoutingKey, env.EventID, body); err != nil {
		return fmt.Errorf("publish %s: %w", LowStockEventName, err)
	}
	log.Debug().Str("event_id", env.EventID).Int64("ingredient_id", alert.IngredientID).Msg("Low stock alert published")
	return nil
}

func (p *AMQPPublisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
