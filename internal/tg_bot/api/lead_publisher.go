package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// LeadRoutingKey is the routing key of published lead events.
const LeadRoutingKey = "lead.created"

// LeadPublisher publishes captured leads to a durable topic exchange for downstream CRM consumers.
type LeadPublisher struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

// leadEvent is the JSON body of a published lead.
type leadEvent struct {
	ID        string `json:"id"`
	ChatID    int64  `json:"chat_id"`
	Username  string `json:"username,omitempty"`
	Language  string `json:"language"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// NewLeadPublisher dials the broker and declares the exchange.
func NewLeadPublisher(url, exchange string) (*LeadPublisher, error) {
	if url == "" || exchange == "" {
		return nil, errors.New("amqp url and exchange are required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	logrus.WithField("exchange", exchange).Info("Lead publisher connected")
	return &LeadPublisher{conn: conn, exchange: exchange, ch: ch}, nil
}

// PublishLead publishes one lead as a persistent JSON message.
func (p *LeadPublisher) PublishLead(ctx context.Context, lead models.Lead) error {
	body, err := encodeLead(lead)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, LeadRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    lead.ID.String(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish lead %s: %w", lead.ID, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *LeadPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.ch.Close(), p.conn.Close())
}

func encodeLead(lead models.Lead) ([]byte, error) {
	body, err := json.Marshal(leadEvent{
		ID:        lead.ID.String(),
		ChatID:    lead.ChatID,
		Username:  lead.Username,
		Language:  lead.Language,
		Name:      lead.Name,
		Phone:     lead.Phone,
		City:      lead.City,
		Note:      lead.Note,
		CreatedAt: lead.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("encode lead: %w", err)
	}
	return body, nil
}
