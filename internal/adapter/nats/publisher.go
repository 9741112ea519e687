package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// identifiable is implemented by events with a stable id.
type identifiable interface {
	EventID() string
}

type MessagePublisher interface {
	Publish(ctx context.Context, subject string, message interface{}) error
}

type natsPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) (MessagePublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("NATS connection cannot be nil")
	}
	return &natsPublisher{
		conn: conn,
	}, nil
}

// Publish sends message as JSON on subject. Events that expose an id also carry
// it in the Nats-Msg-Id header.
func (p *natsPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON for subject %s: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	if ev, ok := message.(identifiable); ok {
		msg.Header.Set(nats.MsgIdHdr, ev.EventID())
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish message to NATS subject %s: %w", subject, err)
	}
	return nil
}
