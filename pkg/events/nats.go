package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type natsPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("medfund-backend"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &natsPublisher{conn: conn}, nil
}

func (n *natsPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := event.encode()
	if err != nil {
		return err
	}
	if err := n.conn.Publish(event.Type, payload); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (n *natsPublisher) Close() error {
	return n.conn.Drain()
}
