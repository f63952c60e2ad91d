package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"media-upload/internal/config"
	"media-upload/internal/core/domain"
	"media-upload/internal/core/port"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	defaultAckWait    = time.Minute
	defaultMaxDeliver = 3
)

// Consumer is a struct to interact with nats
type Consumer struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
	iter   jetstream.MessagesContext
	wg     sync.WaitGroup
}

// NewNATSConsumer creates a new consumer
func NewNATSConsumer(cfg config.NATSConfig, logger *slog.Logger) (*Consumer, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConsumerName),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}

	return &Consumer{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
	}, nil
}

// EnsureStream creates the stream bucket notifications are published to when it does not exist yet
func (n *Consumer) EnsureStream(ctx context.Context) error {
	_, err := n.js.Stream(ctx, n.config.StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return err
	}

	_, err = n.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     n.config.StreamName,
		Subjects: []string{n.config.Subject},
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", n.config.StreamName, err)
	}
	n.logger.Info("NATS stream created", "stream", n.config.StreamName, "subject", n.config.Subject)
	return nil
}

// Subscribe subscribes to stream and handles messages one at a time.
// Failed messages are redelivered unless the failure is permanent.
func (n *Consumer) Subscribe(ctx context.Context, handler port.MessageService) error {
	consumerCfg := jetstream.ConsumerConfig{
		Durable:       n.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: n.config.Subject,
		AckWait:       n.ackWait(),
		MaxDeliver:    n.maxDeliver(),
		MaxAckPending: 1,
	}

	cons, err := n.js.CreateOrUpdateConsumer(ctx, n.config.StreamName, consumerCfg)
	if err != nil {
		return err
	}

	iter, err := cons.Messages()
	if err != nil {
		return err
	}
	n.iter = iter

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.logger.Info("NATS subscription started", "stream", n.config.StreamName, "consumer", n.config.ConsumerName)
		for {
			select {
			case <-ctx.Done():
				n.logger.Info("NATS subscription stopped")
				return
			default:
				msg, err := iter.Next()
				if err != nil {
					if ctx.Err() != nil || errors.Is(err, jetstream.ErrMsgIteratorClosed) {
						n.logger.Info("NATS subscription stopped")
						return
					}
					n.logger.Error("failed to receive message", "error", err)
					return
				}
				n.handle(ctx, handler, msg)
			}
		}
	}()
	return nil
}

func (n *Consumer) handle(ctx context.Context, handler port.MessageService, msg jetstream.Msg) {
	stop := n.keepAlive(msg)
	handleErr := handler.HandleMessage(ctx, msg.Data())
	stop()

	switch {
	case handleErr == nil:
		if err := msg.Ack(); err != nil {
			n.logger.Error("failed to ack message", "error", err)
		}
	case domain.IsPermanent(handleErr):
		n.logger.Error("dropping message", "error", handleErr)
		if err := msg.Term(); err != nil {
			n.logger.Error("failed to term message", "error", err)
		}
	default:
		n.logger.Warn("failed to handle message", "error", handleErr)
		if err := msg.Nak(); err != nil {
			n.logger.Error("failed to nak message", "error", err)
		}
	}
}

// keepAlive extends the ack deadline while an upload is running
func (n *Consumer) keepAlive(msg jetstream.Msg) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(n.ackWait() / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := msg.InProgress(); err != nil {
					n.logger.Warn("failed to extend ack deadline", "error", err)
				}
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func (n *Consumer) ackWait() time.Duration {
	if n.config.AckWait <= 0 {
		return defaultAckWait
	}
	return n.config.AckWait
}

func (n *Consumer) maxDeliver() int {
	if n.config.MaxDeliver <= 0 {
		return defaultMaxDeliver
	}
	return n.config.MaxDeliver
}

// Close graceful shutdown
func (n *Consumer) Close() error {
	if n.iter != nil {
		n.iter.Stop()
	}

	n.wg.Wait()

	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
