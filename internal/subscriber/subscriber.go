// Package subscriber owns the Redis pub/sub subscription that feeds the
// dispatch pipeline. One subscriber handles messages strictly in receipt
// order; shutdown is cooperative and lets the in-flight handler finish.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

const (
	// receiveTimeout bounds one poll so the loop can re-check cancellation.
	// It is not a data timeout; an idle channel just cycles the loop.
	receiveTimeout = 1 * time.Second

	// errorBackoff is the pause after a transport-level receive error.
	errorBackoff = 1 * time.Second
)

// Handler consumes one decoded event envelope.
type Handler func(ctx context.Context, env *model.EventEnvelope)

// receiver is the slice of *redis.PubSub the loop reads from.
type receiver interface {
	ReceiveTimeout(ctx context.Context, timeout time.Duration) (interface{}, error)
}

// Subscriber consumes job-vacancy messages from one channel and hands each
// decoded envelope to the handler.
type Subscriber struct {
	client  *redis.Client
	channel string
	handler Handler
	logger  *slog.Logger

	pubsub      *redis.PubSub
	recv        receiver
	cancel      context.CancelFunc
	done        chan struct{}
	quiesceOnce sync.Once
	stopOnce    sync.Once
}

// New returns a Subscriber for channel. Start must be called before any
// message is delivered.
func New(client *redis.Client, channel string, handler Handler, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		client:  client,
		channel: channel,
		handler: handler,
		logger:  logger,
	}
}

// Start opens the subscription and launches the receive loop. A subscribe
// failure is returned to the caller and is fatal to startup; it is never
// retried here.
func (s *Subscriber) Start(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribing to %q: %w", s.channel, err)
	}
	s.pubsub = pubsub
	s.recv = pubsub

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(loopCtx)

	s.logger.Info("subscribed", slog.String("channel", s.channel))
	return nil
}

// Quiesce cancels the receive loop and waits for it up to ctx's deadline.
// The subscription stays open so Stop can unsubscribe cleanly later; no new
// message is handled after Quiesce returns. Calling Quiesce twice is a no-op.
func (s *Subscriber) Quiesce(ctx context.Context) {
	s.quiesceOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.done != nil {
			select {
			case <-s.done:
			case <-ctx.Done():
				s.logger.Warn("receive loop did not stop before deadline")
			}
		}
	})
}

// Stop quiesces the receive loop if Quiesce has not run yet, then
// unsubscribes and releases the connection. Calling Stop twice is a no-op.
func (s *Subscriber) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.Quiesce(ctx)
		if s.pubsub != nil {
			if err := s.pubsub.Unsubscribe(ctx, s.channel); err != nil {
				s.logger.Warn("unsubscribe failed", slog.String("error", err.Error()))
			}
			if err := s.pubsub.Close(); err != nil {
				s.logger.Warn("closing pubsub failed", slog.String("error", err.Error()))
			}
			s.logger.Info("unsubscribed and closed", slog.String("channel", s.channel))
		}
	})
}

// loop polls the subscription until cancelled. Each poll either yields a
// message, times out (so cancellation is re-checked) or fails; a failure is
// logged and the loop pauses briefly instead of terminating.
func (s *Subscriber) loop(ctx context.Context) {
	defer close(s.done)
	s.logger.Info("listening for messages", slog.String("channel", s.channel))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		raw, err := s.recv.ReceiveTimeout(ctx, receiveTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			s.logger.Error("receive failed", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}

		msg, ok := raw.(*redis.Message)
		if !ok {
			// Subscription confirmations and pongs.
			continue
		}
		s.handleMessage(ctx, msg.Payload)
	}
}

// handleMessage decodes one payload and invokes the handler. Decode failures
// drop the message; a handler panic is recovered so it cannot take down the
// receive loop.
func (s *Subscriber) handleMessage(ctx context.Context, payload string) {
	log := s.logger.With(slog.String("event_id", uuid.NewString()))

	var env model.EventEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		log.Error("invalid JSON payload, dropping message",
			slog.String("error", err.Error()))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("message handler panicked", slog.Any("panic", r))
		}
	}()
	s.handler(ctx, &env)
}
