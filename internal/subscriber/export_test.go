package subscriber

import (
	"context"
	"log/slog"
	"time"
)

// NewWithReceiver builds a Subscriber over an injected receiver so tests can
// drive the receive loop without a Redis server.
func NewWithReceiver(recv interface {
	ReceiveTimeout(ctx context.Context, timeout time.Duration) (interface{}, error)
}, handler Handler, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		channel: "job_seek",
		handler: handler,
		logger:  logger,
		recv:    recv,
	}
}

// StartLoop launches the receive loop directly, bypassing the Redis
// subscription handshake.
func (s *Subscriber) StartLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx)
}

// HandleRaw exposes handleMessage for decode-path tests.
func (s *Subscriber) HandleRaw(ctx context.Context, payload string) {
	s.handleMessage(ctx, payload)
}
