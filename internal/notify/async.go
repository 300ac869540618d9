package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Async hands each message to the wrapped sink on its own goroutine and
// returns immediately. Failures are logged.
type Async struct {
	sink    Sink
	logger  *slog.Logger
	timeout time.Duration

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewAsync(sink Sink, logger *slog.Logger, timeout time.Duration) *Async {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{sink: sink, logger: logger, timeout: timeout}
}

// Send never blocks on delivery. The request context is detached so that a
// finished request does not cancel its mail.
func (a *Async) Send(ctx context.Context, msg Message) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Warn("mail_dropped", "reason", "dispatcher closed", "to", msg.To, "subject", msg.Subject)
		return nil
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.sink.Send(sendCtx, msg); err != nil {
			a.logger.Error("mail_send_failed", "to", msg.To, "subject", msg.Subject, "error", err)
			return
		}
		a.logger.Debug("mail_sent", "to", msg.To, "subject", msg.Subject)
	}()
	return nil
}

// Close waits for in-flight sends and closes the wrapped sink if it can be
// closed.
func (a *Async) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	if c, ok := a.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
