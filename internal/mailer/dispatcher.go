package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quill/internal/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// deliveries counts contact-message delivery attempts by outcome, so
// failures are visible instead of silently swallowed.
var deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "quill_mail_deliveries_total",
	Help: "Total number of contact message delivery attempts by outcome",
}, []string{"outcome"})

const (
	queueSize   = 64
	sendTimeout = 30 * time.Second
)

// Dispatcher queues contact messages and delivers them from a worker
// goroutine, keeping slow SMTP exchanges off the request path. The
// acknowledgment shown to the visitor is decoupled from delivery; failures
// are logged and counted.
type Dispatcher struct {
	sender Sender
	queue  chan Message
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher creates a Dispatcher delivering through the given Sender.
// A nil sender makes Enqueue log the message and drop it, which keeps the
// contact form usable when SMTP is not configured.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		queue:  make(chan Message, queueSize),
	}
}

// Start launches the delivery worker. It returns immediately; the worker
// runs until ctx is canceled and the queue drains.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case msg, ok := <-d.queue:
				if !ok {
					return
				}
				d.deliver(msg)
			case <-ctx.Done():
				// Drain whatever is already queued before exiting.
				for {
					select {
					case msg, ok := <-d.queue:
						if !ok {
							return
						}
						d.deliver(msg)
					default:
						return
					}
				}
			}
		}
	}()
}

// Enqueue hands a message to the delivery worker without blocking the
// caller. A full queue counts as a failed delivery rather than stalling the
// request.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) {
	if d.sender == nil {
		middleware.Logger.WarnContext(ctx, "contact message dropped: mail delivery not configured",
			slog.String("name", msg.Name),
			slog.String("email", msg.Email),
		)
		deliveries.WithLabelValues("dropped").Inc()
		return
	}

	select {
	case d.queue <- msg:
	default:
		middleware.Logger.ErrorContext(ctx, "contact message dropped: delivery queue full",
			slog.String("email", msg.Email),
		)
		deliveries.WithLabelValues("failure").Inc()
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		middleware.Logger.Error("contact message delivery failed",
			slog.String("email", msg.Email),
			slog.String("error", err.Error()),
		)
		deliveries.WithLabelValues("failure").Inc()
		return
	}

	middleware.Logger.Info("contact message delivered",
		slog.String("email", msg.Email),
	)
	deliveries.WithLabelValues("success").Inc()
}

// Shutdown closes the queue and waits for in-flight deliveries, bounded by
// ctx.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.once.Do(func() { close(d.queue) })

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
