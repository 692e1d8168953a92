package alert

import (
	"context"
	"sync"
	"time"

	"expensetracker/internal/budget"
	"expensetracker/internal/log"
)

// Sink consumes one decision. The mailer-backed sink formats and sends it
// directly; the AMQP-backed sink publishes it for the alert worker.
type Sink interface {
	Deliver(ctx context.Context, d budget.Decision) error
}

// DispatcherSink adapts a subject/body Dispatcher into a Sink.
type DispatcherSink struct {
	Dispatcher Dispatcher
}

func (s DispatcherSink) Deliver(ctx context.Context, d budget.Decision) error {
	return s.Dispatcher.Dispatch(ctx, d.Subject(), d.Body())
}

// Notifier is the background executor for alert delivery. Notify hands a
// decision to a single worker goroutine and returns immediately, keeping
// dispatch off the request/response path. Delivery failures are logged
// and dropped; there is no retry here.
type Notifier struct {
	sink    Sink
	queue   chan budget.Decision
	done    chan struct{}
	logger  *log.Logger
	timeout time.Duration
	once    sync.Once
}

// NewNotifier starts the delivery goroutine. size bounds the queue; when
// it is full further decisions are dropped with a warning rather than
// blocking the caller.
func NewNotifier(sink Sink, size int, logger *log.Logger) *Notifier {
	if size <= 0 {
		size = 16
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent("notifier")
	}
	n := &Notifier{
		sink:    sink,
		queue:   make(chan budget.Decision, size),
		done:    make(chan struct{}),
		logger:  logger,
		timeout: 15 * time.Second,
	}
	go n.run()
	return n
}

// Notify enqueues a decision for delivery. Non-alerting decisions are
// ignored. Never blocks.
func (n *Notifier) Notify(d budget.Decision) {
	if !d.Alert() {
		return
	}
	select {
	case n.queue <- d:
	default:
		n.logger.Warn("Alert queue full, dropping alert",
			"category", d.Category, "month", d.Month.String(), "level", string(d.Level))
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for d := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		if err := n.sink.Deliver(ctx, d); err != nil {
			n.logger.Error("Alert delivery failed",
				"error", err,
				"category", d.Category,
				"month", d.Month.String(),
				"level", string(d.Level))
		}
		cancel()
	}
}

// Close drains the queue and stops the delivery goroutine.
func (n *Notifier) Close() {
	n.once.Do(func() {
		close(n.queue)
		<-n.done
	})
}
