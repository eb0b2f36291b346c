// Package notify hands freshly issued reset secrets off to a delivery
// collaborator without blocking the request path. Actual delivery (email,
// SMS) is out of scope; the default Sender only records that a dispatch
// happened.
package notify

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/userhub/identity-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Sender delivers a single reset notification.
type Sender interface {
	Send(ctx context.Context, n ports.ResetNotification) error
}

// Dispatcher routes notifications to a fixed set of workers sharded on the
// user ID, so notifications for one account are delivered in issue order.
type Dispatcher struct {
	workers []chan ports.ResetNotification
	sender  Sender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ResetNotification, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ResetNotification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify enqueues a notification for asynchronous delivery. It satisfies
// ports.ResetNotifier and is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Notify(n ports.ResetNotification) {
	d.workers[d.shardIndex(n.UserID)] <- n
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	// Reduce in uint32 so the index stays in range on 32-bit ints too.
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ResetNotification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sender.Send(ctx, n); err != nil {
				// The secret stays out of the log even on failure.
				d.log.Error().Err(err).
					Str("user_id", n.UserID).
					Int("worker_id", id).
					Msg("reset notification delivery failed")
			}
		}
	}
}

// LogSender is the default Sender: it records the dispatch without the
// secret. Swap in a real mailer to actually deliver challenges.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n ports.ResetNotification) error {
	s.log.Info().
		Str("user_id", n.UserID).
		Str("email", n.Email).
		Msg("password reset notification dispatched")
	return nil
}
