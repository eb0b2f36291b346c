package notify

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/identity-service/internal/core/ports"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []ports.ResetNotification
	done chan struct{}
	want int
}

func newRecordingSender(want int) *recordingSender {
	return &recordingSender{done: make(chan struct{}), want: want}
}

func (s *recordingSender) Send(_ context.Context, n ports.ResetNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	if len(s.sent) == s.want {
		close(s.done)
	}
	return nil
}

func TestDispatcher_DeliversAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newRecordingSender(5)
	d := NewDispatcher(3, sender, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		d.Notify(ports.ResetNotification{UserID: "user-" + strconv.Itoa(i), Secret: "s"})
	}

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for deliveries, got %d", len(sender.sent))
	}
}

func TestDispatcher_ShardIndexInRange(t *testing.T) {
	d := NewDispatcher(3, newRecordingSender(0), zerolog.Nop())

	// fnv32a sums routinely exceed MaxInt32; the reduction must still land
	// in [0, workers) regardless of the platform's int width.
	ids := []string{"", "a", "user-1", "user-2", "кир", "\xff\xfe\xfd", "costarring"}
	for _, id := range ids {
		if idx := d.shardIndex(id); idx < 0 || idx >= len(d.workers) {
			t.Fatalf("shard index %d out of range for id %q", idx, id)
		}
	}
}

func TestDispatcher_PerUserOrdering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const n = 20
	sender := newRecordingSender(n)
	d := NewDispatcher(4, sender, zerolog.Nop())
	d.Start(ctx)

	// All notifications for one user land on one worker, so they must be
	// delivered in enqueue order.
	for i := 0; i < n; i++ {
		d.Notify(ports.ResetNotification{UserID: "user-1", Secret: strconv.Itoa(i)})
	}

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for deliveries, got %d", len(sender.sent))
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	for i, got := range sender.sent {
		if got.Secret != strconv.Itoa(i) {
			t.Fatalf("delivery %d out of order: got %s", i, got.Secret)
		}
	}
}
