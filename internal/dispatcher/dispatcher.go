// Package dispatcher runs the single consumer loop that drains the
// queue, reports level-machine edges to the manager, and paces outbound
// delivery to the configured events-per-second cap.
package dispatcher

import (
	"context"
	"errors"
	"log"
	"time"

	"agentbuffer/internal/config"
	"agentbuffer/internal/notify"
	"agentbuffer/internal/queue"
	"agentbuffer/internal/transport"
)

// Run pops messages from q until ctx is canceled or q is closed,
// emitting any pending edge notifications ahead of each payload and
// compensating-sleeping to cfg.EventsPerSec between iterations. It
// returns when the loop exits, which callers treat as the dispatcher
// goroutine having finished its graceful shutdown.
func Run(ctx context.Context, q *queue.Queue, sender transport.Sender, cfg config.Config) {
	period := time.Second / time.Duration(cfg.EventsPerSec)

	for {
		t0 := time.Now()

		msg, err := q.PopBlocking(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || ctx.Err() != nil {
				return
			}
			log.Printf("dispatcher: pop: %v", err)
			return
		}

		edges := q.TakeEdges()
		for _, payload := range notify.Messages(cfg, edges) {
			log.Printf("dispatcher: notification: %s", payload)
			if err := sender.Send(ctx, payload); err != nil {
				log.Printf("dispatcher: notification send failed: %v", err)
			}
		}

		if err := sender.Send(ctx, msg); err != nil {
			log.Printf("dispatcher: payload send failed: %v", err)
		}

		if remaining := period - time.Since(t0); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}
