// Package transport defines the boundary between the dispatcher and
// whatever carries its notifications and payloads out of the process.
package transport

import "context"

// Sender delivers one payload produced by the dispatcher to a consumer
// outside the process. Implementations must not block past ctx, and a
// failed Send is never fatal to the dispatcher loop — it is logged and
// the loop continues at the next message.
type Sender interface {
	Send(ctx context.Context, payload string) error
}
