// Package logsender is the default transport.Sender: it logs every
// payload instead of shipping it anywhere. cmd/agentd falls back to it
// when no manager-facing transport is configured, so the dispatcher
// always has somewhere to send.
package logsender

import (
	"context"
	"log"
)

// Sender logs payloads at the standard logger's default level.
type Sender struct{}

// New returns a ready Sender.
func New() *Sender { return &Sender{} }

// Send never fails.
func (s *Sender) Send(ctx context.Context, payload string) error {
	log.Printf("dispatcher: %s", payload)
	return nil
}
