// Command agentd runs the anti-flooding message buffer as a standalone
// service: a collector-facing Queue, a dispatcher goroutine draining it
// to a transport.Sender, and an HTTP control surface for health, stats
// and a live websocket feed of its notifications, wired the way the
// teacher's main.go wires its pub-sub server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agentbuffer/internal/agentstate"
	"agentbuffer/internal/config"
	"agentbuffer/internal/dispatcher"
	"agentbuffer/internal/httpapi"
	"agentbuffer/internal/queue"
	"agentbuffer/internal/transport"
	"agentbuffer/internal/transport/logsender"
	"agentbuffer/internal/transport/wsgateway"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("agentd: invalid configuration: %v", err)
	}

	counters := agentstate.NewCounters()
	q, err := queue.New(cfg, counters)
	if err != nil {
		log.Fatalf("agentd: failed to initialize buffer: %v", err)
	}

	hub := wsgateway.NewHub()
	sender := pickSender(hub)

	ctx, cancel := context.WithCancel(context.Background())
	dispatcherDone := make(chan struct{})
	go func() {
		dispatcher.Run(ctx, q, sender, cfg)
		close(dispatcherDone)
	}()

	router := httpapi.NewRouter(q, counters, hub)
	port := getEnvOrDefault("AGENT_HTTP_PORT", "9090")
	server := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("agentd: HTTP control surface on :%s", port)
		log.Printf("agentd: websocket feed at ws://localhost:%s/ws", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("agentd: HTTP server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("agentd: shutting down")
	cancel()
	q.Close()

	select {
	case <-dispatcherDone:
	case <-time.After(5 * time.Second):
		log.Println("agentd: dispatcher did not stop in time, exiting anyway")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("agentd: HTTP shutdown: %v", err)
	}
}

// pickSender uses the websocket gateway as the dispatcher's transport
// when AGENT_TRANSPORT=ws, and falls back to logging otherwise so the
// binary runs with zero external wiring out of the box.
func pickSender(hub *wsgateway.Hub) transport.Sender {
	if getEnvOrDefault("AGENT_TRANSPORT", "log") == "ws" {
		return hub
	}
	return logsender.New()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
