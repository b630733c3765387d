// Package httpapi exposes the agent buffer's /health, /stats and /ws
// endpoints, adapted from the teacher's HTTPHandlers/SetupRoutes plus
// its CORS and logging middleware.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"agentbuffer/internal/agentstate"
	"agentbuffer/internal/queue"
	"agentbuffer/internal/transport/wsgateway"
)

// healthResponse mirrors the teacher's HealthResponse shape, generalized
// from topic/subscriber counts to the buffer's level state and dashboard
// count.
type healthResponse struct {
	UptimeSeconds    int    `json:"uptime_seconds"`
	State            string `json:"state"`
	ConnectedViewers int    `json:"connected_viewers"`
}

// statsResponse mirrors the teacher's StatsResponse shape.
type statsResponse struct {
	Len      int                 `json:"len"`
	Capacity int                 `json:"capacity"`
	State    string              `json:"state"`
	Counters agentstate.Snapshot `json:"counters"`
}

var startTime = time.Now()

// NewRouter builds the mux.Router serving /health, /stats and /ws,
// wrapped in the teacher's CORS and request-logging middleware.
func NewRouter(q *queue.Queue, counters *agentstate.Counters, hub *wsgateway.Hub) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", healthHandler(q, hub)).Methods(http.MethodGet)
	router.HandleFunc("/stats", statsHandler(q, counters)).Methods(http.MethodGet)
	router.HandleFunc("/ws", hub.HandleWebSocket).Methods(http.MethodGet)

	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)
	return router
}

func healthHandler(q *queue.Queue, hub *wsgateway.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			UptimeSeconds:    int(time.Since(startTime).Seconds()),
			State:            q.StateSnapshot().String(),
			ConnectedViewers: hub.ClientCount(),
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func statsHandler(q *queue.Queue, counters *agentstate.Counters) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{
			Len:      q.Len(),
			Capacity: q.CapacitySnapshot(),
			State:    q.StateSnapshot().String(),
			Counters: counters.Snapshot(),
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// corsMiddleware adds CORS headers for a browser-based dashboard.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs every request the way the teacher's main.go does.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s %s", r.Method, r.RequestURI, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
