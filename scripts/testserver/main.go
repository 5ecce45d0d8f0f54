// Command testserver runs a local HTTP target for exercising pressr:
// a login endpoint that issues tokens for capture rules, item endpoints
// with path parameters, and tunable latency and failure injection.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

var (
	baseLatency = flag.Duration("latency", 10*time.Millisecond, "base response latency")
	jitter      = flag.Duration("jitter", 20*time.Millisecond, "random extra latency up to this value")
	failRate    = flag.Float64("fail-rate", 0, "fraction of requests answered with 500")
	port        = flag.Int("port", 8080, "listening port")
)

var tokenCounter int64

func main() {
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/items", handleItems)
	mux.HandleFunc("/items/", handleItemByID)
	mux.HandleFunc("/echo", handleEcho)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "path": r.URL.Path})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("test server listening on %s (latency=%s jitter=%s fail-rate=%.2f)",
		addr, *baseLatency, *jitter, *failRate)
	log.Fatal(http.ListenAndServe(addr, slowDown(mux)))
}

func slowDown(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delay := *baseLatency
		if *jitter > 0 {
			delay += time.Duration(rand.Int63n(int64(*jitter)))
		}
		time.Sleep(delay)

		if *failRate > 0 && rand.Float64() < *failRate {
			respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	n := atomic.AddInt64(&tokenCounter, 1)
	respondJSON(w, http.StatusOK, map[string]any{
		"token":      fmt.Sprintf("token-%d-%d", n, time.Now().UnixNano()),
		"expires_in": 3600,
	})
}

func handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": "item-1", "name": "widget"},
				{"id": "item-2", "name": "gadget"},
			},
			"total": 2,
		})
	case http.MethodPost:
		if r.Header.Get("Authorization") == "" {
			respondJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing token"})
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body"})
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{
			"id":         fmt.Sprintf("item-%d", time.Now().UnixNano()),
			"created_at": time.Now().Format(time.RFC3339),
			"echo":       body,
		})
	default:
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func handleItemByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/items/")
	if id == "" || strings.Contains(id, "/") {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"name":   "widget",
		"region": r.URL.Query().Get("region"),
	})
}

func handleEcho(w http.ResponseWriter, r *http.Request) {
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"method":  r.Method,
		"query":   r.URL.RawQuery,
		"headers": headers,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
