// Package target provides a local HTTP server to point api-tester at.
package target

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// Endpoints lists the paths served by NewHandler.
var Endpoints = []string{"/status/200", "/health", "/fast", "/slow", "/spike", "/error"}

// NewHandler returns the target's routes:
//
//	/status/200  immediate 200 OK
//	/health      immediate 200 "healthy"
//	/fast        10-50ms
//	/slow        1-2s, useful against -requestTimeOut
//	/spike       20ms, 5% of calls take 2s
//	/error       20% 500, 20% 429, otherwise 200
func NewHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/status/200", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "healthy")
	})

	mux.HandleFunc("/fast", func(w http.ResponseWriter, r *http.Request) {
		sleep(r, jitter(10, 40))
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Fast response")
	})

	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		sleep(r, jitter(1000, 1000))
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Slow response")
	})

	mux.HandleFunc("/spike", func(w http.ResponseWriter, r *http.Request) {
		if rand.Float32() < 0.05 {
			sleep(r, 2*time.Second)
		} else {
			sleep(r, 20*time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Spikey response")
	})

	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		switch rnd := rand.Float32(); {
		case rnd < 0.2:
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		case rnd < 0.4:
			http.Error(w, "429 Too Many Requests", http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "OK")
		}
	})

	return mux
}

// NewServer configures an *http.Server for high request rates on addr.
func NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
	}
}

func jitter(minMs, spreadMs int) time.Duration {
	return time.Duration(rand.Intn(spreadMs)+minMs) * time.Millisecond
}

// sleep waits for d or until the client goes away.
func sleep(r *http.Request, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-r.Context().Done():
	case <-t.C:
	}
}
