package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger — зависимость, без которой бот не готов обслуживать (БД, redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	srv *http.Server
}

func New(addr string, exposeMetrics bool, deps ...Pinger) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           newMux(exposeMetrics, deps...),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func newMux(exposeMetrics bool, deps ...Pinger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("Content-Type", "text/plain")
		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
