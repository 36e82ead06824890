// Package health serves the /health endpoint.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"faction-oc-bot/tracker"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// StatusSource reports the most recent update cycle.
type StatusSource interface {
	Status() tracker.Status
}

type response struct {
	Status      string     `json:"status"`
	CycleID     string     `json:"cycle_id,omitempty"`
	LastCycle   *time.Time `json:"last_cycle"`
	LastOutcome string     `json:"last_outcome,omitempty"`
}

// NewRouter returns the health HTTP handler.
func NewRouter(src StatusSource) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		st := src.Status()
		resp := response{Status: "ok", CycleID: st.CycleID, LastOutcome: string(st.LastOutcome)}
		if !st.LastCycle.IsZero() {
			last := st.LastCycle.UTC()
			resp.LastCycle = &last
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error().Err(err).Msg("Failed to write health response")
		}
	})
	return r
}

// Server runs the health endpoint until Shutdown.
type Server struct {
	srv *http.Server
}

// Start listens on addr in the background.
func Start(addr string, src StatusSource) *Server {
	s := &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(src),
		ReadHeaderTimeout: 5 * time.Second,
	}}
	go func() {
		log.Info().Str("addr", addr).Msg("Health server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health server failed")
		}
	}()
	return s
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
