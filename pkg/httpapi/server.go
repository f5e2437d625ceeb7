// Package httpapi exposes the receipt log over HTTP: a snapshot read, a
// single-entry write, a composed submission and a server-sent event stream.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/receipt/pkg/core"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 10 * time.Second
)

// Server wires HTTP endpoints to the receipt service.
type Server struct {
	svc    *core.Service
	logger *slog.Logger

	closing   chan struct{} // closed when shutdown starts; ends event streams
	closeOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server in front of svc.
func New(svc *core.Service, opts ...Option) *Server {
	s := &Server{svc: svc, closing: make(chan struct{})}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Handler returns the routed handler wrapped in request id, recovery and
// access log middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/receipts", s.receiptsEndpoint())
	mux.Handle("/api/receipts/stream", s.streamEndpoint())
	mux.Handle("/api/submit", s.submitEndpoint())
	mux.Handle("/api/state", s.stateEndpoint())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return withRequestID(withLogging(s.logger, withRecovery(s.logger, mux)))
}

// ListenAndServe serves on addr until ctx is done, then drains in-flight
// requests before returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then drains in-flight requests
// before returning. Request contexts stay live through the drain; event
// streams are closed as soon as shutdown starts.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	baseCtx, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(s.closeStreams)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("receipt server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down receipt server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) closeStreams() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// receiptsEndpoint serves GET (snapshot) and POST (append) on one path.
func (s *Server) receiptsEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleRead(w, r)
		case http.MethodPost:
			s.handleWrite(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			writeError(w, fmt.Errorf("%w: %s", core.ErrUnsupportedOperation, r.Method))
		}
	})
}

// handleRead returns the whole log. A store fault is always an error
// response, never an empty list.
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.ListEntries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// WriteResponse is the body of a successful POST /api/receipts.
type WriteResponse struct {
	Status string     `json:"status"`
	Entry  core.Entry `json:"entry"`
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var candidate core.Entry
	if err := decodeBody(w, r, &candidate); err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.svc.AppendEntry(r.Context(), candidate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WriteResponse{Status: "ok", Entry: entry})
}

// SubmitRequest is the body of POST /api/submit.
type SubmitRequest struct {
	Text string `json:"text"`
}

// SubmitResponse lists the appended entries in append order.
type SubmitResponse struct {
	Status  string       `json:"status"`
	Entries []core.Entry `json:"entries"`
}

func (s *Server) submitEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeError(w, fmt.Errorf("%w: %s", core.ErrUnsupportedOperation, r.Method))
			return
		}

		var req SubmitRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}

		entries, err := s.svc.Submit(r.Context(), req.Text)
		if err != nil {
			if len(entries) > 0 {
				s.logger.Warn("submission partially applied", "appended", len(entries), "error", err)
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SubmitResponse{Status: "ok", Entries: entries})
	})
}

func (s *Server) stateEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, fmt.Errorf("%w: %s", core.ErrUnsupportedOperation, r.Method))
			return
		}
		writeJSON(w, http.StatusOK, core.Snapshot(s.svc))
	})
}

// decodeBody reads a single JSON value. Malformed bodies are invalid entries.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %w", core.ErrInvalidEntry, err)
	}
	return nil
}
