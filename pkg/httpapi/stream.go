package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	logsource "github.com/aretw0/receipt/pkg/adapters/lifecycle"
	"github.com/aretw0/receipt/pkg/core"
)

// streamEndpoint pushes the full snapshot as an "entries" event on connect
// and after every change to the log. Delivery is best effort; viewers keep
// polling GET /api/receipts.
func (s *Server) streamEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, fmt.Errorf("%w: %s", core.ErrUnsupportedOperation, r.Method))
			return
		}

		ctx := r.Context()
		events, err := s.svc.Watch(ctx, "")
		if err != nil {
			if !errors.Is(err, core.ErrStoreUnavailable) {
				err = fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
			}
			s.logger.Error("cannot watch receipt log", "error", err)
			writeError(w, err)
			return
		}

		src := logsource.NewSource(events)
		if err := src.Start(ctx); err != nil {
			writeError(w, err)
			return
		}

		rc := http.NewResponseController(w)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		if err := s.pushSnapshot(ctx, w, rc); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.closing:
				return
			case e, ok := <-src.Events():
				if !ok {
					return
				}
				s.logger.Debug("log changed, pushing snapshot", "event", e.String())
				if err := s.pushSnapshot(ctx, w, rc); err != nil {
					return
				}
			}
		}
	})
}

// pushSnapshot writes one event. A failed read becomes an "error" event
// carrying the usual error body; the stream stays open.
func (s *Server) pushSnapshot(ctx context.Context, w io.Writer, rc *http.ResponseController) error {
	name := "entries"
	var payload any

	entries, err := s.svc.ListEntries(ctx)
	if err != nil {
		_, code := classify(err)
		name, payload = "error", ErrorBody{Error: err.Error(), Code: code}
	} else {
		if entries == nil {
			entries = []core.Entry{}
		}
		payload = entries
	}

	if err := writeEvent(w, name, payload); err != nil {
		return err
	}
	return rc.Flush()
}

func writeEvent(w io.Writer, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
