package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "printhub/pkg/errors"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

const (
	StreamRoute = "/api/v1/realtime/print-jobs"

	EventHello  = "hello"
	EventChange = "change"

	DefaultKeepAlive = 25 * time.Second
)

// StreamHandler serves a shop owner's change feed as server-sent events.
type StreamHandler struct {
	hub       *Hub
	keepAlive time.Duration
	log       *logger.Logger
}

func NewStreamHandler(hub *Hub, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		hub:       hub,
		keepAlive: DefaultKeepAlive,
		log:       log,
	}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Stream", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	rc := http.NewResponseController(w)
	// the server write timeout would otherwise cut the stream
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.log.Warn("failed to clear write deadline", "error", err)
	}

	events, cancel := h.hub.Subscribe(caller.UserID, DefaultSubscriberBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	hello := map[string]any{
		"shop_owner_id": caller.UserID,
		"table":         model.TablePrintJobs,
	}
	if err := writeEvent(w, EventHello, hello); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.Warn("event stream does not support flushing", "error", err)
		return
	}

	h.log.Info("realtime subscriber connected", "shop_owner_id", caller.UserID)
	defer h.log.Info("realtime subscriber disconnected", "shop_owner_id", caller.UserID)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, EventChange, ev); err != nil {
				h.log.Warn("failed to write change event", "record_id", ev.RecordID, "error", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Internal("failed to encode event", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

func (h *StreamHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(StreamRoute, h.Stream)
}
