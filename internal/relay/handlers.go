package relay

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/luki/smarttent/internal/httputil"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

// NewMux registers the relay API on a fresh mux.
func NewMux(store *Store, logger *slog.Logger) *http.ServeMux {
	h := &handlers{store: store, logger: logger, now: time.Now}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("POST /api/data", h.handlePostData)
	mux.HandleFunc("GET /api/data", h.handleAllData)
	mux.HandleFunc("GET /api/data/{id}", h.handleDeviceData)
	mux.HandleFunc("GET /api/status", h.handleStatus)
	return mux
}

// NewServer wraps the mux with request logging.
func NewServer(addr string, mux *http.ServeMux, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           requestLogger(logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handlePostData(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		h.logger.Warn("rejected reading", "error", err)
		httputil.WriteError(w, http.StatusBadRequest, "body must be a JSON object: "+err.Error())
		return
	}
	if body == nil {
		httputil.WriteError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	id := h.store.Put(body)
	h.logger.Debug("stored reading", "device_id", id)
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) handleAllData(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.All())
}

func (h *handlers) handleDeviceData(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, ok := h.store.Get(id)
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Device not found"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":       "online",
		"timestamp":    h.now().Format(timestampLayout),
		"device_count": h.store.Len(),
	})
}
