package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/crowdplay/crowdplay/internal/live"
)

// Handler serves the debug JSON endpoints from the live status board.
type Handler struct {
	board   *live.Board
	started time.Time
	mux     *http.ServeMux
}

// healthzResponse is the GET /healthz body.
type healthzResponse struct {
	Status    string  `json:"status"`
	UptimeSec float64 `json:"uptime_sec"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Handler wired to the given board and registers all routes.
func New(board *live.Board) http.Handler {
	h := &Handler{
		board:   board,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("/healthz", h.healthz)
	h.mux.HandleFunc("/api/v1/status", h.status)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// healthz returns GET /healthz — process liveness and uptime.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, healthzResponse{
		Status:    "ok",
		UptimeSec: time.Since(h.started).Seconds(),
	})
}

// status returns GET /api/v1/status — the latest session status, or 503
// when the board is stale (session down or still warming up).
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s, ok := h.board.Get()
	if !ok {
		jsonErr(w, http.StatusServiceUnavailable, "status stale")
		return
	}
	jsonResp(w, http.StatusOK, s)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
