package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crowdplay/crowdplay/internal/api"
	"github.com/crowdplay/crowdplay/internal/live"
)

func doRequest(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal body %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	h := api.New(live.NewBoard(time.Minute))

	rec := doRequest(t, h, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("code: got %d, want 200", rec.Code)
	}

	var body struct {
		Status    string  `json:"status"`
		UptimeSec float64 `json:"uptime_sec"`
	}
	decodeBody(t, rec, &body)
	if body.Status != "ok" {
		t.Errorf("status: got %q, want %q", body.Status, "ok")
	}
	if body.UptimeSec < 0 {
		t.Errorf("uptime_sec: got %v, want >= 0", body.UptimeSec)
	}
}

func TestStatusFresh(t *testing.T) {
	board := live.NewBoard(time.Minute)
	board.Put(live.Status{
		Channel:        "chan",
		Label:          "democratie",
		CommandsPerSec: 3.5,
		Eligible:       true,
		Votes:          map[string]uint32{"up": 4, "a": 1},
	})
	h := api.New(board)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("code: got %d, want 200", rec.Code)
	}

	var got live.Status
	decodeBody(t, rec, &got)
	if got.Channel != "chan" || got.Label != "democratie" || !got.Eligible {
		t.Errorf("status: got %+v", got)
	}
	if got.Votes["up"] != 4 {
		t.Errorf("votes[up]: got %d, want 4", got.Votes["up"])
	}
}

func TestStatusStale(t *testing.T) {
	h := api.New(live.NewBoard(time.Minute))

	rec := doRequest(t, h, http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code: got %d, want 503", rec.Code)
	}

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	if body.Error != "status stale" {
		t.Errorf("error: got %q, want %q", body.Error, "status stale")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := api.New(live.NewBoard(time.Minute))

	for _, path := range []string{"/healthz", "/api/v1/status"} {
		rec := doRequest(t, h, http.MethodPost, path)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, rec.Code)
		}
	}
}

func TestUnknownPath(t *testing.T) {
	h := api.New(live.NewBoard(time.Minute))

	rec := doRequest(t, h, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("code: got %d, want 404", rec.Code)
	}
}
