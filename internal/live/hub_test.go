package live_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crowdplay/crowdplay/internal/live"
)

const testInterval = 20 * time.Millisecond

// --- helpers ----------------------------------------------------------------

func newBoard(statuses ...live.Status) *live.Board {
	b := live.NewBoard(5 * time.Minute)
	for _, s := range statuses {
		b.Put(s)
	}
	return b
}

// startHub starts a test HTTP server with the hub as its handler. The hub's
// Run loop is started with a cancellable context. Returns the ws:// URL.
func startHub(t *testing.T, b *live.Board) string {
	t.Helper()

	hub := live.NewHub(b, testInterval)
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one text message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) live.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m live.Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return m
}

// --- tests ------------------------------------------------------------------

func TestHub_ConnectReceivesImmediateStatus(t *testing.T) {
	b := newBoard(live.Status{Channel: "chan", Label: "n", Connected: true})
	wsURL := startHub(t, b)

	conn := dial(t, wsURL)
	m := readMessage(t, conn)

	if m.Event != "status" {
		t.Errorf("event: got %q, want %q", m.Event, "status")
	}
	if m.Data.Channel != "chan" || m.Data.Label != "n" {
		t.Errorf("data: got %+v", m.Data)
	}
}

func TestHub_BroadcastsUpdates(t *testing.T) {
	b := newBoard(live.Status{Sends: 1})
	wsURL := startHub(t, b)

	conn := dial(t, wsURL)
	readMessage(t, conn) // immediate snapshot

	b.Put(live.Status{Sends: 2})

	// The next ticks must eventually carry the update.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m := readMessage(t, conn); m.Data.Sends == 2 {
			return
		}
	}
	t.Fatal("broadcast never carried the updated status")
}

func TestHub_ServesMultipleClients(t *testing.T) {
	b := newBoard(live.Status{Label: "n"})
	wsURL := startHub(t, b)

	first := dial(t, wsURL)
	second := dial(t, wsURL)

	// Both clients get the greeting snapshot and keep receiving ticks.
	for i, conn := range []*websocket.Conn{first, second} {
		if m := readMessage(t, conn); m.Data.Label != "n" {
			t.Errorf("client %d greeting: got %+v", i, m.Data)
		}
	}

	b.Put(live.Status{Label: "w"})
	for i, conn := range []*websocket.Conn{first, second} {
		deadline := time.Now().Add(2 * time.Second)
		for {
			if m := readMessage(t, conn); m.Data.Label == "w" {
				break
			}
			if !time.Now().Before(deadline) {
				t.Fatalf("client %d never saw the update", i)
			}
		}
	}
}

func TestHub_SurvivesClientDisconnect(t *testing.T) {
	b := newBoard(live.Status{Sends: 1})
	wsURL := startHub(t, b)

	gone := dial(t, wsURL)
	readMessage(t, gone)
	gone.Close()

	// The hub must keep broadcasting to the remaining client.
	conn := dial(t, wsURL)
	readMessage(t, conn)

	b.Put(live.Status{Sends: 2})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m := readMessage(t, conn); m.Data.Sends == 2 {
			return
		}
	}
	t.Fatal("broadcast stopped after another client disconnected")
}

func TestHub_StaleBoardIsNotBroadcast(t *testing.T) {
	// An empty board has nothing to send; the connection stays open with
	// no status frames.
	wsURL := startHub(t, live.NewBoard(5*time.Minute))

	conn := dial(t, wsURL)
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond)) //nolint:errcheck
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("received a frame from a stale board")
	}
}
