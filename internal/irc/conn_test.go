package irc

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crowdplay/crowdplay/internal/config"
)

// wsFrame is one frame the fake gateway received from the client.
type wsFrame struct {
	typ  int
	data string
}

// startGateway serves a fake IRC-over-WebSocket endpoint. Every accepted
// connection first sends the given frames, then records each frame the
// client writes. Returns the ws:// URL and the received-frame channel.
func startGateway(t *testing.T, send []string) (string, <-chan wsFrame) {
	t.Helper()

	var upgrader websocket.Upgrader
	received := make(chan wsFrame, 16)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, f := range send {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			typ, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- wsFrame{typ: typ, data: string(data)}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), received
}

func TestWebsocketTransport_FramesDecodeAsLines(t *testing.T) {
	// One frame carrying two complete lines, then a terminator split across
	// two frames: the stream adapter must hide the frame boundaries from
	// the decoder entirely.
	wsURL, _ := startGateway(t, []string{
		"PING :alpha\r\nPING :beta\r\n",
		"PING :gamma\r",
		"\nPING :delta\r\n",
	})

	conn, err := dialWebsocket(wsURL)
	if err != nil {
		t.Fatalf("dialWebsocket: %v", err)
	}
	c := NewClient(conn)
	t.Cleanup(func() { c.Close() })

	msgs := drainMessages(t, c, 4)
	want := []string{"alpha", "beta", "gamma", "delta"}
	for i, m := range msgs {
		if m.Command != Ping {
			t.Errorf("message %d: command = %v, want Ping", i, m.Command)
		}
		if got, _ := m.Trailing(); got != want[i] {
			t.Errorf("message %d: payload = %q, want %q", i, got, want[i])
		}
	}
}

func TestWebsocketTransport_WritesSingleTextFrames(t *testing.T) {
	wsURL, received := startGateway(t, nil)

	conn, err := dialWebsocket(wsURL)
	if err != nil {
		t.Fatalf("dialWebsocket: %v", err)
	}
	c := NewClient(conn)
	t.Cleanup(func() { c.Close() })

	if err := c.Privmsg("somechannel", "n"); err != nil {
		t.Fatalf("Privmsg: %v", err)
	}
	if err := c.Pong("tmi.twitch.tv"); err != nil {
		t.Fatalf("Pong: %v", err)
	}

	want := []string{
		"PRIVMSG #somechannel :n\r\n",
		"PONG :tmi.twitch.tv\r\n",
	}
	for i, w := range want {
		select {
		case f := <-received:
			if f.typ != websocket.TextMessage {
				t.Errorf("frame %d: type = %d, want text", i, f.typ)
			}
			if f.data != w {
				t.Errorf("frame %d: got %q, want %q", i, f.data, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("frame %d never arrived", i)
		}
	}
}

func TestDial_SelectsTransport(t *testing.T) {
	t.Run("websocket", func(t *testing.T) {
		wsURL, received := startGateway(t, nil)

		conn, err := Dial(config.BotConfig{Transport: "websocket", WebsocketURL: wsURL})
		if err != nil {
			t.Fatalf("Dial: %v", err)
		}
		t.Cleanup(func() { conn.Close() })

		if _, err := conn.Write([]byte("NICK crowdbot\r\n")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		select {
		case f := <-received:
			if f.data != "NICK crowdbot\r\n" {
				t.Errorf("frame: got %q", f.data)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("gateway never received the write")
		}
	})

	t.Run("tcp", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		t.Cleanup(func() { ln.Close() })

		accepted := make(chan net.Conn, 1)
		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}()

		conn, err := Dial(config.BotConfig{Transport: "tcp", Server: ln.Addr().String()})
		if err != nil {
			t.Fatalf("Dial: %v", err)
		}
		t.Cleanup(func() { conn.Close() })

		select {
		case remote := <-accepted:
			remote.Close()
		case <-time.After(2 * time.Second):
			t.Fatal("listener never accepted the dial")
		}
	})
}
