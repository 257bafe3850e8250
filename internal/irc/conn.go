package irc

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crowdplay/crowdplay/internal/config"
)

// dialTimeout bounds connection establishment (and the TLS or WebSocket
// handshake). Sessions that take longer are better restarted by the outer
// retry loop.
const dialTimeout = 2 * time.Second

// Dial opens the chat connection described by cfg: plain TCP, TCP with TLS,
// or an IRC-over-WebSocket gateway.
func Dial(cfg config.BotConfig) (io.ReadWriteCloser, error) {
	switch cfg.Transport {
	case "websocket":
		return dialWebsocket(cfg.WebsocketURL)
	default:
		return dialTCP(cfg)
	}
}

func dialTCP(cfg config.BotConfig) (io.ReadWriteCloser, error) {
	conn, err := net.DialTimeout("tcp", cfg.Server, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("irc: dial %s: %w", cfg.Server, err)
	}
	if !cfg.TLS {
		return conn, nil
	}

	host, _, err := net.SplitHostPort(cfg.Server)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("irc: split host %s: %w", cfg.Server, err)
	}

	tlsConn := tls.Client(conn, &tls.Config{ServerName: host})
	tlsConn.SetDeadline(time.Now().Add(dialTimeout)) //nolint:errcheck
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("irc: tls handshake %s: %w", cfg.Server, err)
	}
	tlsConn.SetDeadline(time.Time{}) //nolint:errcheck

	return tlsConn, nil
}

func dialWebsocket(url string) (io.ReadWriteCloser, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("irc: dial websocket %s: %w", url, err)
	}
	return &wsConn{conn: conn}, nil
}

// wsConn adapts a WebSocket connection to the byte-stream interface the
// Client expects. Reads return raw frame payloads (a frame may carry
// several protocol lines, exactly like a TCP read); each Write is sent as
// one text frame.
type wsConn struct {
	conn *websocket.Conn
	rest []byte
}

func (c *wsConn) Read(p []byte) (int, error) {
	if len(c.rest) == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		c.rest = data
	}
	n := copy(p, c.rest)
	c.rest = c.rest[n:]
	return n, nil
}

func (c *wsConn) Write(p []byte) (int, error) {
	if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
