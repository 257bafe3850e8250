package irc

import (
	"fmt"
	"io"
	"sync"
)

const (
	// readBufSize is the size of each read from the connection.
	readBufSize = 4096

	// chunkQueueDepth bounds how many unprocessed reads the pump may hold
	// before it applies backpressure to the connection.
	chunkQueueDepth = 64
)

// Client owns one chat connection and the line decoder attached to it.
//
// A background pump performs the blocking reads and queues the raw chunks;
// the session loop pulls them with Drain and decoded messages with Next, so
// every piece of parsing state stays owned by that single loop. Writes go
// straight to the connection from the calling goroutine.
type Client struct {
	conn io.ReadWriteCloser
	dec  Decoder

	chunks chan []byte
	errc   chan error // the pump's terminal read error, capacity 1
	done   chan struct{}
	once   sync.Once

	err error // sticky copy of the pump error once Drain has seen it
}

// NewClient wraps conn and starts its read pump.
func NewClient(conn io.ReadWriteCloser) *Client {
	c := &Client{
		conn:   conn,
		chunks: make(chan []byte, chunkQueueDepth),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go c.readPump()
	return c
}

func (c *Client) readPump() {
	for {
		buf := make([]byte, readBufSize)
		n, err := c.conn.Read(buf)
		if n > 0 {
			select {
			case c.chunks <- buf[:n]:
			case <-c.done:
				return
			}
		}
		if err != nil {
			c.errc <- err
			return
		}
	}
}

// Drain moves every chunk the pump has read so far into the decoder without
// blocking. Once the pump has stopped and all its chunks have been
// consumed, Drain reports the connection error; that error is sticky.
func (c *Client) Drain() error {
	for {
		select {
		case p := <-c.chunks:
			c.dec.Feed(p)
		default:
			if c.err == nil {
				select {
				case err := <-c.errc:
					c.err = fmt.Errorf("irc: read: %w", err)
				default:
				}
			}
			return c.err
		}
	}
}

// Next decodes and classifies the next buffered line, or returns nil when
// no complete line is available. Call after Drain until it returns nil.
func (c *Client) Next() *Message {
	line, ok := c.dec.NextLine()
	if !ok {
		return nil
	}
	return ParseMessage(line)
}

// Pending returns the number of buffered, not yet decoded bytes.
func (c *Client) Pending() int {
	return c.dec.Pending()
}

// SendLinef formats one protocol line and writes it, CRLF-terminated, in a
// single write.
func (c *Client) SendLinef(format string, args ...any) error {
	line := fmt.Sprintf(format, args...)
	if _, err := io.WriteString(c.conn, line+"\r\n"); err != nil {
		return fmt.Errorf("irc: send: %w", err)
	}
	return nil
}

// Login sends the credential line followed by the identity line.
func (c *Client) Login(nick, token string) error {
	if err := c.SendLinef("PASS oauth:%s", token); err != nil {
		return err
	}
	return c.SendLinef("NICK %s", nick)
}

// Join joins the given channel (without the '#').
func (c *Client) Join(channel string) error {
	return c.SendLinef("JOIN #%s", channel)
}

// Pong answers a keep-alive probe, echoing its payload.
func (c *Client) Pong(payload string) error {
	return c.SendLinef("PONG :%s", payload)
}

// Privmsg sends a chat message to the given channel (without the '#').
func (c *Client) Privmsg(channel, text string) error {
	return c.SendLinef("PRIVMSG #%s :%s", channel, text)
}

// Close tears the connection down and releases the read pump.
func (c *Client) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.conn.Close()
}
