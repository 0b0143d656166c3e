// Package channel owns the websocket link to the model backend. It delivers
// inbound text frames to a Handler in arrival order from a single reader
// goroutine and serializes outbound JSON writes.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"modelview/internal/common/fault"
)

// DefaultURL is the backend endpoint used when none is configured.
const DefaultURL = "ws://127.0.0.1:8000/ws"

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	defaultMaxFrameBytes    = 64 << 20
	closeGrace              = time.Second
)

// Handler receives link events. Calls come from the reader goroutine, one at
// a time; OnOpen is always first and OnClose is always last.
type Handler interface {
	OnOpen()
	OnMessage(frame string)
	OnError(err error)
	OnClose(err error)
}

// Options tunes the link. Zero values select package defaults.
type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	MaxFrameBytes    int64
	Header           http.Header
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = defaultHandshakeTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.MaxFrameBytes <= 0 {
		o.MaxFrameBytes = defaultMaxFrameBytes
	}
	return o
}

// Conn is an open link. Use Dial to create one and Listen to start reading.
type Conn struct {
	url  string
	ws   *websocket.Conn
	opts Options

	wmu       sync.Mutex
	listening atomic.Bool
	closing   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens a link to url. A failed handshake is a connection fault.
func Dial(ctx context.Context, url string, opts Options) (*Conn, error) {
	opts = opts.withDefaults()
	d := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
	}
	ws, _, err := d.DialContext(ctx, url, opts.Header)
	if err != nil {
		return nil, fault.Connection("dial "+url, err)
	}
	ws.SetReadLimit(opts.MaxFrameBytes)
	return &Conn{url: url, ws: ws, opts: opts, done: make(chan struct{})}, nil
}

// URL returns the endpoint this link was dialed with.
func (c *Conn) URL() string { return c.url }

// Listen reports the open link to h and starts the reader goroutine.
// It can only be called once.
func (c *Conn) Listen(h Handler) {
	if !c.listening.CompareAndSwap(false, true) {
		panic("channel: Listen called twice")
	}
	h.OnOpen()
	go c.readLoop(h)
}

func (c *Conn) readLoop(h Handler) {
	defer close(c.done)
	for {
		typ, msg, err := c.ws.ReadMessage()
		if err != nil {
			c.closed.Store(true)
			if c.closing.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.OnClose(nil)
				return
			}
			cerr := fault.Connection("read", err)
			h.OnError(cerr)
			h.OnClose(cerr)
			return
		}
		if typ != websocket.TextMessage {
			h.OnError(fault.Protocol(fmt.Sprintf("unexpected non-text frame (type %d, %d bytes)", typ, len(msg)), nil))
			continue
		}
		h.OnMessage(string(msg))
	}
}

// Send writes v as one JSON text frame. It fails with a connection fault
// once the link is closed.
func (c *Conn) Send(v any) error {
	if c.closed.Load() || c.closing.Load() {
		return fault.Connection("send on closed channel", nil)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("channel: encode frame: %w", err)
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
		return fault.Connection("write", err)
	}
	return nil
}

// Done is closed when the reader goroutine exits.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Close sends a normal closure and releases the socket. The handler, if
// any, observes OnClose(nil).
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace))
		if c.listening.Load() {
			select {
			case <-c.done:
			case <-time.After(closeGrace):
			}
		}
		err = c.ws.Close()
		c.closed.Store(true)
	})
	return err
}
