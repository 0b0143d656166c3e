package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"modelview/internal/common/fault"
)

type event struct {
	name  string
	frame string
	err   error
}

type recorder struct{ ch chan event }

func newRecorder() *recorder { return &recorder{ch: make(chan event, 32)} }

func (r *recorder) OnOpen()            { r.ch <- event{name: "open"} }
func (r *recorder) OnMessage(f string) { r.ch <- event{name: "message", frame: f} }
func (r *recorder) OnError(err error)  { r.ch <- event{name: "error", err: err} }
func (r *recorder) OnClose(err error)  { r.ch <- event{name: "close", err: err} }

func (r *recorder) next(t *testing.T) event {
	t.Helper()
	select {
	case e := <-r.ch:
		return e
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for handler event")
		return event{}
	}
}

// startBackend runs fn against every accepted websocket.
func startBackend(t *testing.T, fn func(*websocket.Conn)) string {
	t.Helper()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		fn(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestFramesArriveInOrder(t *testing.T) {
	got := make(chan string, 1)
	url := startBackend(t, func(ws *websocket.Conn) {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		got <- string(msg)
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`[{"id":1}]`))
		_ = ws.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3})
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"error":"x"}`))
		_, _, _ = ws.ReadMessage()
	})

	c, err := Dial(context.Background(), url, Options{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	rec := newRecorder()
	c.Listen(rec)
	if e := rec.next(t); e.name != "open" {
		t.Fatalf("first event %q, want open", e.name)
	}
	if err := c.Send(map[string]string{"action": "get_all"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case m := <-got:
		if m != `{"action":"get_all"}` {
			t.Fatalf("server got %s", m)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server never received request")
	}
	if e := rec.next(t); e.name != "message" || e.frame != `[{"id":1}]` {
		t.Fatalf("unexpected %+v", e)
	}
	if e := rec.next(t); e.name != "error" || !fault.IsProtocol(e.err) {
		t.Fatalf("binary frame: unexpected %+v", e)
	}
	if e := rec.next(t); e.name != "message" || e.frame != `{"error":"x"}` {
		t.Fatalf("unexpected %+v", e)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if e := rec.next(t); e.name != "close" || e.err != nil {
		t.Fatalf("expected clean close, got %+v", e)
	}
	if err := c.Send(map[string]string{"action": "get_all"}); !fault.IsConnection(err) {
		t.Fatalf("send after close: %v", err)
	}
}

func TestRemoteDropReportsConnectionError(t *testing.T) {
	url := startBackend(t, func(ws *websocket.Conn) {
		// Drop the TCP connection without a close frame.
		_ = ws.UnderlyingConn().Close()
	})
	c, err := Dial(context.Background(), url, Options{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	rec := newRecorder()
	c.Listen(rec)
	_ = rec.next(t) // open
	e := rec.next(t)
	if e.name != "error" || !fault.IsConnection(e.err) {
		t.Fatalf("want connection error, got %+v", e)
	}
	e = rec.next(t)
	if e.name != "close" || !fault.IsConnection(e.err) {
		t.Fatalf("want close with cause, got %+v", e)
	}
	<-c.Done()
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/ws", Options{HandshakeTimeout: time.Second})
	if !fault.IsConnection(err) {
		t.Fatalf("want connection error, got %v", err)
	}
}

func TestOversizedFrameClosesLink(t *testing.T) {
	url := startBackend(t, func(ws *websocket.Conn) {
		_ = ws.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 2048)))
		_, _, _ = ws.ReadMessage()
	})
	c, err := Dial(context.Background(), url, Options{MaxFrameBytes: 1024})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	rec := newRecorder()
	c.Listen(rec)
	_ = rec.next(t)
	for {
		e := rec.next(t)
		if e.name == "close" {
			if e.err == nil {
				t.Fatalf("oversized frame closed cleanly")
			}
			return
		}
		if e.name == "message" {
			t.Fatalf("oversized frame delivered")
		}
	}
}
