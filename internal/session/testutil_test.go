package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"cogentcore.org/core/math32"

	"modelview/internal/channel"
	"modelview/internal/payload"
	"modelview/internal/protocol"
	"modelview/internal/scene"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// fakeClock only fires timers from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1700000000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// active counts timers that are neither stopped nor fired.
func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeSender struct {
	mu   sync.Mutex
	sent []protocol.Request
	err  error
}

func (f *fakeSender) Send(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, v.(protocol.Request))
	return nil
}

func (f *fakeSender) requests() []protocol.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.Request, len(f.sent))
	copy(out, f.sent)
	return out
}

// testParser yields a 2x2x2 box for every payload except "bad".
var testParser = scene.ParserFunc(func(_ context.Context, data []byte) (*scene.Object, error) {
	if string(data) == "bad" {
		return nil, errors.New("not a model")
	}
	return &scene.Object{Name: string(data), Bounds: math32.B3(-1, -1, -1, 1, 1, 1), Meshes: 1, Primitives: 1}, nil
})

type harness struct {
	t      *testing.T
	s      *Session
	clock  *fakeClock
	sender *fakeSender
	surf   *scene.MemorySurface
	pub    *MemoryPublisher
	link   channel.Handler
	jobs   []func()
	queue  bool
}

// newHarness builds a session with a manual clock and inline parsing. The
// loop is not running; drain processes queued events on the test goroutine.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, clock: newFakeClock(), sender: &fakeSender{}, surf: scene.NewMemorySurface(), pub: NewMemoryPublisher()}
	h.s = NewWithConfig(Config{
		RequestTimeout: 5 * time.Second,
		Surface:        h.surf,
		Parser:         testParser,
		Clock:          h.clock,
		Publisher:      h.pub,
		RunParse: func(f func()) {
			if h.queue {
				h.jobs = append(h.jobs, f)
				return
			}
			f()
		},
	})
	return h
}

func (h *harness) drain() {
	for {
		select {
		case f := <-h.s.events:
			h.s.step(f)
		default:
			return
		}
	}
}

// runJobs executes parse jobs held back while queue was set.
func (h *harness) runJobs() {
	jobs := h.jobs
	h.jobs = nil
	for _, f := range jobs {
		f()
	}
	h.drain()
}

func (h *harness) open() {
	h.link = h.s.Bind(h.sender)
	h.link.OnOpen()
	h.drain()
}

func (h *harness) frame(raw string) {
	h.link.OnMessage(raw)
	h.drain()
}

func (h *harness) frameJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.t.Fatalf("marshal: %v", err)
	}
	h.frame(string(b))
}

type entry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`
	ModelData string `json:"model_data,omitempty"`
}

func model(id int64, name, data string) entry {
	return entry{ID: id, Name: name, ModelData: payload.Encode([]byte(data))}
}

func (h *harness) catalog(entries ...entry) {
	if entries == nil {
		entries = []entry{}
	}
	h.frameJSON(entries)
}

func (h *harness) respond(id int64, data string) {
	h.frameJSON(map[string]any{"id": id, "model_data": payload.Encode([]byte(data))})
}

func (h *harness) snap() Snapshot { return h.s.Snapshot() }

func (h *harness) lastRequest() protocol.Request {
	reqs := h.sender.requests()
	if len(reqs) == 0 {
		h.t.Fatalf("no requests sent")
	}
	return reqs[len(reqs)-1]
}
