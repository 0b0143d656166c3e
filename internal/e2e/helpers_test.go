package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"modelview/internal/cli"
	"modelview/internal/config"
	"modelview/internal/payload"
	"modelview/internal/protocol"
	"modelview/internal/session"
)

// boxModel returns a base64 glTF document whose only mesh spans min..max.
func boxModel(name string, min, max [3]float32) string {
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scenes": [{"name": %q, "nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "accessors": [{"componentType": 5126, "count": 8, "type": "VEC3", "min": [%g, %g, %g], "max": [%g, %g, %g]}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}]
}`, name, min[0], min[1], min[2], max[0], max[1], max[2])
	return payload.Encode([]byte(doc))
}

func unitCube(name string) string { return boxModel(name, [3]float32{-1, -1, -1}, [3]float32{1, 1, 1}) }

type storedModel struct {
	ID   int64   `json:"id"`
	Name *string `json:"name,omitempty"`
	Data string  `json:"model_data"`
}

func named(id int64, name, data string) storedModel {
	return storedModel{ID: id, Name: &name, Data: data}
}

// backend is an in-process model store speaking the viewer wire protocol.
type backend struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	models   []storedModel
	requests []protocol.Request
	conns    []*websocket.Conn
	wmu      sync.Mutex
}

func newBackend(t *testing.T, models ...storedModel) *backend {
	t.Helper()
	b := &backend{t: t, models: models}
	up := websocket.Upgrader{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.mu.Lock()
		b.conns = append(b.conns, ws)
		b.mu.Unlock()
		b.serve(ws)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) URL() string { return "ws" + strings.TrimPrefix(b.srv.URL, "http") + "/ws" }

func (b *backend) serve(ws *websocket.Conn) {
	defer ws.Close()
	for {
		var req protocol.Request
		if err := ws.ReadJSON(&req); err != nil {
			return
		}
		b.mu.Lock()
		b.requests = append(b.requests, req)
		b.mu.Unlock()
		switch req.Action {
		case protocol.ActionGetAll:
			b.write(ws, b.catalog())
		case protocol.ActionGetByID:
			if m, ok := b.find(req.ID); ok {
				b.write(ws, map[string]any{"id": m.ID, "model_data": m.Data})
			} else {
				b.write(ws, map[string]string{"error": "Model not found"})
			}
		default:
			b.write(ws, map[string]string{"error": "Unknown action"})
		}
	}
}

func (b *backend) catalog() []storedModel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]storedModel{}, b.models...)
}

func (b *backend) find(id int64) (storedModel, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.models {
		if m.ID == id {
			return m, true
		}
	}
	return storedModel{}, false
}

func (b *backend) write(ws *websocket.Conn, v any) {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if err := ws.WriteJSON(v); err != nil {
		b.t.Logf("backend write: %v", err)
	}
}

// replace swaps the stored models and broadcasts the new catalog.
func (b *backend) replace(models ...storedModel) {
	b.mu.Lock()
	b.models = models
	conns := append([]*websocket.Conn{}, b.conns...)
	b.mu.Unlock()
	for _, ws := range conns {
		b.write(ws, b.catalog())
	}
}

// drop closes every connection without a close handshake.
func (b *backend) drop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ws := range b.conns {
		_ = ws.UnderlyingConn().Close()
	}
}

func (b *backend) actions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.requests))
	for _, r := range b.requests {
		if r.Action == protocol.ActionGetByID {
			out = append(out, fmt.Sprintf("%s:%d", r.Action, r.ID))
			continue
		}
		out = append(out, r.Action)
	}
	return out
}

func startApp(t *testing.T, url, statusAddr string) *cli.App {
	t.Helper()
	cfg := config.Config{URL: url, StatusAddr: statusAddr, RequestTimeoutMS: 2000}
	cfg.ApplyDefaults()
	app, err := cli.Start(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// waitFor polls the session until cond holds.
func waitFor(t *testing.T, s *session.Session, what string, cond func(session.Snapshot) bool) session.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		snap := s.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; last status %q (selection %s, placed %d)", what, snap.Status, snap.Selection, len(snap.Placed))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func statusIs(want string) func(session.Snapshot) bool {
	return func(s session.Snapshot) bool { return s.Status == want }
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, v any) (*http.Response, []byte) {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
