package session

import (
	"context"
	"testing"
	"time"

	"modelview/internal/common/fault"
	"modelview/internal/protocol"
	"modelview/pkg/types"
)

func TestOpenRequestsCatalog(t *testing.T) {
	h := newHarness(t)
	h.open()
	if got := h.sender.requests(); len(got) != 1 || got[0] != protocol.GetAll() {
		t.Fatalf("requests = %+v", got)
	}
	snap := h.snap()
	if !snap.Connected || snap.Status != "Connected" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestEmptyCatalog(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog()
	if snap := h.snap(); len(snap.Models) != 0 || snap.Status != "No models available" || !snap.CatalogReceived {
		t.Fatalf("snapshot = %+v", snap)
	}
	if err := h.s.SelectAll(); err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	h.drain()
	snap := h.snap()
	if snap.Status != "No models available" || len(snap.Placed) != 0 || snap.Selection != All() {
		t.Fatalf("snapshot after SelectAll = %+v", snap)
	}
	if n := len(h.sender.requests()); n != 1 {
		t.Fatalf("SelectAll on empty catalog sent %d extra requests", n-1)
	}
}

func TestCubeScenario(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "Cube", "cube"))

	_ = h.s.SelectModel(1)
	h.drain()
	if req := h.lastRequest(); req != protocol.GetByID(1) {
		t.Fatalf("request = %+v", req)
	}
	if h.s.armedTimers() != 1 || h.clock.active() != 1 {
		t.Fatalf("expected one armed timer")
	}
	if snap := h.snap(); snap.PendingID != 1 || snap.Status != "Loading 1: Cube..." {
		t.Fatalf("snapshot = %+v", snap)
	}

	h.respond(1, "cube")
	snap := h.snap()
	if len(snap.Placed) != 1 || snap.Placed[0].ID != 1 || snap.Placed[0].Slot != 0 {
		t.Fatalf("placed = %+v", snap.Placed)
	}
	if snap.Status != "Loaded 1 model" || snap.PendingID != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.View.Distance != 5 {
		t.Fatalf("camera distance = %v", snap.View.Distance)
	}
	if h.clock.active() != 0 {
		t.Fatalf("timer survived the response")
	}
	h.clock.Advance(10 * time.Second)
	h.drain()
	if h.snap().Status != "Loaded 1 model" {
		t.Fatalf("cancelled timer fired: %q", h.snap().Status)
	}
}

func TestSwitchingSelectionKeepsOneTimerAndDropsStaleResponse(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"), model(2, "", "two"))

	_ = h.s.SelectModel(1)
	_ = h.s.SelectModel(2)
	h.drain()
	if h.s.armedTimers() != 1 || h.clock.active() != 1 {
		t.Fatalf("armed=%d active=%d", h.s.armedTimers(), h.clock.active())
	}

	h.respond(1, "one")
	snap := h.snap()
	if len(snap.Placed) != 0 || snap.Selection != Single(2) || snap.PendingID != 2 {
		t.Fatalf("stale response changed state: %+v", snap)
	}

	h.respond(2, "two")
	snap = h.snap()
	if len(snap.Placed) != 1 || snap.Placed[0].ID != 2 {
		t.Fatalf("placed = %+v", snap.Placed)
	}
}

func TestMismatchedResponseIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	before := h.snap()

	h.respond(5, "five")
	after := h.snap()
	if len(after.Models) != len(before.Models) || len(after.Placed) != 0 || after.Selection != None() {
		t.Fatalf("mismatched response mutated state: %+v", after)
	}
	if after.Epoch != before.Epoch {
		t.Fatalf("epoch moved from %d to %d", before.Epoch, after.Epoch)
	}
	names := h.pub.Names()
	if names[len(names)-1] != EventStaleResponse {
		t.Fatalf("events = %v", names)
	}
}

func TestCatalogRefreshRemovingSelectionClears(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"), model(2, "", "two"))
	_ = h.s.SelectModel(1)
	h.drain()
	h.respond(1, "one")
	if len(h.snap().Placed) != 1 {
		t.Fatalf("model not placed")
	}

	h.catalog(model(2, "", "two"))
	snap := h.snap()
	if snap.Selection != None() || len(snap.Placed) != 0 || h.surf.Len() != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Status != "Model 1 is no longer available" {
		t.Fatalf("status = %q", snap.Status)
	}
}

func TestCatalogRefreshKeepsPresentSelection(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	_ = h.s.SelectModel(1)
	h.drain()
	h.catalog(model(1, "", "one"), model(3, "", "three"))
	if snap := h.snap(); snap.Selection != Single(1) || snap.PendingID != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestTimeoutKeepsSelection(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	_ = h.s.SelectModel(1)
	h.drain()

	h.clock.Advance(5 * time.Second)
	h.drain()
	snap := h.snap()
	if snap.Status != "Timed out waiting for model 1" || snap.Selection != Single(1) || snap.PendingID != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !fault.IsTimeout(snap.LastError) || snap.ErrorKind() != fault.KindTimeout {
		t.Fatalf("last error = %v", snap.LastError)
	}

	// Retry by selecting again.
	_ = h.s.SelectModel(1)
	h.drain()
	if n := len(h.sender.requests()); n != 3 {
		t.Fatalf("expected retry request, have %d requests", n)
	}
	if h.clock.active() != 1 {
		t.Fatalf("retry did not arm a timer")
	}
}

func TestLateResponseAfterTimeoutIsAccepted(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	_ = h.s.SelectModel(1)
	h.drain()
	h.clock.Advance(6 * time.Second)
	h.drain()
	h.respond(1, "one")
	if snap := h.snap(); len(snap.Placed) != 1 || snap.Status != "Loaded 1 model" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSelectAllWithParseFailure(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "a"), model(2, "", "bad"), model(3, "", "c"), entry{ID: 4, Name: "metadata only"})
	_ = h.s.SelectAll()
	h.drain()

	snap := h.snap()
	if snap.Status != "Loaded 3 models with errors" {
		t.Fatalf("status = %q", snap.Status)
	}
	if len(snap.Placed) != 2 || snap.Placed[0].Slot != 0 || snap.Placed[1].Slot != 2 {
		t.Fatalf("placed = %+v", snap.Placed)
	}
	if !fault.IsParse(snap.LastError) || fault.ModelOf(snap.LastError) != 2 {
		t.Fatalf("last error = %v", snap.LastError)
	}
	if n := len(h.sender.requests()); n != 1 {
		t.Fatalf("SelectAll sent requests: %d", n)
	}
}

func TestSelectAllWithUndecodablePayload(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "a"), entry{ID: 2, ModelData: "@@not base64@@"})
	_ = h.s.SelectAll()
	h.drain()
	snap := h.snap()
	if snap.Status != "Loaded 2 models with errors" || len(snap.Placed) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !fault.IsDecode(snap.LastError) {
		t.Fatalf("last error = %v", snap.LastError)
	}
}

func TestSelectAllFollowsCatalog(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "a"))
	_ = h.s.SelectAll()
	h.drain()
	if len(h.snap().Placed) != 1 {
		t.Fatalf("expected one placed model")
	}
	h.catalog(model(1, "", "a"), model(2, "", "b"), model(3, "", "c"))
	snap := h.snap()
	if len(snap.Placed) != 3 || snap.Selection != All() || h.surf.Len() != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestLateParseFromSupersededSelectionIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.queue = true
	h.open()
	h.catalog(model(1, "", "one"), model(2, "", "two"))

	_ = h.s.SelectModel(1)
	h.drain()
	h.respond(1, "one") // parse job held back
	_ = h.s.SelectModel(2)
	h.drain()
	h.runJobs()
	if snap := h.snap(); len(snap.Placed) != 0 || h.surf.Len() != 0 {
		t.Fatalf("superseded parse landed: %+v", snap.Placed)
	}

	h.respond(2, "two")
	h.runJobs()
	if snap := h.snap(); len(snap.Placed) != 1 || snap.Placed[0].ID != 2 {
		t.Fatalf("placed = %+v", snap.Placed)
	}
}

func TestLateBatchParseAfterClearIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.queue = true
	h.open()
	h.catalog(model(1, "", "a"), model(2, "", "b"))
	_ = h.s.SelectAll()
	h.drain()
	_ = h.s.ClearSelection()
	h.drain()
	h.runJobs()
	snap := h.snap()
	if len(snap.Placed) != 0 || snap.Status != "Selection cleared" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestUnknownModelRevertsToNone(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	_ = h.s.SelectModel(99)
	h.drain()
	snap := h.snap()
	if snap.Selection != None() || snap.Status != "Model 99 not found" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(h.sender.requests()) != 1 || h.clock.active() != 0 {
		t.Fatalf("unknown id produced a request")
	}
}

func TestServerAndProtocolErrorsOnlyUpdateStatus(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	_ = h.s.SelectModel(1)
	h.drain()

	h.frame(`{"error":"Model not found"}`)
	snap := h.snap()
	if snap.Status != "Server error: Model not found" || snap.Selection != Single(1) || len(snap.Models) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	h.frame(`{"unexpected":true}`)
	snap = h.snap()
	if !fault.IsProtocol(snap.LastError) || snap.Selection != Single(1) {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDisconnectedSessionRefusesRequests(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"), model(2, "", "two"))
	_ = h.s.SelectAll()
	h.drain()

	h.link.OnClose(nil)
	h.drain()
	snap := h.snap()
	if snap.Connected || snap.Status != "Disconnected" || len(snap.Placed) != 2 {
		t.Fatalf("snapshot after close = %+v", snap)
	}

	_ = h.s.SelectModel(1)
	h.drain()
	snap = h.snap()
	if snap.Selection != Single(1) || !fault.IsConnection(snap.LastError) || len(snap.Placed) != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(h.sender.requests()) != 1 || h.clock.active() != 0 {
		t.Fatalf("request sent while disconnected")
	}

	_ = h.s.SelectAll()
	h.drain()
	if snap := h.snap(); len(snap.Placed) != 2 {
		t.Fatalf("cached catalog not placed: %+v", snap)
	}
}

func TestSendFailureReportsError(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	h.sender.err = fault.Connection("write", context.DeadlineExceeded)
	_ = h.s.SelectModel(1)
	h.drain()
	if snap := h.snap(); !fault.IsConnection(snap.LastError) || snap.PendingID != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestEpochMonotonic(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	var last uint64
	for _, f := range []func() error{h.s.SelectAll, func() error { return h.s.SelectModel(1) }, h.s.ClearSelection} {
		_ = f()
		h.drain()
		if e := h.snap().Epoch; e <= last {
			t.Fatalf("epoch did not advance: %d -> %d", last, e)
		} else {
			last = e
		}
	}
}

func TestEventsPublished(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.catalog(model(1, "", "one"))
	_ = h.s.SelectModel(1)
	h.drain()
	h.respond(1, "one")

	want := map[string]bool{EventChannelOpen: false, EventCatalog: false, EventSelection: false, EventRequestSent: false, EventBatchDone: false}
	for _, n := range h.pub.Names() {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for k, v := range want {
		if !v {
			t.Fatalf("missing event %s; got %v", k, h.pub.Names())
		}
	}
}

func TestSubscribeKeepsNewest(t *testing.T) {
	h := newHarness(t)
	ch, cancel := h.s.Subscribe()
	defer cancel()
	h.open()
	h.catalog(model(1, "", "one"))
	h.catalog(model(1, "", "one"), model(2, "", "two"))
	snap := <-ch
	if len(snap.Models) != 2 {
		t.Fatalf("subscriber got stale snapshot with %d models", len(snap.Models))
	}
	select {
	case s := <-ch:
		t.Fatalf("unexpected extra snapshot %+v", s)
	default:
	}
}

func TestSelectValidation(t *testing.T) {
	h := newHarness(t)
	id := int64(0)
	for _, req := range []types.SelectRequest{{}, {All: true, None: true}, {ID: &id}} {
		if _, err := h.s.Select(req); !IsInvalidSelection(err) {
			t.Fatalf("Select(%+v) err = %v", req, err)
		}
	}
	one := int64(1)
	resp, err := h.s.Select(types.SelectRequest{ID: &one})
	if err != nil || resp.Kind != types.SelectionSingle || resp.ID != 1 {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
}

func TestRunLoopAndStop(t *testing.T) {
	s := NewWithConfig(Config{Parser: testParser})
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()
	if err := s.ClearSelection(); err != nil {
		t.Fatalf("ClearSelection: %v", err)
	}
	deadline := time.After(3 * time.Second)
	for done := false; !done; {
		select {
		case snap := <-ch:
			done = snap.Status == "Selection cleared"
		case <-deadline:
			t.Fatalf("loop did not process intent")
		}
	}
	cancel()
	if err := <-errc; err != context.Canceled {
		t.Fatalf("Run returned %v", err)
	}
	<-s.Done()
	if err := s.SelectAll(); !IsStopped(err) {
		t.Fatalf("intent after stop: %v", err)
	}
	if _, ok := <-ch; ok {
		// drain a buffered snapshot, then expect closure
		if _, ok := <-ch; ok {
			t.Fatalf("subscription not closed on stop")
		}
	}
}
