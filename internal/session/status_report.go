package session

import (
	"sync"

	"cogentcore.org/core/math32"

	"modelview/pkg/types"
)

// publish stores a fresh snapshot and hands it to subscribers. Runs on the loop.
func (s *Session) publish() {
	snap := Snapshot{
		SessionID:       s.id,
		URL:             s.cfg.URL,
		Connected:       s.connected,
		CatalogReceived: s.catalogReceived,
		Selection:       s.selection,
		Models:          s.dir.List(),
		Placed:          s.composer.Placed(),
		Bounds:          s.composer.Bounds(),
		View:            s.composer.View(),
		Parsing:         s.composer.Pending(),
		Status:          s.status,
		LastError:       s.lastErr,
		Epoch:           s.epoch,
		StartedAt:       s.startedAt,
		UpdatedAt:       s.clock.Now(),
	}
	if s.pending != nil {
		snap.PendingID = s.pending.id
	}
	placedModels.Set(float64(len(snap.Placed)))

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()

	s.subMu.Lock()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the oldest undelivered snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	s.subMu.Unlock()
}

// Snapshot returns the most recently published snapshot.
func (s *Session) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// Subscribe returns a channel that always holds the newest snapshot not yet
// read; slow readers skip intermediate ones. The channel is closed when the
// session stops. Call the returned func to unsubscribe.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		close(ch)
		return ch, func() {}
	}
	ch <- s.Snapshot()
	s.subs[ch] = struct{}{}
	return ch, func() {
		s.subMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
}

// Ready reports whether the channel is open.
func (s *Session) Ready() bool { return s.Snapshot().Connected }

// Status builds the response for GET /status.
func (s *Session) Status() types.StatusResponse { return StatusOf(s.Snapshot()) }

// StatusOf converts a snapshot to its wire form.
func StatusOf(snap Snapshot) types.StatusResponse {
	resp := types.StatusResponse{
		SessionID:       snap.SessionID,
		URL:             snap.URL,
		Connected:       snap.Connected,
		CatalogReceived: snap.CatalogReceived,
		Selection:       types.Selection{Kind: snap.Selection.Kind.String(), ID: snap.Selection.ID},
		PendingID:       snap.PendingID,
		Status:          snap.Status,
		ErrorKind:       string(snap.ErrorKind()),
		ModelCount:      len(snap.Models),
		PlacedCount:     len(snap.Placed),
		Epoch:           snap.Epoch,
		UptimeSeconds:   int64(snap.UpdatedAt.Sub(snap.StartedAt).Seconds()),
		UpdatedUnix:     snap.UpdatedAt.Unix(),
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}
	return resp
}

// Models builds the response for GET /models.
func (s *Session) Models() []types.ModelSummary {
	snap := s.Snapshot()
	out := make([]types.ModelSummary, len(snap.Models))
	for i, m := range snap.Models {
		out[i] = types.ModelSummary{ID: m.ID, Name: m.Name, Label: m.Label(), HasPayload: m.HasPayload}
	}
	return out
}

// Scene builds the response for GET /scene.
func (s *Session) Scene() types.SceneResponse {
	snap := s.Snapshot()
	resp := types.SceneResponse{
		Placed:  make([]types.PlacedModel, len(snap.Placed)),
		Parsing: snap.Parsing,
		View: types.View{
			Target:   vec(snap.View.Target),
			Camera:   vec(snap.View.Camera),
			Distance: snap.View.Distance,
			KeyLight: vec(snap.View.KeyLight),
		},
	}
	for i, p := range snap.Placed {
		resp.Placed[i] = types.PlacedModel{ID: p.ID, Slot: p.Slot, Bounds: bounds(p.Bounds)}
	}
	if !snap.Bounds.IsEmpty() {
		b := bounds(snap.Bounds)
		resp.Bounds = &b
	}
	return resp
}

// Select queues the selection described by req.
func (s *Session) Select(req types.SelectRequest) (types.SelectResponse, error) {
	set := 0
	if req.ID != nil {
		set++
	}
	if req.All {
		set++
	}
	if req.None {
		set++
	}
	if set != 1 {
		return types.SelectResponse{}, invalidSelectionError{msg: "exactly one of id, all, none must be set"}
	}
	switch {
	case req.All:
		return types.SelectResponse{Kind: types.SelectionAll}, s.SelectAll()
	case req.None:
		return types.SelectResponse{Kind: types.SelectionNone}, s.ClearSelection()
	}
	if *req.ID <= 0 {
		return types.SelectResponse{}, invalidSelectionError{msg: "id must be positive"}
	}
	return types.SelectResponse{Kind: types.SelectionSingle, ID: *req.ID}, s.SelectModel(*req.ID)
}

func vec(v math32.Vector3) types.Vec3 { return types.Vec3{v.X, v.Y, v.Z} }

func bounds(b math32.Box3) types.Bounds { return types.Bounds{Min: vec(b.Min), Max: vec(b.Max)} }

// Watch streams status responses built from Subscribe. Call the returned
// func to stop; the channel is closed afterwards.
func (s *Session) Watch() (<-chan types.StatusResponse, func()) {
	src, cancel := s.Subscribe()
	out := make(chan types.StatusResponse, 1)
	stop := make(chan struct{})
	go func() {
		defer close(out)
		for snap := range src {
			select {
			case out <- StatusOf(snap):
			case <-stop:
				return
			}
		}
	}()
	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(stop)
			cancel()
		})
	}
}
