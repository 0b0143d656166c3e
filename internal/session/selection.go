package session

import (
	"fmt"

	"modelview/internal/payload"
	"modelview/internal/protocol"
	"modelview/internal/scene"
)

func (s *Session) setSelection(sel Selection) {
	if sel == s.selection {
		return
	}
	s.log.Debug().Str("from", s.selection.String()).Str("to", sel.String()).Msg("selection changed")
	s.selection = sel
	s.pub.Publish(Event{Name: EventSelection, ModelID: sel.ID, Fields: map[string]any{"kind": sel.Kind.String()}})
}

// resetScene empties the scene under a fresh epoch.
func (s *Session) resetScene() uint64 {
	epoch := s.bumpEpoch()
	s.composer.Clear(epoch)
	return epoch
}

func (s *Session) selectModel(id int64) {
	s.cancelPending()
	s.resetScene()
	if !s.dir.Contains(id) {
		s.setSelection(None())
		s.setStatus(fmt.Sprintf("Model %d not found", id))
		return
	}
	s.setSelection(Single(id))
	if err := s.send(protocol.GetByID(id)); err != nil {
		s.report(err)
		return
	}
	s.arm(id)
	s.setStatus(fmt.Sprintf("Loading %s...", s.dir.Label(id)))
}

func (s *Session) selectAll() {
	s.cancelPending()
	s.setSelection(All())
	s.placeAll()
}

func (s *Session) clearSelection() {
	s.cancelPending()
	s.setSelection(None())
	s.resetScene()
	s.setStatus("Selection cleared")
}

// placeAll lays out every catalog entry that carries a payload.
func (s *Session) placeAll() {
	epoch := s.resetScene()
	if s.dir.Len() == 0 {
		s.setStatus("No models available")
		return
	}
	entries := s.dir.Placeable()
	models := make([]scene.Model, 0, len(entries))
	for _, e := range entries {
		data, err := payload.DecodeModel(e.ID, e.Payload)
		models = append(models, scene.Model{ID: e.ID, Data: data, Err: err})
	}
	s.setStatus(fmt.Sprintf("Loading %d models...", len(models)))
	s.composer.Place(epoch, models)
}

// revalidate reconciles the selection with a freshly replaced catalog.
func (s *Session) revalidate() {
	switch s.selection.Kind {
	case SelectSingle:
		id := s.selection.ID
		if s.dir.Contains(id) {
			return
		}
		s.cancelPending()
		s.setSelection(None())
		s.resetScene()
		s.setStatus(fmt.Sprintf("Model %d is no longer available", id))
	case SelectAll:
		s.placeAll()
	}
}

func (s *Session) onBatch(r scene.BatchResult) {
	if r.Epoch != s.epoch {
		return
	}
	for _, err := range r.Errors {
		s.countError(err)
	}
	if len(r.Errors) > 0 {
		s.lastErr = r.Errors[len(r.Errors)-1]
	}
	s.pub.Publish(Event{Name: EventBatchDone, Fields: map[string]any{"loaded": r.Loaded, "failed": r.Failed}})
	s.setStatus(r.Status())
}
