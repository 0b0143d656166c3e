package session

import (
	"fmt"

	"modelview/internal/common/fault"
	"modelview/internal/directory"
	"modelview/internal/payload"
	"modelview/internal/protocol"
	"modelview/internal/scene"
)

func (s *Session) onFrame(raw string) {
	f, err := protocol.ParseFrame([]byte(raw))
	if err != nil {
		framesTotal.WithLabelValues("invalid").Inc()
		s.report(err)
		return
	}
	framesTotal.WithLabelValues(f.Kind()).Inc()
	switch fr := f.(type) {
	case protocol.CatalogFrame:
		s.onCatalog(fr)
	case protocol.ModelFrame:
		s.onModel(fr)
	case protocol.ErrorFrame:
		s.report(fault.Server(fr.Message))
	}
}

func (s *Session) onCatalog(fr protocol.CatalogFrame) {
	if fr.Dropped > 0 {
		s.log.Warn().Int("dropped", fr.Dropped).Msg("catalog contained malformed entries")
	}
	if fr.Coerced > 0 {
		s.log.Warn().Int("coerced", fr.Coerced).Msg("catalog entries with mistyped name or model_data kept without them")
	}
	s.catalogReceived = true
	s.dir.ReplaceAll(fr.Entries)
}

// onDirectoryChanged runs inside every ReplaceAll and reconciles the
// selection with the new catalog.
func (s *Session) onDirectoryChanged(ch directory.Change) {
	s.log.Debug().Int("models", s.dir.Len()).Ints64("added", ch.Added).Ints64("removed", ch.Removed).Msg("catalog replaced")
	s.pub.Publish(Event{Name: EventCatalog, Fields: map[string]any{"models": s.dir.Len(), "added": len(ch.Added), "removed": len(ch.Removed)}})
	s.setStatus(availableText(s.dir.Len()))
	s.revalidate()
}

func (s *Session) onModel(fr protocol.ModelFrame) {
	if s.selection.Kind != SelectSingle || s.selection.ID != fr.ID {
		s.log.Debug().Int64("model_id", fr.ID).Str("selection", s.selection.String()).Msg("discarding stale model response")
		s.pub.Publish(Event{Name: EventStaleResponse, ModelID: fr.ID})
		return
	}
	s.cancelPending()
	epoch := s.bumpEpoch()
	s.composer.Clear(epoch)
	data, err := payload.DecodeModel(fr.ID, fr.ModelData)
	s.setStatus(fmt.Sprintf("Parsing model %d...", fr.ID))
	s.composer.Place(epoch, []scene.Model{{ID: fr.ID, Data: data, Err: err}})
}

func availableText(n int) string {
	switch n {
	case 0:
		return "No models available"
	case 1:
		return "1 model available"
	default:
		return fmt.Sprintf("%d models available", n)
	}
}
