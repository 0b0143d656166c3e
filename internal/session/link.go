package session

import (
	"modelview/internal/channel"
	"modelview/internal/protocol"
)

// linkHandler forwards channel callbacks to the loop in arrival order.
type linkHandler struct{ s *Session }

func (h linkHandler) OnOpen()                { _ = h.s.post(h.s.onOpen) }
func (h linkHandler) OnMessage(frame string) { _ = h.s.post(func() { h.s.onFrame(frame) }) }
func (h linkHandler) OnError(err error)      { _ = h.s.post(func() { h.s.report(err) }) }
func (h linkHandler) OnClose(err error)      { _ = h.s.post(func() { h.s.onClose(err) }) }

// Bind attaches sender as the outbound side and returns the handler to pass
// to channel.Conn.Listen. Call Bind before Listen so the sender is in place
// when the open event is processed.
func (s *Session) Bind(sender Sender) channel.Handler {
	_ = s.post(func() { s.sender = sender })
	return linkHandler{s: s}
}

func (s *Session) onOpen() {
	s.connected = true
	s.log.Info().Msg("channel open")
	s.pub.Publish(Event{Name: EventChannelOpen})
	s.setStatus("Connected")
	if err := s.send(protocol.GetAll()); err != nil {
		s.report(err)
	}
}

func (s *Session) onClose(err error) {
	s.connected = false
	s.cancelPending()
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Warn().Err(err)
	}
	ev.Msg("channel closed")
	s.pub.Publish(Event{Name: EventChannelClosed})
	s.setStatus("Disconnected")
}

func (s *Session) send(req protocol.Request) error {
	if s.sender == nil || !s.connected {
		return connectionDown()
	}
	if err := s.sender.Send(req); err != nil {
		return err
	}
	requestsTotal.WithLabelValues(req.Action).Inc()
	s.log.Debug().Str("action", req.Action).Int64("model_id", req.ID).Msg("request sent")
	s.pub.Publish(Event{Name: EventRequestSent, ModelID: req.ID, Fields: map[string]any{"action": req.Action}})
	return nil
}
