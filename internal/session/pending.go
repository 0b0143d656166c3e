package session

import "time"

// pending is the single outstanding get_by_id request.
type pending struct {
	id     int64
	epoch  uint64
	sentAt time.Time
	timer  Timer
}

// arm starts the timeout for a freshly sent request. The caller has already
// cancelled any previous one.
func (s *Session) arm(id int64) {
	epoch := s.epoch
	p := &pending{id: id, epoch: epoch, sentAt: s.clock.Now()}
	p.timer = s.clock.AfterFunc(s.cfg.RequestTimeout, func() {
		_ = s.post(func() { s.onTimeout(id, epoch) })
	})
	s.pending = p
}

func (s *Session) cancelPending() {
	if s.pending == nil {
		return
	}
	s.pending.timer.Stop()
	s.pending = nil
}

func (s *Session) onTimeout(id int64, epoch uint64) {
	p := s.pending
	if p == nil || p.id != id || p.epoch != epoch {
		return
	}
	s.pending = nil
	s.log.Warn().Int64("model_id", id).Dur("after", s.clock.Now().Sub(p.sentAt)).Msg("request timed out")
	s.pub.Publish(Event{Name: EventRequestTimeout, ModelID: id})
	s.report(timeoutErr(id, s.cfg.RequestTimeout))
}

// armedTimers is the number of live request timers; never more than one.
func (s *Session) armedTimers() int {
	if s.pending == nil {
		return 0
	}
	return 1
}
