package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"modelview/internal/directory"
	"modelview/internal/scene"
)

// Sender writes one outbound frame. *channel.Conn implements it.
type Sender interface {
	Send(v any) error
}

// Session owns the viewer state. All fields below the loop marker are only
// touched on the event loop goroutine.
type Session struct {
	cfg    Config
	id     string
	log    zerolog.Logger
	clock  Clock
	pub    EventPublisher
	ctx    context.Context
	cancel context.CancelFunc

	events   chan func()
	done     chan struct{}
	running  atomic.Bool
	stopOnce sync.Once

	// loop-owned
	sender          Sender
	connected       bool
	catalogReceived bool
	dir             *directory.Directory
	composer        *scene.Composer
	selection       Selection
	epoch           uint64
	pending         *pending
	status          string
	lastErr         error
	startedAt       time.Time

	snapMu sync.RWMutex
	snap   Snapshot

	subMu sync.Mutex
	subs  map[chan Snapshot]struct{}
}

// New returns a Session with default configuration.
func New() *Session { return NewWithConfig(Config{}) }

// ID returns the session id stamped on logs and snapshots.
func (s *Session) ID() string { return s.id }

// Run processes events until ctx is done. It can only be called once.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		panic("session: Run called twice")
	}
	defer s.stop()
	s.log.Info().Str("url", s.cfg.URL).Msg("session loop started")
	for {
		select {
		case <-ctx.Done():
			s.cancelPending()
			s.log.Info().Msg("session loop stopped")
			return ctx.Err()
		case f := <-s.events:
			s.step(f)
		}
	}
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) step(f func()) {
	f()
	s.publish()
}

func (s *Session) post(f func()) error {
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	select {
	case s.events <- f:
		return nil
	case <-s.done:
		return ErrStopped
	}
}

func (s *Session) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.cancel()
		s.subMu.Lock()
		for ch := range s.subs {
			close(ch)
		}
		s.subs = nil
		s.subMu.Unlock()
	})
}

// SelectModel asks to show the single model id.
func (s *Session) SelectModel(id int64) error {
	return s.post(func() { s.selectModel(id) })
}

// SelectAll asks to show every model in the catalog.
func (s *Session) SelectAll() error {
	return s.post(s.selectAll)
}

// ClearSelection empties the scene.
func (s *Session) ClearSelection() error {
	return s.post(s.clearSelection)
}

// ConnectFailed records that the channel could not be opened.
func (s *Session) ConnectFailed(err error) error {
	return s.post(func() {
		s.connected = false
		s.report(err)
	})
}

func (s *Session) bumpEpoch() uint64 {
	s.epoch++
	return s.epoch
}
