package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"modelview/internal/channel"
	"modelview/internal/directory"
	"modelview/internal/gltfload"
	"modelview/internal/scene"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultRequestTimeout = 5 * time.Second
	defaultQueueDepth     = 256
)

// Config encapsulates all tunables for Session construction.
type Config struct {
	URL            string
	RequestTimeout time.Duration
	Layout         scene.Layout
	// Surface receives placed models; defaults to a MemorySurface.
	Surface scene.Surface
	// Parser turns payload bytes into objects; defaults to the glTF parser.
	Parser    scene.Parser
	Clock     Clock
	Publisher EventPublisher
	Logger    *zerolog.Logger
	// QueueDepth bounds the event queue between producers and the loop.
	QueueDepth int
	// RunParse starts a parse job; defaults to a new goroutine.
	RunParse func(func())
}

// NewWithConfig constructs a Session from Config.
func NewWithConfig(cfg Config) *Session {
	if cfg.URL == "" {
		cfg.URL = channel.DefaultURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Surface == nil {
		cfg.Surface = scene.NewMemorySurface()
	}
	if cfg.Parser == nil {
		cfg.Parser = gltfload.New()
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultQueueDepth
	}
	s := &Session{
		cfg:    cfg,
		id:     uuid.NewString(),
		clock:  cfg.Clock,
		pub:    cfg.Publisher,
		events: make(chan func(), cfg.QueueDepth),
		done:   make(chan struct{}),
		dir:    directory.New(),
		subs:   map[chan Snapshot]struct{}{},
		status: "Connecting to " + cfg.URL,
	}
	base := zerolog.Nop()
	if cfg.Logger != nil {
		base = *cfg.Logger
	}
	s.log = base.With().Str("session", s.id).Logger()
	s.dir.SetLogger(s.log.With().Str("component", "directory").Logger())
	s.dir.OnChange(s.onDirectoryChanged)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	clog := s.log.With().Str("component", "scene").Logger()
	s.composer = scene.NewComposer(scene.Config{
		Context: s.ctx,
		Surface: cfg.Surface,
		Parser:  cfg.Parser,
		Layout:  cfg.Layout,
		Go:      cfg.RunParse,
		Post:    func(f func()) { _ = s.post(f) },
		OnBatch: s.onBatch,
		Logger:  &clog,
	})
	s.startedAt = s.clock.Now()
	s.publish()
	return s
}
