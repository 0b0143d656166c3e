package scene

import (
	"context"
	"fmt"
	"time"

	"cogentcore.org/core/math32"
	"github.com/rs/zerolog"

	"modelview/internal/common/fault"
)

// Package defaults for Layout.
const (
	defaultSpacing        = 3.0
	defaultMinDistance    = 5.0
	defaultDistanceFactor = 2.0
)

var (
	// cameraDirection points from the target toward the default eye position.
	cameraDirection = math32.Vec3(-6, 5, 1.5).Normal()
	// keyLightDirection is overhead and toward the camera side.
	keyLightDirection = math32.Vec3(0, 1, 1).Normal()
)

// Layout controls slot spacing and camera framing.
type Layout struct {
	Spacing        float32
	MinDistance    float32
	DistanceFactor float32
}

// DefaultLayout returns the package defaults.
func DefaultLayout() Layout {
	return Layout{Spacing: defaultSpacing, MinDistance: defaultMinDistance, DistanceFactor: defaultDistanceFactor}
}

// Model is one batch input. A non-nil Err marks a model that already failed
// upstream (for example during payload decoding); it keeps its slot.
type Model struct {
	ID   int64
	Data []byte
	Err  error
}

// Placed records an object the composer inserted into the surface.
type Placed struct {
	ID     int64
	Handle Handle
	Slot   int
	Bounds math32.Box3
}

// BatchResult summarizes a finished Place call.
type BatchResult struct {
	Epoch  uint64
	Total  int
	Loaded int
	Failed int
	Errors []error
}

// Status renders the user-facing completion line.
func (r BatchResult) Status() string {
	noun := "models"
	if r.Total == 1 {
		noun = "model"
	}
	if r.Failed > 0 {
		return fmt.Sprintf("Loaded %d %s with errors", r.Total, noun)
	}
	return fmt.Sprintf("Loaded %d %s", r.Total, noun)
}

// Config wires a Composer. Surface and Parser are required.
//
// Go runs a parse job; it defaults to a new goroutine. Post delivers the job
// result back to the goroutine that owns the composer. When Post is nil the
// composer is synchronous: both Go and Post run inline.
type Config struct {
	Context context.Context
	Surface Surface
	Parser  Parser
	Layout  Layout
	Go      func(func())
	Post    func(func())
	OnBatch func(BatchResult)
	Logger  *zerolog.Logger
}

type batch struct {
	epoch  uint64
	total  int
	loaded int
	failed int
	errs   []error
}

func (b *batch) done() bool { return b.loaded+b.failed == b.total }

// Composer places model batches on a surface.
type Composer struct {
	ctx     context.Context
	surface Surface
	parser  Parser
	layout  Layout
	goFn    func(func())
	post    func(func())
	onBatch func(BatchResult)
	log     zerolog.Logger

	epoch  uint64
	placed []Placed
	bounds math32.Box3
	view   View
	batch  *batch
}

// NewComposer applies defaults to cfg and returns a composer with an empty scene.
func NewComposer(cfg Config) *Composer {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	d := DefaultLayout()
	if cfg.Layout.Spacing <= 0 {
		cfg.Layout.Spacing = d.Spacing
	}
	if cfg.Layout.MinDistance <= 0 {
		cfg.Layout.MinDistance = d.MinDistance
	}
	if cfg.Layout.DistanceFactor <= 0 {
		cfg.Layout.DistanceFactor = d.DistanceFactor
	}
	if cfg.Post == nil {
		cfg.Post = func(f func()) { f() }
		if cfg.Go == nil {
			cfg.Go = func(f func()) { f() }
		}
	}
	if cfg.Go == nil {
		cfg.Go = func(f func()) { go f() }
	}
	c := &Composer{
		ctx:     cfg.Context,
		surface: cfg.Surface,
		parser:  cfg.Parser,
		layout:  cfg.Layout,
		goFn:    cfg.Go,
		post:    cfg.Post,
		onBatch: cfg.OnBatch,
		log:     zerolog.Nop(),
		bounds:  math32.B3Empty(),
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	}
	c.view = c.defaultView()
	return c
}

// Clear releases every placed object and invalidates parses started under
// an older epoch.
func (c *Composer) Clear(epoch uint64) {
	c.epoch = epoch
	for _, p := range c.placed {
		c.surface.Release(p.Handle)
	}
	c.placed = nil
	c.bounds = math32.B3Empty()
	c.batch = nil
	c.view = c.defaultView()
	c.surface.SetView(c.view)
}

// Place starts a batch. Model i goes to slot i. Completion is reported once
// through OnBatch after every model either landed or failed.
func (c *Composer) Place(epoch uint64, models []Model) {
	c.epoch = epoch
	b := &batch{epoch: epoch, total: len(models)}
	c.batch = b
	if len(models) == 0 {
		c.finish(b)
		return
	}
	for slot, m := range models {
		if m.Err != nil {
			c.fail(b, m.Err)
			continue
		}
		slot, m := slot, m
		c.goFn(func() {
			start := time.Now()
			obj, err := c.parser.Parse(c.ctx, m.Data)
			result := "ok"
			if err != nil {
				result = "error"
			}
			parseSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
			c.post(func() { c.complete(epoch, slot, m.ID, obj, err) })
		})
	}
}

func (c *Composer) complete(epoch uint64, slot int, id int64, obj *Object, err error) {
	b := c.batch
	if epoch != c.epoch || b == nil || b.epoch != epoch {
		staleParses.Inc()
		c.log.Debug().Int64("model_id", id).Uint64("epoch", epoch).Uint64("current", c.epoch).Msg("discarding stale parse")
		return
	}
	if err != nil {
		c.fail(b, fault.Parse(id, err))
		return
	}
	if obj == nil {
		obj = &Object{Bounds: math32.B3Empty()}
	}
	at := math32.Vec3(float32(slot)*c.layout.Spacing, 0, 0)
	h := c.surface.Insert(id, obj, at)
	world := math32.B3Empty()
	if obj.Bounds.IsEmpty() {
		world.ExpandByPoint(at)
	} else {
		world = obj.Bounds.Translate(at)
	}
	c.placed = append(c.placed, Placed{ID: id, Handle: h, Slot: slot, Bounds: world})
	c.bounds.ExpandByBox(world)
	c.retarget()
	b.loaded++
	if b.done() {
		c.finish(b)
	}
}

func (c *Composer) fail(b *batch, err error) {
	b.failed++
	b.errs = append(b.errs, err)
	c.log.Warn().Err(err).Msg("model not placed")
	if b.done() {
		c.finish(b)
	}
}

func (c *Composer) finish(b *batch) {
	if c.batch == b {
		c.batch = nil
	}
	res := BatchResult{Epoch: b.epoch, Total: b.total, Loaded: b.loaded, Failed: b.failed, Errors: b.errs}
	c.log.Info().Uint64("epoch", b.epoch).Int("loaded", b.loaded).Int("failed", b.failed).Msg(res.Status())
	if c.onBatch != nil {
		c.onBatch(res)
	}
}

func (c *Composer) retarget() {
	size := c.bounds.Size()
	largest := math32.Max(size.X, math32.Max(size.Y, size.Z))
	dist := math32.Max(largest*c.layout.DistanceFactor, c.layout.MinDistance)
	c.view = c.aim(c.bounds.Center(), dist)
	c.surface.SetView(c.view)
}

func (c *Composer) defaultView() View {
	return c.aim(math32.Vector3{}, c.layout.MinDistance)
}

func (c *Composer) aim(target math32.Vector3, dist float32) View {
	return View{
		Target:   target,
		Camera:   target.Add(cameraDirection.MulScalar(dist)),
		Distance: dist,
		KeyLight: target.Add(keyLightDirection.MulScalar(dist)),
	}
}

// Epoch returns the epoch of the last Clear or Place.
func (c *Composer) Epoch() uint64 { return c.epoch }

// Placed returns a copy of the placed records in landing order.
func (c *Composer) Placed() []Placed {
	out := make([]Placed, len(c.placed))
	copy(out, c.placed)
	return out
}

// Bounds returns the union bounding volume of everything placed.
func (c *Composer) Bounds() math32.Box3 { return c.bounds }

// View returns the current camera and light pose.
func (c *Composer) View() View { return c.view }

// Pending returns how many models of the current batch are still parsing.
func (c *Composer) Pending() int {
	if c.batch == nil {
		return 0
	}
	return c.batch.total - c.batch.loaded - c.batch.failed
}
