// Package simon models the Simon circle widget: an annulus split into
// colored sections that report touches and play highlight sequences.
package simon

import (
	"image/color"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/davidparry/widgets/dispatch"
	"github.com/davidparry/widgets/internal/colors"
	"github.com/davidparry/widgets/internal/geometry"
)

// DefaultSections is the section count when none is configured.
const DefaultSections = 4

// NoSection is reported for touches outside every section.
const NoSection = geometry.NoSection

// Config is the declarative configuration of a circle. Color lists are
// pipe-delimited hex strings such as "#FF0000|#00FF00".
type Config struct {
	Sections        int    `yaml:"sections"`
	SectionColors   string `yaml:"section_colors"`
	LineColor       string `yaml:"line_color"`
	HighlightColors string `yaml:"highlight_colors"`
}

// Action is the kind of a touch event.
type Action int

// Touch actions.
const (
	ActionDown Action = iota
	ActionMove
	ActionUp
	ActionCancel
)

// TouchEvent is a pointer event in view coordinates.
type TouchEvent struct {
	Action Action
	X, Y   float64
}

// SectionClickFunc receives touch-down events with the touched section,
// or NoSection. It reports whether the event was consumed.
type SectionClickFunc func(ev TouchEvent, section int) bool

// Option configures a Circle.
type Option interface {
	apply(*Circle)
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*Circle)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(c *Circle) { f(c) }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *Circle) { c.logger = l })
}

// WithDispatcher sets the rendering context that visual updates are
// posted to. Defaults to running them inline.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return optionFunc(func(c *Circle) { c.dispatcher = d })
}

// WithOnSectionClick sets the section click listener.
func WithOnSectionClick(fn SectionClickFunc) Option {
	return optionFunc(func(c *Circle) { c.onClick = fn })
}

// WithInvalidate sets the callback run after any visual change.
func WithInvalidate(fn func()) Option {
	return optionFunc(func(c *Circle) { c.invalidate = fn })
}

// Circle is the state of one Simon circle widget.
// A Circle is safe for concurrent use.
type Circle struct {
	logger     *zap.Logger
	dispatcher dispatch.Dispatcher
	onClick    SectionClickFunc
	invalidate func()

	mu            sync.Mutex
	sections      int
	sectionColors []string
	width, height float64
	sectors       []geometry.Sector
	fills         []color.NRGBA
	saved         map[int]color.NRGBA // fill of each highlighted section
	highlights    map[int]color.NRGBA
	line          color.NRGBA

	detached atomic.Bool
}

// New creates a circle from cfg. Malformed configuration falls back to
// defaults and is logged, never returned.
func New(cfg Config, opts ...Option) *Circle {
	c := &Circle{
		logger:     zap.NewNop(),
		dispatcher: dispatch.Immediate{},
		invalidate: func() {},
		saved:      make(map[int]color.NRGBA),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	c.logger = c.logger.Named("simon.circle")

	c.sections = cfg.Sections
	if c.sections < 1 {
		if cfg.Sections != 0 {
			c.logger.Warn("invalid section count, using default",
				zap.Int("sections", cfg.Sections),
				zap.Int("default", DefaultSections),
			)
		}
		c.sections = DefaultSections
	}

	c.line = colors.Transparent
	if cfg.LineColor != "" {
		line, err := colors.Parse(cfg.LineColor)
		if err != nil {
			c.logger.Error("error converting line color", zap.String("color", cfg.LineColor), zap.Error(err))
		} else {
			c.line = line
		}
	}

	c.sectionColors = colors.SplitList(cfg.SectionColors)
	c.fills = c.palette(c.sections)
	c.highlights = c.parseHighlights(cfg.HighlightColors)
	return c
}

// palette returns n fills from the configured list. Called with mu held
// or before the circle is shared.
func (c *Circle) palette(n int) []color.NRGBA {
	fills := colors.Palette(c.sectionColors, n, colors.Transparent, c.logger)
	if fills == nil {
		fills = make([]color.NRGBA, n)
	}
	return fills
}

func (c *Circle) parseHighlights(list string) map[int]color.NRGBA {
	highlights := make(map[int]color.NRGBA)
	for i, raw := range colors.SplitList(list) {
		hc, err := colors.Parse(raw)
		if err != nil {
			c.logger.Error("error creating highlight color",
				zap.Int("section", i),
				zap.String("color", raw),
				zap.Error(err),
			)
			continue
		}
		highlights[i] = hc
	}
	return highlights
}

// Resize rebuilds every sector for new view bounds.
func (c *Circle) Resize(width, height float64) {
	c.mu.Lock()
	c.width, c.height = width, height
	c.rebuild()
	c.mu.Unlock()

	c.invalidate()
}

// rebuild recomputes the sectors. Called with mu held.
func (c *Circle) rebuild() {
	sectors, err := geometry.Build(c.sections, c.width, c.height)
	if err != nil {
		// Unreachable: sections is kept >= 1.
		c.logger.Error("building sectors", zap.Error(err))
		return
	}
	c.sectors = sectors
}

// SectionAt returns the section containing (x, y), or NoSection.
func (c *Circle) SectionAt(x, y float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return geometry.SectionAt(c.sectors, x, y)
}

// Touch handles a pointer event. Only ActionDown reaches the click
// listener. It returns the listener's consumed flag, or true when there is
// no listener or the event is not a touch-down.
func (c *Circle) Touch(ev TouchEvent) bool {
	if ev.Action != ActionDown {
		return true
	}
	section := c.SectionAt(ev.X, ev.Y)
	if c.onClick == nil {
		return true
	}
	return c.onClick(ev, section)
}

// Sections returns the number of sections.
func (c *Circle) Sections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sections
}

// Sectors returns a copy of the current sectors. It is empty until the
// first Resize.
func (c *Circle) Sectors() []geometry.Sector {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]geometry.Sector, len(c.sectors))
	copy(out, c.sectors)
	return out
}

// SetNumberOfSections changes the section count, re-deriving fills from
// the configured colors. Counts below one are logged and ignored.
func (c *Circle) SetNumberOfSections(n int) {
	if n < 1 {
		c.logger.Warn("ignoring invalid section count", zap.Int("sections", n))
		return
	}
	c.mu.Lock()
	c.sections = n
	c.fills = c.palette(n)
	clear(c.saved)
	if len(c.sectors) > 0 {
		c.rebuild()
	}
	c.mu.Unlock()

	c.invalidate()
}

// LineColor returns the boundary line color.
func (c *Circle) LineColor() color.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line
}

// SetLineColor sets the boundary line color.
func (c *Circle) SetLineColor(col color.NRGBA) {
	c.mu.Lock()
	c.line = col
	c.mu.Unlock()

	c.invalidate()
}

// SetLineHexColor parses and sets the boundary line color. Malformed
// colors are logged and leave the line unchanged.
func (c *Circle) SetLineHexColor(hex string) {
	col, err := colors.Parse(hex)
	if err != nil {
		c.logger.Error("error converting line color", zap.String("color", hex), zap.Error(err))
		return
	}
	c.SetLineColor(col)
}

// SectionColor returns the fill currently shown for section i.
func (c *Circle) SectionColor(i int) (color.NRGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.fills) {
		return color.NRGBA{}, false
	}
	return c.fills[i], true
}

// SetSectionColor sets the fill of section i from a hex color. Indices out
// of range, values without "#" and malformed colors are ignored.
func (c *Circle) SetSectionColor(i int, hex string) {
	col, err := colors.Parse(hex)
	if err != nil || hex == "" || hex[0] != '#' {
		c.logger.Debug("ignoring section color", zap.Int("section", i), zap.String("color", hex))
		return
	}

	c.mu.Lock()
	if i < 0 || i >= len(c.fills) {
		c.mu.Unlock()
		c.logger.Debug("ignoring section color out of range", zap.Int("section", i))
		return
	}
	if _, highlighted := c.saved[i]; highlighted {
		c.saved[i] = col
	} else {
		c.fills[i] = col
	}
	c.mu.Unlock()

	c.invalidate()
}

// Detach marks the widget as gone. Pending visual updates become no-ops
// and running animations stop at their next step.
func (c *Circle) Detach() {
	c.detached.Store(true)
}

// Alive reports whether the widget is still attached.
func (c *Circle) Alive() bool {
	return !c.detached.Load()
}

// highlight shows section i in its highlight color, saving its fill.
// It runs on the rendering context.
func (c *Circle) highlight(i int) {
	if !c.Alive() {
		return
	}
	c.mu.Lock()
	if i < 0 || i >= len(c.fills) {
		c.mu.Unlock()
		c.logger.Debug("skipping highlight of unknown section", zap.Int("section", i))
		return
	}
	if _, already := c.saved[i]; !already {
		c.saved[i] = c.fills[i]
	}
	if hc, ok := c.highlights[i]; ok {
		c.fills[i] = hc
	} else {
		c.fills[i] = colors.Highlight(c.saved[i])
	}
	c.mu.Unlock()

	c.invalidate()
}

// dim restores the fill saved by highlight. It runs on the rendering context.
func (c *Circle) dim(i int) {
	if !c.Alive() {
		return
	}
	c.mu.Lock()
	fill, ok := c.saved[i]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.saved, i)
	c.fills[i] = fill
	c.mu.Unlock()

	c.invalidate()
}
