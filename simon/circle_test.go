package simon

import (
	"image/color"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidparry/widgets/internal/colors"
)

var (
	red   = color.NRGBA{R: 0xFF, A: 0xFF}
	green = color.NRGBA{G: 0xFF, A: 0xFF}
	blue  = color.NRGBA{B: 0xFF, A: 0xFF}
)

// newSized returns a 220x220 circle: center (110,110), outer radius 100,
// inner radius 22.
func newSized(t *testing.T, cfg Config, opts ...Option) *Circle {
	t.Helper()
	c := New(cfg, opts...)
	c.Resize(220, 220)
	return c
}

func TestNew_OptionsApplyInOrder(t *testing.T) {
	var calls []string
	opts := []Option{
		WithInvalidate(func() { calls = append(calls, "first") }),
		WithLogger(zap.NewNop()),
		WithInvalidate(func() { calls = append(calls, "second") }),
	}
	c := New(Config{}, opts...)
	c.Resize(100, 100)

	if len(calls) != 1 || calls[0] != "second" {
		t.Errorf("invalidate calls = %v, want [second]", calls)
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	if got := c.Sections(); got != DefaultSections {
		t.Errorf("Sections() = %d, want %d", got, DefaultSections)
	}
	if got := c.LineColor(); got != colors.Transparent {
		t.Errorf("LineColor() = %v, want transparent", got)
	}
	for i := 0; i < DefaultSections; i++ {
		if got, ok := c.SectionColor(i); !ok || got != colors.Transparent {
			t.Errorf("SectionColor(%d) = %v, %v, want transparent", i, got, ok)
		}
	}
	if len(c.Sectors()) != 0 {
		t.Error("Sectors() should be empty before Resize")
	}
}

func TestNew_ColorsRecycle(t *testing.T) {
	c := New(Config{Sections: 5, SectionColors: "#FF0000|#00FF00"})
	want := []color.NRGBA{red, green, red, green, red}
	for i, w := range want {
		if got, _ := c.SectionColor(i); got != w {
			t.Errorf("SectionColor(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestNew_MalformedConfigLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := New(Config{
		Sections:      -2,
		SectionColors: "#FF0000|#nothex",
		LineColor:     "mauve-ish",
	}, WithLogger(zap.New(core)))

	if got := c.Sections(); got != DefaultSections {
		t.Errorf("Sections() = %d, want %d", got, DefaultSections)
	}
	if got := c.LineColor(); got != colors.Transparent {
		t.Errorf("LineColor() = %v, want transparent", got)
	}
	if got, _ := c.SectionColor(1); got != colors.Transparent {
		t.Errorf("SectionColor(1) = %v, want transparent fallback", got)
	}
	if got, _ := c.SectionColor(2); got != red {
		t.Errorf("SectionColor(2) = %v, want red", got)
	}
	if logs.Len() < 3 {
		t.Errorf("logged %d entries, want at least 3", logs.Len())
	}
}

func TestCircle_SectionAt(t *testing.T) {
	c := newSized(t, Config{})

	tests := []struct {
		name string
		x, y float64
		want int
	}{
		{"lower right", 160, 160, 0},
		{"lower left", 60, 160, 1},
		{"upper left", 60, 60, 2},
		{"upper right", 160, 60, 3},
		{"center hole", 110, 110, NoSection},
		{"outside", 5, 5, NoSection},
		{"far away", 1000, -1000, NoSection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.SectionAt(tt.x, tt.y); got != tt.want {
				t.Errorf("SectionAt(%v, %v) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCircle_ResizeRebuilds(t *testing.T) {
	invalidations := 0
	c := New(Config{Sections: 3}, WithInvalidate(func() { invalidations++ }))

	c.Resize(220, 220)
	first := c.Sectors()
	c.Resize(440, 440)
	second := c.Sectors()

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("sector counts = %d, %d, want 3", len(first), len(second))
	}
	if second[0].Outer <= first[0].Outer {
		t.Errorf("outer radius did not grow: %v -> %v", first[0].Outer, second[0].Outer)
	}
	if invalidations != 2 {
		t.Errorf("invalidations = %d, want 2", invalidations)
	}
}

func TestCircle_Touch(t *testing.T) {
	type click struct {
		section int
		x, y    float64
	}
	var clicks []click
	consumed := false
	c := newSized(t, Config{}, WithOnSectionClick(func(ev TouchEvent, section int) bool {
		clicks = append(clicks, click{section, ev.X, ev.Y})
		return consumed
	}))

	if got := c.Touch(TouchEvent{Action: ActionDown, X: 60, Y: 60}); got != false {
		t.Errorf("Touch(down) = %v, want listener result false", got)
	}
	consumed = true
	if got := c.Touch(TouchEvent{Action: ActionDown, X: 5, Y: 5}); got != true {
		t.Errorf("Touch(down outside) = %v, want true", got)
	}
	for _, a := range []Action{ActionMove, ActionUp, ActionCancel} {
		if got := c.Touch(TouchEvent{Action: a, X: 60, Y: 60}); got != true {
			t.Errorf("Touch(%d) = %v, want true", a, got)
		}
	}

	want := []click{{2, 60, 60}, {NoSection, 5, 5}}
	if len(clicks) != len(want) {
		t.Fatalf("clicks = %v, want %v", clicks, want)
	}
	for i := range want {
		if clicks[i] != want[i] {
			t.Errorf("click %d = %+v, want %+v", i, clicks[i], want[i])
		}
	}
}

func TestCircle_TouchWithoutListener(t *testing.T) {
	c := newSized(t, Config{})
	if !c.Touch(TouchEvent{Action: ActionDown, X: 160, Y: 160}) {
		t.Error("Touch() without listener = false, want true")
	}
}

func TestCircle_SetNumberOfSections(t *testing.T) {
	c := newSized(t, Config{SectionColors: "#FF0000|#00FF00|#0000FF"})

	c.SetNumberOfSections(6)
	if got := len(c.Sectors()); got != 6 {
		t.Errorf("len(Sectors()) = %d, want 6", got)
	}
	if got, _ := c.SectionColor(5); got != blue {
		t.Errorf("SectionColor(5) = %v, want blue", got)
	}

	c.SetNumberOfSections(0)
	if got := c.Sections(); got != 6 {
		t.Errorf("Sections() = %d after invalid count, want 6", got)
	}
}

func TestCircle_SetSectionColor(t *testing.T) {
	c := New(Config{})

	c.SetSectionColor(1, "#00FF00")
	c.SetSectionColor(-1, "#FF0000")
	c.SetSectionColor(4, "#FF0000")
	c.SetSectionColor(2, "red") // not a hex value
	c.SetSectionColor(3, "#XYZ")

	want := []color.NRGBA{colors.Transparent, green, colors.Transparent, colors.Transparent}
	for i, w := range want {
		if got, _ := c.SectionColor(i); got != w {
			t.Errorf("SectionColor(%d) = %v, want %v", i, got, w)
		}
	}
	if _, ok := c.SectionColor(4); ok {
		t.Error("SectionColor(4) ok = true for 4 sections")
	}
}

func TestCircle_LineColor(t *testing.T) {
	c := New(Config{LineColor: "#0000FF"})
	if got := c.LineColor(); got != blue {
		t.Errorf("LineColor() = %v, want blue", got)
	}
	c.SetLineHexColor("nope")
	if got := c.LineColor(); got != blue {
		t.Errorf("LineColor() = %v after bad hex, want unchanged", got)
	}
	c.SetLineHexColor("#FF0000")
	if got := c.LineColor(); got != red {
		t.Errorf("LineColor() = %v, want red", got)
	}
	c.SetLineColor(green)
	if got := c.LineColor(); got != green {
		t.Errorf("LineColor() = %v, want green", got)
	}
}

func TestCircle_HighlightAndDim(t *testing.T) {
	c := New(Config{SectionColors: "#C8FF0000|#6400FF00", HighlightColors: "#0000FF"})

	c.highlight(0)
	if got, _ := c.SectionColor(0); got != blue {
		t.Errorf("configured highlight = %v, want blue", got)
	}
	c.highlight(1)
	if got, _ := c.SectionColor(1); got.A != 200 || got.G != 0xFF {
		t.Errorf("derived highlight = %v, want alpha 200 green", got)
	}

	c.dim(0)
	c.dim(1)
	if got, _ := c.SectionColor(0); got != (color.NRGBA{R: 0xFF, A: 200}) {
		t.Errorf("dimmed 0 = %v, want original fill", got)
	}
	if got, _ := c.SectionColor(1); got != (color.NRGBA{G: 0xFF, A: 100}) {
		t.Errorf("dimmed 1 = %v, want original fill", got)
	}

	c.highlight(9) // out of range, skipped
	c.dim(3)       // never highlighted, no-op
}

func TestCircle_DetachedIgnoresUpdates(t *testing.T) {
	c := New(Config{SectionColors: "#FF0000"})
	c.Detach()
	if c.Alive() {
		t.Fatal("Alive() = true after Detach")
	}
	c.highlight(0)
	if got, _ := c.SectionColor(0); got != red {
		t.Errorf("SectionColor(0) = %v, want unchanged red", got)
	}
}
