package colors

import (
	"errors"
	"image/color"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#FF0000", color.NRGBA{R: 0xff, A: 0xff}},
		{"#80102030", color.NRGBA{A: 0x80, R: 0x10, G: 0x20, B: 0x30}},
		{"#00000000", color.NRGBA{}},
		{" #0000ff ", color.NRGBA{B: 0xff, A: 0xff}},
		{"red", color.NRGBA{R: 0xff, A: 0xff}},
		{"LightGrey", color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}},
		{"transparent", color.NRGBA{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "#", "#12345", "#GGGGGG", "#123456789", "chartreuse-ish"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidColor", in, err)
		}
	}
}

func TestHex(t *testing.T) {
	c := color.NRGBA{A: 0x80, R: 0x10, G: 0x20, B: 0xff}
	if got := Hex(c); got != "#801020FF" {
		t.Errorf("Hex() = %q, want %q", got, "#801020FF")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("#FF0000| #00FF00 |#0000FF")
	want := []string{"#FF0000", "#00FF00", "#0000FF"}
	if len(got) != len(want) {
		t.Fatalf("SplitList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := SplitList("red|green"); got != nil {
		t.Errorf("SplitList without # = %v, want nil", got)
	}
}

func TestPalette_Recycles(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	blue := color.NRGBA{B: 0xff, A: 0xff}

	got := Palette([]string{"#FF0000", "#0000FF"}, 5, Transparent, nil)
	want := []color.NRGBA{red, blue, red, blue, red}
	if len(got) != len(want) {
		t.Fatalf("len(Palette()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Palette()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPalette_MalformedFallsBack(t *testing.T) {
	fallback := color.NRGBA{G: 0x11, A: 0xff}
	got := Palette([]string{"#FF0000", "#nothex"}, 2, fallback, nil)
	if got[1] != fallback {
		t.Errorf("Palette()[1] = %v, want fallback %v", got[1], fallback)
	}
}

func TestPalette_Empty(t *testing.T) {
	if got := Palette(nil, 4, Transparent, nil); got != nil {
		t.Errorf("Palette(nil) = %v, want nil", got)
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		alpha uint8
		want  uint8
	}{
		{200, 50},
		{100, 200},
		{0, 100},
		{151, 1},
		{150, 250},
		{255, 105},
	}

	for _, tt := range tests {
		c := color.NRGBA{R: 1, G: 2, B: 3, A: tt.alpha}
		got := Highlight(c)
		if got.A != tt.want {
			t.Errorf("Highlight(alpha=%d).A = %d, want %d", tt.alpha, got.A, tt.want)
		}
		if got.R != 1 || got.G != 2 || got.B != 3 {
			t.Errorf("Highlight(alpha=%d) changed RGB to %v", tt.alpha, got)
		}
	}
}
