package card

import (
	"errors"
	"strings"
	"testing"
)

func TestParseMode_RoundTrip(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", m, err)
		}
		if got != m {
			t.Fatalf("ParseMode(%q)=%v; want %v", m, got, m)
		}
	}

	if _, err := ParseMode("circle"); !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("ParseMode(circle) err=%v; want ErrUnsupportedMode", err)
	}
}

func TestMode_UnmarshalText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("pendant-text")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if m != PendantText {
		t.Fatalf("mode=%v; want pendant-text", m)
	}
	if err := m.UnmarshalText([]byte("Square")); err == nil {
		t.Fatalf("UnmarshalText(Square) succeeded; mode names are case-sensitive")
	}
}

func TestNormalize_TextTooLong(t *testing.T) {
	cfg := DefaultConfig().WithMode(RectangleText).WithText(strings.Repeat("x", 21), "")
	if _, _, err := cfg.Normalize(); !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("err=%v; want ErrTextTooLong", err)
	}

	// 20 runes of multi-byte text is within the limit.
	cfg = DefaultConfig().WithMode(RectangleText).WithText(strings.Repeat("ü", 20), "")
	if _, _, err := cfg.Normalize(); err != nil {
		t.Fatalf("20 runes: %v", err)
	}
}

func TestNormalize_ConflictWarnings(t *testing.T) {
	tcs := []struct {
		mode     Mode
		bottom   string
		top      string
		warnings int
		wantBot  string
		wantTop  string
	}{
		{mode: Square, bottom: "HI", warnings: 1},
		{mode: Pendant, bottom: "HI", top: "TOP", warnings: 2},
		{mode: RectangleText, bottom: "HI", top: "TOP", warnings: 1, wantBot: "HI"},
		{mode: PendantText, bottom: " HI ", warnings: 0, wantBot: "HI"},
		{mode: RectangleText2x, bottom: "B", top: "T", warnings: 0, wantBot: "B", wantTop: "T"},
	}

	for _, tc := range tcs {
		got, warnings, err := DefaultConfig().WithMode(tc.mode).WithText(tc.bottom, tc.top).Normalize()
		if err != nil {
			t.Fatalf("%v: %v", tc.mode, err)
		}
		if len(warnings) != tc.warnings {
			t.Fatalf("%v: warnings=%v; want %d", tc.mode, warnings, tc.warnings)
		}
		if got.TextBottom != tc.wantBot || got.TextTop != tc.wantTop {
			t.Fatalf("%v: text=(%q,%q); want (%q,%q)", tc.mode, got.TextBottom, got.TextTop, tc.wantBot, tc.wantTop)
		}
	}
}

func TestNormalize_InvalidValues(t *testing.T) {
	tcs := []struct {
		name string
		cfg  Config
		want error
	}{
		{"rotation", DefaultConfig().WithRotation(90), ErrInvalidRotation},
		{"mode", DefaultConfig().WithMode(Mode(42)), ErrUnsupportedMode},
		{"scale", DefaultConfig().WithScale(0), ErrInvalidParameter},
		{"thickness", DefaultConfig().WithThickness(-1, 0.5), ErrInvalidParameter},
	}

	for _, tc := range tcs {
		if _, _, err := tc.cfg.Normalize(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err=%v; want %v", tc.name, err, tc.want)
		}
	}
}

func TestDefaultRotation(t *testing.T) {
	want := map[Mode]int{
		Square:          0,
		Pendant:         0,
		RectangleText:   0,
		PendantText:     180,
		RectangleText2x: 180,
	}
	for m, deg := range want {
		if got := DefaultRotation(m); got != deg {
			t.Fatalf("DefaultRotation(%v)=%d; want %d", m, got, deg)
		}
	}
}
