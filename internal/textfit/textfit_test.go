package textfit

import (
	"math"
	"strings"
	"testing"
)

func TestFit(t *testing.T) {
	tcs := []struct {
		text  string
		width float64
		want  float64
	}{
		{"", 46, DefaultSize},
		{"A", 46, MaxSize},
		{"HELLO", 47, MaxSize},
		{"ABCDEFGHIJKL", 46, 46 / (12 * CharWidthFactor)},
		{strings.Repeat("W", 20), 46, MinSize},
		{strings.Repeat("W", 200), 46, MinSize},
		{"ÄÖÜ", 12, 12 / (3 * CharWidthFactor)},
	}

	for _, tc := range tcs {
		if got := Fit(tc.text, tc.width); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Fit(%q,%v)=%v; want %v", tc.text, tc.width, got, tc.want)
		}
	}
}

func TestFit_MonotonicInLength(t *testing.T) {
	for _, width := range []float64{10, 23.5, 46, 92} {
		prev := math.Inf(1)
		for n := 1; n <= 40; n++ {
			got := Fit(strings.Repeat("x", n), width)
			if got > prev {
				t.Fatalf("width %v: Fit(len %d)=%v grew from %v", width, n, got, prev)
			}
			if got < MinSize || got > MaxSize {
				t.Fatalf("width %v: Fit(len %d)=%v outside [%v,%v]", width, n, got, MinSize, MaxSize)
			}
			prev = got
		}
	}
}

func TestFitShared(t *testing.T) {
	const width = 46.0
	long := "ABCDEFGHIJKLMNOP"
	short := "HI"

	tcs := []struct {
		top, bottom string
		want        float64
	}{
		{"", "", DefaultSize},
		{short, "", Fit(short, width)},
		{"", long, Fit(long, width)},
		{long, short, math.Max(Fit(long, width), Fit(short, width))},
		{long, long, Fit(long, width)},
	}
	for _, tc := range tcs {
		if got := FitShared(tc.top, tc.bottom, width); got != tc.want {
			t.Fatalf("FitShared(%q,%q)=%v; want %v", tc.top, tc.bottom, got, tc.want)
		}
	}
}

func TestWidth_FitsAvailable(t *testing.T) {
	for n := 1; n <= 15; n++ {
		text := strings.Repeat("M", n)
		size := Fit(text, 46)
		if w := Width(text, size); w > 46+1e-9 {
			t.Fatalf("len %d: width %v exceeds 46 at size %v", n, w, size)
		}
	}
}
