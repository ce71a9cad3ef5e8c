package naming

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLabels(t *testing.T) {
	sizes := []struct {
		scale float64
		want  string
	}{
		{0.25, "medium"}, {0.4, "medium"}, {0.5, "small"}, {0.75, "medium"}, {1, "medium"}, {2, "large"}, {3, "medium"},
	}
	for _, tc := range sizes {
		if got := SizeLabel(tc.scale); got != tc.want {
			t.Fatalf("SizeLabel(%v)=%q; want %q", tc.scale, got, tc.want)
		}
	}

	thick := []struct {
		h    float64
		want string
	}{
		{0.5, "thin"}, {0.6, "thin"}, {1.0, "medium"}, {1.25, "medium"}, {1.4, "thick"}, {2, "thick"},
	}
	for _, tc := range thick {
		if got := ThicknessLabel(tc.h); got != tc.want {
			t.Fatalf("ThicknessLabel(%v)=%q; want %q", tc.h, got, tc.want)
		}
	}
}

func TestUniqueDir_Sequence(t *testing.T) {
	base := t.TempDir()
	want := []string{"foo-medium-thin", "foo-medium-thin (1)", "foo-medium-thin (2)"}

	for _, w := range want {
		dir, err := UniqueDir(base, "foo", 0.5, 1.0)
		if err != nil {
			t.Fatalf("UniqueDir: %v", err)
		}
		if filepath.Base(dir) != w {
			t.Fatalf("UniqueDir=%q; want %q", filepath.Base(dir), w)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "x"), nil, 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestUniqueDir_ReusesEmpty(t *testing.T) {
	base := t.TempDir()
	empty := filepath.Join(base, "bar-large-thick")
	if err := os.MkdirAll(empty, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	dir, err := UniqueDir(base, "bar", 1.5, 2.0)
	if err != nil {
		t.Fatalf("UniqueDir: %v", err)
	}
	if dir != empty {
		t.Fatalf("UniqueDir=%q; want reuse of %q", dir, empty)
	}
}

func TestBaseName(t *testing.T) {
	tcs := []struct {
		in     string
		isText bool
		want   string
	}{
		{"https://example.com/a?b=1", true, "https___example_com_a_b_1"},
		{"www.straße.de", true, "www_straße_de"},
		{"/tmp/codes/menu.qr.png", false, "menu.qr"},
		{"poster.jpg", false, "poster"},
	}
	for _, tc := range tcs {
		if got := BaseName(tc.in, tc.isText); got != tc.want {
			t.Fatalf("BaseName(%q)=%q; want %q", tc.in, got, tc.want)
		}
	}

	long := BaseName("https://"+strings.Repeat("a", 80)+".com", true)
	if len([]rune(long)) != MaxBaseName {
		t.Fatalf("long name has %d runes; want %d", len([]rune(long)), MaxBaseName)
	}
}

func TestLocker_SerializesSameName(t *testing.T) {
	var l Locker
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("same")
			defer unlock()
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	if maxInside.Load() != 1 {
		t.Fatalf("max concurrent holders=%d; want 1", maxInside.Load())
	}

	// Different names do not block each other.
	a := l.Lock("a")
	b := l.Lock("b")
	b()
	a()
}
