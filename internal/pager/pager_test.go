package pager

import (
	"strings"
	"testing"

	"github.com/rcliao/msl-script/internal/script"
)

func TestSplit_Empty(t *testing.T) {
	if got := Split("", DefaultOptions()); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := Split(`\p\c`, DefaultOptions()); got != nil {
		t.Errorf("expected nil for markers only, got %v", got)
	}
}

func TestSplit_SinglePage(t *testing.T) {
	pages := Split("Hello there.", DefaultOptions())
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Width != 12 || pages[0].Lines != 1 {
		t.Errorf("unexpected metrics %+v", pages[0])
	}
	if pages[0].Overflows {
		t.Error("short line should fit")
	}
}

func TestSplit_WaitAndClear(t *testing.T) {
	pages := Split(`First.`+"\n\n"+`Second.\cThird.\p`+"\n\n", DefaultOptions())
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, want := range []string{"First.", "Second.", `Third.\p`} {
		if pages[i].Text != want {
			t.Errorf("page %d: expected %q, got %q", i, want, pages[i].Text)
		}
		if pages[i].Seq != i {
			t.Errorf("page %d: expected seq %d, got %d", i, i, pages[i].Seq)
		}
	}
	if pages[2].Width != 6 {
		t.Errorf("delay marker should take no width, got %d", pages[2].Width)
	}
}

func TestSplit_FullWidthCountsDouble(t *testing.T) {
	pages := Split("まほう", DefaultOptions())
	if pages[0].Width != 6 {
		t.Errorf("expected width 6, got %d", pages[0].Width)
	}
}

func TestCheck(t *testing.T) {
	opts := Options{MaxWidth: 10, MaxLines: 2}
	long := strings.Repeat("x", 11)
	text := "ok" + "\n\n" + long + "\n\n" + "a\nb\nc"

	over := Check(text, opts)
	if len(over) != 2 {
		t.Fatalf("expected 2 overflowing pages, got %d", len(over))
	}
	if over[0].Text != long {
		t.Errorf("expected wide page first, got %q", over[0].Text)
	}
	if over[1].Lines != 3 {
		t.Errorf("expected 3 lines, got %d", over[1].Lines)
	}
}

func TestSplit_DecodedMarkers(t *testing.T) {
	text := script.DecodeString([]byte("A\x08B\x0CC\x0DD\x00"))

	pages := Split(text, DefaultOptions())
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %+v", pages)
	}
	if pages[0].Text != "A" || pages[1].Text != "B" {
		t.Errorf("unexpected pages %+v", pages)
	}
	if pages[2].Text != `C\pD` || pages[2].Width != 2 {
		t.Errorf("expected delay marker kept but unmeasured, got %+v", pages[2])
	}
}
