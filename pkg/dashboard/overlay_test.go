package dashboard

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestPlaceOverlayCentersAndKeepsBackground(t *testing.T) {
	bg := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbbbbbbbb",
		"cccccccccc",
	}, "\n")
	out := placeOverlay(10, 3, "XX", bg)
	lines := strings.Split(ansi.Strip(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0] != "aaaaaaaaaa" || lines[2] != "cccccccccc" {
		t.Errorf("background rows changed: %q", lines)
	}
	if lines[1] != "bbbbXXbbbb" {
		t.Errorf("overlay row = %q", lines[1])
	}
}

func TestPlaceOverlayPadsShortBackground(t *testing.T) {
	out := placeOverlay(6, 4, "ab\ncd", "x")
	lines := strings.Split(ansi.Strip(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[1] != "  ab" || lines[2] != "  cd" {
		t.Errorf("lines = %q", lines)
	}
}

func TestScrollLinesClampsOffset(t *testing.T) {
	s := "1\n2\n3\n4\n5"
	if got := scrollLines(s, 0, 10); got != s {
		t.Errorf("short content changed: %q", got)
	}
	got := strings.Split(ansi.Strip(scrollLines(s, 99, 3)), "\n")
	if len(got) != 3 || got[2] != "5" {
		t.Errorf("clamped scroll = %q", got)
	}
	if !strings.Contains(got[0], "more above") {
		t.Errorf("missing above indicator: %q", got[0])
	}
}

func TestWrapTextFitsWidth(t *testing.T) {
	got := wrapText("create campaign: HTTP 422: name already used by another campaign", 20)
	for _, l := range strings.Split(got, "\n") {
		if w := ansi.StringWidth(l); w > 20 {
			t.Errorf("line %q is %d wide", l, w)
		}
	}
	if !strings.Contains(strings.ReplaceAll(got, "\n", " "), "already used") {
		t.Errorf("text lost in wrap: %q", got)
	}
	if wrapText("short", 0) != "short" {
		t.Error("zero width should leave text alone")
	}
}
