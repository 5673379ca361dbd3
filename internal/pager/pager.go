// Package pager splits dialogue text into the textbox pages the game shows.
package pager

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/rcliao/msl-script/internal/script"
)

const (
	DefaultMaxWidth = 36
	DefaultMaxLines = 3
)

// Options configures the textbox size. Width is in display cells: a
// full-width character takes two.
type Options struct {
	MaxWidth int
	MaxLines int
}

// DefaultOptions returns the size of the in-game dialogue box.
func DefaultOptions() Options {
	return Options{
		MaxWidth: DefaultMaxWidth,
		MaxLines: DefaultMaxLines,
	}
}

// Page is one textbox worth of text.
type Page struct {
	Seq       int
	Text      string
	Lines     int
	Width     int
	Overflows bool
}

// Split breaks text into pages at input waits and textbox clears. Delay
// markers stay in the text but take no space.
func Split(text string, opts Options) []Page {
	if opts.MaxWidth == 0 {
		opts = DefaultOptions()
	}
	if strings.TrimSpace(stripMarkers(text)) == "" {
		return nil
	}

	var pages []Page
	for _, waitPart := range strings.Split(text, script.MarkerWait) {
		for _, part := range strings.Split(waitPart, script.MarkerClear) {
			if strings.TrimSpace(stripMarkers(part)) == "" {
				continue
			}
			p := measure(part, opts)
			p.Seq = len(pages)
			pages = append(pages, p)
		}
	}
	return pages
}

// Check returns the pages of text that do not fit the textbox.
func Check(text string, opts Options) []Page {
	var over []Page
	for _, p := range Split(text, opts) {
		if p.Overflows {
			over = append(over, p)
		}
	}
	return over
}

func measure(text string, opts Options) Page {
	p := Page{Text: text}
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	p.Lines = len(lines)
	for _, line := range lines {
		if w := runewidth.StringWidth(stripMarkers(line)); w > p.Width {
			p.Width = w
		}
	}
	p.Overflows = p.Width > opts.MaxWidth || (opts.MaxLines > 0 && p.Lines > opts.MaxLines)
	return p
}

func stripMarkers(s string) string {
	s = strings.ReplaceAll(s, script.MarkerDelay, "")
	return strings.ReplaceAll(s, script.MarkerClear, "")
}
