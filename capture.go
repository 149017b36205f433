package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/vt"
	"github.com/lucasb-eyer/go-colorful"
)

// ── Party Image Capture ────────────────────────────────────────────
//
// The party grid is rendered exactly as the TUI draws it, replayed through
// a virtual terminal to get the final cell layout, then rasterized as a
// block image: borders become lines, every other glyph a solid block.

const (
	cellWidth  = 4
	cellHeight = 8
)

type CaptureOptions struct {
	Scale      int
	Background color.RGBA
	Foreground color.RGBA
	Accent     color.RGBA
}

func parseHexColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func CaptureOptionsFromConfig(cfg CaptureConfig) (CaptureOptions, error) {
	opts := CaptureOptions{Scale: cfg.Scale}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	var err error
	if opts.Background, err = parseHexColor(cfg.Background); err != nil {
		return CaptureOptions{}, err
	}
	if opts.Foreground, err = parseHexColor(cfg.Foreground); err != nil {
		return CaptureOptions{}, err
	}
	if opts.Accent, err = parseHexColor(cfg.Accent); err != nil {
		return CaptureOptions{}, err
	}
	return opts, nil
}

func captureFileName(p Party, now time.Time) string {
	return fmt.Sprintf("party-%d-%s.png", p.ID, now.Format("20060102-150405"))
}

// captureScreen replays text through a virtual terminal sized to fit it
// and returns the visible screen as plain lines. The extra column keeps
// full-width lines clear of autowrap.
func captureScreen(text string) []string {
	cols := ansiWidth(text) + 1
	rows := max(1, strings.Count(text, "\n")+1)

	em := vt.NewSafeEmulator(cols, rows)
	defer em.Close()
	_, _ = em.Write([]byte(strings.ReplaceAll(text, "\n", "\r\n")))

	screen := strings.ReplaceAll(em.Render(), "\r\n", "\n")
	lines := strings.Split(ansi.Strip(screen), "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	return lines
}

func ansiWidth(text string) int {
	w := 0
	for _, line := range strings.Split(text, "\n") {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}

// CaptureParty draws the party as an image.
func CaptureParty(p Party, opts CaptureOptions) (*image.RGBA, error) {
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("capture scale must be positive, got %d", opts.Scale)
	}
	text := renderCaptureCard(p)
	lines := captureScreen(text)

	cols := 0
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
		cols = max(cols, ansi.StringWidth(lines[i]))
	}
	cw, ch := cellWidth*opts.Scale, cellHeight*opts.Scale
	img := image.NewRGBA(image.Rect(0, 0, max(1, cols)*cw, max(1, len(lines))*ch))
	fillRect(img, img.Bounds(), opts.Background)

	for row, line := range lines {
		col := 0
		for _, r := range line {
			w := ansi.StringWidth(string(r))
			if w == 0 {
				continue
			}
			cell := image.Rect(col*cw, row*ch, (col+w)*cw, (row+1)*ch)
			drawGlyph(img, cell, r, opts)
			col += w
		}
	}
	return img, nil
}

// boxArms maps border runes to the arms they connect: left, right, up, down.
var boxArms = map[rune][4]bool{
	'─': {true, true, false, false},
	'═': {true, true, false, false},
	'│': {false, false, true, true},
	'║': {false, false, true, true},
	'╭': {false, true, false, true},
	'╔': {false, true, false, true},
	'┌': {false, true, false, true},
	'╮': {true, false, false, true},
	'╗': {true, false, false, true},
	'┐': {true, false, false, true},
	'╰': {false, true, true, false},
	'╚': {false, true, true, false},
	'└': {false, true, true, false},
	'╯': {true, false, true, false},
	'╝': {true, false, true, false},
	'┘': {true, false, true, false},
}

func drawGlyph(img *image.RGBA, cell image.Rectangle, r rune, opts CaptureOptions) {
	if r == ' ' {
		return
	}
	if arms, ok := boxArms[r]; ok {
		t := max(1, opts.Scale)
		cx := (cell.Min.X + cell.Max.X) / 2
		cy := (cell.Min.Y + cell.Max.Y) / 2
		if arms[0] {
			fillRect(img, image.Rect(cell.Min.X, cy-t/2, cx+t-t/2, cy+t-t/2), opts.Accent)
		}
		if arms[1] {
			fillRect(img, image.Rect(cx-t/2, cy-t/2, cell.Max.X, cy+t-t/2), opts.Accent)
		}
		if arms[2] {
			fillRect(img, image.Rect(cx-t/2, cell.Min.Y, cx+t-t/2, cy+t-t/2), opts.Accent)
		}
		if arms[3] {
			fillRect(img, image.Rect(cx-t/2, cy-t/2, cx+t-t/2, cell.Max.Y), opts.Accent)
		}
		return
	}
	inset := opts.Scale
	fillRect(img, image.Rect(cell.Min.X+inset/2, cell.Min.Y+2*inset, cell.Max.X-inset/2, cell.Max.Y-inset), opts.Foreground)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// WriteCapturePNG encodes img to path, creating parent directories.
func WriteCapturePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
