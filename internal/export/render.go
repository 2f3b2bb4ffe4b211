// Package export renders the results of a split as a shareable image.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/mmynk/mealsplit/internal/calculator"
)

const (
	padding    = 16
	lineHeight = 20
	columnGap  = 32
	minWidth   = 280
	fontSize   = 13
)

// Limits on the rendered card. MaxRows covers the title, rules, total and
// unassigned rows as well as one row per participant.
const (
	MaxRows   = 200
	MaxPixels = 8_000_000
)

// ErrTooLarge is returned when the card would exceed MaxRows or MaxPixels.
var ErrTooLarge = errors.New("image too large")

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// newFace returns a Go Regular face. Faces are not safe for concurrent use,
// so each render gets its own.
func newFace() (font.Face, error) {
	f, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

var (
	background = color.RGBA{R: 0xfa, G: 0xf7, B: 0xf2, A: 0xff}
	foreground = color.RGBA{R: 0x2b, G: 0x2a, B: 0x28, A: 0xff}
	muted      = color.RGBA{R: 0x8a, G: 0x86, B: 0x80, A: 0xff}
)

// MaxPixelRatio bounds the upscaling factor.
const MaxPixelRatio = 4

// Options controls the rendered card.
type Options struct {
	// Title is drawn at the top. Defaults to "The Split".
	Title string
	// Currency is prefixed to every amount. Glyphs missing from Go Regular
	// render as boxes.
	Currency string
	// PixelRatio scales the output image. Defaults to 2.
	PixelRatio int
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "The Split"
	}
	if o.PixelRatio < 1 {
		o.PixelRatio = 2
	}
	if o.PixelRatio > MaxPixelRatio {
		o.PixelRatio = MaxPixelRatio
	}
	return o
}

type row struct {
	left, right string
	dim         bool
	rule        bool
}

func layout(alloc calculator.Allocation, opts Options) []row {
	amount := func(v float64) string { return opts.Currency + calculator.FormatAmount(v) }

	rows := []row{
		{left: opts.Title},
		{rule: true},
		{left: "Total Bill", right: amount(alloc.Total)},
		{rule: true},
	}
	if len(alloc.Owed) == 0 {
		rows = append(rows, row{left: "No friends added yet", dim: true})
	}
	for _, share := range alloc.Owed {
		rows = append(rows, row{left: share.Participant, right: amount(share.Amount)})
	}
	if unassigned := alloc.Unassigned(); math.Abs(unassigned) >= 0.005 {
		rows = append(rows, row{left: "Unassigned", right: amount(unassigned), dim: true})
	}
	return rows
}

// Render draws the results card and encodes it as PNG.
func Render(alloc calculator.Allocation, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	rows := layout(alloc, opts)
	if len(rows) > MaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooLarge, len(rows), MaxRows)
	}

	face, err := newFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	measure := &font.Drawer{Face: face}
	width := minWidth
	for _, r := range rows {
		w := padding*2 + measure.MeasureString(r.left).Ceil()
		if r.right != "" {
			w += columnGap + measure.MeasureString(r.right).Ceil()
		}
		width = max(width, w)
	}
	height := padding*2 + len(rows)*lineHeight
	if pixels := width * height * opts.PixelRatio * opts.PixelRatio; pixels > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d at ratio %d", ErrTooLarge, width, height, opts.PixelRatio)
	}
	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for i, r := range rows {
		top := padding + i*lineHeight
		if r.rule {
			y := top + lineHeight/2
			draw.Draw(img, image.Rect(padding, y, width-padding, y+1), image.NewUniform(muted), image.Point{}, draw.Src)
			continue
		}

		src := image.NewUniform(foreground)
		if r.dim {
			src = image.NewUniform(muted)
		}
		d := &font.Drawer{Dst: img, Src: src, Face: face}
		baseline := top + (lineHeight-textHeight)/2 + metrics.Ascent.Ceil()
		d.Dot = fixed.P(padding, baseline)
		d.DrawString(r.left)
		if r.right != "" {
			d.Dot = fixed.P(width-padding-d.MeasureString(r.right).Ceil(), baseline)
			d.DrawString(r.right)
		}
	}

	var out image.Image = img
	if opts.PixelRatio > 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, width*opts.PixelRatio, height*opts.PixelRatio))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
