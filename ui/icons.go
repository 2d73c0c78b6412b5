package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// IconConfig defines the configuration for tray icon generation.
type IconConfig struct {
	Size        int
	FillColor   color.RGBA
	BorderColor color.RGBA
	ArrowColor  color.RGBA
	ShowArrows  bool
}

// DefaultActiveIconConfig returns the config used while transfers run.
func DefaultActiveIconConfig() IconConfig {
	return IconConfig{
		Size:        22,
		FillColor:   color.RGBA{198, 53, 34, 255},   // Transmission red
		BorderColor: color.RGBA{150, 40, 26, 255},   // Darker red
		ArrowColor:  color.RGBA{255, 255, 255, 255}, // White
		ShowArrows:  true,
	}
}

// DefaultIdleIconConfig returns the config used with nothing moving.
func DefaultIdleIconConfig() IconConfig {
	return IconConfig{
		Size:        22,
		FillColor:   color.RGBA{117, 117, 117, 255}, // Dark gray
		BorderColor: color.RGBA{90, 90, 90, 255},    // Darker gray
		ArrowColor:  color.RGBA{230, 230, 230, 255}, // Near white
		ShowArrows:  false,
	}
}

// IconGenerator renders PNG tray icons.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates an icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() []byte {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawDisc(img)
	if g.config.ShowArrows {
		g.drawArrows(img)
	} else {
		g.drawBar(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// drawDisc fills a bordered circle covering the icon.
func (g *IconGenerator) drawDisc(img *image.RGBA) {
	size := g.config.Size
	c := float64(size-1) / 2
	r := c - 1
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			d := dx*dx + dy*dy
			switch {
			case d <= (r-1.5)*(r-1.5):
				img.SetRGBA(x, y, g.config.FillColor)
			case d <= r*r:
				img.SetRGBA(x, y, g.config.BorderColor)
			}
		}
	}
}

// drawArrows renders an up and a down arrow side by side.
func (g *IconGenerator) drawArrows(img *image.RGBA) {
	size := g.config.Size
	mid := size / 2
	top := size / 4
	bottom := size - top

	// Down arrow on the left half.
	g.drawArrow(img, mid-size/5, top, bottom, true)
	// Up arrow on the right half.
	g.drawArrow(img, mid+size/5, top, bottom, false)
}

func (g *IconGenerator) drawArrow(img *image.RGBA, x, top, bottom int, down bool) {
	for y := top; y <= bottom; y++ {
		img.SetRGBA(x, y, g.config.ArrowColor)
	}
	// Arrowhead.
	for i := 1; i <= 2; i++ {
		if down {
			img.SetRGBA(x-i, bottom-i, g.config.ArrowColor)
			img.SetRGBA(x+i, bottom-i, g.config.ArrowColor)
		} else {
			img.SetRGBA(x-i, top+i, g.config.ArrowColor)
			img.SetRGBA(x+i, top+i, g.config.ArrowColor)
		}
	}
}

// drawBar renders a horizontal pause-style bar for the idle icon.
func (g *IconGenerator) drawBar(img *image.RGBA) {
	size := g.config.Size
	mid := size / 2
	for x := size / 4; x <= size-size/4; x++ {
		img.SetRGBA(x, mid-1, g.config.ArrowColor)
		img.SetRGBA(x, mid, g.config.ArrowColor)
	}
}

// GenerateActiveIcon returns the tray icon shown while transferring.
func GenerateActiveIcon() []byte {
	return NewIconGenerator(DefaultActiveIconConfig()).Generate()
}

// GenerateIdleIcon returns the tray icon shown when idle.
func GenerateIdleIcon() []byte {
	return NewIconGenerator(DefaultIdleIconConfig()).Generate()
}
