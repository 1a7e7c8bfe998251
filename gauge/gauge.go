// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gauge implements a 1D display.Drawer that shows an eCO2 level as a
// coloured LED bar on the terminal using ANSI color codes.
package gauge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/ccs811/ccs811"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Band is an indoor air quality class derived from eCO2.
type Band int

const (
	Good Band = iota
	Moderate
	Poor
	Bad
)

var bandNames = []string{"good", "moderate", "poor", "bad"}

func (b Band) String() string {
	if b >= 0 && int(b) < len(bandNames) {
		return bandNames[b]
	}
	return fmt.Sprintf("Band(%d)", int(b))
}

// Color is the colour used to draw the band.
func (b Band) Color() color.NRGBA {
	switch b {
	case Good:
		return color.NRGBA{0x00, 0xc0, 0x00, 0xff}
	case Moderate:
		return color.NRGBA{0xe0, 0xd0, 0x00, 0xff}
	case Poor:
		return color.NRGBA{0xff, 0x80, 0x00, 0xff}
	default:
		return color.NRGBA{0xe0, 0x00, 0x00, 0xff}
	}
}

// BandOf returns the air quality band of an eCO2 concentration.
func BandOf(c ccs811.CO2) Band {
	switch {
	case c < 800:
		return Good
	case c < 1000:
		return Moderate
	case c < 1500:
		return Poor
	default:
		return Bad
	}
}

// Range of eCO2 values spread over the bar. The CCS811 never reports less
// than 400ppm.
const (
	minECO2 ccs811.CO2 = 400
	maxECO2 ccs811.CO2 = 2000
)

// Opts represents the options available for this display.
type Opts struct {
	// Number of LEDs in the bar.
	X       int
	Palette *ansi256.Palette
	// Writer defaults to a colorable stdout.
	Writer io.Writer

	_ struct{}
}

// Dev is a 1D LED bar emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette

	pixels []byte
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		l:       opts.X,
		palette: *p,
		pixels:  make([]byte, 3*opts.X),
	}
}

func (d *Dev) String() string {
	return "Gauge"
}

// Halt implements conn.Resource.
//
// It resets the terminal colours so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// ShowECO2 lights a number of LEDs proportional to c, all in the colour of
// its band, followed by the value.
func (d *Dev) ShowECO2(c ccs811.CO2) error {
	lit := d.litLEDs(c)
	col := BandOf(c).Color()
	for i := 0; i < d.l; i++ {
		var p color.NRGBA
		if i < lit {
			p = col
		}
		d.pixels[3*i] = p.R
		d.pixels[3*i+1] = p.G
		d.pixels[3*i+2] = p.B
	}
	_, err := d.refresh(fmt.Sprintf("%s %s", c, BandOf(c)))
	return err
}

// litLEDs returns how many LEDs represent c; at least one is always lit.
func (d *Dev) litLEDs(c ccs811.CO2) int {
	if c <= minECO2 {
		return min(1, d.l)
	}
	if c >= maxECO2 {
		return d.l
	}
	n := int(c-minECO2) * d.l / int(maxECO2-minECO2)
	return max(n, min(1, d.l))
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("gauge: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh("")
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.l, Y: 1}}
}

// Draw implements display.Drawer. Only the first line of src is used.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	_, err := d.refresh("")
	return err
}

func (d *Dev) refresh(label string) (int, error) {
	// Rewrite the same console line on every refresh.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < len(d.pixels)/3; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, _ = d.buf.WriteString(label)
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
