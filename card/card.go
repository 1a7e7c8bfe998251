// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package card renders a CCS811 reading as a small status card image, to be
// drawn on a display.Drawer or served as PNG.
package card

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/GermanBionicSystems/ccs811/ccs811"
	"github.com/GermanBionicSystems/ccs811/gauge"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Reading is the content of a card.
type Reading struct {
	Env     ccs811.Env
	Stats   ccs811.Stats
	Address uint16
	Time    time.Time
}

var (
	parseOnce sync.Once
	ttf       *truetype.Font
	parseErr  error
)

func face(size float64) (font.Face, error) {
	parseOnce.Do(func() {
		ttf, parseErr = truetype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return truetype.NewFace(ttf, &truetype.Options{Size: size}), nil
}

// Render draws r on a w×h image: the eCO2 value on a background coloured
// by its air quality band, the TVOC value and the read counters.
func Render(r Reading, w, h int) (image.Image, error) {
	dc, err := render(r, w, h)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG renders r and encodes it as PNG into out.
func WritePNG(out io.Writer, r Reading, w, h int) error {
	dc, err := render(r, w, h)
	if err != nil {
		return err
	}
	return dc.EncodePNG(out)
}

func render(r Reading, w, h int) (*gg.Context, error) {
	if w < 64 || h < 32 {
		return nil, errors.New("card: image too small")
	}
	big, err := face(float64(h) / 4)
	if err != nil {
		return nil, fmt.Errorf("card: %w", err)
	}
	small, err := face(float64(h) / 10)
	if err != nil {
		return nil, fmt.Errorf("card: %w", err)
	}

	fw, fh := float64(w), float64(h)
	pad := fh / 16
	band := gauge.BandOf(r.Env.ECO2)

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetColor(band.Color())
	dc.DrawRoundedRectangle(pad, pad, fw-2*pad, fh/2-pad, pad)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(big)
	dc.DrawStringAnchored(r.Env.ECO2.String(), fw/2, fh/4+pad/2, 0.5, 0.5)

	dc.SetFontFace(small)
	lines := []string{
		fmt.Sprintf("TVOC %s  air %s", r.Env.TVOC, band),
		fmt.Sprintf("reads %d  cached %d  errors %d", r.Stats.Read, r.Stats.ReadSuccessCached, r.Stats.Errors()),
		fmt.Sprintf("0x%02x  %s", r.Address, r.Time.Format("15:04:05")),
	}
	y := fh/2 + 2*pad
	_, lh := dc.MeasureString("M")
	for _, l := range lines {
		dc.DrawStringAnchored(l, pad, y, 0, 1)
		y += lh * 1.5
	}
	return dc, nil
}
