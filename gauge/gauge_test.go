// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gauge

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/ccs811/ccs811"
)

func TestBandOf(t *testing.T) {
	data := []struct {
		c    ccs811.CO2
		band Band
	}{
		{400, Good},
		{799, Good},
		{800, Moderate},
		{999, Moderate},
		{1000, Poor},
		{1499, Poor},
		{1500, Bad},
		{8192, Bad},
	}
	for _, line := range data {
		if b := BandOf(line.c); b != line.band {
			t.Errorf("BandOf(%s) = %s, expected %s", line.c, b, line.band)
		}
	}
	if s := Band(7).String(); s != "Band(7)" {
		t.Errorf("%q", s)
	}
}

func TestLitLEDs(t *testing.T) {
	d := New(&Opts{X: 16, Writer: &bytes.Buffer{}})
	data := []struct {
		c   ccs811.CO2
		lit int
	}{
		{0, 1},
		{400, 1},
		{410, 1},
		{1200, 8},
		{2000, 16},
		{9000, 16},
	}
	for _, line := range data {
		if n := d.litLEDs(line.c); n != line.lit {
			t.Errorf("litLEDs(%s) = %d, expected %d", line.c, n, line.lit)
		}
	}
}

func TestShowECO2(t *testing.T) {
	buf := &bytes.Buffer{}
	d := New(&Opts{X: 4, Writer: buf})
	if err := d.ShowECO2(1200); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\r\033[0m") || !strings.HasSuffix(out, "1200ppm poor") {
		t.Errorf("unexpected output %q", out)
	}
	// 2 of 4 LEDs lit in the poor colour.
	col := Poor.Color()
	if d.pixels[0] != col.R || d.pixels[3] != col.R || d.pixels[6] != 0 {
		t.Errorf("unexpected pixels %v", d.pixels)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "\n\033[0m") {
		t.Errorf("Halt() did not reset the terminal: %q", buf.String())
	}
}

func TestDraw(t *testing.T) {
	buf := &bytes.Buffer{}
	d := New(&Opts{X: 3, Writer: buf})
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.Set(1, 0, color.NRGBA{0x10, 0x20, 0x30, 0xff})
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(d.pixels, []byte{0, 0, 0, 0x10, 0x20, 0x30, 0, 0, 0}) {
		t.Errorf("unexpected pixels %v", d.pixels)
	}
	if _, err := d.Write([]byte{1, 2}); err == nil {
		t.Error("expected an error for a partial pixel")
	}
	if d.String() != "Gauge" {
		t.Error(d.String())
	}
}
