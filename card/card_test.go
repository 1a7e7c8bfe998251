// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package card

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/GermanBionicSystems/ccs811/ccs811"
	"github.com/GermanBionicSystems/ccs811/gauge"
)

var reading = Reading{
	Env:     ccs811.Env{ECO2: 1200, TVOC: 50},
	Stats:   ccs811.Stats{Read: 10, ReadSuccess: 3, ReadSuccessCached: 6},
	Address: ccs811.DefaultAddress,
	Time:    time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
}

func TestRender(t *testing.T) {
	img, err := Render(reading, 256, 128)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 128 {
		t.Fatalf("unexpected bounds %s", b)
	}
	// The top band is filled with the air quality colour.
	want := gauge.Poor.Color()
	r, g, b, _ := img.At(12, 40).RGBA()
	if byte(r>>8) != want.R || byte(g>>8) != want.G || byte(b>>8) != want.B {
		t.Errorf("unexpected band colour %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestRender_tooSmall(t *testing.T) {
	if _, err := Render(reading, 16, 16); err == nil {
		t.Fatal("expected an error")
	}
}

func TestWritePNG(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WritePNG(buf, reading, 128, 64); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 64 {
		t.Fatalf("unexpected bounds %s", b)
	}
}
