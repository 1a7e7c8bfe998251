// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gauge_test

import (
	"log"

	"github.com/GermanBionicSystems/ccs811/gauge"
)

func Example() {
	d := gauge.New(&gauge.Opts{X: 40})
	defer d.Halt()
	if err := d.ShowECO2(950); err != nil {
		log.Fatal(err)
	}
}
