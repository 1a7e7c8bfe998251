// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ccs811

import (
	"periph.io/x/conn/v3/driver"
	"periph.io/x/conn/v3/driver/driverreg"
)

// drv is registered so host.Init() lists the package among the loaded
// drivers. There is nothing to initialize: devices are created per bus with
// NewI2C.
type drv struct{}

func (drv) String() string {
	return "ccs811"
}

func (drv) Prerequisites() []string {
	return nil
}

func (drv) After() []string {
	return nil
}

func (drv) Init() (bool, error) {
	return true, nil
}

var _ driver.Impl = drv{}

func init() {
	driverreg.MustRegister(drv{})
}
