// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ccs811

import (
	"errors"
	"fmt"
)

// ErrHalted is returned when the device handle is nil or was halted.
var ErrHalted = errors.New("ccs811: device not initialized or halted")

// NotFoundError is returned when the HW_ID register does not identify a
// CCS811.
type NotFoundError struct {
	Addr uint16
	ID   byte
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ccs811: no device at I²C 0x%02x (hw id 0x%02x)", e.Addr, e.ID)
}

// StatusError is returned when the STATUS register is not in the state
// expected at a given bring-up step.
type StatusError struct {
	Step    string
	Status  Status
	ErrorID ErrorID
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ccs811: %s: unexpected status %s, error id %s", e.Step, e.Status, e.ErrorID)
}

// DeviceError is returned when a measurement carries the ERROR status bit.
type DeviceError struct {
	ErrorID ErrorID
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("ccs811: device reported error %s", e.ErrorID)
}
