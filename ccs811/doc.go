// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ccs811 controls a ScioSense (formerly ams) CCS811 digital gas
// sensor over I²C.
//
// The sensor reports an equivalent CO2 concentration (eCO2) in ppm and a
// total volatile organic compounds concentration (TVOC) in ppb, both derived
// by its internal algorithm from a metal oxide gas sensor.
//
// NewI2C brings the device from its bootloader into the application firmware
// and starts measurements once per second. Reads are rate limited: the bus is
// polled at most once every ReadDelay, calls in between return the previous
// values.
//
// A Dev is not meant to be shared between goroutines without care: calls on
// one Dev are serialized, but the i2c.Bus is owned by the caller.
//
// # Datasheet
//
// https://www.sciosense.com/wp-content/uploads/2020/01/SC-001232-DS-2-CCS811B-Datasheet-Revision-2.pdf
package ccs811
