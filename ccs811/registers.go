// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ccs811

import (
	"encoding/binary"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is the address used when the ADDR pin is low.
	DefaultAddress uint16 = 0x5a
	// AlternateAddress is the address used when the ADDR pin is high.
	AlternateAddress uint16 = 0x5b
)

// Application registers.
const (
	regStatus        byte = 0x00
	regMeasMode      byte = 0x01
	regAlgResultData byte = 0x02
	regRawData       byte = 0x03
	regEnvData       byte = 0x05 // Unused, no environmental compensation.
	regNTC           byte = 0x06 // Unused.
	regThresholds    byte = 0x10 // Unused, no interrupt driven reads.
	regBaseline      byte = 0x11 // Unused, no calibration storage.
	regHWID          byte = 0x20
	regHWVersion     byte = 0x21
	regFWBootVersion byte = 0x23
	regFWAppVersion  byte = 0x24
	regErrorID       byte = 0xe0
	regSWReset       byte = 0xff
)

// Bootloader registers. Only APP_START is used.
const (
	regAppErase  byte = 0xf1
	regAppData   byte = 0xf2
	regAppVerify byte = 0xf3
	regAppStart  byte = 0xf4
)

const (
	hwIDCode        = 0x81
	algResultLength = 8
)

// resetSequence is written to SW_RESET to reboot the device into its
// bootloader.
var resetSequence = []byte{regSWReset, 0x11, 0xe5, 0x72, 0x8a}

// Status is the content of the STATUS register.
type Status byte

const (
	StatusErr          Status = 1 << 0
	StatusDataReady    Status = 1 << 3
	StatusAppValid     Status = 1 << 4
	StatusFirmwareMode Status = 1 << 7
)

// HasError reports whether the device has flagged an error in ERROR_ID.
func (s Status) HasError() bool { return s&StatusErr != 0 }

// DataReady reports whether a new sample can be read from ALG_RESULT_DATA.
func (s Status) DataReady() bool { return s&StatusDataReady != 0 }

// AppValid reports whether a valid application firmware is loaded.
func (s Status) AppValid() bool { return s&StatusAppValid != 0 }

// FirmwareMode reports whether the device runs the application firmware, as
// opposed to the bootloader.
func (s Status) FirmwareMode() bool { return s&StatusFirmwareMode != 0 }

func (s Status) String() string {
	var flags []string
	if s.FirmwareMode() {
		flags = append(flags, "FW_MODE")
	}
	if s.AppValid() {
		flags = append(flags, "APP_VALID")
	}
	if s.DataReady() {
		flags = append(flags, "DATA_READY")
	}
	if s.HasError() {
		flags = append(flags, "ERROR")
	}
	return fmt.Sprintf("0x%02x[%s]", byte(s), strings.Join(flags, "|"))
}

// DriveMode is the measurement cadence configured in MEAS_MODE.
type DriveMode uint8

const (
	// ModeIdle stops measurements.
	ModeIdle DriveMode = iota
	// Mode1s produces a sample every second.
	Mode1s
	// Mode10s produces a sample every 10 seconds, pulse heating.
	Mode10s
	// Mode60s produces a sample every 60 seconds, pulse heating.
	Mode60s
	// Mode250ms produces raw data only every 250ms.
	Mode250ms
)

var driveModeNames = []string{"Idle", "1s", "10s", "60s", "250ms"}

func (m DriveMode) String() string {
	if int(m) < len(driveModeNames) {
		return driveModeNames[m]
	}
	return fmt.Sprintf("DriveMode(%d)", uint8(m))
}

// MEAS_MODE bits -- 6:4 drive mode, 3 interrupt enable, 2 interrupt on
// threshold.
const (
	measModeShift      = 4
	measModeMask  byte = 0x07
	measModeInt   byte = 1 << 3
	measModeThres byte = 1 << 2
)

// encodeMeasMode returns the MEAS_MODE value for m. The interrupt bits are
// always cleared.
func encodeMeasMode(m DriveMode) byte {
	return (byte(m) & measModeMask) << measModeShift
}

func decodeMeasMode(b byte) DriveMode {
	return DriveMode((b >> measModeShift) & measModeMask)
}

// ErrorID is the content of the ERROR_ID register.
type ErrorID byte

const (
	ErrWriteRegInvalid ErrorID = 1 << 0
	ErrReadRegInvalid  ErrorID = 1 << 1
	ErrMeasModeInvalid ErrorID = 1 << 2
	ErrMaxResistance   ErrorID = 1 << 3
	ErrHeaterFault     ErrorID = 1 << 4
	ErrHeaterSupply    ErrorID = 1 << 5
)

var errorIDNames = []string{
	"WRITE_REG_INVALID",
	"READ_REG_INVALID",
	"MEASMODE_INVALID",
	"MAX_RESISTANCE",
	"HEATER_FAULT",
	"HEATER_SUPPLY",
}

func (e ErrorID) String() string {
	var names []string
	for i, name := range errorIDNames {
		if e&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%02x", byte(e))
	}
	return fmt.Sprintf("0x%02x[%s]", byte(e), strings.Join(names, "|"))
}

// result is the decoded content of ALG_RESULT_DATA.
type result struct {
	eco2    CO2
	tvoc    TVOC
	status  Status
	errorID ErrorID
	raw     uint16
}

// decodeResult decodes the 8 bytes of ALG_RESULT_DATA:
// eCO2(2) TVOC(2) status(1) error(1) raw(2), all big endian.
func decodeResult(b []byte) result {
	return result{
		eco2:    CO2(binary.BigEndian.Uint16(b[0:2])),
		tvoc:    TVOC(binary.BigEndian.Uint16(b[2:4])),
		status:  Status(b[4]),
		errorID: ErrorID(b[5]),
		raw:     binary.BigEndian.Uint16(b[6:8]),
	}
}

// Version holds the hardware and firmware versions of the device.
type Version struct {
	Hardware byte
	Boot     uint16
	App      uint16
}

// firmware versions are major.minor.trivial packed as 4:4:8 bits.
func fwString(v uint16) string {
	return fmt.Sprintf("%d.%d.%d", v>>12, (v>>8)&0x0f, v&0xff)
}

// BootVersion returns the bootloader version as major.minor.trivial.
func (v Version) BootVersion() string { return fwString(v.Boot) }

// AppVersion returns the application version as major.minor.trivial.
func (v Version) AppVersion() string { return fwString(v.App) }

func (v Version) String() string {
	return fmt.Sprintf("hw=0x%02x boot=%s app=%s", v.Hardware, v.BootVersion(), v.AppVersion())
}

// RawData is the decoded content of RAW_DATA.
type RawData struct {
	// Current through the sensor, 0 to 63µA.
	Current physic.ElectricCurrent
	// Voltage across the sensor, 1.65V full scale.
	Voltage physic.ElectricPotential
}

const (
	adcFullScale  = 1650 * physic.MilliVolt
	adcFullCounts = 1023
)

func decodeRawData(b []byte) RawData {
	w := binary.BigEndian.Uint16(b)
	counts := physic.ElectricPotential(w & 0x03ff)
	return RawData{
		Current: physic.ElectricCurrent(w>>10) * physic.MicroAmpere,
		Voltage: counts * adcFullScale / adcFullCounts,
	}
}
