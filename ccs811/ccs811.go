// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ccs811

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

// ReadDelay is the minimum interval between two measurement reads on the
// bus. Read calls within this interval return the previous values.
const ReadDelay = 2 * time.Second

// Settle times required by the datasheet.
const (
	// Reboot into the bootloader after SW_RESET.
	resetSettle = 12 * time.Millisecond
	// Application boot after APP_START.
	appStartSettle = 72 * time.Millisecond
	// Delay before the first MEAS_MODE write.
	modeSettle = 5 * time.Millisecond
	// Delay for a new drive mode to take effect.
	modeApplySettle = 72 * time.Millisecond
)

// Replaced in tests.
var (
	now   = time.Now
	sleep = time.Sleep
)

// CO2 is an equivalent CO2 concentration in ppm.
type CO2 uint16

func (c CO2) String() string {
	return strconv.Itoa(int(c)) + "ppm"
}

// TVOC is a total volatile organic compounds concentration in ppb.
type TVOC uint16

func (t TVOC) String() string {
	return strconv.Itoa(int(t)) + "ppb"
}

// Env represents a measurement of the sensor.
type Env struct {
	ECO2 CO2
	TVOC TVOC
}

func (e *Env) String() string {
	return fmt.Sprintf("eCO2: %s TVOC: %s", e.ECO2, e.TVOC)
}

// Stats holds the running statistics of Read calls.
type Stats struct {
	// Time at the start of the last Read that reached the bus and succeeded.
	LastReadTime time.Time
	// Calls to Read.
	Read uint32
	// Reads that fetched a new measurement from the device.
	ReadSuccess uint32
	// Reads served from the previous values, either because ReadDelay has
	// not elapsed or because the device had no new data.
	ReadSuccessCached uint32
	// Time spent in successful uncached reads.
	ReadSuccessDuration time.Duration
}

// Errors returns the number of failed reads.
func (s *Stats) Errors() uint32 {
	ok := s.ReadSuccess + s.ReadSuccessCached
	if ok > s.Read {
		return 0
	}
	return s.Read - ok
}

// Opts holds the configuration options for the device.
type Opts struct {
	// Logger receives bring-up and read failures. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{}

// Dev is a handle to an initialized CCS811 device.
type Dev struct {
	d   *i2c.Dev
	log logrus.FieldLogger
	mu  sync.Mutex
	env Env
	// Reserved for temperature compensation.
	temperatureOffset float32
	stats             Stats
}

// NewI2C returns an object that communicates over I²C to a CCS811 gas
// sensor at addr, usually DefaultAddress. The device is identified, reset,
// booted into its application firmware and set to Mode1s. The Opts can be
// nil.
//
// No handle is returned if any of these steps fails.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, errors.New("ccs811: nil bus")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("addr", fmt.Sprintf("0x%02x", addr))

	c := &i2c.Dev{Bus: b, Addr: addr}
	var id [1]byte
	if err := c.Tx([]byte{regHWID}, id[:]); err != nil {
		log.Errorf("Failed to detect CCS811: %v", err)
		return nil, fmt.Errorf("ccs811: reading hw id: %w", err)
	}
	if id[0] != hwIDCode {
		log.Errorf("Failed to detect CCS811, hw id 0x%02x", id[0])
		return nil, &NotFoundError{Addr: addr, ID: id[0]}
	}

	d := &Dev{
		d:   c,
		log: log,
		env: Env{
			ECO2: 400,
			TVOC: 0,
		},
	}
	if err := d.start(); err != nil {
		return nil, errors.Join(fmt.Errorf("ccs811: bring-up at 0x%02x failed", addr), err)
	}
	log.Info("CCS811 created")
	return d, nil
}

// start boots the application firmware and sets the default drive mode.
func (d *Dev) start() error {
	if err := d.d.Tx(resetSequence, nil); err != nil {
		d.log.Errorf("CCS811 failed to reset device: %v", err)
		return fmt.Errorf("ccs811: reset: %w", err)
	}
	sleep(resetSettle)

	// A failed APP_START shows up in the status check below.
	if err := d.d.Tx([]byte{regAppStart}, nil); err != nil {
		d.log.Debugf("CCS811 app start: %v", err)
	}
	sleep(appStartSettle)

	s, err := d.status()
	if err != nil {
		d.log.Errorf("CCS811 failed to get status: %v", err)
		return fmt.Errorf("ccs811: status: %w", err)
	}
	if !s.FirmwareMode() || s.HasError() {
		se := &StatusError{Step: "app start", Status: s}
		if s.HasError() {
			if id, err := d.errorID(); err == nil {
				se.ErrorID = id
			}
		}
		d.log.Errorf("CCS811 invalid firmware mode, and/or status error %s", s)
		return se
	}

	sleep(modeSettle)
	if err := d.setDriveMode(Mode1s); err != nil {
		d.log.Errorf("CCS811 failed to set drive mode: %v", err)
		return err
	}
	sleep(modeApplySettle)

	m, err := d.driveMode()
	if err != nil {
		d.log.Errorf("CCS811 failed to get drive mode: %v", err)
		return err
	}
	if m != Mode1s {
		d.log.Errorf("CCS811 failed to set drive mode, got %s", m)
		return fmt.Errorf("ccs811: drive mode is %s, expected %s", m, Mode1s)
	}
	return nil
}

// Read polls the device for a new measurement. If the previous bus read
// happened less than ReadDelay ago, or the device has no new data, the
// previous values are kept and nil is returned.
//
// On failure the previous values are kept as well.
func (d *Dev) Read() error {
	start := now()
	if d == nil {
		return ErrHalted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read(start)
}

func (d *Dev) read(start time.Time) error {
	if d.d == nil {
		return ErrHalted
	}
	d.stats.Read++

	if start.Sub(d.stats.LastReadTime) < ReadDelay {
		d.stats.ReadSuccessCached++
		return nil
	}
	// A failed status read is counted like "no new data".
	if s, err := d.status(); err != nil || !s.DataReady() {
		d.stats.ReadSuccessCached++
		return nil
	}

	buf := make([]byte, algResultLength)
	if err := d.d.Tx([]byte{regAlgResultData}, buf); err != nil {
		d.log.Errorf("Read failed: %v", err)
		return fmt.Errorf("ccs811: reading result: %w", err)
	}
	r := decodeResult(buf)
	if r.status.HasError() {
		d.log.Errorf("Read error %s", r.errorID)
		return &DeviceError{ErrorID: r.errorID}
	}
	d.env.ECO2 = r.eco2
	d.env.TVOC = r.tvoc
	d.log.Debugf("eCO2=%d TVOC=%d", r.eco2, r.tvoc)

	d.stats.ReadSuccess++
	d.stats.ReadSuccessDuration += now().Sub(start).Truncate(time.Microsecond)
	d.stats.LastReadTime = start
	return nil
}

// Sense calls Read and returns the current values in env.
func (d *Dev) Sense(env *Env) error {
	if err := d.Read(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	*env = d.env
	return nil
}

// ECO2 calls Read and returns the equivalent CO2 in ppm, or NaN if Read
// failed. The value may come from a previous read.
func (d *Dev) ECO2() float64 {
	var e Env
	if err := d.Sense(&e); err != nil {
		return math.NaN()
	}
	return float64(e.ECO2)
}

// TVOC calls Read and returns the total volatile organic compounds in ppb,
// or NaN if Read failed. The value may come from a previous read.
func (d *Dev) TVOC() float64 {
	var e Env
	if err := d.Sense(&e); err != nil {
		return math.NaN()
	}
	return float64(e.TVOC)
}

// SetDriveMode writes the drive mode to MEAS_MODE. The interrupt enable and
// interrupt on threshold bits are cleared.
func (d *Dev) SetDriveMode(m DriveMode) error {
	if m > Mode250ms {
		return fmt.Errorf("ccs811: invalid drive mode %d", m)
	}
	if d == nil {
		return ErrHalted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return ErrHalted
	}
	return d.setDriveMode(m)
}

// DriveMode returns the drive mode read from MEAS_MODE.
func (d *Dev) DriveMode() (DriveMode, error) {
	if d == nil {
		return 0, ErrHalted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return 0, ErrHalted
	}
	return d.driveMode()
}

// Stats copies the running read statistics into s.
func (d *Dev) Stats(s *Stats) error {
	if d == nil || s == nil {
		return errors.New("ccs811: nil device or stats")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return ErrHalted
	}
	*s = d.stats
	return nil
}

// Status returns the STATUS register.
func (d *Dev) Status() (Status, error) {
	if d == nil {
		return 0, ErrHalted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return 0, ErrHalted
	}
	return d.status()
}

// ErrorID returns the ERROR_ID register. It is meaningful when the status
// has StatusErr set.
func (d *Dev) ErrorID() (ErrorID, error) {
	if d == nil {
		return 0, ErrHalted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return 0, ErrHalted
	}
	return d.errorID()
}

// Version returns the hardware, bootloader and application versions.
func (d *Dev) Version() (Version, error) {
	var v Version
	if d == nil {
		return v, ErrHalted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return v, ErrHalted
	}
	var hw [1]byte
	if err := d.d.Tx([]byte{regHWVersion}, hw[:]); err != nil {
		return v, fmt.Errorf("ccs811: reading hw version: %w", err)
	}
	var fw [2]byte
	if err := d.d.Tx([]byte{regFWBootVersion}, fw[:]); err != nil {
		return v, fmt.Errorf("ccs811: reading boot version: %w", err)
	}
	v.Boot = uint16(fw[0])<<8 | uint16(fw[1])
	if err := d.d.Tx([]byte{regFWAppVersion}, fw[:]); err != nil {
		return v, fmt.Errorf("ccs811: reading app version: %w", err)
	}
	v.App = uint16(fw[0])<<8 | uint16(fw[1])
	v.Hardware = hw[0]
	return v, nil
}

// RawData returns the sensor current and ADC voltage of the last sample.
func (d *Dev) RawData() (RawData, error) {
	if d == nil {
		return RawData{}, ErrHalted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return RawData{}, ErrHalted
	}
	var b [2]byte
	if err := d.d.Tx([]byte{regRawData}, b[:]); err != nil {
		return RawData{}, fmt.Errorf("ccs811: reading raw data: %w", err)
	}
	return decodeRawData(b[:]), nil
}

// Halt releases the bus. Every later call on the device fails with
// ErrHalted. It is safe to call on a nil or already halted device.
func (d *Dev) Halt() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d != nil {
		d.log.Debug("CCS811 halted")
		d.d = nil
	}
	return nil
}

func (d *Dev) String() string {
	if d == nil || d.d == nil {
		return "ccs811: halted"
	}
	return fmt.Sprintf("ccs811: %s", d.d)
}

func (d *Dev) status() (Status, error) {
	var b [1]byte
	if err := d.d.Tx([]byte{regStatus}, b[:]); err != nil {
		return 0, fmt.Errorf("ccs811: reading status: %w", err)
	}
	return Status(b[0]), nil
}

func (d *Dev) errorID() (ErrorID, error) {
	var b [1]byte
	if err := d.d.Tx([]byte{regErrorID}, b[:]); err != nil {
		return 0, fmt.Errorf("ccs811: reading error id: %w", err)
	}
	return ErrorID(b[0]), nil
}

func (d *Dev) setDriveMode(m DriveMode) error {
	if err := d.d.Tx([]byte{regMeasMode, encodeMeasMode(m)}, nil); err != nil {
		return fmt.Errorf("ccs811: writing drive mode: %w", err)
	}
	return nil
}

func (d *Dev) driveMode() (DriveMode, error) {
	var b [1]byte
	if err := d.d.Tx([]byte{regMeasMode}, b[:]); err != nil {
		return 0, fmt.Errorf("ccs811: reading drive mode: %w", err)
	}
	return decodeMeasMode(b[0]), nil
}
