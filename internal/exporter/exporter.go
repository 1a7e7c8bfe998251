// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package exporter exposes CCS811 readings and driver statistics as
// Prometheus metrics.
package exporter

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/GermanBionicSystems/ccs811/card"
	"github.com/GermanBionicSystems/ccs811/ccs811"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const labelAddress = "address"

// Size of the card served by CardHandler.
const (
	cardWidth  = 256
	cardHeight = 128
)

var (
	descReads = prometheus.NewDesc("ccs811_reads_total",
		"Calls to read the sensor", []string{labelAddress}, nil)
	descReadsSuccess = prometheus.NewDesc("ccs811_reads_success_total",
		"Reads that fetched a new measurement from the sensor", []string{labelAddress}, nil)
	descReadsCached = prometheus.NewDesc("ccs811_reads_cached_total",
		"Reads served from the previous measurement", []string{labelAddress}, nil)
	descReadErrors = prometheus.NewDesc("ccs811_read_errors_total",
		"Failed reads", []string{labelAddress}, nil)
	descReadSeconds = prometheus.NewDesc("ccs811_read_success_seconds_total",
		"Time spent in successful uncached reads (units: seconds)", []string{labelAddress}, nil)
)

// Exporter holds the metrics of one or more sensors.
type Exporter struct {
	reg  *prometheus.Registry
	co2  *prometheus.GaugeVec
	voc  *prometheus.GaugeVec
	info *prometheus.GaugeVec

	mu    sync.Mutex
	stats map[string]ccs811.Stats
}

// New returns an Exporter with its own registry.
func New() *Exporter {
	e := &Exporter{
		reg:   prometheus.NewRegistry(),
		co2:   newGauge("air_co2_level", "Air equivalent Carbon Dioxide level (units: ppm)", labelAddress),
		voc:   newGauge("air_voc_level", "Air Volatile Organic Compounds level (units: ppb)", labelAddress),
		info:  newGauge("ccs811_info", "Hardware and firmware versions of the sensor", labelAddress, "hw", "boot", "app"),
		stats: map[string]ccs811.Stats{},
	}
	e.reg.MustRegister(e.co2, e.voc, e.info, e)
	e.reg.MustRegister(prometheus.NewGoCollector())
	e.reg.MustRegister(prometheus.NewBuildInfoCollector())
	return e
}

func newGauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func addressLabel(addr uint16) string {
	return fmt.Sprintf("0x%02x", addr)
}

// Update records the last values and statistics of the sensor at addr.
func (e *Exporter) Update(addr uint16, env ccs811.Env, stats ccs811.Stats) {
	l := addressLabel(addr)
	e.co2.WithLabelValues(l).Set(float64(env.ECO2))
	e.voc.WithLabelValues(l).Set(float64(env.TVOC))
	e.mu.Lock()
	e.stats[l] = stats
	e.mu.Unlock()
}

// SetInfo records the versions of the sensor at addr.
func (e *Exporter) SetInfo(addr uint16, v ccs811.Version) {
	e.info.WithLabelValues(addressLabel(addr),
		fmt.Sprintf("0x%02x", v.Hardware),
		v.BootVersion(),
		v.AppVersion(),
	).Set(1)
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- descReads
	ch <- descReadsSuccess
	ch <- descReadsCached
	ch <- descReadErrors
	ch <- descReadSeconds
}

// Collect implements prometheus.Collector. The driver statistics are
// already cumulative, so they are reported as constant counters.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for l, s := range e.stats {
		ch <- prometheus.MustNewConstMetric(descReads, prometheus.CounterValue, float64(s.Read), l)
		ch <- prometheus.MustNewConstMetric(descReadsSuccess, prometheus.CounterValue, float64(s.ReadSuccess), l)
		ch <- prometheus.MustNewConstMetric(descReadsCached, prometheus.CounterValue, float64(s.ReadSuccessCached), l)
		ch <- prometheus.MustNewConstMetric(descReadErrors, prometheus.CounterValue, float64(s.Errors()), l)
		ch <- prometheus.MustNewConstMetric(descReadSeconds, prometheus.CounterValue, s.ReadSuccessDuration.Seconds(), l)
	}
}

// Handler serves the registered metrics.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{
		// Serve OpenMetrics to scrapers that ask for it.
		EnableOpenMetrics: true,
	})
}

// CardHandler serves the current reading as a PNG status card.
func (e *Exporter) CardHandler(current func() card.Reading) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if err := card.WritePNG(w, current(), cardWidth, cardHeight); err != nil {
			log.Errorf("failed to render card: %s", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

var _ prometheus.Collector = &Exporter{}
