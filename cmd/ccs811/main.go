// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ccs811 polls a CCS811 gas sensor and exposes its readings as Prometheus
// metrics.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/ccs811/card"
	"github.com/GermanBionicSystems/ccs811/ccs811"
	"github.com/GermanBionicSystems/ccs811/gauge"
	"github.com/GermanBionicSystems/ccs811/internal/config"
	"github.com/GermanBionicSystems/ccs811/internal/exporter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// CLI args. Set flags override the configuration file.
var (
	configPath = flag.String("config", "", "path of the YAML configuration file")
	listenAddr = flag.String("listen-address", "", "the address to listen on for HTTP requests")
	busName    = flag.String("bus", "", "I²C bus to use")
	address    = flag.Uint("address", 0, "I²C address of the sensor, 0x5a or 0x5b")
	interval   = flag.Duration("interval", 0, "time interval between sensor reads")
	showGauge  = flag.Bool("gauge", false, "draw an eCO2 gauge on the terminal")
	verbose    = flag.Bool("v", false, "verbose logging")
)

func init() {
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	flag.Parse()
	if err := mainImpl(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen-address":
			cfg.Listen = *listenAddr
		case "bus":
			cfg.Bus = *busName
		case "address":
			cfg.Address = uint16(*address)
		case "interval":
			cfg.Interval = *interval
		case "gauge":
			cfg.Gauge.Enabled = *showGauge
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func mainImpl() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)

	state, err := host.Init()
	if err != nil {
		return errors.Wrap(err, "failed to initialize periph")
	}
	for _, d := range state.Failed {
		log.Warnf("driver %s failed: %v", d.D, d.Err)
	}

	b, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return errors.Wrap(err, "failed to open I²C")
	}
	defer b.Close()

	dev, err := ccs811.NewI2C(b, cfg.Address, &ccs811.Opts{Logger: log.StandardLogger()})
	if err != nil {
		return errors.Wrap(err, "failed to initialize CCS811")
	}
	defer dev.Halt()
	log.Infof("Found %s", dev)

	exp := exporter.New()
	if v, err := dev.Version(); err != nil {
		log.Errorf("failed to read versions: %s", err)
	} else {
		log.Infof("CCS811 %s", v)
		exp.SetInfo(cfg.Address, v)
	}

	var g *gauge.Dev
	if cfg.Gauge.Enabled {
		g = gauge.New(&gauge.Opts{X: cfg.Gauge.LEDs})
		defer g.Halt()
	}

	p := newPoller(dev, cfg.Address, exp, g)

	mux := http.NewServeMux()
	mux.Handle("/metrics", exp.Handler())
	mux.Handle("/card.png", exp.CardHandler(p.reading))
	srv := &http.Server{Addr: cfg.Listen, Handler: mux}
	go func() {
		log.Infof("Listening on %s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Panic(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	p.run(ctx, cfg.Interval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// poller reads the sensor on a fixed interval and publishes the values.
type poller struct {
	dev   *ccs811.Dev
	addr  uint16
	exp   *exporter.Exporter
	gauge *gauge.Dev

	mu   sync.Mutex
	last card.Reading
}

func newPoller(dev *ccs811.Dev, addr uint16, exp *exporter.Exporter, g *gauge.Dev) *poller {
	return &poller{
		dev:   dev,
		addr:  addr,
		exp:   exp,
		gauge: g,
		last:  card.Reading{Env: ccs811.Env{ECO2: 400}, Address: addr},
	}
}

func (p *poller) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	p.poll()
	for {
		select {
		case <-ticker.C:
			p.poll()
		case <-ctx.Done():
			return
		}
	}
}

func (p *poller) poll() {
	var env ccs811.Env
	senseErr := p.dev.Sense(&env)
	if senseErr != nil {
		// Retried on the next tick.
		log.Errorf("failed to read from sensor: %s", senseErr)
	}
	var stats ccs811.Stats
	if err := p.dev.Stats(&stats); err != nil {
		log.Errorf("failed to read statistics: %s", err)
		return
	}
	p.mu.Lock()
	if senseErr != nil {
		env = p.last.Env
	}
	p.last = card.Reading{Env: env, Stats: stats, Address: p.addr, Time: time.Now()}
	p.mu.Unlock()

	log.Debugf("Received: %s", &env)
	p.exp.Update(p.addr, env, stats)
	if p.gauge != nil {
		if err := p.gauge.ShowECO2(env.ECO2); err != nil {
			log.Errorf("failed to draw gauge: %s", err)
		}
	}
}

func (p *poller) reading() card.Reading {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
