// cmd/mblwz/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpmon/mblwz/internal/api"
	"github.com/hpmon/mblwz/internal/command"
	"github.com/hpmon/mblwz/internal/config"
	"github.com/hpmon/mblwz/internal/delivery"
	"github.com/hpmon/mblwz/internal/device"
	devmodbus "github.com/hpmon/mblwz/internal/device/modbus"
	"github.com/hpmon/mblwz/internal/lwz"
	"github.com/hpmon/mblwz/internal/sampler"
	"github.com/hpmon/mblwz/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("usage: mblwz <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		logrus.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.WithField("app", "mblwz")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New()

	// --------------------
	// Per-device sampling loops
	// --------------------

	// The command path gets its own connection to the command device, so the
	// sampler and the gateway never share a socket.
	var commandClient *device.Client

	for _, dc := range cfg.Bridge.Devices {
		st.Seed(dc.Name, lwz.Names())

		devLog := log.WithField("device", dc.Name)

		sampleConn, err := devmodbus.New(devmodbus.Config{
			Endpoint: dc.Endpoint,
			UnitID:   dc.UnitID,
			Timeout:  time.Duration(dc.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			logrus.Fatalf("modbus conn failed (device=%s): %v", dc.Name, err)
		}

		smp, err := sampler.New(
			sampler.Config{
				Device:   dc.Name,
				Interval: time.Duration(dc.SampleIntervalMs) * time.Millisecond,
			},
			device.New(sampleConn, devLog),
			st,
			devLog,
		)
		if err != nil {
			logrus.Fatalf("sampler build failed (device=%s): %v", dc.Name, err)
		}
		go smp.Run(ctx)

		if dc.Name == cfg.Bridge.CommandDevice {
			cmdConn, err := devmodbus.New(devmodbus.Config{
				Endpoint: dc.Endpoint,
				UnitID:   dc.UnitID,
				Timeout:  time.Duration(dc.TimeoutMs) * time.Millisecond,
			})
			if err != nil {
				logrus.Fatalf("modbus conn failed (device=%s): %v", dc.Name, err)
			}
			commandClient = device.New(cmdConn, devLog.WithField("path", "command"))
		}
	}

	// --------------------
	// Delivery pipeline (opt-in)
	// --------------------

	if d := cfg.Bridge.Delivery; d.Enabled() {
		fallback := delivery.NewFallback(d.FallbackPath, delivery.DefaultFields)

		pipe, err := delivery.New(
			delivery.Config{
				Device:        d.Device,
				Endpoint:      d.Endpoint,
				Username:      d.Username,
				Password:      d.Password,
				FailureMarker: *d.FailureMarker,
				Fields:        delivery.DefaultFields,
				Interval:      time.Duration(d.IntervalMs) * time.Millisecond,
				Timeout:       time.Duration(d.TimeoutMs) * time.Millisecond,
			},
			st,
			fallback,
			log.WithField("device", d.Device),
		)
		if err != nil {
			logrus.Fatalf("delivery build failed: %v", err)
		}
		go pipe.Run(ctx)
	}

	// --------------------
	// HTTP surface
	// --------------------

	gateway := command.New(commandClient, cfg.Bridge.CommandCode, log)
	srv := api.New(gateway, st, log)

	httpSrv := &http.Server{
		Addr:    cfg.Bridge.Listen,
		Handler: srv.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.WithField("listen", cfg.Bridge.Listen).Info("mblwz up")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("http server failed: %v", err)
	}
}
