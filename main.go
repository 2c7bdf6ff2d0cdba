// Command enviro-node reads temperature/humidity, illuminance and gas sensors
// on a shared I2C bus and periodically submits the aggregated readings to a
// time-series backend.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/ericogr/enviro-node/pkg/bus"
	"github.com/ericogr/enviro-node/pkg/collector"
	"github.com/ericogr/enviro-node/pkg/config"
	"github.com/ericogr/enviro-node/pkg/output"
	"github.com/ericogr/enviro-node/pkg/output/console"
	"github.com/ericogr/enviro-node/pkg/output/influx"
	"github.com/ericogr/enviro-node/pkg/output/mqtt"
	"github.com/ericogr/enviro-node/pkg/output/prom"
	"github.com/ericogr/enviro-node/pkg/sensor"
	"github.com/ericogr/enviro-node/pkg/telemetry"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config) error {
	reg, closeBus, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer closeBus()

	col := collector.New(reg, uint32(cfg.WarmupTicks))

	if cfg.PrintOnce {
		snap := col.Collect()
		fmt.Print(telemetry.Encode(snap, cfg.NodeName, cfg.FirmwareVersion))
		return nil
	}

	outs, err := initOutputs(cfg)
	if err != nil {
		return err
	}
	defer closeOutputs(outs)

	stop := make(chan struct{})
	go col.RunFast(time.Duration(cfg.FastIntervalMs)*time.Millisecond, stop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.SlowIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	log.Printf("started: node=%s version=%s slow=%dms outputs=%d",
		cfg.NodeName, cfg.FirmwareVersion, cfg.SlowIntervalMs, len(outs))

	for {
		select {
		case s := <-sigCh:
			log.Printf("received %v, shutting down", s)
			close(stop)
			return nil
		case <-ticker.C:
			snap := col.Collect()
			// Submission runs here, never inside the collector's lock.
			publishAll(outs, snap)
		}
	}
}

// buildRegistry opens the bus and initializes each sensor class. A sensor
// that fails to initialize is logged and skipped; only the host stack and the
// bus itself are fatal.
func buildRegistry(cfg config.Config) (*sensor.Registry, func(), error) {
	if cfg.SensorType == "fake" {
		return &sensor.Registry{
			Climate: &sensor.FakeClimate{Temperature: 21.5, Humidity: 40},
			Light:   &sensor.FakeLight{Lux: 123.4},
			Gas:     &sensor.FakeGas{CO2eq: 450, TVOC: 12},
		}, func() {}, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("host init: %w", err)
	}
	b, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("open i2c: %w", err)
	}

	arb := bus.NewArbiter(b)
	reg := &sensor.Registry{}
	if climate := sensor.NewSHT31(arb.Device(sensor.SHT31Addr)); tryInit(climate.Name(), climate.Init) {
		reg.Climate = climate
	}
	if light := sensor.NewVEML7700(arb.Device(sensor.VEML7700Addr)); tryInit(light.Name(), light.Init) {
		reg.Light = light
	}
	if gas := sensor.NewSGP30(arb.Device(sensor.SGP30Addr)); tryInit(gas.Name(), gas.Init) {
		reg.Gas = gas
	}
	return reg, func() { _ = b.Close() }, nil
}

func tryInit(name string, init func() error) bool {
	if err := init(); err != nil {
		log.Errorf("%s init: %v (continuing without)", name, err)
		return false
	}
	log.Printf("%s initialized", name)
	return true
}

func initOutputs(cfg config.Config) ([]output.Output, error) {
	outs := make([]output.Output, 0, len(cfg.Outputs))
	for _, oc := range cfg.Outputs {
		switch strings.ToLower(oc.Type) {
		case "console":
			outs = append(outs, console.NewConsole())
		case "influx":
			if oc.Influx == nil {
				return nil, fmt.Errorf("influx output needs influx settings")
			}
			o, err := influx.NewInflux(*oc.Influx, cfg.NodeName, cfg.FirmwareVersion)
			if err != nil {
				return nil, err
			}
			outs = append(outs, o)
		case "mqtt":
			var mc config.MQTTConfig
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			o, err := mqtt.NewMQTT(mc, cfg.NodeName)
			if err != nil {
				return nil, err
			}
			outs = append(outs, o)
		case "prometheus":
			o, err := prom.NewProm(cfg.NodeName, prometheus.DefaultRegisterer)
			if err != nil {
				return nil, err
			}
			listen := oc.Listen
			if listen == "" {
				listen = ":9105"
			}
			go servePrometheus(listen)
			outs = append(outs, o)
		default:
			return nil, fmt.Errorf("unknown output type %q", oc.Type)
		}
	}
	return outs, nil
}

func servePrometheus(listen string) {
	if err := http.ListenAndServe(listen, promhttp.Handler()); err != nil {
		log.Errorf("prometheus listener: %v", err)
	}
}

// publishAll hands the cycle's snapshot to every sink. A failed publish drops
// that cycle's data for that sink; the next cycle supersedes it.
func publishAll(outs []output.Output, snap telemetry.Snapshot) {
	for _, o := range outs {
		if err := o.Publish(snap); err != nil {
			log.Errorf("publish: %v", err)
		}
	}
}

func closeOutputs(outs []output.Output) {
	for _, o := range outs {
		_ = o.Close()
	}
}
