// Package prom exposes the latest snapshot as Prometheus gauges.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ericogr/enviro-node/pkg/telemetry"
)

// PromOutput sets one gauge per quantity, labeled with the node name. An
// absent quantity deletes its series so scrapes don't report stale values.
type PromOutput struct {
	node string

	temperature *prometheus.GaugeVec
	humidity    *prometheus.GaugeVec
	illuminance *prometheus.GaugeVec
	co2eq       *prometheus.GaugeVec
	tvoc        *prometheus.GaugeVec
}

func NewProm(node string, reg prometheus.Registerer) (*PromOutput, error) {
	p := &PromOutput{
		node:        node,
		temperature: newGauge("air_temperature", "Air temperature (units: degrees Celsius)"),
		humidity:    newGauge("air_humidity", "Humidity (units: % of relative humidity)"),
		illuminance: newGauge("air_illuminance", "Illuminance (units: lux)"),
		co2eq:       newGauge("air_co2_level", "Air carbon dioxide equivalent level (units: ppm)"),
		tvoc:        newGauge("air_voc_level", "Air volatile organic compounds level (units: ppb)"),
	}
	for _, g := range []*prometheus.GaugeVec{p.temperature, p.humidity, p.illuminance, p.co2eq, p.tvoc} {
		if err := reg.Register(g); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func newGauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: name, Help: help},
		[]string{"node"},
	)
}

func (p *PromOutput) Publish(snap telemetry.Snapshot) error {
	setOrDelete(p.temperature, p.node, snap.Temperature)
	setOrDelete(p.humidity, p.node, snap.Humidity)
	setOrDelete(p.illuminance, p.node, snap.Illuminance)
	setOrDeleteCount(p.co2eq, p.node, snap.CO2eq)
	setOrDeleteCount(p.tvoc, p.node, snap.TVOC)
	return nil
}

func (p *PromOutput) Close() error { return nil }

func setOrDelete(g *prometheus.GaugeVec, node string, v *float64) {
	if v == nil {
		g.DeleteLabelValues(node)
		return
	}
	g.WithLabelValues(node).Set(*v)
}

func setOrDeleteCount(g *prometheus.GaugeVec, node string, v *uint16) {
	if v == nil {
		g.DeleteLabelValues(node)
		return
	}
	g.WithLabelValues(node).Set(float64(*v))
}
