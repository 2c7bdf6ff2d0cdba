package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

type InfluxConfig struct {
	URL    string `json:"url"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	Token  string `json:"token"`
}

type MQTTConfig struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

type OutputConfig struct {
	Type   string        `json:"type"` // influx, console, mqtt, prometheus
	Influx *InfluxConfig `json:"influx,omitempty"`
	MQTT   *MQTTConfig   `json:"mqtt,omitempty"`
	Listen string        `json:"listen,omitempty"` // prometheus only
}

type Config struct {
	NodeName        string         `json:"node_name"`
	FirmwareVersion string         `json:"firmware_version"`
	I2CBus          string         `json:"i2c_bus"`
	SensorType      string         `json:"sensor_type"` // real|fake
	FastIntervalMs  int            `json:"fast_interval_ms"`
	SlowIntervalMs  int            `json:"slow_interval_ms"`
	WarmupTicks     int            `json:"warmup_ticks"`
	Outputs         []OutputConfig `json:"outputs"`

	// PrintOnce is flag-only: run one read cycle, print it, exit.
	PrintOnce bool `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		NodeName:        "enviro-node",
		FirmwareVersion: "1.0",
		I2CBus:          "1",
		SensorType:      "real",
		FastIntervalMs:  1000, // the gas sensor's mandatory feed cadence
		SlowIntervalMs:  60000,
		WarmupTicks:     32,
		Outputs:         []OutputConfig{{Type: "console"}},
	}
}

// LoadFromFlags loads configuration from a JSON file (optional) and flags.
// Flags override values present in the JSON file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON config file")
	flagNodeName := flag.String("node-name", "", "Node name tag for telemetry")
	flagVersion := flag.String("firmware-version", "", "Firmware version tag for telemetry")
	flagI2CBus := flag.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagSensorType := flag.String("sensor-type", "", "sensor type: real|fake")
	flagSlowInterval := flag.Int("slow-interval-ms", -1, "Telemetry submission interval in ms")
	flagWarmupTicks := flag.Int("warmup-ticks", -1, "Gas warm-up window in fast-schedule ticks")
	flagOutputs := flag.String("outputs", "", "Comma-separated outputs (influx,console,mqtt,prometheus)")
	flagInfluxURL := flag.String("influx-url", "", "InfluxDB base URL (http://host:8086)")
	flagInfluxOrg := flag.String("influx-org", "", "InfluxDB organization")
	flagInfluxBucket := flag.String("influx-bucket", "", "InfluxDB bucket")
	flagInfluxToken := flag.String("influx-token", "", "InfluxDB API token")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTTopic := flag.String("mqtt-topic", "", "MQTT topic")
	flagPromListen := flag.String("prometheus-listen", "", "Prometheus metrics listen address")
	flagPrintOnce := flag.Bool("print-once", false, "Run one read cycle, print it and exit")

	flag.Parse()

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagNodeName != "" {
		cfg.NodeName = *flagNodeName
	}
	if *flagVersion != "" {
		cfg.FirmwareVersion = *flagVersion
	}
	if *flagI2CBus != "" {
		cfg.I2CBus = *flagI2CBus
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagSlowInterval != -1 {
		cfg.SlowIntervalMs = *flagSlowInterval
	}
	if *flagWarmupTicks != -1 {
		cfg.WarmupTicks = *flagWarmupTicks
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p})
		}
		cfg.Outputs = outs
	}
	if *flagInfluxURL != "" || *flagInfluxOrg != "" || *flagInfluxBucket != "" || *flagInfluxToken != "" {
		applyInfluxFlags(&cfg, *flagInfluxURL, *flagInfluxOrg, *flagInfluxBucket, *flagInfluxToken)
	}
	if *flagMQTTServer != "" || *flagMQTTTopic != "" {
		applyMQTTFlags(&cfg, *flagMQTTServer, *flagMQTTTopic)
	}
	if *flagPromListen != "" {
		applied := false
		for i := range cfg.Outputs {
			if strings.EqualFold(cfg.Outputs[i].Type, "prometheus") {
				cfg.Outputs[i].Listen = *flagPromListen
				applied = true
			}
		}
		if !applied {
			cfg.Outputs = append(cfg.Outputs, OutputConfig{Type: "prometheus", Listen: *flagPromListen})
		}
	}
	cfg.PrintOnce = *flagPrintOnce

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the cross-field constraints the schedules rely on.
func (c Config) Validate() error {
	if c.NodeName == "" {
		return errors.New("node_name must not be empty")
	}
	if c.FastIntervalMs <= 0 {
		return errors.New("fast_interval_ms must be > 0")
	}
	if c.SlowIntervalMs <= c.FastIntervalMs {
		return errors.New("slow_interval_ms must be greater than fast_interval_ms")
	}
	if c.WarmupTicks < 0 {
		return errors.New("warmup_ticks must be >= 0")
	}
	switch c.SensorType {
	case "real", "fake":
	default:
		return fmt.Errorf("unknown sensor_type %q", c.SensorType)
	}
	return nil
}

// applyInfluxFlags applies influx flags to all influx outputs; if none exist,
// one is created.
func applyInfluxFlags(cfg *Config, url, org, bucket, token string) {
	applied := false
	for i := range cfg.Outputs {
		if !strings.EqualFold(cfg.Outputs[i].Type, "influx") {
			continue
		}
		if cfg.Outputs[i].Influx == nil {
			cfg.Outputs[i].Influx = &InfluxConfig{}
		}
		setInflux(cfg.Outputs[i].Influx, url, org, bucket, token)
		applied = true
	}
	if !applied {
		out := OutputConfig{Type: "influx", Influx: &InfluxConfig{}}
		setInflux(out.Influx, url, org, bucket, token)
		cfg.Outputs = append(cfg.Outputs, out)
	}
}

func setInflux(ic *InfluxConfig, url, org, bucket, token string) {
	if url != "" {
		ic.URL = url
	}
	if org != "" {
		ic.Org = org
	}
	if bucket != "" {
		ic.Bucket = bucket
	}
	if token != "" {
		ic.Token = token
	}
}

func applyMQTTFlags(cfg *Config, server, topic string) {
	applied := false
	for i := range cfg.Outputs {
		if !strings.EqualFold(cfg.Outputs[i].Type, "mqtt") {
			continue
		}
		if cfg.Outputs[i].MQTT == nil {
			cfg.Outputs[i].MQTT = &MQTTConfig{}
		}
		if server != "" {
			cfg.Outputs[i].MQTT.Server = server
		}
		if topic != "" {
			cfg.Outputs[i].MQTT.Topic = topic
		}
		applied = true
	}
	if !applied {
		out := OutputConfig{Type: "mqtt", MQTT: &MQTTConfig{Server: server, Topic: topic}}
		cfg.Outputs = append(cfg.Outputs, out)
	}
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
