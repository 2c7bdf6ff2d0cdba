// Package mqtt publishes each cycle's snapshot as JSON to an MQTT topic.
package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ericogr/enviro-node/pkg/config"
	"github.com/ericogr/enviro-node/pkg/output"
	"github.com/ericogr/enviro-node/pkg/telemetry"
)

const (
	DefaultServer   = "tcp://localhost:1883"
	DefaultClientID = "enviro-node"
	DefaultTopic    = "enviro-node/telemetry"
)

type MQTTOutput struct {
	client mqtt.Client
	topic  string
	node   string
}

func NewMQTT(cfg config.MQTTConfig, node string) (output.Output, error) {
	server := cfg.Server
	if server == "" {
		server = DefaultServer
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	opts := mqtt.NewClientOptions().AddBroker(server).SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTOutput{client: client, topic: topic, node: node}, nil
}

func (m *MQTTOutput) Publish(snap telemetry.Snapshot) error {
	payload := struct {
		Node string `json:"node"`
		telemetry.Snapshot
	}{Node: m.node, Snapshot: snap}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := m.client.Publish(m.topic, 0, false, b)
	token.Wait()
	return token.Error()
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}
