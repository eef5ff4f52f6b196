package report

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/moondog-sim/quadrant/pkg/config"
)

// MQTTSink publishes every control report as JSON to an MQTT topic, for
// host-side dashboards and recording. Publishing is QoS 0: a dropped
// telemetry frame is harmless, the next cycle supersedes it.
type MQTTSink struct {
	client mqtt.Client
	topic  string
}

// NewMQTTSink connects to the broker and returns a sink publishing to the
// configured topic.
func NewMQTTSink(cfg config.TelemetryConfig) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, token.Error())
	}

	return &MQTTSink{
		client: client,
		topic:  cfg.Topic,
	}, nil
}

// Send publishes the frame as JSON.
func (s *MQTTSink) Send(f Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if token := s.client.Publish(s.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish report: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
