// Package publish pushes planned battery setpoints to an MQTT broker so
// a site controller can pick them up.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"campus-energy/internal/config"
	"campus-energy/internal/optimize"
)

// Publisher holds an MQTT connection.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// New connects to the broker configured in cfg.
func New(cfg config.MQTTConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("mqtt publishing is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker address is required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = "campus/battery/setpoint"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "campus-energy"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}
	return &Publisher{client: client, topic: topic}, nil
}

// SetpointPayload is the wire shape for one planned interval.
type SetpointPayload struct {
	Start   string  `json:"start"`
	End     string  `json:"end"`
	PowerKW float64 `json:"power_kw"`
	Action  string  `json:"action"`
	SOCEnd  float64 `json:"soc_end"`
}

// PublishLedger sends one retained message per ledger row.
func (p *Publisher) PublishLedger(ledger []optimize.LedgerRow) error {
	for _, r := range ledger {
		payload := SetpointPayload{
			Start:   r.Start.Format(time.RFC3339),
			End:     r.End.Format(time.RFC3339),
			PowerKW: r.PowerKW,
			Action:  string(r.Action),
			SOCEnd:  r.SOCEnd,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding setpoint: %w", err)
		}
		token := p.client.Publish(p.topic, 1, true, body)
		if token.Wait() && token.Error() != nil {
			return fmt.Errorf("publishing setpoint at %s: %w", payload.Start, token.Error())
		}
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
