package resolve

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// RunSummary is the payload published to the summary topic after a rebuild
type RunSummary struct {
	Matched         int            `json:"matched"`
	Unmatched       int            `json:"unmatched"`
	UnclaimedPlants int            `json:"unclaimedPlants"`
	ByMethod        map[Method]int `json:"byMethod"`
	Calibration     *Calibration   `json:"calibration,omitempty"`
	FromCache       bool           `json:"fromCache"`
	Timestamp       int64          `json:"timestamp"`
}

// Publisher announces resolution results over MQTT so mapping dashboards
// pick up a rebuilt table without polling the CSV artifacts.
// A nil client disables publishing (for testing and for runs without a broker).
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	retain bool
}

// NewPublisher creates a result publisher. Empty prefix defaults to "nodemap".
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "nodemap"
	}
	return &Publisher{
		client: client,
		prefix: prefix,
		qos:    1,    // table announcements should survive a flaky link
		retain: true, // late subscribers get the latest table
	}
}

// PublishResult publishes the run summary and the GeoJSON table.
// Topics: {prefix}/summary and {prefix}/coordinates.
func (p *Publisher) PublishResult(result *Result) error {
	if p.client == nil {
		return nil
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	summary := RunSummary{
		Matched:         len(result.Table),
		Unmatched:       len(result.Unmatched),
		UnclaimedPlants: len(result.UnclaimedPlants),
		ByMethod:        result.MethodCounts(),
		Calibration:     result.Calibration,
		FromCache:       result.FromCache,
		Timestamp:       time.Now().Unix(),
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	if err := p.publish(p.prefix+"/summary", payload); err != nil {
		return err
	}

	geo, err := TableToGeoJSON(result.Table).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling coordinate table: %w", err)
	}
	return p.publish(p.prefix+"/coordinates", geo)
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}
