package resolve

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ConnectMQTT connects to the broker from the config. Returns (nil, nil)
// when no broker is configured, which disables publishing entirely: the
// resolver is a batch tool and MQTT is an optional announce channel for
// downstream consumers, never a required dependency.
func ConnectMQTT(cfg MQTTConfig) (mqtt.Client, error) {
	if cfg.Broker == "" {
		return nil, nil
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "nodemap"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	// One-shot publish after a rebuild, no need for reconnect machinery
	opts.SetAutoReconnect(false)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(60 * time.Second)

	client := mqtt.NewClient(opts)

	log.Printf("connecting to MQTT broker %s...", cfg.Broker)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("MQTT connection to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", cfg.Broker, err)
	}

	return client, nil
}
