//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/donbarbero/booking-core/internal/infrastructure/config"
)

// Integration tests against a live broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig(clientID string) config.MQTTConfig {
	return config.MQTTConfig{
		Enabled:     true,
		Host:        "127.0.0.1",
		Port:        1883,
		ClientID:    clientID,
		QoS:         1,
		TopicPrefix: "donbarbero-it",
	}
}

func TestIntegration_ConnectAndClose(t *testing.T) {
	client, err := Connect(integrationConfig("donbarbero-it-connect"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestIntegration_PublishEventRoundtrip(t *testing.T) {
	client, err := Connect(integrationConfig("donbarbero-it-publisher"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	received := make(chan []byte, 1)
	opts := pahomqtt.NewClientOptions().AddBroker("tcp://127.0.0.1:1883").SetClientID("donbarbero-it-listener")
	listener := pahomqtt.NewClient(opts)
	if tok := listener.Connect(); !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		t.Fatalf("listener connect: %v", tok.Error())
	}
	defer listener.Disconnect(100)

	tok := listener.Subscribe(client.Topics().AllEvents(), 1, func(_ pahomqtt.Client, m pahomqtt.Message) {
		select {
		case received <- m.Payload():
		default:
		}
	})
	if !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	if err := client.PublishEvent(context.Background(), "appointment.booked", map[string]int{"id": 42}); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}

	select {
	case body := <-received:
		var msg EventMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if msg.Event != "appointment.booked" {
			t.Errorf("event = %q", msg.Event)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestIntegration_Callbacks(t *testing.T) {
	client, err := Connect(integrationConfig("donbarbero-it-callbacks"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	client.SetOnConnect(func() {})
	client.SetOnDisconnect(func(error) {})

	client.callbackMu.RLock()
	defer client.callbackMu.RUnlock()
	if client.onConnect == nil || client.onDisconnect == nil {
		t.Error("callbacks not registered")
	}
}
