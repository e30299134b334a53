package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "donbarbero/events/appointment.booked")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// EventMessage is the JSON envelope of a published booking event.
type EventMessage struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// PublishEvent publishes a booking event on <prefix>/events/<event> with the
// configured QoS. Events are not retained.
//
// It satisfies booking.EventPublisher.
func (c *Client) PublishEvent(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	body, err := buildEventPayload(event, payload, time.Now())
	if err != nil {
		return err
	}
	return c.Publish(c.topics.Event(event), body, c.qos(), false)
}

// buildEventPayload wraps payload in an EventMessage.
func buildEventPayload(event string, payload any, at time.Time) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s payload: %w", ErrPublishFailed, event, err)
	}
	body, err := json.Marshal(EventMessage{
		Event:     event,
		Timestamp: at.UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s envelope: %w", ErrPublishFailed, event, err)
	}
	return body, nil
}
