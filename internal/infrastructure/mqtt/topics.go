package mqtt

import "strings"

// DefaultTopicPrefix is the root of every topic the service publishes when
// no prefix is configured.
const DefaultTopicPrefix = "donbarbero"

// Topics builds the service's MQTT topic names under a common prefix.
//
//	topics := mqtt.NewTopics("donbarbero")
//	topics.Event("appointment.booked")
//	// Returns: "donbarbero/events/appointment.booked"
type Topics struct {
	prefix string
}

// NewTopics returns a Topics rooted at prefix. Surrounding slashes are
// trimmed; an empty prefix selects DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	return t.prefix
}

// Event returns the topic a booking event is published on.
func (t Topics) Event(name string) string {
	return t.prefix + "/events/" + name
}

// AllEvents returns a wildcard matching every booking event.
func (t Topics) AllEvents() string {
	return t.prefix + "/events/#"
}

// SystemStatus returns the retained online/offline status topic.
func (t Topics) SystemStatus() string {
	return t.prefix + "/system/status"
}
