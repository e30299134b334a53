// Package mqtt publishes booking events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect after a lost connection
//   - Event publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Topics
//
// All topics live under a configurable prefix (default "donbarbero"):
//
//	donbarbero/events/appointment.booked
//	donbarbero/events/appointment.cancelled
//	donbarbero/events/appointment.completed
//	donbarbero/system/status            (retained online/offline)
//
// Event payloads are {"event", "timestamp", "data"} JSON where data is the
// appointment.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	scheduler := booking.NewScheduler(repos, client, logger)
package mqtt
