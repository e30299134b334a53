// Package booking implements the appointment domain on top of the generic
// data accessor.
//
// Each table gets a typed Table[T] (clients, barbers, services,
// appointments) with small hand-written codecs between structs and
// store.Record. The Scheduler owns the appointment lifecycle:
//
//	scheduled ──Cancel──▶ cancelled
//	    │
//	    └──Complete──▶ completed
//
// Book rejects a start time that overlaps another scheduled appointment of
// the same barber. State changes are published through an EventPublisher
// (MQTT in production); a failed publish is logged and never undoes the
// stored change.
package booking
