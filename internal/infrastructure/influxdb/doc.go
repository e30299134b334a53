// Package influxdb records service metrics in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, non-blocking batched writes and health monitoring.
//
// # Measurements
//
//   - statements: one point per accessor statement, tagged operation, table
//     and outcome (ok, error, acquire_timeout), with fields duration_ms and
//     rows
//   - booking_events: one point per booking event, tagged event, with a
//     count field
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer func() {
//	    client.Flush()
//	    client.Close()
//	}()
//
//	st := store.New(db, store.WithObserver(client))
package influxdb
