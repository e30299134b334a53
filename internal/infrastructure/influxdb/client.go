package influxdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/donbarbero/booking-core/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds
)

// Client records statement and booking-event metrics in one InfluxDB
// bucket. Points go through the batching write API, so recording never
// waits on the network; Flush pushes out whatever is buffered.
//
// A zero Client is a disconnected client: every method is a safe no-op or
// returns ErrNotConnected. All methods are safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	connected atomic.Bool

	mu      sync.RWMutex
	onError func(err error)
}

// Connect pings the configured server and starts the batching writer.
//
// Parameters:
//   - cfg: InfluxDB section of the service configuration
//
// Returns:
//   - *Client: Client ready to record points
//   - error: ErrDisabled when metrics are switched off, ErrConnectionFailed
//     when the server does not answer a ping
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, clientOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	c.connected.Store(true)
	go c.forwardErrors(c.writeAPI.Errors())
	return c, nil
}

// clientOptions maps the batch settings onto the library's options. The
// flush interval is configured in seconds; the library wants milliseconds.
func clientOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batchSize, flushInterval := batchSettings(cfg)
	// #nosec G115 -- batchSettings returns positive values
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(flushInterval) * uint(time.Second/time.Millisecond))
}

// batchSettings returns the batch size and flush interval (seconds), with
// defaults for non-positive values.
func batchSettings(cfg config.InfluxDBConfig) (batchSize, flushInterval int) {
	batchSize = cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval = cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	return batchSize, flushInterval
}

func ping(ctx context.Context, client influxdb2.Client) error {
	healthy, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !healthy {
		return fmt.Errorf("ping: server not healthy")
	}
	return nil
}

// forwardErrors hands asynchronous write failures to the OnError callback
// until the write API is closed.
func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()
		if callback != nil {
			callback(err)
		}
	}
}

// SetOnError registers the callback for failed background writes.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// IsConnected reports whether Connect succeeded and Close has not been
// called. It does not touch the network; see HealthCheck.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// HealthCheck pings the server. GET /health reports its result.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(ctx, c.client); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// Flush blocks until every buffered point has been sent. It is a no-op on
// a disconnected client.
func (c *Client) Flush() {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.Flush()
}

// Close stops recording and releases the underlying client. Points still
// buffered are written by the library before it returns; call Flush first
// to bound that work explicitly. Close is idempotent.
func (c *Client) Close() error {
	if !c.connected.CompareAndSwap(true, false) {
		return nil
	}
	c.client.Close()
	return nil
}
