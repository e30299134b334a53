package influxdb

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/donbarbero/booking-core/internal/infrastructure/config"
	"github.com/donbarbero/booking-core/internal/infrastructure/database"
	"github.com/donbarbero/booking-core/internal/store"
)

var testTime = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

func TestStatementPoint(t *testing.T) {
	timeout := fmt.Errorf("selecting from clients: %w", database.ErrAcquireTimeout)

	tests := []struct {
		name     string
		ev       store.StatementEvent
		wantTags string
		wantRows string
	}{
		{
			name:     "ok",
			ev:       store.StatementEvent{Operation: store.OpSelect, Table: "clients", Duration: 2500 * time.Microsecond, Rows: 3},
			wantTags: "statements,operation=select,outcome=ok,table=clients ",
			wantRows: "duration_ms=2.5,rows=3i",
		},
		{
			name:     "error",
			ev:       store.StatementEvent{Operation: store.OpInsert, Table: "appointments", Duration: time.Millisecond, Err: errors.New("duplicate")},
			wantTags: "statements,operation=insert,outcome=error,table=appointments ",
			wantRows: "rows=0i",
		},
		{
			name:     "acquire timeout",
			ev:       store.StatementEvent{Operation: store.OpSelect, Table: "clients", Err: timeout},
			wantTags: "statements,operation=select,outcome=acquire_timeout,table=clients ",
			wantRows: "rows=0i",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := write.PointToLineProtocol(statementPoint(tt.ev, testTime), time.Second)
			if !strings.HasPrefix(line, tt.wantTags) {
				t.Errorf("line = %q, want prefix %q", line, tt.wantTags)
			}
			if !strings.Contains(line, tt.wantRows) {
				t.Errorf("line = %q, want %q", line, tt.wantRows)
			}
		})
	}
}

func TestEventPoint(t *testing.T) {
	line := write.PointToLineProtocol(eventPoint("appointment.cancelled", testTime), time.Second)
	want := fmt.Sprintf("booking_events,event=appointment.cancelled count=1i %d", testTime.Unix())
	if strings.TrimSpace(line) != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}

func TestBatchSettings(t *testing.T) {
	tests := []struct {
		batch, flush         int
		wantBatch, wantFlush int
	}{
		{500, 5, 500, 5},
		{0, 0, defaultBatchSize, defaultFlushInterval},
		{-5, -1, defaultBatchSize, defaultFlushInterval},
	}
	for _, tt := range tests {
		b, f := batchSettings(config.InfluxDBConfig{BatchSize: tt.batch, FlushInterval: tt.flush})
		if b != tt.wantBatch || f != tt.wantFlush {
			t.Errorf("batchSettings(%d, %d) = (%d, %d), want (%d, %d)", tt.batch, tt.flush, b, f, tt.wantBatch, tt.wantFlush)
		}
	}
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions(config.InfluxDBConfig{BatchSize: 250, FlushInterval: 3})
	if opts.BatchSize() != 250 {
		t.Errorf("BatchSize() = %d, want 250", opts.BatchSize())
	}
	if opts.FlushInterval() != 3000 {
		t.Errorf("FlushInterval() = %d ms, want 3000", opts.FlushInterval())
	}
}
