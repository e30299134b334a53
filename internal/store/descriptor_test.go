package store

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input   string
		want    Order
		wantErr bool
	}{
		{"col.desc", Order{"col", Descending}, false},
		{"COL.DESC", Order{"COL", Descending}, false},
		{"col.Desc", Order{"col", Descending}, false},
		{"col.asc", Order{"col", Ascending}, false},
		{"col.sideways", Order{"col", Ascending}, false},
		{"col.", Order{"col", Ascending}, false},
		{"col", Order{}, true},
		{"a.b.c", Order{}, true},
		{".desc", Order{}, true},
		{"", Order{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOrder(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrder(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidOrder) {
				t.Errorf("ParseOrder(%q) error = %v, want ErrInvalidOrder", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseOrder(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOrder_String(t *testing.T) {
	if got := (Order{Column: "name", Direction: Descending}).String(); got != "name.desc" {
		t.Errorf("String() = %q", got)
	}
	if got := (Order{}).String(); got != "" {
		t.Errorf("zero String() = %q", got)
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    int
		wantErr bool
	}{
		{"nil", nil, 0, false},
		{"empty string", "", 0, false},
		{"int", 3, 3, false},
		{"int64", int64(7), 7, false},
		{"uint8", uint8(9), 9, false},
		{"numeric string", "3", 3, false},
		{"padded string", " 4 ", 4, false},
		{"float truncates", 3.9, 3, false},
		{"float string truncates", "3.9", 3, false},
		{"float32", float32(2.5), 2, false},
		{"json number", json.Number("12"), 12, false},
		{"true", true, 1, false},
		{"false", false, 0, false},
		{"negative", -1, 0, true},
		{"negative string", "-2", 0, true},
		{"non-numeric", "abc", 0, true},
		{"unsupported type", []int{1}, 0, true},
		{"too large", 1e12, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToInt(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("ToInt(%v) error = %v, want ErrInvalidDescriptor", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ToInt(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDescriptor(t *testing.T) {
	columns := []string{"id", "name", "phone"}

	t.Run("reserved keys and filters", func(t *testing.T) {
		q := url.Values{
			"name":   {"Ana"},
			"order":  {"name.DESC"},
			"limit":  {"3"},
			"offset": {"2"},
		}
		d, err := ParseDescriptor(q, columns)
		if err != nil {
			t.Fatalf("ParseDescriptor() error = %v", err)
		}
		if d.Filters["name"] != "Ana" || len(d.Filters) != 1 {
			t.Errorf("Filters = %v", d.Filters)
		}
		if d.Order != (Order{Column: "name", Direction: Descending}) {
			t.Errorf("Order = %+v", d.Order)
		}
		if d.Limit != 3 || d.Offset != 2 {
			t.Errorf("Limit, Offset = %d, %d; want 3, 2", d.Limit, d.Offset)
		}
	})

	t.Run("empty values are absent", func(t *testing.T) {
		d, err := ParseDescriptor(url.Values{"order": {""}, "limit": {""}}, columns)
		if err != nil {
			t.Fatalf("ParseDescriptor() error = %v", err)
		}
		if !d.Order.IsZero() || d.Limit != 0 || d.Filters != nil {
			t.Errorf("descriptor = %+v, want zero", d)
		}
	})

	errCases := []struct {
		name string
		q    url.Values
		want error
	}{
		{"unknown filter column", url.Values{"password": {"x"}}, ErrUnknownColumn},
		{"unknown order column", url.Values{"order": {"password.asc"}}, ErrUnknownColumn},
		{"malformed order", url.Values{"order": {"name"}}, ErrInvalidOrder},
		{"invalid identifier", url.Values{"name;--": {"x"}}, ErrInvalidIdentifier},
		{"bad limit", url.Values{"limit": {"ten"}}, ErrInvalidDescriptor},
		{"negative offset", url.Values{"offset": {"-1"}}, ErrInvalidDescriptor},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor(tt.q, columns)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseDescriptor() error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("nil columns allows any identifier", func(t *testing.T) {
		d, err := ParseDescriptor(url.Values{"anything": {"1"}}, nil)
		if err != nil {
			t.Fatalf("ParseDescriptor() error = %v", err)
		}
		if d.Filters["anything"] != "1" {
			t.Errorf("Filters = %v", d.Filters)
		}
	})
}
