package store

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Direction is the sort direction of an Order.
type Direction int

const (
	// Ascending is the default direction.
	Ascending Direction = iota
	// Descending sorts largest first.
	Descending
)

// String returns the SQL keyword for the direction.
func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// Order is a single-column ordering.
type Order struct {
	Column    string
	Direction Direction
}

// IsZero reports whether no ordering is set.
func (o Order) IsZero() bool { return o.Column == "" }

// String renders the order in the "<column>.<direction>" form ParseOrder accepts.
func (o Order) String() string {
	if o.IsZero() {
		return ""
	}
	return o.Column + "." + strings.ToLower(o.Direction.String())
}

// ParseOrder parses "<column>.<direction>". The input must split on "." into
// exactly two parts with a non-empty column. The direction is Descending only
// for a case-insensitive "desc"; any other token is Ascending.
func ParseOrder(s string) (Order, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 || parts[0] == "" {
		return Order{}, fmt.Errorf("%w: %q (want <column>.<direction>)", ErrInvalidOrder, s)
	}
	o := Order{Column: parts[0], Direction: Ascending}
	if strings.EqualFold(parts[1], "desc") {
		o.Direction = Descending
	}
	return o, nil
}

// Descriptor describes a read: equality filters joined with AND, an optional
// order and optional pagination. Zero Limit or Offset means absent.
type Descriptor struct {
	Filters map[string]any
	Order   Order
	Limit   int
	Offset  int
}

// ToInt coerces a limit or offset from arbitrary input, truncating toward
// zero. nil and "" yield 0. Negative and non-numeric input is rejected.
func ToInt(v any) (int, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return ToInt(x.String())
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			f = float64(n)
			break
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidDescriptor, x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidDescriptor, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidDescriptor, v)
	}
	f = math.Trunc(f)
	if f < 0 {
		return 0, fmt.Errorf("%w: %v is negative", ErrInvalidDescriptor, v)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v is too large", ErrInvalidDescriptor, v)
	}
	return int(f), nil
}

// Reserved query-string keys. Every other key is an equality filter.
const (
	ParamOrder  = "order"
	ParamLimit  = "limit"
	ParamOffset = "offset"
)

// ParseDescriptor builds a Descriptor from URL query values. columns is the
// allow-list for filter and order columns; nil allows any valid identifier.
// Only the first value of a repeated key is used.
func ParseDescriptor(values url.Values, columns []string) (Descriptor, error) {
	var allowed map[string]struct{}
	if columns != nil {
		allowed = make(map[string]struct{}, len(columns))
		for _, c := range columns {
			allowed[c] = struct{}{}
		}
	}
	check := func(col string) error {
		if err := validateIdentifier(col); err != nil {
			return err
		}
		if allowed != nil {
			if _, ok := allowed[col]; !ok {
				return fmt.Errorf("%w: %q", ErrUnknownColumn, col)
			}
		}
		return nil
	}

	var d Descriptor
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		v := vals[0]

		switch key {
		case ParamOrder:
			if v == "" {
				continue
			}
			o, err := ParseOrder(v)
			if err != nil {
				return Descriptor{}, err
			}
			if err := check(o.Column); err != nil {
				return Descriptor{}, err
			}
			d.Order = o
		case ParamLimit:
			n, err := ToInt(v)
			if err != nil {
				return Descriptor{}, fmt.Errorf("limit: %w", err)
			}
			d.Limit = n
		case ParamOffset:
			n, err := ToInt(v)
			if err != nil {
				return Descriptor{}, fmt.Errorf("offset: %w", err)
			}
			d.Offset = n
		default:
			if err := check(key); err != nil {
				return Descriptor{}, err
			}
			if d.Filters == nil {
				d.Filters = make(map[string]any)
			}
			d.Filters[key] = v
		}
	}
	return d, nil
}
