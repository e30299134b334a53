package store

import "errors"

// Sentinel errors returned by the accessor. Engine errors are wrapped, not
// translated, so errors.Is/As still reach the driver error.
var (
	// ErrInvalidIdentifier is returned for a table or column name that is not
	// a plain identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrUnknownTable is returned for a table outside the configured allow-list.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned by ParseDescriptor for a filter or order
	// column outside the caller's column list.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidOrder is returned for an order string that is not "<column>.<direction>".
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInvalidDescriptor is returned for a limit or offset that is negative
	// or not numeric.
	ErrInvalidDescriptor = errors.New("invalid query descriptor")

	// ErrEmptyFilter is returned by Update and Delete when no filter is
	// given. Unfiltered mutations would touch every row.
	ErrEmptyFilter = errors.New("update and delete require at least one filter")

	// ErrEmptyRecord is returned by Insert and Update for a record with no
	// columns.
	ErrEmptyRecord = errors.New("record has no columns")
)
