package readstatus

import (
	"database/sql/driver"
	"fmt"
)

// Status is how far a reader has gotten with an article.
//
// The zero value is not a valid status.
type Status uint8

const (
	StatusToRead Status = iota + 1
	StatusReading
	StatusRead
)

var statusNames = map[Status]string{
	StatusToRead:  "to_read",
	StatusReading: "reading",
	StatusRead:    "read",
}

var statusesByName = map[string]Status{
	"to_read": StatusToRead,
	"reading": StatusReading,
	"read":    StatusRead,
}

// Statuses lists every valid status in declaration order.
func Statuses() []Status {
	return []Status{StatusToRead, StatusReading, StatusRead}
}

// ParseStatus maps the canonical string form back to a [Status].
func ParseStatus(s string) (Status, error) {
	st, ok := statusesByName[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}

	return st, nil
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}

	return []byte(name), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		return err
	}

	*s = st
	return nil
}

// Value stores the status as its canonical string.
func (s Status) Value() (driver.Value, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}

	return name, nil
}

// Scan reads a stored status. Anything outside the enumeration is reported
// as [ErrCorruptStatus] rather than [ErrInvalidStatus], since it came from the
// table and not from a caller.
func (s *Status) Scan(src any) error {
	var raw string
	switch src := src.(type) {
	case string:
		raw = src
	case []byte:
		raw = string(src)
	default:
		return fmt.Errorf("%w: unexpected type %T", ErrCorruptStatus, src)
	}

	st, ok := statusesByName[raw]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCorruptStatus, raw)
	}

	*s = st
	return nil
}
