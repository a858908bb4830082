package status

import (
	"fmt"
	"strings"
)

// Status is a notification lifecycle stage reported to the status service.
type Status string

const (
	Delivered Status = "DELIVERED"
	Clicked   Status = "CLICKED"
	Dismissed Status = "DISMISSED"
)

func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the known lifecycle stages.
func (s Status) Valid() bool {
	switch s {
	case Delivered, Clicked, Dismissed:
		return true
	}
	return false
}

// Parse converts a case-insensitive status name into a Status.
func Parse(v string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	return s, nil
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	return []byte(s), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
