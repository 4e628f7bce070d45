package model

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects which element representation the rule modules read.
// It is fixed per rule-module instance and never inferred from the data.
type Mode string

const (
	// ModeDOM evaluates parsed DOM nodes (goquery selections).
	ModeDOM Mode = "dom"
	// ModeVirtual evaluates plain-data element descriptions.
	ModeVirtual Mode = "virtual"
)

// ErrInvalidMode is returned by ParseMode for anything but dom or virtual.
var ErrInvalidMode = errors.New("invalid mode")

// Valid reports whether m is one of the two supported modes.
func (m Mode) Valid() bool {
	return m == ModeDOM || m == ModeVirtual
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode parses a user supplied mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidMode, s, ModeDOM, ModeVirtual)
	}
	return m, nil
}
