package model

import "github.com/pkg/errors"

// LineID identifies a single GPIO or PWM hardware line on the board.
type LineID int

// Direction of a digital GPIO line.
// Fixed for the lifetime of a connected pin.
type Direction byte

const (
	DirectionInput Direction = iota
	DirectionOutput
	DirectionInputOutput
)

// SysfsString returns the string written to the sysfs direction attribute.
func (d Direction) SysfsString() (string, error) {
	switch d {
	case DirectionInput:
		return "in", nil
	case DirectionOutput:
		return "out", nil
	case DirectionInputOutput:
		return "inout", nil
	}
	return "", errors.Wrapf(ValidationError, "unknown direction %d", d)
}

// ParseDirection parses a sysfs direction string.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "in":
		return DirectionInput, nil
	case "out":
		return DirectionOutput, nil
	case "inout":
		return DirectionInputOutput, nil
	}
	return 0, errors.Wrapf(ValidationError, "unknown direction '%s'", s)
}

// Value of a digital GPIO line.
type Value byte

const (
	ValueLow Value = iota
	ValueHigh
)

// SysfsString returns the string written to the sysfs value attribute.
func (v Value) SysfsString() (string, error) {
	switch v {
	case ValueLow:
		return "0", nil
	case ValueHigh:
		return "1", nil
	}
	return "", errors.Wrapf(ValidationError, "unknown value %d", v)
}

// ParseValue parses the content of the sysfs value attribute.
// Anything other than "1" is considered low.
func ParseValue(s string) Value {
	if s == "1" {
		return ValueHigh
	}
	return ValueLow
}

// Edge selects which signal transitions a line would report.
// Modeled for completeness; edge waiting is not implemented.
type Edge byte

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// SysfsString returns the string written to the sysfs edge attribute.
func (e Edge) SysfsString() (string, error) {
	switch e {
	case EdgeNone:
		return "none", nil
	case EdgeRising:
		return "rising", nil
	case EdgeFalling:
		return "falling", nil
	case EdgeBoth:
		return "both", nil
	}
	return "", errors.Wrapf(ValidationError, "unknown edge %d", e)
}

// ParseEdge parses a sysfs edge string.
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "none":
		return EdgeNone, nil
	case "rising":
		return EdgeRising, nil
	case "falling":
		return EdgeFalling, nil
	case "both":
		return EdgeBoth, nil
	}
	return 0, errors.Wrapf(ValidationError, "unknown edge '%s'", s)
}
