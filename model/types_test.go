package model

import "testing"

func TestDirectionSysfsString(t *testing.T) {
	tests := []struct {
		direction Direction
		expected  string
	}{
		{DirectionInput, "in"},
		{DirectionOutput, "out"},
		{DirectionInputOutput, "inout"},
	}
	for _, test := range tests {
		s, err := test.direction.SysfsString()
		if err != nil {
			t.Errorf("SysfsString(%d) failed: %v", test.direction, err)
		}
		if s != test.expected {
			t.Errorf("SysfsString(%d) = '%s', expected '%s'", test.direction, s, test.expected)
		}
		parsed, err := ParseDirection(s)
		if err != nil {
			t.Errorf("ParseDirection('%s') failed: %v", s, err)
		}
		if parsed != test.direction {
			t.Errorf("ParseDirection('%s') = %d, expected %d", s, parsed, test.direction)
		}
	}
	if _, err := Direction(99).SysfsString(); !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if _, err := ParseDirection("sideways"); !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestValueSysfsString(t *testing.T) {
	if s, _ := ValueLow.SysfsString(); s != "0" {
		t.Errorf("ValueLow = '%s', expected '0'", s)
	}
	if s, _ := ValueHigh.SysfsString(); s != "1" {
		t.Errorf("ValueHigh = '%s', expected '1'", s)
	}
	if _, err := Value(7).SysfsString(); !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if ParseValue("1") != ValueHigh {
		t.Error("ParseValue('1') should be high")
	}
	// Anything other than "1" reads as low.
	for _, s := range []string{"0", "", "x", "high"} {
		if ParseValue(s) != ValueLow {
			t.Errorf("ParseValue('%s') should be low", s)
		}
	}
}

func TestEdgeSysfsString(t *testing.T) {
	tests := []struct {
		edge     Edge
		expected string
	}{
		{EdgeNone, "none"},
		{EdgeRising, "rising"},
		{EdgeFalling, "falling"},
		{EdgeBoth, "both"},
	}
	for _, test := range tests {
		s, err := test.edge.SysfsString()
		if err != nil {
			t.Errorf("SysfsString(%d) failed: %v", test.edge, err)
		}
		if s != test.expected {
			t.Errorf("SysfsString(%d) = '%s', expected '%s'", test.edge, s, test.expected)
		}
		parsed, err := ParseEdge(s)
		if err != nil || parsed != test.edge {
			t.Errorf("ParseEdge('%s') = %d, %v", s, parsed, err)
		}
	}
	if _, err := ParseEdge("diagonal"); !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
