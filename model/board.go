package model

import "github.com/pkg/errors"

// PwmChip describes one PWM controller and the lines it drives.
// The index of a line in Lines is its channel number on the chip.
type PwmChip struct {
	// Chip number as exposed by sysfs (pwmchip<Number>).
	Number int `json:"number"`
	// Lines driven by this chip, ordered by channel.
	Lines []LineID `json:"lines"`
}

// Board describes the hardware lines available on a specific board.
type Board struct {
	// Name of the board.
	Name string `json:"name"`
	// GPIOLines is the allow-list of valid GPIO line numbers.
	GPIOLines []LineID `json:"gpioLines"`
	// PwmChips maps PWM capable lines onto chip/channel addresses.
	PwmChips []PwmChip `json:"pwmChips"`
}

// DefaultRaspberryPi returns the board description for Raspberry Pi
// models with the standard 40-pin header.
func DefaultRaspberryPi() Board {
	gpioLines := make([]LineID, 0, 26)
	for id := LineID(2); id <= 27; id++ {
		gpioLines = append(gpioLines, id)
	}
	return Board{
		Name:      "raspberry-pi",
		GPIOLines: gpioLines,
		PwmChips: []PwmChip{
			{Number: 0, Lines: []LineID{12, 18}},
			{Number: 1, Lines: []LineID{13, 19}},
		},
	}
}

// HasGPIOLine returns true when the given line is in the GPIO allow-list.
func (b Board) HasGPIOLine(line LineID) bool {
	for _, x := range b.GPIOLines {
		if x == line {
			return true
		}
	}
	return false
}

// LookupPwm resolves the given line to its chip number and channel index.
// Returns false when the line is not driven by any configured chip.
func (b Board) LookupPwm(line LineID) (chip, channel int, found bool) {
	for _, c := range b.PwmChips {
		for ch, x := range c.Lines {
			if x == line {
				return c.Number, ch, true
			}
		}
	}
	return 0, 0, false
}

// Validate the board description.
func (b Board) Validate() error {
	seen := make(map[LineID]struct{})
	for _, x := range b.GPIOLines {
		if _, found := seen[x]; found {
			return errors.Wrapf(ValidationError, "duplicate GPIO line %d", x)
		}
		seen[x] = struct{}{}
	}
	seenPwm := make(map[LineID]struct{})
	for _, c := range b.PwmChips {
		for _, x := range c.Lines {
			if _, found := seenPwm[x]; found {
				return errors.Wrapf(ValidationError, "line %d driven by multiple PWM channels", x)
			}
			seenPwm[x] = struct{}{}
		}
	}
	return nil
}
