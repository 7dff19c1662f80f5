package pins

import (
	"github.com/rs/zerolog"

	"github.com/linekeeper/LineKeeper/model"
	"github.com/linekeeper/LineKeeper/service/sysfs"
)

// Dependencies needed to connect a pin or PWM channel.
type Dependencies struct {
	Log      zerolog.Logger
	Board    model.Board
	Registry Registry
	FS       sysfs.FileAccessor
	// GPIORoot overrides the GPIO class mount point (tests).
	GPIORoot string
	// PwmRoot overrides the PWM class mount point (tests).
	PwmRoot string
}

func (d Dependencies) gpioRoot() string {
	if d.GPIORoot == "" {
		return sysfs.DefaultGPIORoot
	}
	return d.GPIORoot
}

func (d Dependencies) pwmRoot() string {
	if d.PwmRoot == "" {
		return sysfs.DefaultPwmRoot
	}
	return d.PwmRoot
}
