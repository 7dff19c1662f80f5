// Copyright 2024 The LineKeeper authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sysfs

import (
	"fmt"

	"github.com/linekeeper/LineKeeper/model"
)

const (
	// DefaultGPIORoot is the standard kernel mount point of the GPIO class.
	DefaultGPIORoot = "/sys/class/gpio"
	// DefaultPwmRoot is the standard kernel mount point of the PWM class.
	DefaultPwmRoot = "/sys/class/pwm"
)

// GpioPaths holds the attribute file paths of a single GPIO line.
type GpioPaths struct {
	Export    string
	Unexport  string
	Direction string
	Value     string
	Edge      string
	ActiveLow string
	Device    string
	Subsystem string
	Uevent    string
}

// GpioPathsFor computes the attribute file paths of the given GPIO line.
// Pure computation; no filesystem access.
func GpioPathsFor(root string, line model.LineID) GpioPaths {
	lineDir := fmt.Sprintf("%s/gpio%d", root, line)
	return GpioPaths{
		Export:    root + "/export",
		Unexport:  root + "/unexport",
		Direction: lineDir + "/direction",
		Value:     lineDir + "/value",
		Edge:      lineDir + "/edge",
		ActiveLow: lineDir + "/active_low",
		Device:    lineDir + "/device",
		Subsystem: lineDir + "/subsystem",
		Uevent:    lineDir + "/uevent",
	}
}

// PwmPaths holds the attribute file paths of a single PWM channel.
type PwmPaths struct {
	Export    string
	Unexport  string
	Period    string
	DutyCycle string
	Enable    string
}

// PwmPathsFor computes the attribute file paths of the given PWM channel.
// Export/Unexport are chip level paths; the channel index is written to them.
// Pure computation; no filesystem access.
func PwmPathsFor(root string, chip, channel int) PwmPaths {
	chipDir := fmt.Sprintf("%s/pwmchip%d", root, chip)
	channelDir := fmt.Sprintf("%s/pwm%d", chipDir, channel)
	return PwmPaths{
		Export:    chipDir + "/export",
		Unexport:  chipDir + "/unexport",
		Period:    channelDir + "/period",
		DutyCycle: channelDir + "/duty_cycle",
		Enable:    channelDir + "/enable",
	}
}
