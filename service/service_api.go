//    Copyright 2024 The LineKeeper authors
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package service

import (
	"context"
	"time"

	"github.com/linekeeper/LineKeeper/model"
	"github.com/linekeeper/LineKeeper/service/pins"
)

// Line kinds as reported in statuses and events.
const (
	LineKindGPIO = "gpio"
	LineKindPwm  = "pwm"
)

// Line event types.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventValueChanged = "value-changed"
	EventPwmChanged   = "pwm-changed"
)

// LineStatus describes one currently claimed line.
type LineStatus struct {
	Line model.LineID         `json:"line"`
	Kind string               `json:"kind"`
	GPIO *pins.DigitalPinInfo `json:"gpio,omitempty"`
	Pwm  *pins.PwmChannelInfo `json:"pwm,omitempty"`
	// Human readable PWM period, e.g. "1,000,000 ns".
	PeriodHuman string `json:"periodHuman,omitempty"`
}

// LineEvent is published after every successful state change of a line.
type LineEvent struct {
	Line  model.LineID `json:"line"`
	Kind  string       `json:"kind"`
	Event string       `json:"event"`
	Value string       `json:"value,omitempty"`
}

// Service manages the claimed lines of this process and exposes the
// operations of the HTTP surface.
type Service interface {
	// ConnectGPIO claims the given line as a digital pin.
	ConnectGPIO(ctx context.Context, line model.LineID, direction model.Direction) (pins.DigitalPinInfo, error)
	// ReadGPIO reads the value of a connected digital pin.
	ReadGPIO(ctx context.Context, line model.LineID) (model.Value, error)
	// WriteGPIO writes the value of a connected digital pin.
	WriteGPIO(ctx context.Context, line model.LineID, value model.Value) error
	// ConnectPwm claims the given line as a PWM channel.
	ConnectPwm(ctx context.Context, line model.LineID) (pins.PwmChannelInfo, error)
	// SetPwmPeriod sets the period of a connected PWM channel.
	SetPwmPeriod(ctx context.Context, line model.LineID, period time.Duration) error
	// SetPwmDutyCycle sets the duty cycle fraction of a connected PWM channel.
	SetPwmDutyCycle(ctx context.Context, line model.LineID, fraction float64) error
	// SetPwmEnabled enables or disables a connected PWM channel.
	SetPwmEnabled(ctx context.Context, line model.LineID, enabled bool) error
	// DisconnectLine closes the handle that claims the given line.
	DisconnectLine(ctx context.Context, line model.LineID) error
	// Lines returns the status of all claimed lines.
	Lines() []LineStatus

	// RegisterLineEventReceiver registers a callback for line events.
	// The returned cancel function removes the registration.
	RegisterLineEventReceiver(cb func(LineEvent)) context.CancelFunc

	// Run the service until the given context is canceled, then close
	// all remaining handles.
	Run(ctx context.Context) error
	// Close all remaining handles.
	Close(ctx context.Context) error
}
