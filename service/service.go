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
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/mattn/go-pubsub"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/linekeeper/LineKeeper/model"
	"github.com/linekeeper/LineKeeper/service/pins"
	"github.com/linekeeper/LineKeeper/service/sysfs"
	"github.com/linekeeper/LineKeeper/service/util"
)

type Config struct {
	ProgramVersion string
	// GPIORoot overrides the GPIO class mount point (empty means default).
	GPIORoot string
	// PwmRoot overrides the PWM class mount point (empty means default).
	PwmRoot string
}

type Dependencies struct {
	Log   zerolog.Logger
	Board model.Board
	FS    sysfs.FileAccessor
}

type service struct {
	Config
	Dependencies

	registry pins.Registry
	events   *pubsub.PubSub

	mutex sync.Mutex
	gpios map[model.LineID]pins.DigitalPin
	pwms  map[model.LineID]pins.PwmChannel
}

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Log = deps.Log.With().Str("component", "service").Logger()
	if err := deps.Board.Validate(); err != nil {
		return nil, maskAny(err)
	}
	if deps.FS == nil {
		deps.FS = sysfs.NewFileAccessor()
	}
	return &service{
		Config:       conf,
		Dependencies: deps,
		registry:     pins.NewRegistry(),
		events:       pubsub.New(),
		gpios:        make(map[model.LineID]pins.DigitalPin),
		pwms:         make(map[model.LineID]pins.PwmChannel),
	}, nil
}

// pinDeps builds the dependencies passed into connect operations.
func (s *service) pinDeps() pins.Dependencies {
	return pins.Dependencies{
		Log:      s.Log,
		Board:    s.Board,
		Registry: s.registry,
		FS:       s.FS,
		GPIORoot: s.GPIORoot,
		PwmRoot:  s.PwmRoot,
	}
}

// ConnectGPIO claims the given line as a digital pin.
func (s *service) ConnectGPIO(ctx context.Context, line model.LineID, direction model.Direction) (pins.DigitalPinInfo, error) {
	connectGPIORequestsTotal.Inc()
	pin, err := pins.ConnectDigitalPin(ctx, pins.DigitalPinConfig{
		Line:      line,
		Direction: direction,
	}, s.pinDeps())
	if err != nil {
		return pins.DigitalPinInfo{}, maskAny(err)
	}
	s.mutex.Lock()
	s.gpios[line] = pin
	claimedLines := len(s.gpios) + len(s.pwms)
	s.mutex.Unlock()
	claimedLinesGauge.Set(float64(claimedLines))
	s.publish(LineEvent{Line: line, Kind: LineKindGPIO, Event: EventConnected})
	return pin.Info(), nil
}

// ReadGPIO reads the value of a connected digital pin.
func (s *service) ReadGPIO(ctx context.Context, line model.LineID) (model.Value, error) {
	pin, err := s.gpioByLine(line)
	if err != nil {
		return model.ValueLow, maskAny(err)
	}
	value, err := pin.Read(ctx)
	if err != nil {
		return model.ValueLow, maskAny(err)
	}
	return value, nil
}

// WriteGPIO writes the value of a connected digital pin.
func (s *service) WriteGPIO(ctx context.Context, line model.LineID, value model.Value) error {
	pin, err := s.gpioByLine(line)
	if err != nil {
		return maskAny(err)
	}
	if err := pin.Write(ctx, value); err != nil {
		return maskAny(err)
	}
	valueStr, _ := value.SysfsString()
	s.publish(LineEvent{Line: line, Kind: LineKindGPIO, Event: EventValueChanged, Value: valueStr})
	return nil
}

// ConnectPwm claims the given line as a PWM channel.
func (s *service) ConnectPwm(ctx context.Context, line model.LineID) (pins.PwmChannelInfo, error) {
	connectPwmRequestsTotal.Inc()
	channel, err := pins.ConnectPwmChannel(ctx, pins.PwmChannelConfig{
		Line: line,
	}, s.pinDeps())
	if err != nil {
		return pins.PwmChannelInfo{}, maskAny(err)
	}
	s.mutex.Lock()
	s.pwms[line] = channel
	claimedLines := len(s.gpios) + len(s.pwms)
	s.mutex.Unlock()
	claimedLinesGauge.Set(float64(claimedLines))
	s.publish(LineEvent{Line: line, Kind: LineKindPwm, Event: EventConnected})
	return channel.Info(), nil
}

// SetPwmPeriod sets the period of a connected PWM channel.
func (s *service) SetPwmPeriod(ctx context.Context, line model.LineID, period time.Duration) error {
	channel, err := s.pwmByLine(line)
	if err != nil {
		return maskAny(err)
	}
	if err := channel.SetPeriod(ctx, period); err != nil {
		return maskAny(err)
	}
	s.publish(LineEvent{Line: line, Kind: LineKindPwm, Event: EventPwmChanged})
	return nil
}

// SetPwmDutyCycle sets the duty cycle fraction of a connected PWM channel.
func (s *service) SetPwmDutyCycle(ctx context.Context, line model.LineID, fraction float64) error {
	channel, err := s.pwmByLine(line)
	if err != nil {
		return maskAny(err)
	}
	if err := channel.SetDutyCycle(ctx, fraction); err != nil {
		return maskAny(err)
	}
	s.publish(LineEvent{Line: line, Kind: LineKindPwm, Event: EventPwmChanged})
	return nil
}

// SetPwmEnabled enables or disables a connected PWM channel.
func (s *service) SetPwmEnabled(ctx context.Context, line model.LineID, enabled bool) error {
	channel, err := s.pwmByLine(line)
	if err != nil {
		return maskAny(err)
	}
	if enabled {
		err = channel.Enable(ctx)
	} else {
		err = channel.Disable(ctx)
	}
	if err != nil {
		return maskAny(err)
	}
	s.publish(LineEvent{Line: line, Kind: LineKindPwm, Event: EventPwmChanged})
	return nil
}

// DisconnectLine closes the handle that claims the given line.
func (s *service) DisconnectLine(ctx context.Context, line model.LineID) error {
	disconnectRequestsTotal.Inc()
	s.mutex.Lock()
	gpio, foundGPIO := s.gpios[line]
	channel, foundPwm := s.pwms[line]
	delete(s.gpios, line)
	delete(s.pwms, line)
	claimedLines := len(s.gpios) + len(s.pwms)
	s.mutex.Unlock()
	claimedLinesGauge.Set(float64(claimedLines))
	switch {
	case foundGPIO:
		err := gpio.Close(ctx)
		s.publish(LineEvent{Line: line, Kind: LineKindGPIO, Event: EventDisconnected})
		return maskAny(err)
	case foundPwm:
		err := channel.Close(ctx)
		s.publish(LineEvent{Line: line, Kind: LineKindPwm, Event: EventDisconnected})
		return maskAny(err)
	}
	return errors.Wrapf(pins.UnknownLineError, "line %d is not connected", line)
}

// Lines returns the status of all claimed lines.
func (s *service) Lines() []LineStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	result := make([]LineStatus, 0, len(s.gpios)+len(s.pwms))
	for line, pin := range s.gpios {
		info := pin.Info()
		result = append(result, LineStatus{
			Line: line,
			Kind: LineKindGPIO,
			GPIO: &info,
		})
	}
	for line, channel := range s.pwms {
		info := channel.Info()
		result = append(result, LineStatus{
			Line:        line,
			Kind:        LineKindPwm,
			Pwm:         &info,
			PeriodHuman: humanize.Comma(info.Period) + " ns",
		})
	}
	return result
}

// RegisterLineEventReceiver registers a callback for line events.
func (s *service) RegisterLineEventReceiver(cb func(LineEvent)) context.CancelFunc {
	wcb := func(evt LineEvent) {
		cb(evt)
	}
	s.events.Sub(wcb)
	return func() {
		s.events.Leave(wcb)
	}
}

// Run the service until the given context is canceled.
func (s *service) Run(ctx context.Context) error {
	s.Log.Info().Str("board", s.Board.Name).Msg("Line service started")
	<-ctx.Done()
	return maskAny(s.Close(context.Background()))
}

// Close all remaining handles.
func (s *service) Close(ctx context.Context) error {
	s.mutex.Lock()
	gpios := s.gpios
	pwms := s.pwms
	s.gpios = make(map[model.LineID]pins.DigitalPin)
	s.pwms = make(map[model.LineID]pins.PwmChannel)
	s.mutex.Unlock()
	claimedLinesGauge.Set(0)
	var closeErr util.SyncError
	for line, pin := range gpios {
		if err := pin.Close(ctx); err != nil {
			s.Log.Warn().Err(err).Int("line", int(line)).Msg("Failed to close digital pin")
			closeErr.Add(err)
		}
	}
	for line, channel := range pwms {
		if err := channel.Close(ctx); err != nil {
			s.Log.Warn().Err(err).Int("line", int(line)).Msg("Failed to close PWM channel")
			closeErr.Add(err)
		}
	}
	return maskAny(closeErr.AsError())
}

// publish a line event to all registered receivers.
func (s *service) publish(evt LineEvent) {
	lineEventsTotal.WithLabelValues(evt.Event).Inc()
	s.events.Pub(evt)
}

// gpioByLine returns the connected digital pin for the given line.
func (s *service) gpioByLine(line model.LineID) (pins.DigitalPin, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	pin, found := s.gpios[line]
	if !found {
		return nil, errors.Wrapf(pins.UnknownLineError, "line %d is not connected as GPIO", line)
	}
	return pin, nil
}

// pwmByLine returns the connected PWM channel for the given line.
func (s *service) pwmByLine(line model.LineID) (pins.PwmChannel, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	channel, found := s.pwms[line]
	if !found {
		return nil, errors.Wrapf(pins.UnknownLineError, "line %d is not connected as PWM", line)
	}
	return channel, nil
}

var maskAny = errors.WithStack
