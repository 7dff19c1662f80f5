package pins

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/linekeeper/LineKeeper/model"
	"github.com/linekeeper/LineKeeper/service/sysfs"
)

// DigitalPin is an exclusively claimed, direction configured GPIO line.
// Operations must be issued sequentially per handle; a handle level
// mutex serializes concurrent misuse.
type DigitalPin interface {
	// Read the current value of the pin.
	// Fails with InvalidOperationError when the pin is configured for output.
	Read(ctx context.Context) (model.Value, error)
	// Write the given value to the pin.
	// Fails with InvalidOperationError when the pin is configured for input.
	Write(ctx context.Context, value model.Value) error
	// Watch for the given edge transitions.
	// Always fails with NotImplementedError.
	Watch(ctx context.Context, edge model.Edge) error
	// Info returns a snapshot of the pin configuration.
	Info() DigitalPinInfo
	// Close releases the claim and unexports the line.
	// The claim is released even when the unexport write fails.
	// A second Close is a no-op.
	Close(ctx context.Context) error
}

// DigitalPinInfo is a read-only snapshot of a connected pin.
type DigitalPinInfo struct {
	Line      model.LineID    `json:"line"`
	Direction model.Direction `json:"direction"`
}

// DigitalPinConfig selects the line and direction to connect.
type DigitalPinConfig struct {
	Line      model.LineID
	Direction model.Direction
}

// ConnectDigitalPin claims the configured line, exports it and configures
// its direction. On any failure after the claim was acquired, the claim
// is released before the error is returned.
func ConnectDigitalPin(ctx context.Context, config DigitalPinConfig, deps Dependencies) (DigitalPin, error) {
	log := deps.Log.With().
		Str("component", "digital-pin").
		Int("line", int(config.Line)).
		Logger()
	if !deps.Board.HasGPIOLine(config.Line) {
		return nil, errors.Wrapf(UnknownLineError, "line %d is not a GPIO line on board '%s'", config.Line, deps.Board.Name)
	}
	directionStr, err := config.Direction.SysfsString()
	if err != nil {
		return nil, maskAny(err)
	}
	lock, err := deps.Registry.Acquire(config.Line)
	if err != nil {
		claimConflictsTotal.Inc()
		return nil, maskAny(err)
	}
	// Release the claim on every failure path below.
	connected := false
	defer func() {
		if !connected {
			deps.Registry.Release(lock)
		}
	}()
	paths := sysfs.GpioPathsFor(deps.gpioRoot(), config.Line)
	if err := deps.FS.WriteText(ctx, paths.Export, strconv.Itoa(int(config.Line))); err != nil {
		return nil, maskAny(err)
	}
	if err := deps.FS.WriteText(ctx, paths.Direction, directionStr); err != nil {
		return nil, maskAny(err)
	}
	connected = true
	digitalPinsConnectedTotal.Inc()
	log.Debug().Str("direction", directionStr).Msg("Connected digital pin")
	return &digitalPin{
		log:       log,
		line:      config.Line,
		direction: config.Direction,
		paths:     paths,
		fs:        deps.FS,
		registry:  deps.Registry,
		lock:      lock,
	}, nil
}

type digitalPin struct {
	log       zerolog.Logger
	line      model.LineID
	direction model.Direction
	paths     sysfs.GpioPaths
	fs        sysfs.FileAccessor
	registry  Registry

	mutex  sync.Mutex
	lock   *Lock
	closed bool
}

// Read the current value of the pin.
func (p *digitalPin) Read(ctx context.Context) (model.Value, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return model.ValueLow, errors.Wrapf(InvalidOperationError, "pin %d is closed", p.line)
	}
	if p.direction == model.DirectionOutput {
		return model.ValueLow, errors.Wrapf(InvalidOperationError, "pin %d is configured for output", p.line)
	}
	content, err := p.fs.ReadText(ctx, p.paths.Value)
	if err != nil {
		return model.ValueLow, maskAny(err)
	}
	return model.ParseValue(strings.TrimSpace(content)), nil
}

// Write the given value to the pin.
func (p *digitalPin) Write(ctx context.Context, value model.Value) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return errors.Wrapf(InvalidOperationError, "pin %d is closed", p.line)
	}
	if p.direction == model.DirectionInput {
		return errors.Wrapf(InvalidOperationError, "pin %d is configured for input", p.line)
	}
	valueStr, err := value.SysfsString()
	if err != nil {
		return maskAny(err)
	}
	if err := p.fs.WriteText(ctx, p.paths.Value, valueStr); err != nil {
		return maskAny(err)
	}
	return nil
}

// Watch for the given edge transitions.
func (p *digitalPin) Watch(ctx context.Context, edge model.Edge) error {
	return errors.Wrap(NotImplementedError, "edge watching")
}

// Info returns a snapshot of the pin configuration.
func (p *digitalPin) Info() DigitalPinInfo {
	return DigitalPinInfo{
		Line:      p.line,
		Direction: p.direction,
	}
}

// Close releases the claim and unexports the line.
func (p *digitalPin) Close(ctx context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	// The claim is released unconditionally; a failing unexport write must
	// not leave the line wedged in claimed state.
	p.registry.Release(p.lock)
	digitalPinsClosedTotal.Inc()
	if err := p.fs.WriteText(ctx, p.paths.Unexport, strconv.Itoa(int(p.line))); err != nil {
		p.log.Debug().Err(err).Msg("Unexport failed")
		return maskAny(err)
	}
	p.log.Debug().Msg("Closed digital pin")
	return nil
}
