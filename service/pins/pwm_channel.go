package pins

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/linekeeper/LineKeeper/model"
	"github.com/linekeeper/LineKeeper/service/sysfs"
)

// PwmChannel is an exclusively claimed PWM line.
// Operations must be issued sequentially per handle; a handle level
// mutex serializes concurrent misuse.
type PwmChannel interface {
	// SetPeriod sets the total cycle duration.
	// Fails with InvalidArgumentError for negative durations.
	SetPeriod(ctx context.Context, period time.Duration) error
	// SetDutyCycle sets the active-high fraction of the period.
	// Fails with OutOfRangeError unless 0 <= fraction <= 1.
	SetDutyCycle(ctx context.Context, fraction float64) error
	// Enable the PWM output.
	Enable(ctx context.Context) error
	// Disable the PWM output.
	Disable(ctx context.Context) error
	// Info returns a snapshot of the channel state.
	Info() PwmChannelInfo
	// Close releases the claim and unexports the channel.
	// The claim is released even when the unexport write fails.
	// A second Close is a no-op.
	Close(ctx context.Context) error
}

// PwmChannelInfo is a read-only snapshot of a connected PWM channel.
type PwmChannelInfo struct {
	Line      model.LineID `json:"line"`
	Chip      int          `json:"chip"`
	Channel   int          `json:"channel"`
	Period    int64        `json:"periodNs"`
	DutyCycle float64      `json:"dutyCycle"`
	Enabled   bool         `json:"enabled"`
}

// PwmChannelConfig selects the line to connect.
type PwmChannelConfig struct {
	Line model.LineID
}

// ConnectPwmChannel claims the configured line, resolves its chip/channel
// address and exports the channel. On any failure after the claim was
// acquired, the claim is released before the error is returned.
// The channel starts with period 0, duty cycle 0 and output disabled.
func ConnectPwmChannel(ctx context.Context, config PwmChannelConfig, deps Dependencies) (PwmChannel, error) {
	log := deps.Log.With().
		Str("component", "pwm-channel").
		Int("line", int(config.Line)).
		Logger()
	chip, channel, found := deps.Board.LookupPwm(config.Line)
	if !found {
		return nil, errors.Wrapf(UnknownLineError, "line %d is not a PWM line on board '%s'", config.Line, deps.Board.Name)
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
	paths := sysfs.PwmPathsFor(deps.pwmRoot(), chip, channel)
	if err := deps.FS.WriteText(ctx, paths.Export, strconv.Itoa(channel)); err != nil {
		return nil, maskAny(err)
	}
	connected = true
	pwmChannelsConnectedTotal.Inc()
	log.Debug().Int("chip", chip).Int("channel", channel).Msg("Connected PWM channel")
	return &pwmChannel{
		log:      log,
		line:     config.Line,
		chip:     chip,
		channel:  channel,
		paths:    paths,
		fs:       deps.FS,
		registry: deps.Registry,
		lock:     lock,
	}, nil
}

type pwmChannel struct {
	log      zerolog.Logger
	line     model.LineID
	chip     int
	channel  int
	paths    sysfs.PwmPaths
	fs       sysfs.FileAccessor
	registry Registry

	mutex     sync.Mutex
	lock      *Lock
	closed    bool
	period    int64
	dutyCycle float64
	enabled   bool
}

// SetPeriod sets the total cycle duration.
// The duty cycle value presented to the hardware never exceeds the period
// currently in effect: when the period grows, the stored fraction is
// re-asserted against the old period before the period write and against
// the new period after it. When the period shrinks, the period is written
// first and the fraction re-applied afterwards.
func (p *pwmChannel) SetPeriod(ctx context.Context, period time.Duration) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return errors.Wrapf(InvalidOperationError, "channel for line %d is closed", p.line)
	}
	if period < 0 {
		return errors.Wrapf(InvalidArgumentError, "period must not be negative, got %s", period)
	}
	ns := period.Nanoseconds()
	if ns > p.period {
		if err := p.writeDutyCycle(ctx, p.dutyCycle, p.period); err != nil {
			return maskAny(err)
		}
		if err := p.writePeriod(ctx, ns); err != nil {
			return maskAny(err)
		}
		return maskAny(p.writeDutyCycle(ctx, p.dutyCycle, ns))
	}
	if err := p.writePeriod(ctx, ns); err != nil {
		return maskAny(err)
	}
	return maskAny(p.writeDutyCycle(ctx, p.dutyCycle, ns))
}

// SetDutyCycle sets the active-high fraction of the period.
// The fraction is stored; the nanosecond value written to the hardware is
// re-derived from it on every period change.
func (p *pwmChannel) SetDutyCycle(ctx context.Context, fraction float64) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return errors.Wrapf(InvalidOperationError, "channel for line %d is closed", p.line)
	}
	if fraction < 0 || fraction > 1 {
		return errors.Wrapf(OutOfRangeError, "duty cycle must be in [0,1], got %v", fraction)
	}
	if err := p.writeDutyCycle(ctx, fraction, p.period); err != nil {
		return maskAny(err)
	}
	p.dutyCycle = fraction
	return nil
}

// Enable the PWM output.
func (p *pwmChannel) Enable(ctx context.Context) error {
	return maskAny(p.setEnabled(ctx, true))
}

// Disable the PWM output.
func (p *pwmChannel) Disable(ctx context.Context) error {
	return maskAny(p.setEnabled(ctx, false))
}

func (p *pwmChannel) setEnabled(ctx context.Context, enabled bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return errors.Wrapf(InvalidOperationError, "channel for line %d is closed", p.line)
	}
	content := "0"
	if enabled {
		content = "1"
	}
	if err := p.fs.WriteText(ctx, p.paths.Enable, content); err != nil {
		return maskAny(err)
	}
	p.enabled = enabled
	return nil
}

// Info returns a snapshot of the channel state.
func (p *pwmChannel) Info() PwmChannelInfo {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return PwmChannelInfo{
		Line:      p.line,
		Chip:      p.chip,
		Channel:   p.channel,
		Period:    p.period,
		DutyCycle: p.dutyCycle,
		Enabled:   p.enabled,
	}
}

// Close releases the claim and unexports the channel.
func (p *pwmChannel) Close(ctx context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	// The claim is released unconditionally; a failing unexport write must
	// not leave the line wedged in claimed state.
	p.registry.Release(p.lock)
	pwmChannelsClosedTotal.Inc()
	if err := p.fs.WriteText(ctx, p.paths.Unexport, strconv.Itoa(p.channel)); err != nil {
		p.log.Debug().Err(err).Msg("Unexport failed")
		return maskAny(err)
	}
	p.log.Debug().Msg("Closed PWM channel")
	return nil
}

// writePeriod writes the given period and records it.
// lock must be held.
func (p *pwmChannel) writePeriod(ctx context.Context, ns int64) error {
	if err := p.fs.WriteText(ctx, p.paths.Period, strconv.FormatInt(ns, 10)); err != nil {
		return maskAny(err)
	}
	p.period = ns
	return nil
}

// writeDutyCycle writes the nanosecond product of the given fraction and
// period. lock must be held.
func (p *pwmChannel) writeDutyCycle(ctx context.Context, fraction float64, periodNs int64) error {
	ns := int64(math.Round(fraction * float64(periodNs)))
	if err := p.fs.WriteText(ctx, p.paths.DutyCycle, strconv.FormatInt(ns, 10)); err != nil {
		return maskAny(err)
	}
	return nil
}
