package pins

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/linekeeper/LineKeeper/model"
	"github.com/linekeeper/LineKeeper/service/sysfs"
)

const testPwmRoot = "/test/pwm"

func TestConnectPwmChannelResolvesChipAndChannel(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		line    model.LineID
		chip    int
		channel int
	}{
		{12, 0, 0},
		{18, 0, 1},
		{13, 1, 0},
		{19, 1, 1},
	}
	for _, test := range tests {
		stub := sysfs.NewStub()
		deps := testDeps(stub)
		channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: test.line}, deps)
		if err != nil {
			t.Fatalf("ConnectPwmChannel(%d) failed: %v", test.line, err)
		}
		info := channel.Info()
		if info.Chip != test.chip || info.Channel != test.channel {
			t.Errorf("Line %d resolved to chip %d channel %d, expected chip %d channel %d",
				test.line, info.Chip, info.Channel, test.chip, test.channel)
		}
		if info.Period != 0 || info.DutyCycle != 0 || info.Enabled {
			t.Errorf("Unexpected initial state %+v", info)
		}
		exportPath := testPwmRoot + "/pwmchip" + strconv.Itoa(test.chip) + "/export"
		if content, found := stub.LastWrite(exportPath); !found || content != strconv.Itoa(test.channel) {
			t.Errorf("Expected export write of '%d' to %s, got '%s' (found=%v)",
				test.channel, exportPath, content, found)
		}
		channel.Close(ctx)
	}
}

func TestConnectPwmChannelUnknownLine(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	if _, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 17}, deps); !IsUnknownLine(err) {
		t.Errorf("Expected UnknownLineError, got %v", err)
	}
}

func TestConnectPwmChannelAlreadyClaimed(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 12}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	if _, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 12}, deps); !IsAlreadyClaimed(err) {
		t.Errorf("Expected AlreadyClaimedError, got %v", err)
	}
	if err := channel.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	second, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 12}, deps)
	if err != nil {
		t.Fatalf("Reconnect after close failed: %v", err)
	}
	second.Close(ctx)
}

func TestConnectPwmChannelReleasesClaimOnFailure(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	stub.FailWrites(testPwmRoot+"/pwmchip0/export", errors.New("simulated failure"))
	if _, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 12}, deps); err == nil {
		t.Fatal("Expected connect to fail")
	}
	stub2 := sysfs.NewStub()
	deps.FS = stub2
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 12}, deps)
	if err != nil {
		t.Fatalf("Connect after failed connect failed: %v", err)
	}
	channel.Close(ctx)
}

func TestPwmSetDutyCycleOutOfRange(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 13}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	defer channel.Close(ctx)
	dutyPath := testPwmRoot + "/pwmchip1/pwm0/duty_cycle"
	for _, fraction := range []float64{-0.1, -5, 1.1, 42} {
		if err := channel.SetDutyCycle(ctx, fraction); !IsOutOfRange(err) {
			t.Errorf("SetDutyCycle(%v): expected OutOfRangeError, got %v", fraction, err)
		}
	}
	if writes := stub.WritesTo(dutyPath); len(writes) != 0 {
		t.Errorf("No duty cycle writes expected, got %v", writes)
	}
}

func TestPwmPeriodDutyCycleRoundTrip(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 12}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	defer channel.Close(ctx)
	if err := channel.SetPeriod(ctx, 1000*time.Nanosecond); err != nil {
		t.Fatalf("SetPeriod failed: %v", err)
	}
	if err := channel.SetDutyCycle(ctx, 0.5); err != nil {
		t.Fatalf("SetDutyCycle failed: %v", err)
	}
	dutyPath := testPwmRoot + "/pwmchip0/pwm0/duty_cycle"
	if content, _ := stub.LastWrite(dutyPath); content != "500" {
		t.Errorf("Expected duty cycle write '500', got '%s'", content)
	}
	info := channel.Info()
	if info.DutyCycle != 0.5 || info.Period != 1000 {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestPwmPeriodGrowthNeverExceedsActivePeriod(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 12}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	defer channel.Close(ctx)
	if err := channel.SetPeriod(ctx, 1000*time.Nanosecond); err != nil {
		t.Fatalf("SetPeriod failed: %v", err)
	}
	if err := channel.SetDutyCycle(ctx, 0.5); err != nil {
		t.Fatalf("SetDutyCycle failed: %v", err)
	}
	if err := channel.SetPeriod(ctx, 2000*time.Nanosecond); err != nil {
		t.Fatalf("SetPeriod failed: %v", err)
	}
	periodPath := testPwmRoot + "/pwmchip0/pwm0/period"
	dutyPath := testPwmRoot + "/pwmchip0/pwm0/duty_cycle"
	// Replay the write sequence: no duty cycle value may exceed the period
	// in effect at the time it lands.
	period := int64(0)
	var lastDuty int64
	for _, w := range stub.Writes() {
		value, err := strconv.ParseInt(w.Content, 10, 64)
		if err != nil {
			continue
		}
		switch w.Path {
		case periodPath:
			period = value
		case dutyPath:
			if period > 0 && value > period {
				t.Errorf("Duty cycle write %d exceeds active period %d", value, period)
			}
			lastDuty = value
		}
	}
	if lastDuty != 1000 {
		t.Errorf("Final duty cycle write = %d, expected 1000", lastDuty)
	}
	if info := channel.Info(); info.DutyCycle != 0.5 || info.Period != 2000 {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestPwmPeriodShrinkWritesPeriodFirst(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 18}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	defer channel.Close(ctx)
	if err := channel.SetPeriod(ctx, 2000*time.Nanosecond); err != nil {
		t.Fatalf("SetPeriod failed: %v", err)
	}
	if err := channel.SetDutyCycle(ctx, 0.25); err != nil {
		t.Fatalf("SetDutyCycle failed: %v", err)
	}
	if err := channel.SetPeriod(ctx, 1000*time.Nanosecond); err != nil {
		t.Fatalf("SetPeriod failed: %v", err)
	}
	periodPath := testPwmRoot + "/pwmchip0/pwm1/period"
	dutyPath := testPwmRoot + "/pwmchip0/pwm1/duty_cycle"
	if content, _ := stub.LastWrite(periodPath); content != "1000" {
		t.Errorf("Expected period write '1000', got '%s'", content)
	}
	if content, _ := stub.LastWrite(dutyPath); content != "250" {
		t.Errorf("Expected duty cycle write '250', got '%s'", content)
	}
	// The shrink writes the period before re-applying the duty cycle.
	writes := stub.Writes()
	last := writes[len(writes)-1]
	secondToLast := writes[len(writes)-2]
	if secondToLast.Path != periodPath || last.Path != dutyPath {
		t.Errorf("Expected period write before duty cycle write, got %+v then %+v", secondToLast, last)
	}
}

func TestPwmSetPeriodNegative(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 19}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	defer channel.Close(ctx)
	if err := channel.SetPeriod(ctx, -time.Second); !IsInvalidArgument(err) {
		t.Errorf("Expected InvalidArgumentError, got %v", err)
	}
	if writes := stub.WritesTo(testPwmRoot + "/pwmchip1/pwm1/period"); len(writes) != 0 {
		t.Errorf("No period writes expected, got %v", writes)
	}
}

func TestPwmEnableDisable(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 13}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	defer channel.Close(ctx)
	enablePath := testPwmRoot + "/pwmchip1/pwm0/enable"
	if err := channel.Enable(ctx); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if content, _ := stub.LastWrite(enablePath); content != "1" {
		t.Errorf("Expected enable write '1', got '%s'", content)
	}
	if !channel.Info().Enabled {
		t.Error("Expected channel to report enabled")
	}
	if err := channel.Disable(ctx); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if content, _ := stub.LastWrite(enablePath); content != "0" {
		t.Errorf("Expected enable write '0', got '%s'", content)
	}
	if channel.Info().Enabled {
		t.Error("Expected channel to report disabled")
	}
}

func TestPwmEnableFailureKeepsFlag(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 13}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	defer channel.Close(ctx)
	stub.FailWrites(testPwmRoot+"/pwmchip1/pwm0/enable", errors.New("simulated failure"))
	if err := channel.Enable(ctx); err == nil {
		t.Fatal("Expected Enable to fail")
	}
	if channel.Info().Enabled {
		t.Error("Flag must agree with the failed write")
	}
}

func TestPwmCloseReleasesClaimOnUnexportFailure(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 18}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	stub.FailWrites(testPwmRoot+"/pwmchip0/unexport", errors.New("simulated failure"))
	if err := channel.Close(ctx); err == nil {
		t.Fatal("Expected Close to surface the unexport failure")
	}
	second, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 18}, deps)
	if err != nil {
		t.Fatalf("Connect after failed unexport failed: %v", err)
	}
	second.Close(ctx)
}

func TestPwmCloseWritesChannelToUnexport(t *testing.T) {
	ctx := context.Background()
	stub := sysfs.NewStub()
	deps := testDeps(stub)
	channel, err := ConnectPwmChannel(ctx, PwmChannelConfig{Line: 19}, deps)
	if err != nil {
		t.Fatalf("ConnectPwmChannel failed: %v", err)
	}
	if err := channel.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if content, found := stub.LastWrite(testPwmRoot + "/pwmchip1/unexport"); !found || content != "1" {
		t.Errorf("Expected unexport write of '1', got '%s' (found=%v)", content, found)
	}
	if err := channel.Close(ctx); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}
