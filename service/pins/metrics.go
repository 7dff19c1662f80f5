package pins

import (
	"github.com/linekeeper/LineKeeper/pkg/metrics"
)

const (
	subSystem = "pins"
)

var (
	// Number of digital pins connected
	digitalPinsConnectedTotal = metrics.MustRegisterCounter(subSystem,
		"digital_pins_connected_total",
		"Number of digital pins connected")

	// Number of digital pins closed
	digitalPinsClosedTotal = metrics.MustRegisterCounter(subSystem,
		"digital_pins_closed_total",
		"Number of digital pins closed")

	// Number of PWM channels connected
	pwmChannelsConnectedTotal = metrics.MustRegisterCounter(subSystem,
		"pwm_channels_connected_total",
		"Number of PWM channels connected")

	// Number of PWM channels closed
	pwmChannelsClosedTotal = metrics.MustRegisterCounter(subSystem,
		"pwm_channels_closed_total",
		"Number of PWM channels closed")

	// Number of rejected claims on lines that were already held
	claimConflictsTotal = metrics.MustRegisterCounter(subSystem,
		"claim_conflicts_total",
		"Number of rejected claims on lines that were already held")
)
