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
	"github.com/linekeeper/LineKeeper/pkg/metrics"
)

const (
	subSystem = "service"
)

var (
	// Total number of ConnectGPIO calls
	connectGPIORequestsTotal = metrics.MustRegisterCounter(subSystem,
		"connect_gpio_requests_total",
		"Total number of ConnectGPIO calls")
	// Total number of ConnectPwm calls
	connectPwmRequestsTotal = metrics.MustRegisterCounter(subSystem,
		"connect_pwm_requests_total",
		"Total number of ConnectPwm calls")
	// Total number of DisconnectLine calls
	disconnectRequestsTotal = metrics.MustRegisterCounter(subSystem,
		"disconnect_requests_total",
		"Total number of DisconnectLine calls")
	// Total number of line events per event type
	lineEventsTotal = metrics.MustRegisterCounterVec(subSystem,
		"line_events_total",
		"Total number of line events per event type",
		"event")
	// Number of lines currently claimed
	claimedLinesGauge = metrics.MustRegisterGauge(subSystem,
		"claimed_lines",
		"Number of lines currently claimed")
)
