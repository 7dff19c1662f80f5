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

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/linekeeper/LineKeeper/model"
	"github.com/linekeeper/LineKeeper/service/pins"
)

var maskAny = errors.WithStack

type connectGPIORequest struct {
	// Direction as sysfs string: in|out|inout
	Direction string `json:"direction"`
}

type writeGPIORequest struct {
	// Value as sysfs string: 0|1
	Value string `json:"value"`
}

type gpioValueResponse struct {
	Line  model.LineID `json:"line"`
	Value string       `json:"value"`
}

type updatePwmRequest struct {
	// PeriodNs sets the period in nanoseconds when present.
	PeriodNs *int64 `json:"periodNs,omitempty"`
	// DutyCycle sets the duty cycle fraction when present.
	DutyCycle *float64 `json:"dutyCycle,omitempty"`
	// Enabled enables/disables the output when present.
	Enabled *bool `json:"enabled,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK\n")
}

func (s *Server) handleLines(c echo.Context) error {
	return c.JSON(http.StatusOK, s.api.Lines())
}

func (s *Server) handleConnectGPIO(c echo.Context) error {
	line, err := parseLine(c)
	if err != nil {
		return s.sendError(c, err)
	}
	var input connectGPIORequest
	if err := c.Bind(&input); err != nil {
		return s.sendError(c, errors.Wrap(pins.InvalidArgumentError, err.Error()))
	}
	direction, err := model.ParseDirection(input.Direction)
	if err != nil {
		return s.sendError(c, errors.Wrapf(pins.InvalidArgumentError, "invalid direction '%s'", input.Direction))
	}
	info, err := s.api.ConnectGPIO(c.Request().Context(), line, direction)
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleReadGPIO(c echo.Context) error {
	line, err := parseLine(c)
	if err != nil {
		return s.sendError(c, err)
	}
	value, err := s.api.ReadGPIO(c.Request().Context(), line)
	if err != nil {
		return s.sendError(c, err)
	}
	valueStr, _ := value.SysfsString()
	return c.JSON(http.StatusOK, gpioValueResponse{Line: line, Value: valueStr})
}

func (s *Server) handleWriteGPIO(c echo.Context) error {
	line, err := parseLine(c)
	if err != nil {
		return s.sendError(c, err)
	}
	var input writeGPIORequest
	if err := c.Bind(&input); err != nil {
		return s.sendError(c, errors.Wrap(pins.InvalidArgumentError, err.Error()))
	}
	var value model.Value
	switch input.Value {
	case "0":
		value = model.ValueLow
	case "1":
		value = model.ValueHigh
	default:
		return s.sendError(c, errors.Wrapf(pins.InvalidArgumentError, "invalid value '%s'", input.Value))
	}
	if err := s.api.WriteGPIO(c.Request().Context(), line, value); err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(http.StatusOK, gpioValueResponse{Line: line, Value: input.Value})
}

func (s *Server) handleConnectPwm(c echo.Context) error {
	line, err := parseLine(c)
	if err != nil {
		return s.sendError(c, err)
	}
	info, err := s.api.ConnectPwm(c.Request().Context(), line)
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleUpdatePwm(c echo.Context) error {
	line, err := parseLine(c)
	if err != nil {
		return s.sendError(c, err)
	}
	var input updatePwmRequest
	if err := c.Bind(&input); err != nil {
		return s.sendError(c, errors.Wrap(pins.InvalidArgumentError, err.Error()))
	}
	ctx := c.Request().Context()
	if input.PeriodNs != nil {
		if err := s.api.SetPwmPeriod(ctx, line, time.Duration(*input.PeriodNs)*time.Nanosecond); err != nil {
			return s.sendError(c, err)
		}
	}
	if input.DutyCycle != nil {
		if err := s.api.SetPwmDutyCycle(ctx, line, *input.DutyCycle); err != nil {
			return s.sendError(c, err)
		}
	}
	if input.Enabled != nil {
		if err := s.api.SetPwmEnabled(ctx, line, *input.Enabled); err != nil {
			return s.sendError(c, err)
		}
	}
	return c.JSON(http.StatusOK, struct{}{})
}

func (s *Server) handleDisconnectLine(c echo.Context) error {
	line, err := parseLine(c)
	if err != nil {
		return s.sendError(c, err)
	}
	if err := s.api.DisconnectLine(c.Request().Context(), line); err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(http.StatusOK, struct{}{})
}

// parseLine parses the :line path parameter.
func parseLine(c echo.Context) (model.LineID, error) {
	raw := c.Param("line")
	line, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(pins.InvalidArgumentError, "invalid line '%s'", raw)
	}
	return model.LineID(line), nil
}

// sendError maps a service error onto an HTTP status and sends it.
func (s *Server) sendError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case pins.IsAlreadyClaimed(err):
		status = http.StatusConflict
	case pins.IsUnknownLine(err):
		status = http.StatusNotFound
	case pins.IsInvalidOperation(err), pins.IsOutOfRange(err), pins.IsInvalidArgument(err):
		status = http.StatusBadRequest
	case pins.IsNotImplemented(err):
		status = http.StatusNotImplemented
	}
	s.requestLog.Debug().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Int("status", status).
		Msg("request failed")
	return c.JSON(status, errorResponse{Error: err.Error()})
}
