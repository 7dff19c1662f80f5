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
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/linekeeper/LineKeeper/service"
)

// Config for the HTTP server.
type Config struct {
	// Host interface to listen on
	Host string
	// Port to listen on for HTTP requests
	HTTPPort int
}

// Server runs the HTTP server for the service.
type Server struct {
	Config
	log        zerolog.Logger
	requestLog zerolog.Logger
	api        service.Service
}

// New configures a new Server.
func New(cfg Config, log zerolog.Logger, api service.Service) (*Server, error) {
	return &Server{
		Config:     cfg,
		log:        log.With().Str("component", "server").Logger(),
		requestLog: log.With().Str("component", "server.requests").Logger(),
		api:        api,
	}, nil
}

// Run the server until the given context is canceled.
func (s *Server) Run(ctx context.Context) error {
	log := s.log
	httpAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.HTTPPort))
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return maskAny(err)
	}

	httpRouter := echo.New()
	httpRouter.HideBanner = true
	httpRouter.HidePort = true
	httpRouter.GET("/health", s.handleHealth)
	httpRouter.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	httpRouter.GET("/api/lines", s.handleLines)
	httpRouter.DELETE("/api/lines/:line", s.handleDisconnectLine)
	httpRouter.POST("/api/gpio/:line", s.handleConnectGPIO)
	httpRouter.GET("/api/gpio/:line", s.handleReadGPIO)
	httpRouter.PUT("/api/gpio/:line", s.handleWriteGPIO)
	httpRouter.POST("/api/pwm/:line", s.handleConnectPwm)
	httpRouter.PUT("/api/pwm/:line", s.handleUpdatePwm)
	httpSrv := http.Server{
		Handler: httpRouter,
	}

	log.Debug().Str("address", httpAddr).Msg("Serving HTTP")
	go func() {
		if err := httpSrv.Serve(httpLis); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to serve HTTP server")
		}
	}()

	// Wait until context closed
	<-ctx.Done()

	log.Info().Msg("Closing server")
	return maskAny(httpSrv.Shutdown(context.Background()))
}
