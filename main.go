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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/linekeeper/LineKeeper/model"
	"github.com/linekeeper/LineKeeper/service"
	"github.com/linekeeper/LineKeeper/service/mqtt"
	"github.com/linekeeper/LineKeeper/service/server"
	"github.com/linekeeper/LineKeeper/service/sysfs"
)

const (
	projectName       = "LineKeeper"
	defaultServerPort = 7212
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
	maskAny        = errors.WithStack
)

func main() {
	var levelFlag string
	var serverHost string
	var serverPort int
	var boardType string
	var gpioRoot string
	var pwmRoot string
	var mqttBroker string
	var mqttTopicPrefix string

	pflag.StringVarP(&levelFlag, "level", "l", "debug", "Set log level")
	pflag.StringVarP(&boardType, "board", "b", "rpi", "Type of board to use (rpi)")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the HTTP server will listen on")
	pflag.IntVar(&serverPort, "port", defaultServerPort, "Port the HTTP server will listen on")
	pflag.StringVar(&gpioRoot, "gpio-root", sysfs.DefaultGPIORoot, "Mount point of the GPIO class")
	pflag.StringVar(&pwmRoot, "pwm-root", sysfs.DefaultPwmRoot, "Mount point of the PWM class")
	pflag.StringVar(&mqttBroker, "mqtt-broker", "", "Address of MQTT broker to publish line events to (empty to disable)")
	pflag.StringVar(&mqttTopicPrefix, "mqtt-topic-prefix", "linekeeper", "Topic prefix for published line events")
	pflag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(levelFlag); err == nil {
		logger = logger.Level(level)
	}

	var board model.Board
	switch boardType {
	case "rpi":
		board = model.DefaultRaspberryPi()
	default:
		Exitf("Unknown board type '%s' (rpi)\n", boardType)
	}

	svc, err := service.NewService(service.Config{
		ProgramVersion: projectVersion,
		GPIORoot:       gpioRoot,
		PwmRoot:        pwmRoot,
	}, service.Dependencies{
		Log:   logger,
		Board: board,
		FS:    sysfs.NewFileAccessor(),
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	httpServer, err := server.New(server.Config{
		Host:     serverHost,
		HTTPPort: serverPort,
	}, logger, svc)
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	var mqttSvc mqtt.Service
	if mqttBroker != "" {
		mqttSvc, err = mqtt.NewService(mqtt.Config{
			BrokerAddress: mqttBroker,
			ClientID:      projectName,
			TopicPrefix:   mqttTopicPrefix,
		}, logger)
		if err != nil {
			Exitf("Failed to initialize MQTT service: %v\n", err)
		}
	}

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	if mqttSvc != nil {
		g.Go(func() error { return mqttSvc.Run(ctx, svc) })
	}
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %#v", err)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
