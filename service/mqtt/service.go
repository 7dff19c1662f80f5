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

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/linekeeper/LineKeeper/service"
)

const (
	mqttPublishTimeout = time.Millisecond * 200
)

type Config struct {
	// BrokerAddress is the host:port of the MQTT broker.
	BrokerAddress string
	// ClientID used when connecting to the broker.
	ClientID string
	// TopicPrefix for all published line events.
	TopicPrefix string
}

// Service publishes line events to an MQTT broker.
type Service interface {
	// Run connects to the broker, forwards line events until the given
	// context is canceled, then disconnects.
	Run(ctx context.Context, lines service.Service) error
}

// NewService creates a new MQTT publisher service.
func NewService(conf Config, log zerolog.Logger) (Service, error) {
	if conf.BrokerAddress == "" {
		return nil, errors.New("BrokerAddress is empty")
	}
	if conf.ClientID == "" {
		conf.ClientID = "linekeeper"
	}
	return &mqttService{
		Config: conf,
		log:    log.With().Str("component", "mqtt").Logger(),
		prefix: strings.TrimSuffix(conf.TopicPrefix, "/") + "/",
	}, nil
}

type mqttService struct {
	Config
	log    zerolog.Logger
	prefix string
	client mqttapi.Client
}

// Run connects to the broker and forwards line events.
func (s *mqttService) Run(ctx context.Context, lines service.Service) error {
	opts := mqttapi.NewClientOptions().
		AddBroker("tcp://" + s.BrokerAddress).
		SetClientID(s.ClientID)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	s.client = mqttapi.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrap(token.Error(), "failed to connect to mqtt")
	}
	defer s.client.Disconnect(250)
	s.log.Info().Str("broker", s.BrokerAddress).Msg("Connected to MQTT broker")

	cancel := lines.RegisterLineEventReceiver(func(evt service.LineEvent) {
		s.publishEvent(evt)
	})
	defer cancel()

	<-ctx.Done()
	return nil
}

// publishEvent publishes a single line event as JSON.
func (s *mqttService) publishEvent(evt service.LineEvent) {
	topic := fmt.Sprintf("%s%s/%d/state", s.prefix, evt.Kind, evt.Line)
	payload, err := json.Marshal(evt)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode line event")
		return
	}
	retain := true
	token := s.client.Publish(topic, 0, retain, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		s.log.Error().Err(token.Error()).
			Str("topic", topic).
			Msg("Failed to publish line event")
	}
}
