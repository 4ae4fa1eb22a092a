package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"donation-route-service/internal/domain"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const positionTopic = "drivers/+/position"

type proximityChecker interface {
	CheckProximity(ctx context.Context, driverID string, position domain.Coordinates) ([]domain.ProximityPrompt, error)
}

type positionMessage struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
}

// MQTTPositionSubscriber feeds driver GPS positions into proximity checks.
// Prompts reach drivers through the service's proximity publisher.
type MQTTPositionSubscriber struct {
	client  mqtt.Client
	checker proximityChecker
	logger  *zap.Logger
	timeout time.Duration
}

func NewMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

func NewMQTTPositionSubscriber(client mqtt.Client, checker proximityChecker, logger *zap.Logger) *MQTTPositionSubscriber {
	return &MQTTPositionSubscriber{client: client, checker: checker, logger: logger, timeout: 5 * time.Second}
}

func (s *MQTTPositionSubscriber) Start() error {
	token := s.client.Subscribe(positionTopic, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *MQTTPositionSubscriber) Stop() error {
	token := s.client.Unsubscribe(positionTopic)
	token.Wait()
	return token.Error()
}

func (s *MQTTPositionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.handlePayload(ctx, msg.Topic(), msg.Payload()); err != nil {
		s.logger.Warn("position message dropped", zap.String("topic", msg.Topic()), zap.Error(err))
	}
}

func (s *MQTTPositionSubscriber) handlePayload(ctx context.Context, topic string, payload []byte) error {
	driverID, err := driverFromTopic(topic)
	if err != nil {
		return err
	}

	var raw positionMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("invalid position message: %w", err)
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return errors.New("latitude and longitude: required")
	}

	position := domain.Coordinates{Lon: *raw.Longitude, Lat: *raw.Latitude}
	if err := position.Validate(); err != nil {
		return err
	}

	prompts, err := s.checker.CheckProximity(ctx, driverID, position)
	if err != nil {
		return fmt.Errorf("check proximity for driver %q: %w", driverID, err)
	}
	if len(prompts) > 0 {
		s.logger.Debug("driver near open stops", zap.String("driver_id", driverID), zap.Int("stops", len(prompts)))
	}
	return nil
}

// driverFromTopic extracts the driver id from drivers/<id>/position.
func driverFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "drivers" || parts[2] != "position" || parts[1] == "" {
		return "", fmt.Errorf("unexpected topic %q", topic)
	}
	return parts[1], nil
}
