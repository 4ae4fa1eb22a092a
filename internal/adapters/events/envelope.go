package events

import (
	"encoding/json"
	"fmt"
	"time"

	"donation-route-service/internal/domain"

	"github.com/google/uuid"
)

const (
	Source = "donation-route-service"

	TypeProximityPrompt = "donation.proximity.prompt"
	TypeStatusChanged   = "donation.status.changed"
)

// CloudEvent is the envelope of every message this service publishes.
type CloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

func NewCloudEvent(eventType string, data any) (CloudEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("marshal %s data: %w", eventType, err)
	}
	return CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Source:          Source,
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            raw,
	}, nil
}

type proximityMessage struct {
	DriverID   string  `json:"driver_id"`
	DonationID int64   `json:"donation_id"`
	StopID     string  `json:"stop_id"`
	Kind       string  `json:"kind"`
	DistanceKm float64 `json:"distance_km"`
	Action     string  `json:"action"`
	Timestamp  int64   `json:"timestamp"`
}

func newProximityMessage(p domain.ProximityPrompt) proximityMessage {
	return proximityMessage{
		DriverID:   p.DriverID,
		DonationID: p.DonationID,
		StopID:     p.StopID,
		Kind:       string(p.Kind),
		DistanceKm: p.DistanceKm,
		Action:     string(p.Action),
		Timestamp:  p.At.Unix(),
	}
}

type statusMessage struct {
	DonationID int64  `json:"donation_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	DriverID   string `json:"driver_id,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

func newStatusMessage(evt domain.StatusChanged) statusMessage {
	return statusMessage{
		DonationID: evt.DonationID,
		From:       evt.From.String(),
		To:         evt.To.String(),
		DriverID:   evt.DriverID,
		Timestamp:  evt.At.Unix(),
	}
}
