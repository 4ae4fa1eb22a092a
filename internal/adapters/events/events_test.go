package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"donation-route-service/internal/domain"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeChannel struct {
	exchange string
	msgs     []amqp.Publishing
	err      error

	exchangeErr, queueErr, bindErr error
	declared                       []string
	closed                         bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	c.exchange = exchange
	c.msgs = append(c.msgs, msg)
	return c.err
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.declared = append(c.declared, "exchange:"+name+":"+kind)
	return c.exchangeErr
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, "queue:"+name)
	return amqp.Queue{Name: name}, c.queueErr
}

func (c *fakeChannel) QueueBind(name, _, exchange string, _ bool, _ amqp.Table) error {
	c.declared = append(c.declared, "bind:"+name+":"+exchange)
	return c.bindErr
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestNewCloudEvent(t *testing.T) {
	ce, err := NewCloudEvent(TypeStatusChanged, map[string]int{"donation_id": 3})
	require.NoError(t, err)

	_, err = uuid.Parse(ce.ID)
	assert.NoError(t, err)
	assert.Equal(t, "1.0", ce.SpecVersion)
	assert.Equal(t, Source, ce.Source)
	assert.JSONEq(t, `{"donation_id":3}`, string(ce.Data))

	_, err = NewCloudEvent(TypeStatusChanged, make(chan int))
	assert.Error(t, err)
}

func TestRabbitMQPublishesProximityPrompt(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitMQProximityPublisher{ch: ch}

	err := p.PublishProximity(context.Background(), domain.ProximityPrompt{
		DriverID:   "driver-1",
		DonationID: 7,
		StopID:     "7:pickup",
		Kind:       domain.StopPickup,
		DistanceKm: 0.12,
		Action:     domain.ActionMarkPickedUp,
		At:         at,
	})
	require.NoError(t, err)

	require.Len(t, ch.msgs, 1)
	assert.Equal(t, proximityExchange, ch.exchange)
	msg := ch.msgs[0]
	assert.Equal(t, TypeProximityPrompt, msg.Type)

	var ce CloudEvent
	require.NoError(t, json.Unmarshal(msg.Body, &ce))
	assert.Equal(t, msg.MessageId, ce.ID)
	assert.JSONEq(t, `{
		"driver_id": "driver-1",
		"donation_id": 7,
		"stop_id": "7:pickup",
		"kind": "pickup",
		"distance_km": 0.12,
		"action": "mark-picked-up",
		"timestamp": 1772366400
	}`, string(ce.Data))
}

func TestRabbitMQTopology(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newProximityPublisher(ch)
	require.NoError(t, err)
	assert.Same(t, ch, p.ch)
	assert.False(t, ch.closed)
	assert.Equal(t, []string{
		"exchange:driver.events:fanout",
		"queue:proximity_prompts",
		"bind:proximity_prompts:driver.events",
	}, ch.declared)
}

func TestRabbitMQTopologyFailureClosesChannel(t *testing.T) {
	boom := errors.New("channel closed by broker")
	cases := map[string]*fakeChannel{
		"exchange": {exchangeErr: boom},
		"queue":    {queueErr: boom},
		"bind":     {bindErr: boom},
	}

	for name, ch := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := newProximityPublisher(ch)
			require.ErrorIs(t, err, boom)
			assert.Nil(t, p)
			assert.True(t, ch.closed, "channel should be closed after a failed declaration")
		})
	}
}

func TestKafkaPublishesStatusChange(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaStatusPublisher{writer: w}

	err := p.PublishStatusChanged(context.Background(), domain.StatusChanged{
		DonationID: 42,
		From:       domain.StatusPickedUp,
		To:         domain.StatusDelivered,
		DriverID:   "driver-1",
		At:         at,
	})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))

	var ce CloudEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ce))
	assert.Equal(t, TypeStatusChanged, ce.Type)
	assert.JSONEq(t, `{"donation_id":42,"from":"picked-up","to":"delivered","driver_id":"driver-1","timestamp":1772366400}`,
		string(ce.Data))

	w.err = errors.New("leader not available")
	err = p.PublishStatusChanged(context.Background(), domain.StatusChanged{DonationID: 1})
	assert.ErrorContains(t, err, "leader not available")
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.PublishStatusChanged(context.Background(), domain.StatusChanged{
		DonationID: 5, From: domain.StatusInTransit, To: domain.StatusPickedUp,
	}))
	require.NoError(t, p.PublishProximity(context.Background(), domain.ProximityPrompt{StopID: "5:delivery"}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "donation status changed", entries[0].Message)
	assert.Equal(t, int64(5), entries[0].ContextMap()["donation_id"])
	assert.Equal(t, "5:delivery", entries[1].ContextMap()["stop_id"])
}

type fakeChecker struct {
	driverID string
	position domain.Coordinates
	calls    int
	err      error
}

func (f *fakeChecker) CheckProximity(_ context.Context, driverID string, position domain.Coordinates) ([]domain.ProximityPrompt, error) {
	f.calls++
	f.driverID = driverID
	f.position = position
	return nil, f.err
}

func TestMQTTHandlePayload(t *testing.T) {
	checker := &fakeChecker{}
	s := NewMQTTPositionSubscriber(nil, checker, zaptest.NewLogger(t))
	ctx := context.Background()

	err := s.handlePayload(ctx, "drivers/driver-9/position", []byte(`{"latitude":37.39,"longitude":-122.08,"timestamp":1}`))
	require.NoError(t, err)
	assert.Equal(t, "driver-9", checker.driverID)
	assert.Equal(t, domain.Coordinates{Lon: -122.08, Lat: 37.39}, checker.position)

	bad := []struct {
		topic   string
		payload string
	}{
		{"drivers//position", `{"latitude":1,"longitude":1}`},
		{"vehicles/x/position", `{"latitude":1,"longitude":1}`},
		{"drivers/x/position", `not json`},
		{"drivers/x/position", `{"latitude":1}`},
		{"drivers/x/position", `{"latitude":95,"longitude":1}`},
	}
	for _, b := range bad {
		assert.Error(t, s.handlePayload(ctx, b.topic, []byte(b.payload)), b.topic+" "+b.payload)
	}
	assert.Equal(t, 1, checker.calls)

	checker.err = domain.ErrInvalidArgument
	err = s.handlePayload(ctx, "drivers/x/position", []byte(`{"latitude":0,"longitude":0}`))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
