package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/ispstock-api/pkg/config"
)

func sampleEnvelope() Envelope {
	return Envelope{
		ID:         "ev-1",
		Event:      "inventory_update",
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Key:        "item-1",
		Payload:    json.RawMessage(`{"action":"stock_adjustment","item_id":"item-1"}`),
	}
}

// ─── Kafka ─────────────────────────────────────────────────────────────────

func TestKafkaSink_EnviaEnvelopeJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env Envelope
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.Event != "inventory_update" || env.ID != "ev-1" {
			return fmt.Errorf("envelope inesperado: %+v", env)
		}
		return nil
	})
	sink := NewKafkaSinkWithProducer(producer, "ispstock.inventory")

	require.NoError(t, sink.Send(context.Background(), sampleEnvelope()))
	require.NoError(t, sink.Close())
}

func TestKafkaSink_PropagaErrorDelBroker(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	sink := NewKafkaSinkWithProducer(producer, "ispstock.inventory")

	err := sink.Send(context.Background(), sampleEnvelope())
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, sink.Close())
}

func TestKafkaSink_ContextoCanceladoNoEnvia(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	sink := NewKafkaSinkWithProducer(producer, "t")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Send(ctx, sampleEnvelope()), context.Canceled)
	require.NoError(t, sink.Close())
}

func TestNewKafkaConfig_Acks(t *testing.T) {
	cases := []struct {
		acks       string
		idempotent bool
		want       sarama.RequiredAcks
	}{
		{"0", false, sarama.NoResponse},
		{"1", false, sarama.WaitForLocal},
		{"all", false, sarama.WaitForAll},
		{"1", true, sarama.WaitForAll},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_%v", tc.acks, tc.idempotent), func(t *testing.T) {
			sc := NewKafkaConfig(config.KafkaConfig{ClientID: "ispstock-api", Acks: tc.acks, Retries: 5, Idempotent: tc.idempotent})
			assert.Equal(t, tc.want, sc.Producer.RequiredAcks)
			assert.Equal(t, 5, sc.Producer.Retry.Max)
			assert.True(t, sc.Producer.Return.Successes)
			assert.Equal(t, "ispstock-api", sc.ClientID)
			if tc.idempotent {
				assert.True(t, sc.Producer.Idempotent)
				assert.Equal(t, 1, sc.Net.MaxOpenRequests)
			}
		})
	}
}

// ─── Redis ─────────────────────────────────────────────────────────────────

type fakeRedis struct {
	channel string
	message []byte
	err     error
	closed  bool
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.message, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisSink_PublicaEnCanal(t *testing.T) {
	fr := &fakeRedis{}
	sink := &RedisSink{client: fr, channel: "ispstock:events"}

	require.NoError(t, sink.Send(context.Background(), sampleEnvelope()))
	assert.Equal(t, "ispstock:events", fr.channel)

	var env Envelope
	require.NoError(t, json.Unmarshal(fr.message, &env))
	assert.Equal(t, "inventory_update", env.Event)
	assert.JSONEq(t, `{"action":"stock_adjustment","item_id":"item-1"}`, string(env.Payload))

	require.NoError(t, sink.Close())
	assert.True(t, fr.closed)
}

func TestRedisSink_ErrorDePublish(t *testing.T) {
	sink := &RedisSink{client: &fakeRedis{err: errors.New("connection refused")}, channel: "c"}
	err := sink.Send(context.Background(), sampleEnvelope())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

// ─── Log y fábrica ─────────────────────────────────────────────────────────

func TestLogSink_EscribePayload(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf))
	require.NoError(t, sink.Send(context.Background(), sampleEnvelope()))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "inventory_update", line["event"])
	assert.Equal(t, "item-1", line["key"])
	assert.Equal(t, "stock_adjustment", line["payload"].(map[string]any)["action"])
}

func TestNewSink_PorDriver(t *testing.T) {
	cfg := &config.Config{}

	cfg.Events.Driver = "log"
	s, err := NewSink(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "log", s.Name())

	cfg.Events.Driver = "none"
	s, err = NewSink(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "none", s.Name())

	cfg.Events.Driver = "carrier-pigeon"
	_, err = NewSink(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
