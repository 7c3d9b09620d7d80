package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/jhoicas/ispstock-api/pkg/config"
)

// KafkaSink publica cada evento como un mensaje JSON en un único topic.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaConfig traduce la configuración de la app a sarama.
func NewKafkaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = cfg.Retries
	switch cfg.Acks {
	case "0":
		sc.Producer.RequiredAcks = sarama.NoResponse
	case "1":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	default:
		sc.Producer.RequiredAcks = sarama.WaitForAll
	}
	if cfg.Idempotent {
		// sarama exige acks=all y una sola petición en vuelo para el productor idempotente
		sc.Producer.Idempotent = true
		sc.Producer.RequiredAcks = sarama.WaitForAll
		sc.Net.MaxOpenRequests = 1
	}
	return sc
}

// NewKafkaSink conecta con los brokers.
func NewKafkaSink(cfg config.KafkaConfig) (*KafkaSink, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewKafkaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewKafkaSinkWithProducer(producer, cfg.Topic), nil
}

// NewKafkaSinkWithProducer usa un productor ya construido (tests con sarama/mocks).
func NewKafkaSinkWithProducer(producer sarama.SyncProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Send(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(env.Event)},
			{Key: []byte("event-id"), Value: []byte(env.ID)},
		},
		Timestamp: env.OccurredAt,
	}
	if env.Key != "" {
		msg.Key = sarama.StringEncoder(env.Key)
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka send %s: %w", env.Event, err)
	}
	return nil
}

func (s *KafkaSink) Close() error { return s.producer.Close() }
