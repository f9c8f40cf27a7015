package services

import (
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/fxstream/trade-consumer/internal/views"
	"github.com/fxstream/trade-consumer/pkg/models"
	"go.uber.org/zap"
)

// TradePublisher announces accepted trades to downstream consumers.
// Publish failures never affect the HTTP outcome; the persisted record is
// the source of truth.
type TradePublisher interface {
	PublishTrade(m *models.TradeMessage) error
	Close()
}

type KafkaPublisherImpl struct {
	logger   *zap.Logger
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher creates a producer against the given brokers.
func NewKafkaPublisher(logger *zap.Logger, brokers, topic string) (TradePublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": "true",
		"retries":            "1",
	})
	if err != nil {
		return nil, err
	}
	logger.Info("kafka producer created", zap.String("brokers", brokers), zap.String("topic", topic))
	go handleDeliveryReports(logger, p)
	return &KafkaPublisherImpl{logger: logger, producer: p, topic: topic}, nil
}

func (k *KafkaPublisherImpl) PublishTrade(m *models.TradeMessage) error {
	amountSell, _ := m.AmountSellDecimal()
	amountBuy, _ := m.AmountBuyDecimal()
	rate, _ := m.RateDecimal()
	timePlaced, _ := m.TimePlacedTime()

	event := views.TradeEvent{
		ID:                 m.ID,
		UserID:             m.UserID,
		CurrencyFrom:       m.CurrencyFrom,
		CurrencyTo:         m.CurrencyTo,
		AmountSell:         amountSell.StringFixed(2),
		AmountBuy:          amountBuy.StringFixed(2),
		Rate:               rate.StringFixed(6),
		TimePlaced:         timePlaced,
		OriginatingCountry: m.OriginatingCountry,
		CreatedAt:          m.CreatedAt,
	}
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Keyed by user ID so one user's trades stay ordered within a partition.
	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(m.UserID),
		Value: msgBytes,
	}, nil)
}

func (k *KafkaPublisherImpl) Close() {
	k.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("kafka delivery failed",
					zap.String("topic", *ev.TopicPartition.Topic),
					zap.Error(ev.TopicPartition.Error),
				)
			}
		case kafka.Error:
			logger.Error("kafka producer error", zap.Error(ev))
		}
	}
}

// NoopPublisher drops events; used when no brokers are configured and in
// tests.
type NoopPublisher struct{}

func (NoopPublisher) PublishTrade(*models.TradeMessage) error { return nil }
func (NoopPublisher) Close()                                  {}
