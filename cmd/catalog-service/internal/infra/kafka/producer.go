package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// EventProducer Kafka事件生产者
type EventProducer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
}

// ProducerConfig 生产者配置
type ProducerConfig struct {
	Brokers     []string
	Compression string // none, gzip, snappy, lz4, zstd
	MaxRetries  int
	Timeout     time.Duration
}

// NewEventProducer 创建事件生产者
func NewEventProducer(config *ProducerConfig) (*EventProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll // 等待所有副本确认
	saramaConfig.Producer.Retry.Max = config.MaxRetries
	saramaConfig.Producer.Timeout = config.Timeout

	// 设置压缩
	switch config.Compression {
	case "gzip":
		saramaConfig.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		saramaConfig.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		saramaConfig.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		saramaConfig.Producer.Compression = sarama.CompressionZSTD
	default:
		saramaConfig.Producer.Compression = sarama.CompressionNone
	}

	// 创建生产者
	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}

	return &EventProducer{
		producer: producer,
		config:   config,
	}, nil
}

// PublishEventWithKey 发布带key的事件（用于分区）
func (p *EventProducer) PublishEventWithKey(topic string, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(eventBytes),
		Timestamp: time.Now(),
	}

	_, _, err = p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// Close 关闭生产者
func (p *EventProducer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
