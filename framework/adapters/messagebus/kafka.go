// Package messagebus предоставляет адаптеры для различных message brokers.
package messagebus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akriventsev/tradebus/framework/core"
	"github.com/akriventsev/tradebus/framework/metrics"
	"github.com/segmentio/kafka-go"
)

// KafkaConfig конфигурация для Kafka адаптера
type KafkaConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	Partitions        int
	ReplicationFactor int
	Compression       string // none, gzip, snappy, lz4, zstd
	BatchSize         int
	FlushInterval     time.Duration
	ProducerConfig    KafkaProducerConfig
	EnableMetrics     bool
}

// Validate проверяет корректность конфигурации
func (c KafkaConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("brokers cannot be empty")
	}
	for i, broker := range c.Brokers {
		if broker == "" {
			return fmt.Errorf("broker[%d] cannot be empty", i)
		}
		// Простая проверка формата host:port
		if !strings.Contains(broker, ":") {
			return fmt.Errorf("broker[%d] must be in format host:port", i)
		}
	}
	return nil
}

// KafkaProducerConfig конфигурация для Kafka producer
type KafkaProducerConfig struct {
	RequiredAcks int // 0, 1, -1 (all)
	Idempotent   bool
	MaxAttempts  int
}

// DefaultKafkaConfig возвращает конфигурацию Kafka по умолчанию
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:           []string{"localhost:9092"},
		GroupID:           "tradebus-group",
		Partitions:        1,
		ReplicationFactor: 1,
		Compression:       "snappy",
		BatchSize:         100,
		FlushInterval:     10 * time.Millisecond,
		ProducerConfig: KafkaProducerConfig{
			RequiredAcks: -1, // all
			Idempotent:   true,
			MaxAttempts:  3,
		},
		EnableMetrics: true,
	}
}

// KafkaAdapter публикует на Kafka для bus.ExternalSink (через KafkaSink).
// Только producer-сторона: шина сама диспетчеризует входящие подписки, этот
// адаптер лишь отправляет наружу то, что шина публикует с has_backing.
type KafkaAdapter struct {
	config  KafkaConfig
	writer  *kafka.Writer
	mu      sync.RWMutex
	running bool
	metrics *metrics.Metrics
}

// NewKafkaAdapter создает новый Kafka адаптер
func NewKafkaAdapter(config KafkaConfig) (*KafkaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}

	adapter := &KafkaAdapter{
		config:  config,
		running: false,
	}

	if config.EnableMetrics {
		var err error
		adapter.metrics, err = metrics.NewMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	// Создаем writer для producer
	adapter.writer = &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequiredAcks(config.ProducerConfig.RequiredAcks),
		Async:        false,
		BatchSize:    config.BatchSize,
		BatchTimeout: config.FlushInterval,
		Compression:  getCompression(config.Compression),
	}

	return adapter, nil
}

// getCompression преобразует строку в kafka.Compression
func getCompression(compression string) kafka.Compression {
	switch compression {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0) // zero value - no compression
	}
}

// Start запускает адаптер (реализация core.Lifecycle)
func (k *KafkaAdapter) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.running {
		return nil
	}

	k.running = true
	return nil
}

// Stop останавливает адаптер (реализация core.Lifecycle)
func (k *KafkaAdapter) Stop(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.running {
		return nil
	}

	if k.writer != nil {
		_ = k.writer.Close()
	}

	k.running = false
	return nil
}

// IsRunning проверяет, запущен ли адаптер (реализация core.Lifecycle)
func (k *KafkaAdapter) IsRunning() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.running
}

// Name возвращает имя компонента (реализация core.Component)
func (k *KafkaAdapter) Name() string {
	return "kafka-adapter"
}

// Type возвращает тип компонента (реализация core.Component)
func (k *KafkaAdapter) Type() core.ComponentType {
	return core.ComponentTypeAdapter
}

// Publish публикует сообщение в топик
func (k *KafkaAdapter) Publish(ctx context.Context, subject string, data []byte, headers map[string]string) error {
	start := time.Now()

	msg := kafka.Message{
		Topic: subject,
		Value: data,
	}

	// Добавляем headers
	if headers != nil {
		msg.Headers = make([]kafka.Header, 0, len(headers))
		for k, v := range headers {
			msg.Headers = append(msg.Headers, kafka.Header{
				Key:   k,
				Value: []byte(v),
			})
		}
	}

	err := k.writer.WriteMessages(ctx, msg)
	if err != nil {
		if k.metrics != nil {
			k.metrics.RecordTransport(ctx, "kafka", time.Since(start), false)
		}
		return fmt.Errorf("failed to publish message: %w", err)
	}

	if k.metrics != nil {
		k.metrics.RecordTransport(ctx, "kafka", time.Since(start), true)
	}

	return nil
}
