// Package messagebus предоставляет адаптеры для различных message brokers.
package messagebus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/akriventsev/tradebus/framework/core"
	"github.com/redis/go-redis/v9"
)

// RedisConfig конфигурация для Redis адаптера
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	PoolSize      int
	MaxRetries    int
	StreamMaxLen  int64 // Максимальная длина stream (0 = без ограничений)
	ConsumerGroup string
	BlockTimeout  time.Duration
	EnableMetrics bool
	StreamName    string // Имя stream для публикации сообщений
}

// Validate проверяет корректность конфигурации
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if c.StreamName == "" {
		return fmt.Errorf("StreamName cannot be empty")
	}
	return nil
}

// DefaultRedisConfig возвращает конфигурацию Redis по умолчанию
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:          "localhost:6379",
		Password:      "",
		DB:            0,
		PoolSize:      10,
		MaxRetries:    3,
		StreamMaxLen:  10000,
		ConsumerGroup: "tradebus-group",
		BlockTimeout:  5 * time.Second,
		EnableMetrics: true,
		StreamName:    "stream",
	}
}

// RedisAdapter публикует в Redis Stream для bus.ExternalSink (через
// RedisSink). Только producer-сторона: шина сама диспетчеризует входящие
// подписки, этот адаптер лишь отправляет наружу то, что шина публикует с
// has_backing.
type RedisAdapter struct {
	config  RedisConfig
	client  *redis.Client
	mu      sync.RWMutex
	running bool
}

// NewRedisAdapter создает новый Redis адаптер
func NewRedisAdapter(config RedisConfig) (*RedisAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:       config.Addr,
		Password:   config.Password,
		DB:         config.DB,
		PoolSize:   config.PoolSize,
		MaxRetries: config.MaxRetries,
	})

	// Проверяем подключение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAdapter{
		config:  config,
		client:  client,
		running: false,
	}, nil
}

// Start запускает адаптер (реализация core.Lifecycle)
func (r *RedisAdapter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	r.running = true
	return nil
}

// Stop останавливает адаптер (реализация core.Lifecycle)
func (r *RedisAdapter) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}

	if r.client != nil {
		_ = r.client.Close()
	}

	r.running = false
	return nil
}

// IsRunning проверяет, запущен ли адаптер (реализация core.Lifecycle)
func (r *RedisAdapter) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Name возвращает имя компонента (реализация core.Component)
func (r *RedisAdapter) Name() string {
	return "redis-adapter"
}

// Type возвращает тип компонента (реализация core.Component)
func (r *RedisAdapter) Type() core.ComponentType {
	return core.ComponentTypeAdapter
}

// Publish публикует сообщение в stream (XADD)
func (r *RedisAdapter) Publish(ctx context.Context, subject string, data []byte, headers map[string]string) error {
	stream := r.getStreamName(subject)

	// Создаем map для XADD
	values := make(map[string]interface{})
	values["data"] = string(data)

	// Добавляем headers
	if headers != nil {
		headersJSON, _ := json.Marshal(headers)
		values["headers"] = string(headersJSON)
	}

	// XADD с MAXLEN для автоматической очистки старых сообщений
	args := redis.XAddArgs{
		Stream: stream,
		Values: values,
	}

	if r.config.StreamMaxLen > 0 {
		args.MaxLen = r.config.StreamMaxLen
		args.Approx = true // Приблизительный MAXLEN для производительности
	}

	_, err := r.client.XAdd(ctx, &args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// getStreamName преобразует subject в имя stream
func (r *RedisAdapter) getStreamName(subject string) string {
	if r.config.StreamName != "" {
		return fmt.Sprintf("%s:%s", r.config.StreamName, subject)
	}
	return fmt.Sprintf("stream:%s", subject)
}
