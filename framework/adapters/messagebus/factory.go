// Package messagebus предоставляет адаптеры для различных message brokers.
package messagebus

import (
	"fmt"
	"sync"

	"github.com/akriventsev/tradebus/framework/bus"
)

// SinkFactory интерфейс фабрики для создания bus.ExternalSink адаптеров по
// имени backend'а ("redis", "kafka", "nats", "inmemory").
type SinkFactory interface {
	Create(sinkType string, config interface{}) (bus.ExternalSink, error)
	Register(name string, creator func(config interface{}) (bus.ExternalSink, error)) error
}

// DefaultSinkFactory реализация SinkFactory
type DefaultSinkFactory struct {
	creators map[string]func(config interface{}) (bus.ExternalSink, error)
	mu       sync.RWMutex
}

// NewSinkFactory создает новую фабрику ExternalSink адаптеров с
// зарегистрированными built-in backend'ами.
func NewSinkFactory() *DefaultSinkFactory {
	factory := &DefaultSinkFactory{
		creators: make(map[string]func(config interface{}) (bus.ExternalSink, error)),
	}

	_ = factory.Register("nats", func(config interface{}) (bus.ExternalSink, error) {
		cfg, ok := config.(NATSConfig)
		if !ok {
			if url, ok := config.(string); ok {
				adapter, err := NewNATSAdapter(url)
				if err != nil {
					return nil, err
				}
				return NewNATSSink(adapter), nil
			}
			return nil, fmt.Errorf("invalid NATS config type: %T", config)
		}
		builder := NewNATSAdapterBuilder().
			WithURL(cfg.URL).
			WithMaxReconnects(cfg.MaxReconnects).
			WithReconnectWait(cfg.ReconnectWait).
			WithDrainTimeout(cfg.DrainTimeout).
			WithConnectionTimeout(cfg.ConnectionTimeout).
			WithMetrics(cfg.EnableMetrics).
			WithConnectionPool(cfg.ConnectionPoolSize)
		if cfg.TLS != nil {
			builder.WithTLS(cfg.TLS)
		}
		if cfg.Token != "" {
			builder.WithToken(cfg.Token)
		}
		if cfg.Username != "" && cfg.Password != "" {
			builder.WithCredentials(cfg.Username, cfg.Password)
		}
		adapter, err := builder.Build()
		if err != nil {
			return nil, err
		}
		return NewNATSSink(adapter), nil
	})

	_ = factory.Register("kafka", func(config interface{}) (bus.ExternalSink, error) {
		cfg, ok := config.(KafkaConfig)
		if !ok {
			return nil, fmt.Errorf("invalid Kafka config type: %T", config)
		}
		adapter, err := NewKafkaAdapter(cfg)
		if err != nil {
			return nil, err
		}
		return NewKafkaSink(adapter), nil
	})

	_ = factory.Register("redis", func(config interface{}) (bus.ExternalSink, error) {
		cfg, ok := config.(RedisConfig)
		if !ok {
			return nil, fmt.Errorf("invalid Redis config type: %T", config)
		}
		adapter, err := NewRedisAdapter(cfg)
		if err != nil {
			return nil, err
		}
		return NewRedisSink(adapter), nil
	})

	_ = factory.Register("inmemory", func(config interface{}) (bus.ExternalSink, error) {
		var cfg InMemoryConfig
		if config != nil {
			if c, ok := config.(InMemoryConfig); ok {
				cfg = c
			} else {
				cfg = DefaultInMemoryConfig()
			}
		} else {
			cfg = DefaultInMemoryConfig()
		}
		return NewInMemorySink(NewInMemoryAdapter(cfg)), nil
	})

	return factory
}

// Create создает ExternalSink указанного типа
func (f *DefaultSinkFactory) Create(sinkType string, config interface{}) (bus.ExternalSink, error) {
	f.mu.RLock()
	creator, exists := f.creators[sinkType]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown sink type: %s", sinkType)
	}

	sink, err := creator(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s sink: %w", sinkType, err)
	}

	return sink, nil
}

// Register регистрирует custom sink backend
func (f *DefaultSinkFactory) Register(name string, creator func(config interface{}) (bus.ExternalSink, error)) error {
	if name == "" {
		return fmt.Errorf("sink name cannot be empty")
	}
	if creator == nil {
		return fmt.Errorf("creator function cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.creators[name]; exists {
		return fmt.Errorf("sink %s already registered", name)
	}

	f.creators[name] = creator
	return nil
}

// Unregister удаляет регистрацию sink backend'а
func (f *DefaultSinkFactory) Unregister(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.creators[name]; !exists {
		return fmt.Errorf("sink %s not registered", name)
	}

	delete(f.creators, name)
	return nil
}

// ListRegistered возвращает список зарегистрированных sink backend'ов
func (f *DefaultSinkFactory) ListRegistered() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	return names
}

// ValidateConfig валидирует конфигурацию для указанного типа sink'а
func (f *DefaultSinkFactory) ValidateConfig(sinkType string, config interface{}) error {
	switch sinkType {
	case "nats":
		cfg, ok := config.(NATSConfig)
		if !ok {
			return fmt.Errorf("invalid NATS config type")
		}
		if cfg.URL == "" {
			return fmt.Errorf("NATS URL is required")
		}
	case "kafka":
		cfg, ok := config.(KafkaConfig)
		if !ok {
			return fmt.Errorf("invalid Kafka config type")
		}
		if len(cfg.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required")
		}
		if cfg.GroupID == "" {
			return fmt.Errorf("kafka GroupID is required")
		}
	case "redis":
		cfg, ok := config.(RedisConfig)
		if !ok {
			return fmt.Errorf("invalid Redis config type")
		}
		if cfg.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
	case "inmemory":
		// InMemory не требует валидации
	default:
		return fmt.Errorf("unknown sink type: %s", sinkType)
	}

	return nil
}
