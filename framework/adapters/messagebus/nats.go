// Package messagebus предоставляет адаптеры для различных message brokers.
package messagebus

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akriventsev/tradebus/framework/core"
	"github.com/akriventsev/tradebus/framework/metrics"
	"github.com/nats-io/nats.go"
)

// NATSConfig конфигурация для NATS адаптера
type NATSConfig struct {
	URL                string
	MaxReconnects      int
	ReconnectWait      time.Duration
	DrainTimeout       time.Duration
	ConnectionTimeout  time.Duration
	TLS                *tls.Config
	Token              string
	Username           string
	Password           string
	EnableMetrics      bool
	ConnectionPoolSize int
}

// Validate проверяет корректность конфигурации
func (c NATSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(c.URL, "nats://") && !strings.HasPrefix(c.URL, "tls://") {
		return fmt.Errorf("URL must start with nats:// or tls://")
	}
	return nil
}

// DefaultNATSConfig возвращает конфигурацию NATS по умолчанию
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:                "nats://localhost:4222",
		MaxReconnects:      10,
		ReconnectWait:      2 * time.Second,
		DrainTimeout:       30 * time.Second,
		ConnectionTimeout:  5 * time.Second,
		EnableMetrics:      true,
		ConnectionPoolSize: 1,
	}
}

// NATSAdapter публикует в NATS для bus.ExternalSink (через NATSSink). Только
// producer-сторона: шина сама диспетчеризует входящие подписки, этот
// адаптер лишь отправляет наружу то, что шина публикует с has_backing.
type NATSAdapter struct {
	config    NATSConfig
	conn      *nats.Conn
	conns     []*nats.Conn // Connection pool
	mu        sync.RWMutex
	running   bool
	metrics   *metrics.Metrics
	connIndex int // Round-robin для connection pool
	connMu    sync.Mutex
}

// NATSAdapterBuilder построитель для NATS адаптера
type NATSAdapterBuilder struct {
	config NATSConfig
}

// NewNATSAdapterBuilder создает новый построитель NATS адаптера
func NewNATSAdapterBuilder() *NATSAdapterBuilder {
	return &NATSAdapterBuilder{
		config: DefaultNATSConfig(),
	}
}

// WithURL устанавливает URL NATS сервера
func (b *NATSAdapterBuilder) WithURL(url string) *NATSAdapterBuilder {
	b.config.URL = url
	return b
}

// WithMaxReconnects устанавливает максимальное количество переподключений
func (b *NATSAdapterBuilder) WithMaxReconnects(maxReconnects int) *NATSAdapterBuilder {
	b.config.MaxReconnects = maxReconnects
	return b
}

// WithReconnectWait устанавливает задержку между переподключениями
func (b *NATSAdapterBuilder) WithReconnectWait(wait time.Duration) *NATSAdapterBuilder {
	b.config.ReconnectWait = wait
	return b
}

// WithDrainTimeout устанавливает таймаут для graceful shutdown
func (b *NATSAdapterBuilder) WithDrainTimeout(timeout time.Duration) *NATSAdapterBuilder {
	b.config.DrainTimeout = timeout
	return b
}

// WithConnectionTimeout устанавливает таймаут подключения
func (b *NATSAdapterBuilder) WithConnectionTimeout(timeout time.Duration) *NATSAdapterBuilder {
	b.config.ConnectionTimeout = timeout
	return b
}

// WithTLS устанавливает TLS конфигурацию
func (b *NATSAdapterBuilder) WithTLS(tls *tls.Config) *NATSAdapterBuilder {
	b.config.TLS = tls
	return b
}

// WithToken устанавливает токен аутентификации
func (b *NATSAdapterBuilder) WithToken(token string) *NATSAdapterBuilder {
	b.config.Token = token
	return b
}

// WithCredentials устанавливает username и password
func (b *NATSAdapterBuilder) WithCredentials(username, password string) *NATSAdapterBuilder {
	b.config.Username = username
	b.config.Password = password
	return b
}

// WithMetrics включает/выключает метрики
func (b *NATSAdapterBuilder) WithMetrics(enable bool) *NATSAdapterBuilder {
	b.config.EnableMetrics = enable
	return b
}

// WithConnectionPool устанавливает размер connection pool
func (b *NATSAdapterBuilder) WithConnectionPool(size int) *NATSAdapterBuilder {
	b.config.ConnectionPoolSize = size
	return b
}

// Build создает NATS адаптер
func (b *NATSAdapterBuilder) Build() (*NATSAdapter, error) {
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid nats config: %w", err)
	}

	adapter := &NATSAdapter{
		config:  b.config,
		running: false,
	}

	if b.config.EnableMetrics {
		var err error
		adapter.metrics, err = metrics.NewMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	return adapter, nil
}

// NewNATSAdapter создает новый NATS адаптер с конфигурацией по умолчанию
func NewNATSAdapter(url string) (*NATSAdapter, error) {
	if url == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "nats://") && !strings.HasPrefix(url, "tls://") {
		return nil, fmt.Errorf("URL must start with nats:// or tls://")
	}
	builder := NewNATSAdapterBuilder().WithURL(url)
	return builder.Build()
}

// getConnection возвращает соединение из pool (round-robin)
func (n *NATSAdapter) getConnection() *nats.Conn {
	if len(n.conns) == 0 {
		return nil
	}

	n.connMu.Lock()
	defer n.connMu.Unlock()

	conn := n.conns[n.connIndex]
	n.connIndex = (n.connIndex + 1) % len(n.conns)
	return conn
}

// Start запускает адаптер (реализация core.Lifecycle)
func (n *NATSAdapter) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return nil
	}

	opts := []nats.Option{
		nats.MaxReconnects(n.config.MaxReconnects),
		nats.ReconnectWait(n.config.ReconnectWait),
		nats.Timeout(n.config.ConnectionTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				// Логируем ошибку отключения
				_ = err
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			// Логируем переподключение
		}),
	}

	if n.config.TLS != nil {
		opts = append(opts, nats.Secure(n.config.TLS))
	}

	if n.config.Token != "" {
		opts = append(opts, nats.Token(n.config.Token))
	}

	if n.config.Username != "" && n.config.Password != "" {
		opts = append(opts, nats.UserInfo(n.config.Username, n.config.Password))
	}

	// Создаем connection pool
	n.conns = make([]*nats.Conn, 0, n.config.ConnectionPoolSize)
	for i := 0; i < n.config.ConnectionPoolSize; i++ {
		conn, err := nats.Connect(n.config.URL, opts...)
		if err != nil {
			// Закрываем уже созданные соединения
			for _, c := range n.conns {
				c.Close()
			}
			return fmt.Errorf("failed to connect to NATS (connection %d): %w", i, err)
		}
		n.conns = append(n.conns, conn)
	}

	// Для обратной совместимости устанавливаем первое соединение как основное
	if len(n.conns) > 0 {
		n.conn = n.conns[0]
	}

	n.running = true
	return nil
}

// Stop останавливает адаптер (реализация core.Lifecycle)
func (n *NATSAdapter) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.running {
		return nil
	}

	// Drain и закрываем все соединения
	for _, conn := range n.conns {
		if conn != nil && conn.IsConnected() {
			_ = conn.Drain()
			conn.Close()
		}
	}

	n.running = false
	return nil
}

// IsRunning проверяет, запущен ли адаптер (реализация core.Lifecycle)
func (n *NATSAdapter) IsRunning() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.running
}

// Name возвращает имя компонента (реализация core.Component)
func (n *NATSAdapter) Name() string {
	return "nats-adapter"
}

// Type возвращает тип компонента (реализация core.Component)
func (n *NATSAdapter) Type() core.ComponentType {
	return core.ComponentTypeAdapter
}

// Publish публикует сообщение в subject
func (n *NATSAdapter) Publish(ctx context.Context, subject string, data []byte, headers map[string]string) error {
	start := time.Now()
	conn := n.getConnection()
	if conn == nil {
		return fmt.Errorf("nats adapter is not connected")
	}

	msg := nats.NewMsg(subject)
	msg.Data = data

	// Добавляем заголовки
	if headers != nil {
		if msg.Header == nil {
			msg.Header = make(nats.Header)
		}
		for k, v := range headers {
			msg.Header.Set(k, v)
		}
	}

	err := conn.PublishMsg(msg)
	if err != nil {
		if n.metrics != nil {
			n.metrics.RecordTransport(ctx, "nats", time.Since(start), false)
		}
		return fmt.Errorf("failed to publish message: %w", err)
	}

	if n.metrics != nil {
		n.metrics.RecordTransport(ctx, "nats", time.Since(start), true)
	}

	return nil
}
