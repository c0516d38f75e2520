// Package messagebus предоставляет адаптеры для различных message brokers.
package messagebus

import (
	"context"
	"sync"
	"time"

	"github.com/akriventsev/tradebus/framework/core"
	"github.com/akriventsev/tradebus/framework/transport"
)

// InMemoryConfig конфигурация для InMemory адаптера
type InMemoryConfig struct {
	BufferSize     int
	WorkerCount    int
	EnableOrdering bool // FIFO гарантии
}

// DefaultInMemoryConfig возвращает конфигурацию InMemory по умолчанию
func DefaultInMemoryConfig() InMemoryConfig {
	return InMemoryConfig{
		BufferSize:     1000,
		WorkerCount:    10,
		EnableOrdering: false,
	}
}

// InMemoryAdapter накапливает опубликованные сообщения по worker-очередям в
// памяти процесса, без реального брокера — backend для local dev и тестов,
// на который bus.ExternalSink опирается через InMemorySink.
type InMemoryAdapter struct {
	config        InMemoryConfig
	mu            sync.RWMutex
	running       bool
	messageQueues map[string]chan *transport.Message // subject -> queue
	workerWg      sync.WaitGroup
	stopWorkers   chan struct{}
}

// NewInMemoryAdapter создает новый InMemory адаптер
func NewInMemoryAdapter(config InMemoryConfig) *InMemoryAdapter {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 10
	}

	return &InMemoryAdapter{
		config:        config,
		running:       false,
		messageQueues: make(map[string]chan *transport.Message),
		stopWorkers:   make(chan struct{}),
	}
}

// Start запускает адаптер (реализация core.Lifecycle)
func (i *InMemoryAdapter) Start(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.running {
		return nil
	}

	for j := 0; j < i.config.WorkerCount; j++ {
		i.workerWg.Add(1)
		go i.worker(j)
	}

	i.running = true
	return nil
}

// worker дренирует очереди сообщений, имитируя асинхронную доставку брокера.
func (i *InMemoryAdapter) worker(id int) {
	defer i.workerWg.Done()

	for {
		select {
		case <-i.stopWorkers:
			return
		default:
			i.mu.RLock()
			queues := make([]chan *transport.Message, 0, len(i.messageQueues))
			for _, queue := range i.messageQueues {
				queues = append(queues, queue)
			}
			i.mu.RUnlock()

			for _, queue := range queues {
				select {
				case <-queue:
				default:
				}
			}

			time.Sleep(10 * time.Millisecond)
		}
	}
}

// Stop останавливает адаптер (реализация core.Lifecycle)
func (i *InMemoryAdapter) Stop(ctx context.Context) error {
	i.mu.Lock()
	if !i.running {
		i.mu.Unlock()
		return nil
	}
	i.running = false
	i.mu.Unlock()

	close(i.stopWorkers)
	i.workerWg.Wait()

	i.mu.Lock()
	for _, queue := range i.messageQueues {
		close(queue)
	}
	i.mu.Unlock()

	return nil
}

// IsRunning проверяет, запущен ли адаптер (реализация core.Lifecycle)
func (i *InMemoryAdapter) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}

// Name возвращает имя компонента (реализация core.Component)
func (i *InMemoryAdapter) Name() string {
	return "inmemory-adapter"
}

// Type возвращает тип компонента (реализация core.Component)
func (i *InMemoryAdapter) Type() core.ComponentType {
	return core.ComponentTypeAdapter
}

// Publish принимает сообщение в очередь subject'а; если воркеры не запущены
// или очередь переполнена, сообщение отбрасывается без ошибки.
func (i *InMemoryAdapter) Publish(ctx context.Context, subject string, data []byte, headers map[string]string) error {
	msg := &transport.Message{
		Subject: subject,
		Data:    data,
		Headers: headers,
	}

	if i.running && i.config.WorkerCount > 0 {
		i.mu.Lock()
		queue, exists := i.messageQueues[subject]
		if !exists {
			queue = make(chan *transport.Message, i.config.BufferSize)
			i.messageQueues[subject] = queue
		}
		i.mu.Unlock()

		select {
		case queue <- msg:
			return nil
		default:
			return nil
		}
	}

	return nil
}
