// Package metrics предоставляет систему метрик на основе OpenTelemetry.
package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics сборщик метрик шины сообщений.
type Metrics struct {
	meter metric.Meter

	sentTotal     metric.Int64Counter
	requestTotal  metric.Int64Counter
	responseTotal metric.Int64Counter
	publishTotal  metric.Int64Counter

	subscriptionsActive   metric.Int64UpDownCounter
	externalPublishTotal  metric.Int64Counter
	externalPublishErrors metric.Int64Counter
	transportErrors       metric.Int64Counter

	customMetrics map[string]interface{}
	mu            sync.RWMutex
}

// NewMetrics создает новый сборщик метрик для шины.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("tradebus")

	sentTotal, err := meter.Int64Counter(
		"bus_sent_total",
		metric.WithDescription("Total number of point-to-point sends dispatched"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"bus_requests_total",
		metric.WithDescription("Total number of correlated requests dispatched"),
	)
	if err != nil {
		return nil, err
	}

	responseTotal, err := meter.Int64Counter(
		"bus_responses_total",
		metric.WithDescription("Total number of correlated responses delivered"),
	)
	if err != nil {
		return nil, err
	}

	publishTotal, err := meter.Int64Counter(
		"bus_published_total",
		metric.WithDescription("Total number of publish calls dispatched to subscribers"),
	)
	if err != nil {
		return nil, err
	}

	subscriptionsActive, err := meter.Int64UpDownCounter(
		"bus_subscriptions_active",
		metric.WithDescription("Current number of active subscriptions"),
	)
	if err != nil {
		return nil, err
	}

	externalPublishTotal, err := meter.Int64Counter(
		"bus_external_publish_total",
		metric.WithDescription("Total number of messages forwarded to the external sink"),
	)
	if err != nil {
		return nil, err
	}

	externalPublishErrors, err := meter.Int64Counter(
		"bus_external_publish_errors_total",
		metric.WithDescription("Total number of external sink publish failures"),
	)
	if err != nil {
		return nil, err
	}

	transportErrors, err := meter.Int64Counter(
		"bus_transport_errors_total",
		metric.WithDescription("Total number of broker transport errors, by transport"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		meter:                 meter,
		sentTotal:             sentTotal,
		requestTotal:          requestTotal,
		responseTotal:         responseTotal,
		publishTotal:          publishTotal,
		subscriptionsActive:   subscriptionsActive,
		externalPublishTotal:  externalPublishTotal,
		externalPublishErrors: externalPublishErrors,
		transportErrors:       transportErrors,
		customMetrics:         make(map[string]interface{}),
	}, nil
}

// RecordSend записывает метрику Send.
func (m *Metrics) RecordSend(ctx context.Context, endpoint string) {
	m.sentTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordRequest записывает метрику Request.
func (m *Metrics) RecordRequest(ctx context.Context, endpoint string) {
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordResponse записывает метрику Response.
func (m *Metrics) RecordResponse(ctx context.Context) {
	m.responseTotal.Add(ctx, 1)
}

// RecordPublish записывает метрику Publish.
func (m *Metrics) RecordPublish(ctx context.Context, topic string, subscriberCount int) {
	m.publishTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.Int("subscribers", subscriberCount),
	))
}

// IncrementSubscriptions увеличивает счетчик активных подписок.
func (m *Metrics) IncrementSubscriptions(ctx context.Context) {
	m.subscriptionsActive.Add(ctx, 1)
}

// DecrementSubscriptions уменьшает счетчик активных подписок.
func (m *Metrics) DecrementSubscriptions(ctx context.Context) {
	m.subscriptionsActive.Add(ctx, -1)
}

// RecordExternalPublish записывает результат доставки во внешний sink.
func (m *Metrics) RecordExternalPublish(ctx context.Context, topic string, success bool) {
	if success {
		m.externalPublishTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
		return
	}
	m.externalPublishErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

// RecordTransport записывает результат обращения к брокеру (redis/kafka/nats).
// Только ошибки увеличивают счетчик — успешные обращения уже видны через
// RecordExternalPublish на вызывающей стороне (bus.Bus.emitExternal).
func (m *Metrics) RecordTransport(ctx context.Context, transportName string, duration time.Duration, success bool) {
	if success {
		return
	}
	m.transportErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("transport", transportName)))
}

// Register регистрирует кастомную метрику.
func (m *Metrics) Register(name string, metric interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customMetrics[name] = metric
	return nil
}

// Unregister удаляет кастомную метрику.
func (m *Metrics) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.customMetrics, name)
	return nil
}
