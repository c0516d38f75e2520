// Package invoke предоставляет утилиты для генерации и передачи correlation
// ID вместе с реализациями сериализаторов сообщений шины.
package invoke

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Константы для ключей контекста
const (
	CorrelationIDKey = "correlation_id"
	CausationIDKey   = "causation_id"
	CommandIDKey     = "command_id"
)

// GenerateCorrelationID генерирует уникальный correlation ID, пригодный как
// bus.Request.ID.
func GenerateCorrelationID() string {
	return uuid.New().String()
}

// GenerateCommandID генерирует уникальный ID команды.
func GenerateCommandID() string {
	return fmt.Sprintf("cmd-%d", time.Now().UnixNano())
}

// ExtractCorrelationID извлекает correlation ID из контекста
func ExtractCorrelationID(ctx context.Context) string {
	if val := ctx.Value(CorrelationIDKey); val != nil {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}

// WithCorrelationID добавляет correlation ID в контекст
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// ExtractCausationID извлекает causation ID из контекста
func ExtractCausationID(ctx context.Context) string {
	if val := ctx.Value(CausationIDKey); val != nil {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}

// WithCausationID добавляет causation ID в контекст
func WithCausationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CausationIDKey, id)
}

// ExtractCommandID извлекает command ID из контекста
func ExtractCommandID(ctx context.Context) string {
	if val := ctx.Value(CommandIDKey); val != nil {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}

// WithCommandID добавляет command ID в контекст
func WithCommandID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CommandIDKey, id)
}
