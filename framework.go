// Package framework предоставляет универсальные компоненты для построения
// шины сообщений внутри торговой платформы.
//
// Основные возможности:
//   - In-process message bus: точечная отправка, коррелированные
//     запрос/ответ, иерархическая публикация/подписка по wildcard-темам
//   - DI контейнер с модульной архитектурой
//   - Адаптеры внешней публикации (Redis Streams, Kafka, NATS)
//   - Метрики на основе OpenTelemetry
//
// Пример использования:
//
//	fw := framework.New()
//	if err := fw.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer fw.Shutdown(ctx)
package framework

import (
	"context"
	"fmt"

	"github.com/akriventsev/tradebus/framework/core"
)

// Version представляет версию фреймворка
const (
	Version = "1.0.0"
	Major   = 1
	Minor   = 0
	Patch   = 0
)

// Metadata содержит метаданные о фреймворке
type Metadata struct {
	Name        string
	Version     string
	Description string
	Author      string
	License     string
}

// GetMetadata возвращает метаданные фреймворка
func GetMetadata() Metadata {
	return Metadata{
		Name:        "Tradebus Framework",
		Version:     Version,
		Description: "In-process message bus for trading platform services",
		Author:      "Tradebus Team",
		License:     "MIT",
	}
}

// Framework основной интерфейс фреймворка
type Framework interface {
	// Initialize инициализирует фреймворк
	Initialize(ctx context.Context) error
	// Shutdown корректно завершает работу фреймворка
	Shutdown(ctx context.Context) error
	// GetComponent возвращает компонент по имени
	GetComponent(name string) (core.Component, error)
	// RegisterComponent регистрирует компонент
	RegisterComponent(component core.Component) error
}

// BaseFramework базовая реализация фреймворка
type BaseFramework struct {
	components map[string]core.Component
	metadata   Metadata
}

// New создает новый экземпляр фреймворка
func New() *BaseFramework {
	return &BaseFramework{
		components: make(map[string]core.Component),
		metadata:   GetMetadata(),
	}
}

// Initialize инициализирует фреймворк
func (f *BaseFramework) Initialize(ctx context.Context) error {
	return nil
}

// Shutdown корректно завершает работу фреймворка
func (f *BaseFramework) Shutdown(ctx context.Context) error {
	return nil
}

// GetComponent возвращает компонент по имени
func (f *BaseFramework) GetComponent(name string) (core.Component, error) {
	component, exists := f.components[name]
	if !exists {
		return nil, fmt.Errorf("component %s not found", name)
	}
	return component, nil
}

// RegisterComponent регистрирует компонент
func (f *BaseFramework) RegisterComponent(component core.Component) error {
	if _, exists := f.components[component.Name()]; exists {
		return fmt.Errorf("component %s already registered", component.Name())
	}
	f.components[component.Name()] = component
	return nil
}

// FrameworkVersion возвращает версию фреймворка
func FrameworkVersion() string {
	return Version
}
