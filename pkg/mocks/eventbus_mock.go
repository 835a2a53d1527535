package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vendura/automation/pkg/eventbus"
	"github.com/vendura/automation/pkg/events"
)

// MockEventBus is a mock implementation of the eventbus.EventBus interface.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) GenerateID() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockEventBus) PublishBusiness(ctx context.Context, event *events.BusinessEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *MockEventBus) PublishLifecycle(ctx context.Context, key string, event events.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) SubscribeBusiness(ctx context.Context, handler eventbus.BusinessHandler) error {
	args := m.Called(ctx, handler)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}
