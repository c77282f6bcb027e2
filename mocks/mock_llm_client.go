package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hazmate/internal/domain"
	"hazmate/internal/port"
)

// MockLLMClient is a mock implementation of port.LLMClient.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) Vendor() domain.Vendor {
	args := m.Called()
	return args.Get(0).(domain.Vendor)
}

func (m *MockLLMClient) Model() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLMClient) Accepts(mimeType string) bool {
	args := m.Called(mimeType)
	return args.Bool(0)
}
