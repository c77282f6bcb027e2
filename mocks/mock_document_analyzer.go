package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hazmate/internal/domain"
	"hazmate/internal/port"
)

// MockDocumentAnalyzer is a mock implementation of port.DocumentAnalyzer.
type MockDocumentAnalyzer struct {
	mock.Mock
}

func (m *MockDocumentAnalyzer) AnalyzeDocument(ctx context.Context, input port.AnalyzeInput) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockDocumentAnalyzer) Vendor() domain.Vendor {
	args := m.Called()
	return args.Get(0).(domain.Vendor)
}

func (m *MockDocumentAnalyzer) Model() string {
	args := m.Called()
	return args.String(0)
}

// MockAnalyzerResolver is a mock implementation of port.AnalyzerResolver.
type MockAnalyzerResolver struct {
	mock.Mock
}

func (m *MockAnalyzerResolver) Resolve(override *port.ProviderOverride) (port.DocumentAnalyzer, error) {
	args := m.Called(override)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.DocumentAnalyzer), args.Error(1)
}

func (m *MockAnalyzerResolver) Default() port.DocumentAnalyzer {
	args := m.Called()
	return args.Get(0).(port.DocumentAnalyzer)
}

func (m *MockAnalyzerResolver) Catalog() []domain.ProviderInfo {
	args := m.Called()
	return args.Get(0).([]domain.ProviderInfo)
}
