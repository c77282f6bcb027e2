package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hazmate/internal/domain"
	"hazmate/internal/service"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, input service.AnalyzeInput) (*service.AnalyzeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyzeOutput), args.Error(1)
}

func (m *MockAnalysisService) Providers() []domain.ProviderInfo {
	args := m.Called()
	return args.Get(0).([]domain.ProviderInfo)
}

func (m *MockAnalysisService) DefaultProvider() (domain.Vendor, string) {
	args := m.Called()
	return args.Get(0).(domain.Vendor), args.String(1)
}
