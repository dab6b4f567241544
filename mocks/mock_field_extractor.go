package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lifedash/internal/domain"
)

// MockFieldExtractor is a mock implementation of port.FieldExtractor.
type MockFieldExtractor struct {
	mock.Mock
}

func (m *MockFieldExtractor) Extract(ctx context.Context, text string, docType domain.DocumentType) (map[string]any, error) {
	args := m.Called(ctx, text, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockFieldExtractor) ExtractEnhanced(ctx context.Context, text string, docType domain.DocumentType) (*domain.EnhancedExtraction, error) {
	args := m.Called(ctx, text, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnhancedExtraction), args.Error(1)
}
