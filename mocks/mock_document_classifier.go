package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lifedash/internal/domain"
)

// MockDocumentClassifier is a mock implementation of port.DocumentClassifier.
type MockDocumentClassifier struct {
	mock.Mock
}

func (m *MockDocumentClassifier) Classify(ctx context.Context, text string) (*domain.ClassificationResult, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassificationResult), args.Error(1)
}
