package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lifedash/internal/domain"
	"lifedash/internal/port"
)

// MockTextRecognizer is a mock implementation of port.TextRecognizer.
type MockTextRecognizer struct {
	mock.Mock
}

func (m *MockTextRecognizer) Recognize(ctx context.Context, input port.RecognizeInput) (*domain.RecognitionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecognitionResult), args.Error(1)
}
