package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lifedash/internal/domain"
	"lifedash/internal/service"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, input service.IngestInput) (*domain.IngestionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestionResult), args.Error(1)
}
