package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lifedash/internal/domain"
	"lifedash/internal/service"
)

// MockEntryService is a mock implementation of service.EntryService.
type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) Create(ctx context.Context, input service.EntryCreateInput) (*domain.Entry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryService) CreateFromIngestion(ctx context.Context, input service.EntryFromIngestionInput) (*domain.Entry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryService) GetByID(ctx context.Context, ownerID, entryID uuid.UUID) (*domain.Entry, error) {
	args := m.Called(ctx, ownerID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryService) ArchiveURL(ctx context.Context, ownerID, entryID uuid.UUID) (string, error) {
	args := m.Called(ctx, ownerID, entryID)
	return args.String(0), args.Error(1)
}

func (m *MockEntryService) List(ctx context.Context, ownerID uuid.UUID, domainTag domain.LifeDomain, offset, limit int) ([]domain.Entry, int, error) {
	args := m.Called(ctx, ownerID, domainTag, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Entry), args.Int(1), args.Error(2)
}

func (m *MockEntryService) Update(ctx context.Context, ownerID, entryID uuid.UUID, input service.EntryCreateInput) (*domain.Entry, error) {
	args := m.Called(ctx, ownerID, entryID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryService) Delete(ctx context.Context, ownerID, entryID uuid.UUID) error {
	args := m.Called(ctx, ownerID, entryID)
	return args.Error(0)
}
