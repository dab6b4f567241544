package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lifedash/internal/domain"
)

// MockEntryRepo is a mock implementation of port.EntryRepository.
type MockEntryRepo struct {
	mock.Mock
}

func (m *MockEntryRepo) Create(ctx context.Context, entry *domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepo) GetByID(ctx context.Context, ownerID, entryID uuid.UUID) (*domain.Entry, error) {
	args := m.Called(ctx, ownerID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, domainTag domain.LifeDomain, offset, limit int) ([]domain.Entry, int, error) {
	args := m.Called(ctx, ownerID, domainTag, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Entry), args.Int(1), args.Error(2)
}

func (m *MockEntryRepo) Update(ctx context.Context, entry *domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepo) Delete(ctx context.Context, ownerID, entryID uuid.UUID) error {
	args := m.Called(ctx, ownerID, entryID)
	return args.Error(0)
}
