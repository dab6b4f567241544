package port

import (
	"context"

	"github.com/google/uuid"

	"lifedash/internal/domain"
)

// EntryRepository defines the contract for life-domain record persistence.
// All reads and writes are scoped by owner identity.
type EntryRepository interface {
	Create(ctx context.Context, entry *domain.Entry) error
	GetByID(ctx context.Context, ownerID, entryID uuid.UUID) (*domain.Entry, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, domainTag domain.LifeDomain, offset, limit int) ([]domain.Entry, int, error)
	Update(ctx context.Context, entry *domain.Entry) error
	Delete(ctx context.Context, ownerID, entryID uuid.UUID) error
}
