package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lifedash/internal/domain"
	"lifedash/internal/port"
)

type entryRepo struct {
	db *sqlx.DB
}

// NewEntryRepo creates a new PostgreSQL-backed EntryRepository.
func NewEntryRepo(db *sqlx.DB) port.EntryRepository {
	return &entryRepo{db: db}
}

func (r *entryRepo) Create(ctx context.Context, entry *domain.Entry) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	query := `INSERT INTO domain_entries
		(id, owner_id, domain, title, description, metadata, archive_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.OwnerID, entry.Domain, entry.Title, entry.Description,
		entry.Metadata, entry.ArchiveKey, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("entryRepo.Create: %w", err)
	}
	return nil
}

func (r *entryRepo) GetByID(ctx context.Context, ownerID, entryID uuid.UUID) (*domain.Entry, error) {
	var entry domain.Entry
	err := r.db.GetContext(ctx, &entry,
		"SELECT * FROM domain_entries WHERE id = $1 AND owner_id = $2", entryID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("entryRepo.GetByID: %w", err)
	}
	return &entry, nil
}

func (r *entryRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, domainTag domain.LifeDomain, offset, limit int) ([]domain.Entry, int, error) {
	where := "WHERE owner_id = $1"
	args := []any{ownerID}
	if domainTag != "" {
		where += " AND domain = $2"
		args = append(args, domainTag)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM domain_entries "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("entryRepo.ListByOwner count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM domain_entries %s ORDER BY created_at DESC OFFSET $%d LIMIT $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	entries := []domain.Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("entryRepo.ListByOwner: %w", err)
	}
	return entries, total, nil
}

func (r *entryRepo) Update(ctx context.Context, entry *domain.Entry) error {
	entry.UpdatedAt = time.Now().UTC()

	query := `UPDATE domain_entries
		SET domain = $1, title = $2, description = $3, metadata = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7`

	res, err := r.db.ExecContext(ctx, query,
		entry.Domain, entry.Title, entry.Description, entry.Metadata,
		entry.UpdatedAt, entry.ID, entry.OwnerID)
	if err != nil {
		return fmt.Errorf("entryRepo.Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("entryRepo.Update rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *entryRepo) Delete(ctx context.Context, ownerID, entryID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM domain_entries WHERE id = $1 AND owner_id = $2", entryID, ownerID)
	if err != nil {
		return fmt.Errorf("entryRepo.Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("entryRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
