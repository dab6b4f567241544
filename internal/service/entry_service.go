package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/config"
	"lifedash/internal/domain"
	"lifedash/internal/port"
)

// EntryCreateInput is the DTO for creating a life-domain record directly.
type EntryCreateInput struct {
	OwnerID     uuid.UUID
	Domain      domain.LifeDomain
	Title       string
	Description string
	Metadata    json.RawMessage
}

// EntryFromIngestionInput persists an ingestion result as an entry and
// archives the original upload.
type EntryFromIngestionInput struct {
	OwnerID     uuid.UUID
	Result      *domain.IngestionResult
	FileBytes   []byte
	ContentType string
	Filename    string
}

// EntryService defines the life-domain record store contract. The
// ingestion pipeline itself never persists anything; this service is its
// downstream caller.
type EntryService interface {
	Create(ctx context.Context, input EntryCreateInput) (*domain.Entry, error)
	CreateFromIngestion(ctx context.Context, input EntryFromIngestionInput) (*domain.Entry, error)
	GetByID(ctx context.Context, ownerID, entryID uuid.UUID) (*domain.Entry, error)
	ArchiveURL(ctx context.Context, ownerID, entryID uuid.UUID) (string, error)
	List(ctx context.Context, ownerID uuid.UUID, domainTag domain.LifeDomain, offset, limit int) ([]domain.Entry, int, error)
	Update(ctx context.Context, ownerID, entryID uuid.UUID, input EntryCreateInput) (*domain.Entry, error)
	Delete(ctx context.Context, ownerID, entryID uuid.UUID) error
}

type entryService struct {
	repo    port.EntryRepository
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewEntryService creates a new EntryService implementation.
func NewEntryService(repo port.EntryRepository, storage port.ObjectStorage, cfg *config.S3Config) EntryService {
	return &entryService{repo: repo, storage: storage, cfg: cfg}
}

func (s *entryService) Create(ctx context.Context, input EntryCreateInput) (*domain.Entry, error) {
	if !domain.KnownLifeDomains[input.Domain] {
		return nil, domain.ErrInvalidLifeDomain
	}
	metadata := input.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	entry := &domain.Entry{
		ID:          uuid.New(),
		OwnerID:     input.OwnerID,
		Domain:      input.Domain,
		Title:       input.Title,
		Description: input.Description,
		Metadata:    metadata,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CreateFromIngestion files an ingestion result under the suggested domain
// and archives the original upload to S3. Archival is best-effort: a
// storage failure is logged and the entry is still created, since the
// structured data is what the dashboard needs.
func (s *entryService) CreateFromIngestion(ctx context.Context, input EntryFromIngestionInput) (*domain.Entry, error) {
	if input.Result == nil {
		return nil, fmt.Errorf("ingestion result is required")
	}

	title := string(input.Result.DocumentType)
	if input.Result.Enhanced != nil && input.Result.Enhanced.DocumentTitle != "" {
		title = input.Result.Enhanced.DocumentTitle
	}

	metadata, err := json.Marshal(input.Result.ExtractedData)
	if err != nil {
		return nil, fmt.Errorf("marshaling extracted data: %w", err)
	}

	archiveKey := ""
	if len(input.FileBytes) > 0 {
		archiveKey = fmt.Sprintf("archive/%s/%s/%s-%s",
			input.OwnerID, time.Now().UTC().Format("2006/01"), uuid.New(), input.Filename)
		_, upErr := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.Bucket,
			Key:         archiveKey,
			Body:        bytes.NewReader(input.FileBytes),
			ContentType: input.ContentType,
			Size:        int64(len(input.FileBytes)),
		})
		if upErr != nil {
			log.Printf("entryService.CreateFromIngestion: archive upload failed: %v", upErr)
			archiveKey = ""
		}
	}

	entry := &domain.Entry{
		ID:          uuid.New(),
		OwnerID:     input.OwnerID,
		Domain:      input.Result.SuggestedDomain,
		Title:       title,
		Description: input.Result.Reasoning,
		Metadata:    metadata,
		ArchiveKey:  archiveKey,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *entryService) GetByID(ctx context.Context, ownerID, entryID uuid.UUID) (*domain.Entry, error) {
	return s.repo.GetByID(ctx, ownerID, entryID)
}

// ArchiveURL returns a short-lived presigned URL for the entry's archived
// original upload. Entries ingested without a file have no archive.
func (s *entryService) ArchiveURL(ctx context.Context, ownerID, entryID uuid.UUID) (string, error) {
	entry, err := s.repo.GetByID(ctx, ownerID, entryID)
	if err != nil {
		return "", err
	}
	if entry.ArchiveKey == "" {
		return "", domain.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, s.cfg.Bucket, entry.ArchiveKey, s.cfg.PresignExpiry)
}

func (s *entryService) List(ctx context.Context, ownerID uuid.UUID, domainTag domain.LifeDomain, offset, limit int) ([]domain.Entry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByOwner(ctx, ownerID, domainTag, offset, limit)
}

func (s *entryService) Update(ctx context.Context, ownerID, entryID uuid.UUID, input EntryCreateInput) (*domain.Entry, error) {
	entry, err := s.repo.GetByID(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}
	if input.Domain != "" {
		if !domain.KnownLifeDomains[input.Domain] {
			return nil, domain.ErrInvalidLifeDomain
		}
		entry.Domain = input.Domain
	}
	if input.Title != "" {
		entry.Title = input.Title
	}
	if input.Description != "" {
		entry.Description = input.Description
	}
	if len(input.Metadata) > 0 {
		entry.Metadata = input.Metadata
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *entryService) Delete(ctx context.Context, ownerID, entryID uuid.UUID) error {
	entry, err := s.repo.GetByID(ctx, ownerID, entryID)
	if err != nil {
		return err
	}
	if entry.ArchiveKey != "" {
		if err := s.storage.Delete(ctx, s.cfg.Bucket, entry.ArchiveKey); err != nil {
			log.Printf("entryService.Delete: archive delete failed for %s: %v", entry.ArchiveKey, err)
		}
	}
	return s.repo.Delete(ctx, ownerID, entryID)
}
