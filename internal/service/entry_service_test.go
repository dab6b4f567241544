package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lifedash/internal/config"
	"lifedash/internal/domain"
	"lifedash/internal/port"
	"lifedash/internal/service"
	"lifedash/mocks"
)

func newEntryService(repo *mocks.MockEntryRepo, storage *mocks.MockObjectStorage) service.EntryService {
	return service.NewEntryService(repo, storage, &config.S3Config{Bucket: "test-archive"})
}

func TestEntryCreate_RejectsUnknownDomain(t *testing.T) {
	svc := newEntryService(new(mocks.MockEntryRepo), new(mocks.MockObjectStorage))

	_, err := svc.Create(context.Background(), service.EntryCreateInput{
		OwnerID: uuid.New(),
		Domain:  "groceries",
		Title:   "x",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidLifeDomain)
}

func TestEntryCreate_DefaultsMetadata(t *testing.T) {
	repo := new(mocks.MockEntryRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Entry) bool {
		return string(e.Metadata) == "{}" && e.Domain == domain.DomainPets
	})).Return(nil)

	svc := newEntryService(repo, new(mocks.MockObjectStorage))
	entry, err := svc.Create(context.Background(), service.EntryCreateInput{
		OwnerID: uuid.New(),
		Domain:  domain.DomainPets,
		Title:   "Vet visit",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	repo.AssertExpectations(t)
}

func TestCreateFromIngestion_ArchivesAndPersists(t *testing.T) {
	repo := new(mocks.MockEntryRepo)
	storage := new(mocks.MockObjectStorage)
	owner := uuid.New()

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-archive" && in.ContentType == "image/jpeg"
	})).Return(&port.UploadOutput{Location: "s3://test-archive/key"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Entry) bool {
		return e.OwnerID == owner && e.Domain == domain.DomainFinance && e.ArchiveKey != ""
	})).Return(nil)

	svc := newEntryService(repo, storage)
	result := &domain.IngestionResult{
		DocumentType:    domain.DocTypeReceipt,
		SuggestedDomain: domain.DomainFinance,
		Reasoning:       "A receipt.",
		ExtractedData:   map[string]any{"amount": "42.10"},
	}

	entry, err := svc.CreateFromIngestion(context.Background(), service.EntryFromIngestionInput{
		OwnerID:     owner,
		Result:      result,
		FileBytes:   []byte("jpeg bytes"),
		ContentType: "image/jpeg",
		Filename:    "receipt.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.DocTypeReceipt), entry.Title)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(entry.Metadata, &meta))
	assert.Equal(t, "42.10", meta["amount"])
	storage.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCreateFromIngestion_ArchiveFailureIsNotFatal(t *testing.T) {
	repo := new(mocks.MockEntryRepo)
	storage := new(mocks.MockObjectStorage)

	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("bucket unreachable"))
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Entry) bool {
		return e.ArchiveKey == ""
	})).Return(nil)

	svc := newEntryService(repo, storage)
	_, err := svc.CreateFromIngestion(context.Background(), service.EntryFromIngestionInput{
		OwnerID:     uuid.New(),
		Result:      &domain.IngestionResult{SuggestedDomain: domain.DomainOther},
		FileBytes:   []byte("bytes"),
		ContentType: "image/png",
		Filename:    "scan.png",
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateFromIngestion_PrefersEnhancedTitle(t *testing.T) {
	repo := new(mocks.MockEntryRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Entry) bool {
		return e.Title == "City Power bill March"
	})).Return(nil)

	svc := newEntryService(repo, new(mocks.MockObjectStorage))
	_, err := svc.CreateFromIngestion(context.Background(), service.EntryFromIngestionInput{
		OwnerID: uuid.New(),
		Result: &domain.IngestionResult{
			DocumentType:    domain.DocTypeBill,
			SuggestedDomain: domain.DomainHome,
			Enhanced:        &domain.EnhancedExtraction{DocumentTitle: "City Power bill March"},
		},
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestEntryDelete_RemovesArchive(t *testing.T) {
	repo := new(mocks.MockEntryRepo)
	storage := new(mocks.MockObjectStorage)
	owner := uuid.New()
	entryID := uuid.New()

	repo.On("GetByID", mock.Anything, owner, entryID).Return(&domain.Entry{
		ID: entryID, OwnerID: owner, ArchiveKey: "archive/some/key",
	}, nil)
	storage.On("Delete", mock.Anything, "test-archive", "archive/some/key").Return(nil)
	repo.On("Delete", mock.Anything, owner, entryID).Return(nil)

	svc := newEntryService(repo, storage)
	require.NoError(t, svc.Delete(context.Background(), owner, entryID))
	storage.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestEntryArchiveURL_PresignsArchiveKey(t *testing.T) {
	repo := new(mocks.MockEntryRepo)
	storage := new(mocks.MockObjectStorage)
	owner := uuid.New()
	entryID := uuid.New()

	repo.On("GetByID", mock.Anything, owner, entryID).Return(&domain.Entry{
		ID: entryID, OwnerID: owner, ArchiveKey: "archive/some/key",
	}, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-archive", "archive/some/key", int64(900)).
		Return("https://s3.test/presigned", nil)

	svc := service.NewEntryService(repo, storage, &config.S3Config{
		Bucket:        "test-archive",
		PresignExpiry: 900,
	})

	url, err := svc.ArchiveURL(context.Background(), owner, entryID)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/presigned", url)
	storage.AssertExpectations(t)
}

func TestEntryArchiveURL_NoArchiveIsNotFound(t *testing.T) {
	repo := new(mocks.MockEntryRepo)
	storage := new(mocks.MockObjectStorage)
	owner := uuid.New()
	entryID := uuid.New()

	repo.On("GetByID", mock.Anything, owner, entryID).Return(&domain.Entry{
		ID: entryID, OwnerID: owner,
	}, nil)

	svc := newEntryService(repo, storage)
	_, err := svc.ArchiveURL(context.Background(), owner, entryID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
