package filetrail

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UserFileRepo defines the interface for user file record persistence.
// Implementations must be safe for concurrent use.
//
// Every read takes the owner subject and filters by it in the query itself;
// callers never receive a record owned by another subject.
type UserFileRepo interface {
	// ListByOwner returns every file owned by subject, each joined with its
	// optional track summary. No ordering is guaranteed.
	//
	// Returns:
	//   - []UserFileRow: One row per file, gpx columns nil when absent
	//   - error: Any database error
	ListByOwner(ctx context.Context, subject string) ([]UserFileRow, error)

	// StorageKey returns the storage key of the file with the given id owned
	// by subject.
	//
	// Returns:
	//   - string: The s3_key of the record
	//   - error: ErrNotFound if no record has that id and owner, or other database errors
	StorageKey(ctx context.Context, subject string, id int64) (string, error)

	// Create inserts a new file record with server-set timestamps and, when
	// entry.GpxInfo is set, its track summary. Both inserts happen atomically.
	//
	// Returns:
	//   - UserFile: The inserted record, with GpxInfo.UserFileID set when present
	//   - error: Any database error
	Create(ctx context.Context, entry UserFileEntry) (UserFile, error)
}

// URLSigner produces time-limited URLs that delegate one storage operation
// on key to the object store.
type URLSigner interface {
	SignURL(ctx context.Context, key string, intent Intent, expires time.Duration) (string, error)
}

// FileService validates, stores and signs user file records.
type FileService struct {
	repo     UserFileRepo
	signer   URLSigner
	newKey   func() string
	validate *validator.Validate
}

// ServiceConfig holds configuration options for FileService.
type ServiceConfig struct {
	// KeyFunc generates storage keys (default: random UUID v4)
	KeyFunc func() string
}

// NewFileService creates a FileService. Zero fields in cfg select the defaults.
func NewFileService(repo UserFileRepo, signer URLSigner, cfg ServiceConfig) *FileService {
	newKey := cfg.KeyFunc
	if newKey == nil {
		newKey = uuid.NewString
	}
	return &FileService{
		repo:     repo,
		signer:   signer,
		newKey:   newKey,
		validate: validator.New(),
	}
}

// List returns all files owned by subject. The result is never nil.
func (s *FileService) List(ctx context.Context, subject string) ([]UserFile, error) {
	if subject == "" {
		return nil, fmt.Errorf("list user files: %w", ErrUnauthorized)
	}

	rows, err := s.repo.ListByOwner(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("list user files: %w", err)
	}

	return UserFiles(rows), nil
}

// FetchURL returns a signed download URL for the file with the given id.
// A file owned by someone else yields ErrNotFound, same as a missing one.
func (s *FileService) FetchURL(ctx context.Context, subject string, id int64) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("fetch user file: %w", ErrUnauthorized)
	}

	key, err := s.repo.StorageKey(ctx, subject, id)
	if err != nil {
		return "", fmt.Errorf("fetch user file %d: %w", id, err)
	}

	url, err := s.signer.SignURL(ctx, key, IntentRead, SignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("fetch user file %d: sign url: %w", id, err)
	}

	return url, nil
}

// Create registers a new file for subject and returns it together with a
// signed upload URL.
//
// The method performs the following steps:
//  1. Validates the input (filename required, track values non-negative)
//  2. Generates a fresh storage key
//  3. Signs the upload URL
//  4. Inserts the record and its optional track summary in one transaction
//
// The URL is signed before anything is written, so a signing failure leaves
// no record behind. Create is not idempotent: every call yields a new id and
// a new storage key.
func (s *FileService) Create(ctx context.Context, subject string, nf NewUserFile) (CreatedUserFile, error) {
	if err := ctx.Err(); err != nil {
		return CreatedUserFile{}, fmt.Errorf("create user file: %w", err)
	}

	if subject == "" {
		return CreatedUserFile{}, fmt.Errorf("create user file: %w", ErrUnauthorized)
	}

	if err := s.validate.Struct(nf); err != nil {
		return CreatedUserFile{}, fmt.Errorf("create user file: %w: %w", ErrInvalidInput, err)
	}

	key := s.newKey()

	uploadURL, err := s.signer.SignURL(ctx, key, IntentWrite, SignedURLExpiry)
	if err != nil {
		return CreatedUserFile{}, fmt.Errorf("create user file: sign url: %w", err)
	}

	uf, err := s.repo.Create(ctx, UserFileEntry{
		OIDCSubject: subject,
		Filename:    nf.Filename,
		S3Key:       key,
		GpxInfo:     nf.GpxInfo,
	})
	if err != nil {
		return CreatedUserFile{}, fmt.Errorf("create user file: %w", err)
	}

	return CreatedUserFile{
		ID:          uf.ID,
		OIDCSubject: uf.OIDCSubject,
		Filename:    uf.Filename,
		CreatedAt:   uf.CreatedAt,
		UploadURL:   uploadURL,
		GpxInfo:     uf.GpxInfo,
	}, nil
}
