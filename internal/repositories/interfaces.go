package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicate          = errors.New("record already exists")
	ErrContentUnavailable = errors.New("content unavailable")
)

// ContentRepository loads the static catalog of content instances.
type ContentRepository interface {
	// LoadPart returns the bucket for (examType, part). A missing, empty or malformed
	// bucket yields an error wrapping ErrContentUnavailable.
	LoadPart(ctx context.Context, examType models.ExamType, part int) (models.Catalog, error)
}

// PerformanceRepository is the append-only store of exam attempts.
type PerformanceRepository interface {
	// Append stores record under (userID, timestamp). An existing entry for the same key
	// is never overwritten; ErrDuplicate is returned instead.
	Append(ctx context.Context, userID, timestamp string, record models.PerformanceRecord) error
	// ReadAll returns the user's history, empty when the user has none.
	ReadAll(ctx context.Context, userID string) (models.UserHistory, error)
	// Read returns a single attempt or ErrNotFound.
	Read(ctx context.Context, userID, timestamp string) (*models.PerformanceRecord, error)
}

// CredentialRepository stores password hashes by username.
type CredentialRepository interface {
	// Create fails with ErrDuplicate when the username is taken.
	Create(ctx context.Context, cred models.Credential) error
	// Get returns ErrNotFound for unknown usernames.
	Get(ctx context.Context, username string) (*models.Credential, error)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
