package filestore

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
)

// CredentialFileName is the credentials document inside the data directory.
const CredentialFileName = "users.json"

type CredentialStore struct {
	doc *document[models.CredentialDocument]
}

func NewCredentialStore(path string) (*CredentialStore, error) {
	doc, err := openDocument(path, func() models.CredentialDocument {
		return make(models.CredentialDocument)
	})
	if err != nil {
		return nil, err
	}
	return &CredentialStore{doc: doc}, nil
}

var _ repositories.CredentialRepository = (*CredentialStore)(nil)

func (s *CredentialStore) Create(ctx context.Context, cred models.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.doc.update(func(all models.CredentialDocument) error {
		if _, exists := all[cred.Username]; exists {
			return fmt.Errorf("user %s: %w", cred.Username, repositories.ErrDuplicate)
		}
		all[cred.Username] = cred.PasswordHash
		return nil
	})
}

func (s *CredentialStore) Get(ctx context.Context, username string) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		hash  string
		found bool
	)
	s.doc.read(func(all models.CredentialDocument) {
		hash, found = all[username]
	})
	if !found {
		return nil, repositories.ErrNotFound
	}
	return &models.Credential{Username: username, PasswordHash: hash}, nil
}
