package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"gorm.io/gorm"
)

type CredentialPostgreSQL struct {
	db *gorm.DB
}

func NewCredentialPostgreSQL(db *gorm.DB) repositories.CredentialRepository {
	return &CredentialPostgreSQL{db: db}
}

func (c *CredentialPostgreSQL) Create(ctx context.Context, cred models.Credential) error {
	row := credentialRow{Username: cred.Username, PasswordHash: cred.PasswordHash}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %s: %w", cred.Username, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

func (c *CredentialPostgreSQL) Get(ctx context.Context, username string) (*models.Credential, error) {
	var row credentialRow
	err := c.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &models.Credential{Username: row.Username, PasswordHash: row.PasswordHash}, nil
}
