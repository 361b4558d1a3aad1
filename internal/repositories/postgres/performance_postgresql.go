package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PerformancePostgreSQL keeps one row per attempt; the unique (user, timestamp) index
// replaces the whole-document lock of the file store.
type PerformancePostgreSQL struct {
	db *gorm.DB
}

func NewPerformancePostgreSQL(db *gorm.DB) repositories.PerformanceRepository {
	return &PerformancePostgreSQL{db: db}
}

func (p *PerformancePostgreSQL) Append(ctx context.Context, userID, timestamp string, record models.PerformanceRecord) error {
	row := performanceRow{
		UserID:             userID,
		Timestamp:          timestamp,
		ExamType:           string(record.ExamType),
		TotalScore:         record.TotalScore,
		TotalQuestions:     record.TotalQuestions,
		TimeTakenInSeconds: record.TimeTakenInSeconds,
		Parts:              datatypes.NewJSONType(record.Parts),
	}

	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("attempt %s for user %s: %w", timestamp, userID, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

func (p *PerformancePostgreSQL) ReadAll(ctx context.Context, userID string) (models.UserHistory, error) {
	var rows []performanceRow
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	history := make(models.UserHistory, len(rows))
	for _, row := range rows {
		history[row.Timestamp] = row.toModel()
	}
	return history, nil
}

func (p *PerformancePostgreSQL) Read(ctx context.Context, userID, timestamp string) (*models.PerformanceRecord, error) {
	var row performanceRow
	err := p.db.WithContext(ctx).
		Where("user_id = ? AND attempted_at = ?", userID, timestamp).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	record := row.toModel()
	return &record, nil
}
