package postgres

import (
	"time"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type performanceRow struct {
	ID                 uint                                    `gorm:"primaryKey"`
	UserID             string                                  `gorm:"size:64;not null;uniqueIndex:idx_performance_user_timestamp"`
	Timestamp          string                                  `gorm:"column:attempted_at;size:40;not null;uniqueIndex:idx_performance_user_timestamp"`
	ExamType           string                                  `gorm:"size:20;not null"`
	TotalScore         int                                     `gorm:"not null"`
	TotalQuestions     int                                     `gorm:"not null"`
	TimeTakenInSeconds *int                                    `gorm:"column:time_taken_seconds"`
	Parts              datatypes.JSONType[[]models.PartResult] `gorm:"type:jsonb;not null"`
	CreatedAt          time.Time                               `gorm:"autoCreateTime"`
}

func (performanceRow) TableName() string {
	return "performance_records"
}

func (r performanceRow) toModel() models.PerformanceRecord {
	return models.PerformanceRecord{
		ExamType:           models.ExamType(r.ExamType),
		TotalScore:         r.TotalScore,
		TotalQuestions:     r.TotalQuestions,
		TimeTakenInSeconds: r.TimeTakenInSeconds,
		Parts:              r.Parts.Data(),
	}
}

type credentialRow struct {
	Username     string `gorm:"primaryKey;size:16"`
	PasswordHash string `gorm:"size:100;not null"`
	CreatedAt    time.Time
}

func (credentialRow) TableName() string {
	return "credentials"
}

// Migrate creates or updates the tables used by the postgres repositories.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&performanceRow{}, &credentialRow{})
}
