package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
)

// ===== SERVICE INTERFACES =====

// CompletionTracker derives which content instances a user has already taken.
type CompletionTracker interface {
	// CompletedIDs returns every partId in the user's history. An empty userID yields
	// the empty set.
	CompletedIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

// ExamAssembler picks one fresh instance per part of an exam type.
type ExamAssembler interface {
	Assemble(ctx context.Context, examType models.ExamType, completed map[string]struct{}) (*models.ExamAssembly, error)
}

// ExamService serves exams to a user.
type ExamService interface {
	GetExam(ctx context.Context, examType models.ExamType, userID string) (*models.ExamAssembly, error)
}

// PerformanceService records attempts and reads them back.
type PerformanceService interface {
	Save(ctx context.Context, req *SaveExamRequest) (string, error)
	History(ctx context.Context, userID string) ([]models.HistoryItem, error)
	Reconstruct(ctx context.Context, userID, timestamp string) (*models.FullExamResult, error)
}

// StatsService computes dashboard statistics.
type StatsService interface {
	DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error)
	ComputeStats(ctx context.Context, history models.UserHistory) *models.DashboardStats
}

// AuthService registers and authenticates users.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) error
	Login(ctx context.Context, req *LoginRequest) (string, error)
}

// ExportService renders a user's history as a spreadsheet.
type ExportService interface {
	ExportHistory(ctx context.Context, userID string, w io.Writer) error
}

// ===== REQUEST TYPES =====

type SaveExamRequest struct {
	UserID             string              `json:"userId" validate:"required"`
	ExamType           models.ExamType     `json:"examType" validate:"required,exam_type"`
	TotalScore         int                 `json:"totalScore" validate:"min=0"`
	TotalQuestions     int                 `json:"totalQuestions" validate:"min=0"`
	TimeTakenInSeconds *int                `json:"timeTakenInSeconds,omitempty" validate:"omitempty,min=0"`
	Parts              []models.PartResult `json:"parts" validate:"dive"`
}

// Record converts the request into the stored form.
func (r *SaveExamRequest) Record() models.PerformanceRecord {
	parts := r.Parts
	if parts == nil {
		parts = []models.PartResult{}
	}
	return models.PerformanceRecord{
		ExamType:           r.ExamType,
		TotalScore:         r.TotalScore,
		TotalQuestions:     r.TotalQuestions,
		TimeTakenInSeconds: r.TimeTakenInSeconds,
		Parts:              parts,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=4,max=16,alphanum,username"`
	Password string `json:"password" validate:"required,min=8,password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
