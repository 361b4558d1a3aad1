package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/SAP-F-2025/exam-trainer-service/internal/cache"
	"github.com/SAP-F-2025/exam-trainer-service/internal/events"
	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"github.com/SAP-F-2025/exam-trainer-service/internal/validator"
)

const (
	// maxTimestampAttempts bounds how often a save is retried after a timestamp collision.
	maxTimestampAttempts = 5

	historyDateLayout = "02.01.2006 15:04"
)

type performanceService struct {
	performance repositories.PerformanceRepository
	content     repositories.ContentRepository
	cache       cache.CacheService
	publisher   events.EventPublisher
	validator   *validator.Validator
	logger      *ServiceLogger
	now         func() time.Time
}

func NewPerformanceService(
	performance repositories.PerformanceRepository,
	content repositories.ContentRepository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
) PerformanceService {
	return &performanceService{
		performance: performance,
		content:     content,
		cache:       cacheService,
		publisher:   publisher,
		validator:   validator,
		logger:      NewServiceLogger(logger, LogConfig{Service: "exam-trainer", Component: "performance"}),
		now:         time.Now,
	}
}

// ===== SAVE =====

func (s *performanceService) Save(ctx context.Context, req *SaveExamRequest) (timestamp string, err error) {
	op := s.logger.WithOperation(ctx, "save_exam", req.UserID)
	defer func() { op.LogResult(timestamp, err) }()

	if req.UserID == "" {
		return "", ErrUserIDRequired
	}
	if err := s.validator.Validate(req); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	record := req.Record()
	base := s.now()

	for attempt := 0; attempt < maxTimestampAttempts; attempt++ {
		timestamp = models.FormatTimestamp(base.Add(time.Duration(attempt) * time.Microsecond))

		err = s.performance.Append(ctx, req.UserID, timestamp, record)
		if err == nil {
			break
		}
		if !repositories.IsDuplicateError(err) {
			s.logger.Logger().Error("Failed to persist exam attempt",
				"user_id", req.UserID,
				"timestamp", timestamp,
				"error", err)
			return "", fmt.Errorf("failed to save exam attempt: %w", err)
		}
		s.logger.Logger().Warn("Attempt timestamp already taken, retrying",
			"user_id", req.UserID,
			"timestamp", timestamp)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTimestampsInUse, err)
	}

	if cerr := s.cache.DeletePattern(ctx, statsCachePattern(req.UserID)); cerr != nil {
		s.logger.Logger().Warn("Failed to invalidate stats cache", "user_id", req.UserID, "error", cerr)
	}

	partIDs := make([]string, 0, len(record.Parts))
	for _, part := range record.Parts {
		partIDs = append(partIDs, part.PartID)
	}
	publishEvent(ctx, s.publisher, s.logger.Logger(), events.EventExamSubmitted, events.ExamSubmittedEvent{
		UserID:         req.UserID,
		Timestamp:      timestamp,
		ExamType:       record.ExamType,
		TotalScore:     record.TotalScore,
		TotalQuestions: record.TotalQuestions,
		PartIDs:        partIDs,
	})

	return timestamp, nil
}

// ===== HISTORY =====

func (s *performanceService) History(ctx context.Context, userID string) ([]models.HistoryItem, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	history, err := s.performance.ReadAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	records := history.Chronological()
	slices.Reverse(records)

	items := make([]models.HistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, models.HistoryItem{
			Timestamp:          r.Timestamp,
			ExamType:           r.Record.ExamType,
			TotalScore:         r.Record.TotalScore,
			TotalQuestions:     r.Record.TotalQuestions,
			TimeTakenInSeconds: r.Record.TimeTakenInSeconds,
			Date:               displayDate(r.Timestamp, historyDateLayout),
		})
	}
	return items, nil
}

// ===== RECONSTRUCT =====

func (s *performanceService) Reconstruct(ctx context.Context, userID, timestamp string) (*models.FullExamResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	record, err := s.performance.Read(ctx, userID, timestamp)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to read exam attempt: %w", err)
	}

	result := &models.FullExamResult{
		Score:          record.TotalScore,
		TotalQuestions: record.TotalQuestions,
		TimeTaken:      record.TimeTakenInSeconds,
		ExamParts:      []models.ContentInstance{},
		AllUserAnswers: make(map[string]json.RawMessage),
	}

	for _, part := range record.Parts {
		number, ok := part.PartNumber()
		if !ok {
			s.logger.Logger().Warn("Skipping part without part number", "part_id", part.PartID)
			continue
		}

		catalog, err := s.content.LoadPart(ctx, part.ExamType(), number)
		if err != nil {
			s.logger.Logger().Warn("Skipping part with unavailable content",
				"part_id", part.PartID,
				"error", err)
			continue
		}

		instance, ok := catalog[part.PartID]
		if !ok {
			s.logger.Logger().Warn("Skipping part missing from catalog", "part_id", part.PartID)
			continue
		}

		result.ExamParts = append(result.ExamParts, instance)
		for _, q := range part.Questions {
			result.AllUserAnswers[q.QuestionID] = q.UserAnswer
		}
	}

	return result, nil
}

// displayDate renders a history key for people, falling back to the raw key.
func displayDate(timestamp, layout string) string {
	t, err := models.ParseTimestamp(timestamp)
	if err != nil {
		return timestamp
	}
	return t.Format(layout)
}
