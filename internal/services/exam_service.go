package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/exam-trainer-service/internal/events"
	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
)

type examService struct {
	tracker   CompletionTracker
	assembler ExamAssembler
	publisher events.EventPublisher
	logger    *ServiceLogger
}

func NewExamService(tracker CompletionTracker, assembler ExamAssembler, publisher events.EventPublisher, logger *slog.Logger) ExamService {
	return &examService{
		tracker:   tracker,
		assembler: assembler,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "exam-trainer", Component: "exam"}),
	}
}

func (s *examService) GetExam(ctx context.Context, examType models.ExamType, userID string) (assembly *models.ExamAssembly, err error) {
	op := s.logger.WithOperation(ctx, "get_exam", userID)
	defer func() { op.LogResult(string(examType), err) }()

	completed, err := s.tracker.CompletedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	assembly, err = s.assembler.Assemble(ctx, examType, completed)
	if err != nil {
		return nil, err
	}

	if assembly.Exhausted() {
		publishEvent(ctx, s.publisher, s.logger.Logger(), events.EventPoolExhausted, events.PoolExhaustedEvent{
			UserID:     userID,
			ExamType:   examType,
			PartNumber: assembly.ExhaustedPart,
		})
	}

	return assembly, nil
}
