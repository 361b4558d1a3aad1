package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
)

type completionTracker struct {
	performance repositories.PerformanceRepository
	logger      *slog.Logger
}

func NewCompletionTracker(performance repositories.PerformanceRepository, logger *slog.Logger) CompletionTracker {
	return &completionTracker{
		performance: performance,
		logger:      logger,
	}
}

func (t *completionTracker) CompletedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	completed := make(map[string]struct{})
	if userID == "" {
		return completed, nil
	}

	history, err := t.performance.ReadAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	for _, record := range history {
		for _, part := range record.Parts {
			completed[part.PartID] = struct{}{}
		}
	}

	t.logger.Debug("Resolved completed instances",
		"user_id", userID,
		"attempts", len(history),
		"completed", len(completed))

	return completed, nil
}
