package filestore

import (
	"context"
	"fmt"
	"maps"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
)

// PerformanceFileName is the history document inside the data directory.
const PerformanceFileName = "user_performance.json"

type PerformanceStore struct {
	doc *document[models.PerformanceDocument]
}

func NewPerformanceStore(path string) (*PerformanceStore, error) {
	doc, err := openDocument(path, func() models.PerformanceDocument {
		return make(models.PerformanceDocument)
	})
	if err != nil {
		return nil, err
	}
	return &PerformanceStore{doc: doc}, nil
}

var _ repositories.PerformanceRepository = (*PerformanceStore)(nil)

func (s *PerformanceStore) Append(ctx context.Context, userID, timestamp string, record models.PerformanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.doc.update(func(all models.PerformanceDocument) error {
		history, ok := all[userID]
		if !ok {
			history = make(models.UserHistory)
		}
		if _, exists := history[timestamp]; exists {
			return fmt.Errorf("attempt %s for user %s: %w", timestamp, userID, repositories.ErrDuplicate)
		}
		history[timestamp] = record
		all[userID] = history
		return nil
	})
}

func (s *PerformanceStore) ReadAll(ctx context.Context, userID string) (models.UserHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var history models.UserHistory
	s.doc.read(func(all models.PerformanceDocument) {
		history = maps.Clone(all[userID])
	})
	if history == nil {
		history = make(models.UserHistory)
	}
	return history, nil
}

func (s *PerformanceStore) Read(ctx context.Context, userID, timestamp string) (*models.PerformanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		record models.PerformanceRecord
		found  bool
	)
	s.doc.read(func(all models.PerformanceDocument) {
		record, found = all[userID][timestamp]
	})
	if !found {
		return nil, repositories.ErrNotFound
	}
	return &record, nil
}
