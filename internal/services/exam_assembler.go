package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
)

// Chooser returns an index in [0, n). n is always positive.
type Chooser func(n int) int

// RandomChooser picks uniformly at random.
func RandomChooser(n int) int {
	return rand.IntN(n)
}

type examAssembler struct {
	content repositories.ContentRepository
	layout  models.ExamLayout
	choose  Chooser
	logger  *slog.Logger
}

func NewExamAssembler(content repositories.ContentRepository, layout models.ExamLayout, choose Chooser, logger *slog.Logger) ExamAssembler {
	if choose == nil {
		choose = RandomChooser
	}
	return &examAssembler{
		content: content,
		layout:  layout,
		choose:  choose,
		logger:  logger,
	}
}

func (a *examAssembler) Assemble(ctx context.Context, examType models.ExamType, completed map[string]struct{}) (*models.ExamAssembly, error) {
	parts, ok := a.layout.Parts(examType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExamType, examType)
	}

	// Exhaustion is decided before any selection so a maxed-out part stops the whole exam.
	catalogs := make([]models.Catalog, 0, len(parts))
	for _, part := range parts {
		catalog, err := a.content.LoadPart(ctx, examType, part)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s part %d: %w", examType, part, asContentUnavailable(err))
		}

		if isExhausted(catalog, completed) {
			a.logger.Info("Content pool exhausted",
				"exam_type", examType,
				"part", part,
				"instances", len(catalog))
			return &models.ExamAssembly{
				ExamType:      examType,
				Status:        models.ExamStatusAllCompleted,
				ExhaustedPart: part,
			}, nil
		}
		catalogs = append(catalogs, catalog)
	}

	selected := make([]models.ContentInstance, 0, len(parts))
	for i, catalog := range catalogs {
		var available []models.ContentInstance
		for _, key := range catalog.SortedKeys() {
			instance := catalog[key]
			if _, done := completed[instance.ID]; !done {
				available = append(available, instance)
			}
		}
		if len(available) == 0 {
			return nil, fmt.Errorf("%w: %s part %d has no instances", ErrContentUnavailable, examType, parts[i])
		}
		selected = append(selected, available[a.choose(len(available))])
	}

	return &models.ExamAssembly{
		ExamType: examType,
		Status:   models.ExamStatusReady,
		Parts:    selected,
	}, nil
}

// isExhausted reports whether every instance id of a non-empty catalog is completed.
func isExhausted(catalog models.Catalog, completed map[string]struct{}) bool {
	ids := catalog.IDs()
	if len(ids) == 0 {
		return false
	}
	for id := range ids {
		if _, done := completed[id]; !done {
			return false
		}
	}
	return true
}

func asContentUnavailable(err error) error {
	if IsContentUnavailable(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrContentUnavailable, err)
}
