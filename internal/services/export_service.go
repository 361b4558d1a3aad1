package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	AttemptsSheet = "Attempts"
	SkillsSheet   = "Skills"
)

type exportService struct {
	performance repositories.PerformanceRepository
	logger      *slog.Logger
}

func NewExportService(performance repositories.PerformanceRepository, logger *slog.Logger) ExportService {
	return &exportService{
		performance: performance,
		logger:      logger,
	}
}

// ExportHistory writes an .xlsx workbook with one row per attempt, newest first,
// and a sheet with the per-part skill breakdown.
func (s *exportService) ExportHistory(ctx context.Context, userID string, w io.Writer) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	history, err := s.performance.ReadAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	records := history.Chronological()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AttemptsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{
		"Timestamp", "Date", "Exam Type", "Score", "Total Questions", "Percentage", "Time Taken (seconds)",
	}
	if err := writeRow(f, AttemptsSheet, 1, headers); err != nil {
		return err
	}

	newestFirst := slices.Clone(records)
	slices.Reverse(newestFirst)
	for i, r := range newestFirst {
		var timeTaken interface{}
		if r.Record.TimeTakenInSeconds != nil {
			timeTaken = *r.Record.TimeTakenInSeconds
		}
		row := []interface{}{
			r.Timestamp,
			displayDate(r.Timestamp, historyDateLayout),
			string(r.Record.ExamType),
			r.Record.TotalScore,
			r.Record.TotalQuestions,
			percentage(r.Record.TotalScore, r.Record.TotalQuestions),
			timeTaken,
		}
		if err := writeRow(f, AttemptsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SkillsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeRow(f, SkillsSheet, 1, []interface{}{"Section", "Part", "Score (%)"}); err != nil {
		return err
	}

	breakdown := skillBreakdown(records)
	row := 2
	for _, section := range []struct {
		examType models.ExamType
		scores   []models.SkillScore
	}{
		{models.ExamTypeListening, breakdown.Listening},
		{models.ExamTypeReading, breakdown.Reading},
	} {
		for _, score := range section.scores {
			if err := writeRow(f, SkillsSheet, row, []interface{}{string(section.examType), score.Part, score.Score}); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported exam history",
		"user_id", userID,
		"attempts", len(records))
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("invalid cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
