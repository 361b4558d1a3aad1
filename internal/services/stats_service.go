package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/SAP-F-2025/exam-trainer-service/internal/cache"
	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
)

const (
	// trendWindow is how many of the most recent attempts the performance chart shows.
	trendWindow = 7

	trendDateLayout = "02.01.2006"
)

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// statsCacheKey identifies stats computed from one version of a history. Histories are
// append-only, so the entry count and newest timestamp change on every save.
func statsCacheKey(userID string, records []models.TimestampedRecord) string {
	newest := ""
	if len(records) > 0 {
		newest = records[len(records)-1].Timestamp
	}
	return fmt.Sprintf("stats:%s:%d:%s", userID, len(records), newest)
}

// statsCachePattern matches every cached stats version of a user.
func statsCachePattern(userID string) string {
	return "stats:" + globEscaper.Replace(userID) + ":*"
}

type statsService struct {
	performance repositories.PerformanceRepository
	content     repositories.ContentRepository
	layout      models.ExamLayout
	cache       cache.CacheService
	cacheTTL    time.Duration
	logger      *slog.Logger
}

func NewStatsService(
	performance repositories.PerformanceRepository,
	content repositories.ContentRepository,
	layout models.ExamLayout,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		performance: performance,
		content:     content,
		layout:      layout,
		cache:       cacheService,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func (s *statsService) DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	history, err := s.performance.ReadAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	records := history.Chronological()

	key := statsCacheKey(userID, records)
	var cached models.DashboardStats
	err = s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Stats cache lookup failed", "user_id", userID, "error", err)
	}

	stats := s.computeStats(ctx, records)

	if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache stats", "user_id", userID, "error", err)
	}

	return stats, nil
}

// ComputeStats aggregates a history into dashboard statistics.
func (s *statsService) ComputeStats(ctx context.Context, history models.UserHistory) *models.DashboardStats {
	return s.computeStats(ctx, history.Chronological())
}

func (s *statsService) computeStats(ctx context.Context, records []models.TimestampedRecord) *models.DashboardStats {
	return &models.DashboardStats{
		Listening:        s.examTypeStats(ctx, models.ExamTypeListening, records),
		Reading:          s.examTypeStats(ctx, models.ExamTypeReading, records),
		PerformanceTrend: performanceTrend(records),
		SkillBreakdown:   skillBreakdown(records),
	}
}

func (s *statsService) examTypeStats(ctx context.Context, examType models.ExamType, records []models.TimestampedRecord) models.StatData {
	var correct, questions, count int
	for _, r := range records {
		if r.Record.ExamType != examType {
			continue
		}
		correct += r.Record.TotalScore
		questions += r.Record.TotalQuestions
		count++
	}

	return models.StatData{
		AverageScore:   percentage(correct, questions),
		CompletedExams: count,
		TotalExams:     s.totalExams(ctx, examType),
	}
}

// totalExams is bounded by the scarcest part. Parts that fail to load are ignored.
func (s *statsService) totalExams(ctx context.Context, examType models.ExamType) int {
	parts, ok := s.layout.Parts(examType)
	if !ok {
		return 0
	}

	total := -1
	for _, part := range parts {
		catalog, err := s.content.LoadPart(ctx, examType, part)
		if err != nil {
			s.logger.Warn("Ignoring unavailable part in exam count",
				"exam_type", examType,
				"part", part,
				"error", err)
			continue
		}
		if n := len(catalog.IDs()); total < 0 || n < total {
			total = n
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

func performanceTrend(records []models.TimestampedRecord) []models.TrendPoint {
	if len(records) > trendWindow {
		records = records[len(records)-trendWindow:]
	}

	trend := make([]models.TrendPoint, 0, len(records))
	for _, r := range records {
		trend = append(trend, models.TrendPoint{
			Date:      displayDate(r.Timestamp, trendDateLayout),
			Score:     percentage(r.Record.TotalScore, r.Record.TotalQuestions),
			ExamType:  r.Record.ExamType,
			Timestamp: r.Timestamp,
		})
	}
	return trend
}

type skillKey struct {
	listening bool
	number    int
}

type skillTally struct {
	correct int
	total   int
}

func skillBreakdown(records []models.TimestampedRecord) models.SkillBreakdown {
	tallies := make(map[skillKey]*skillTally)
	for _, r := range records {
		for _, part := range r.Record.Parts {
			number, ok := part.PartNumber()
			if !ok || len(part.Questions) == 0 {
				continue
			}
			key := skillKey{listening: part.IsListening(), number: number}
			tally, found := tallies[key]
			if !found {
				tally = &skillTally{}
				tallies[key] = tally
			}
			for _, q := range part.Questions {
				tally.total++
				if q.IsCorrect {
					tally.correct++
				}
			}
		}
	}

	breakdown := models.SkillBreakdown{
		Listening: []models.SkillScore{},
		Reading:   []models.SkillScore{},
	}
	for key, tally := range tallies {
		score := models.SkillScore{
			Part:       fmt.Sprintf("Teil %d", key.number),
			PartNumber: key.number,
			Score:      percentage(tally.correct, tally.total),
		}
		if key.listening {
			breakdown.Listening = append(breakdown.Listening, score)
		} else {
			breakdown.Reading = append(breakdown.Reading, score)
		}
	}

	byPart := func(list []models.SkillScore) func(i, j int) bool {
		return func(i, j int) bool { return list[i].PartNumber < list[j].PartNumber }
	}
	sort.Slice(breakdown.Listening, byPart(breakdown.Listening))
	sort.Slice(breakdown.Reading, byPart(breakdown.Reading))

	return breakdown
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
