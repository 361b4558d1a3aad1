package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-trainer-service/internal/cache"
	"github.com/SAP-F-2025/exam-trainer-service/internal/events"
	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPerformanceService(perf *fakePerformance, content *fakeContent, cacheService cache.CacheService, publisher events.EventPublisher, now time.Time) PerformanceService {
	svc := NewPerformanceService(perf, content, cacheService, publisher, validator.New(), testLogger())
	svc.(*performanceService).now = func() time.Time { return now }
	return svc
}

func saveRequest(userID string) *SaveExamRequest {
	seconds := 754
	return &SaveExamRequest{
		UserID:             userID,
		ExamType:           models.ExamTypeListening,
		TotalScore:         3,
		TotalQuestions:     4,
		TimeTakenInSeconds: &seconds,
		Parts: []models.PartResult{
			{
				PartID: "l1-a",
				Questions: []models.QuestionResult{
					{QuestionID: "q1", UserAnswer: json.RawMessage(`"B"`), IsCorrect: true},
				},
			},
			{
				PartID: "l2-b",
				Questions: []models.QuestionResult{
					{QuestionID: "q2", UserAnswer: json.RawMessage(`true`), IsCorrect: true},
					{QuestionID: "q3", UserAnswer: json.RawMessage(`{"gap1":"Haus"}`), IsCorrect: false},
				},
			},
			{
				PartID: "l3-gone",
				Questions: []models.QuestionResult{
					{QuestionID: "q4", UserAnswer: json.RawMessage(`"C"`), IsCorrect: true},
				},
			},
		},
	}
}

func TestPerformanceService_SaveAndReconstructRoundTrip(t *testing.T) {
	ctx := context.Background()
	perf := newFakePerformance()
	content := newFakeContent().
		with(models.ExamTypeListening, 1, catalogOf("l1-a", "l1-b")).
		with(models.ExamTypeListening, 2, catalogOf("l2-a", "l2-b"))
	now := time.Date(2024, time.May, 17, 9, 30, 15, 123456000, time.Local)
	svc := newTestPerformanceService(perf, content, cache.NewNoopCache(), nil, now)

	req := saveRequest("anna1234")
	// Part 3 has no catalog at all; it is dropped from the reconstruction.
	req.Parts = req.Parts[:2]

	timestamp, err := svc.Save(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-17T09:30:15.123456", timestamp)

	result, err := svc.Reconstruct(ctx, "anna1234", timestamp)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 4, result.TotalQuestions)
	require.NotNil(t, result.TimeTaken)
	assert.Equal(t, 754, *result.TimeTaken)

	require.Len(t, result.ExamParts, 2)
	assert.Equal(t, "l1-a", result.ExamParts[0].ID)
	assert.Equal(t, "l2-b", result.ExamParts[1].ID)

	require.Len(t, result.AllUserAnswers, 3)
	assert.JSONEq(t, `"B"`, string(result.AllUserAnswers["q1"]))
	assert.JSONEq(t, `true`, string(result.AllUserAnswers["q2"]))
	assert.JSONEq(t, `{"gap1":"Haus"}`, string(result.AllUserAnswers["q3"]))
}

func TestPerformanceService_ReconstructSkipsUnavailableParts(t *testing.T) {
	ctx := context.Background()
	perf := newFakePerformance()
	// l2-b is not a key of its bucket and part 3 cannot be loaded.
	content := newFakeContent().
		with(models.ExamTypeListening, 1, catalogOf("l1-a")).
		with(models.ExamTypeListening, 2, catalogOf("l2-a"))
	svc := newTestPerformanceService(perf, content, cache.NewNoopCache(), nil, time.Now())

	timestamp, err := svc.Save(ctx, saveRequest("anna1234"))
	require.NoError(t, err)

	result, err := svc.Reconstruct(ctx, "anna1234", timestamp)
	require.NoError(t, err)

	require.Len(t, result.ExamParts, 1)
	assert.Equal(t, "l1-a", result.ExamParts[0].ID)
	assert.Equal(t, []string{"q1"}, keysOf(result.AllUserAnswers))
}

func keysOf(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestPerformanceService_ReconstructErrors(t *testing.T) {
	svc := newTestPerformanceService(newFakePerformance(), newFakeContent(), cache.NewNoopCache(), nil, time.Now())

	_, err := svc.Reconstruct(context.Background(), "anna1234", "2024-01-01T00:00:00.000000")
	assert.ErrorIs(t, err, ErrResultNotFound)
	assert.True(t, IsNotFound(err))

	_, err = svc.Reconstruct(context.Background(), "", "2024-01-01T00:00:00.000000")
	assert.True(t, IsUnauthorized(err))
}

func TestPerformanceService_SaveDoesNotOverwriteOnTimestampCollision(t *testing.T) {
	ctx := context.Background()
	perf := newFakePerformance()
	now := time.Date(2024, time.May, 17, 9, 30, 15, 0, time.Local)
	svc := newTestPerformanceService(perf, newFakeContent(), cache.NewNoopCache(), nil, now)

	first, err := svc.Save(ctx, saveRequest("anna1234"))
	require.NoError(t, err)
	second, err := svc.Save(ctx, saveRequest("anna1234"))
	require.NoError(t, err)

	assert.Equal(t, "2024-05-17T09:30:15.000000", first)
	assert.Equal(t, "2024-05-17T09:30:15.000001", second)

	history, err := perf.ReadAll(ctx, "anna1234")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestPerformanceService_SaveGivesUpAfterRepeatedCollisions(t *testing.T) {
	ctx := context.Background()
	perf := newFakePerformance()
	now := time.Date(2024, time.May, 17, 9, 30, 15, 0, time.Local)
	svc := newTestPerformanceService(perf, newFakeContent(), cache.NewNoopCache(), nil, now)

	for i := 0; i < maxTimestampAttempts; i++ {
		_, err := svc.Save(ctx, saveRequest("anna1234"))
		require.NoError(t, err)
	}

	_, err := svc.Save(ctx, saveRequest("anna1234"))
	assert.ErrorIs(t, err, ErrTimestampsInUse)

	history, err := perf.ReadAll(ctx, "anna1234")
	require.NoError(t, err)
	assert.Len(t, history, maxTimestampAttempts)
}

func TestPerformanceService_SaveValidation(t *testing.T) {
	svc := newTestPerformanceService(newFakePerformance(), newFakeContent(), cache.NewNoopCache(), nil, time.Now())

	tests := []struct {
		name   string
		mutate func(*SaveExamRequest)
	}{
		{"missing user id", func(r *SaveExamRequest) { r.UserID = "" }},
		{"unknown exam type", func(r *SaveExamRequest) { r.ExamType = "speaking" }},
		{"negative score", func(r *SaveExamRequest) { r.TotalScore = -1 }},
		{"malformed part id", func(r *SaveExamRequest) { r.Parts[0].PartID = "teil1" }},
		{"missing question id", func(r *SaveExamRequest) { r.Parts[0].Questions[0].QuestionID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := saveRequest("anna1234")
			tt.mutate(req)

			_, err := svc.Save(context.Background(), req)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestPerformanceService_SaveInvalidatesStatsAndPublishes(t *testing.T) {
	ctx := context.Background()
	cacheService := new(MockCacheService)
	cacheService.On("DeletePattern", mock.Anything, "stats:anna1234:*").Return(nil).Once()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newTestPerformanceService(newFakePerformance(), newFakeContent(), cacheService, publisher, time.Now())

	timestamp, err := svc.Save(ctx, saveRequest("anna1234"))
	require.NoError(t, err)

	cacheService.AssertExpectations(t)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventExamSubmitted, published[0].Type)
	assert.Equal(t, events.ExamSubmittedEvent{
		UserID:         "anna1234",
		Timestamp:      timestamp,
		ExamType:       models.ExamTypeListening,
		TotalScore:     3,
		TotalQuestions: 4,
		PartIDs:        []string{"l1-a", "l2-b", "l3-gone"},
	}, published[0].Data)
}

func TestPerformanceService_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	perf := newFakePerformance()
	require.NoError(t, perf.Append(ctx, "anna1234", "2024-03-05T14:30:00.000000", record(models.ExamTypeReading, 5, 10)))
	require.NoError(t, perf.Append(ctx, "anna1234", "2024-03-01T09:00:00", record(models.ExamTypeListening, 8, 10)))
	require.NoError(t, perf.Append(ctx, "anna1234", "2024-03-12T08:05:00.500000", record(models.ExamTypeListening, 2, 10)))
	svc := newTestPerformanceService(perf, newFakeContent(), cache.NewNoopCache(), nil, time.Now())

	items, err := svc.History(ctx, "anna1234")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "2024-03-12T08:05:00.500000", items[0].Timestamp)
	assert.Equal(t, "12.03.2024 08:05", items[0].Date)
	assert.Equal(t, "2024-03-05T14:30:00.000000", items[1].Timestamp)
	assert.Equal(t, "05.03.2024 14:30", items[1].Date)
	assert.Equal(t, models.ExamTypeReading, items[1].ExamType)
	assert.Equal(t, "2024-03-01T09:00:00", items[2].Timestamp)
	assert.Equal(t, "01.03.2024 09:00", items[2].Date)
	assert.Equal(t, 8, items[2].TotalScore)

	empty, err := svc.History(ctx, "nobody1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.History(ctx, "")
	assert.ErrorIs(t, err, ErrUserIDRequired)
}
