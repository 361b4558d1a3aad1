package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-trainer-service/internal/cache"
	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func instance(id string) models.ContentInstance {
	return models.ContentInstance{
		ID:  id,
		Raw: json.RawMessage(fmt.Sprintf(`{"id":%q,"title":"content %s"}`, id, id)),
	}
}

// catalogOf keys every instance by its id.
func catalogOf(ids ...string) models.Catalog {
	catalog := make(models.Catalog, len(ids))
	for _, id := range ids {
		catalog[id] = instance(id)
	}
	return catalog
}

func setOf(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// ===== CONTENT =====

type partKey struct {
	examType models.ExamType
	part     int
}

// fakeContent serves fixed catalogs; unknown buckets are unavailable.
type fakeContent struct {
	catalogs map[partKey]models.Catalog
}

func newFakeContent() *fakeContent {
	return &fakeContent{catalogs: make(map[partKey]models.Catalog)}
}

func (f *fakeContent) with(examType models.ExamType, part int, catalog models.Catalog) *fakeContent {
	f.catalogs[partKey{examType, part}] = catalog
	return f
}

func (f *fakeContent) LoadPart(_ context.Context, examType models.ExamType, part int) (models.Catalog, error) {
	catalog, ok := f.catalogs[partKey{examType, part}]
	if !ok {
		return nil, fmt.Errorf("%w: %s part %d", repositories.ErrContentUnavailable, examType, part)
	}
	return catalog, nil
}

// MockContentRepository records calls so tests can assert which buckets were touched.
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) LoadPart(ctx context.Context, examType models.ExamType, part int) (models.Catalog, error) {
	args := m.Called(ctx, examType, part)
	catalog, _ := args.Get(0).(models.Catalog)
	return catalog, args.Error(1)
}

// ===== PERFORMANCE =====

type fakePerformance struct {
	mu   sync.Mutex
	docs models.PerformanceDocument
}

func newFakePerformance() *fakePerformance {
	return &fakePerformance{docs: make(models.PerformanceDocument)}
}

func (f *fakePerformance) Append(_ context.Context, userID, timestamp string, record models.PerformanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	history, ok := f.docs[userID]
	if !ok {
		history = make(models.UserHistory)
		f.docs[userID] = history
	}
	if _, exists := history[timestamp]; exists {
		return repositories.ErrDuplicate
	}
	history[timestamp] = record
	return nil
}

func (f *fakePerformance) ReadAll(_ context.Context, userID string) (models.UserHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	history := maps.Clone(f.docs[userID])
	if history == nil {
		history = make(models.UserHistory)
	}
	return history, nil
}

func (f *fakePerformance) Read(_ context.Context, userID, timestamp string) (*models.PerformanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.docs[userID][timestamp]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &record, nil
}

// MockPerformanceRepository is used where the test must prove the store was not read.
type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) Append(ctx context.Context, userID, timestamp string, record models.PerformanceRecord) error {
	args := m.Called(ctx, userID, timestamp, record)
	return args.Error(0)
}

func (m *MockPerformanceRepository) ReadAll(ctx context.Context, userID string) (models.UserHistory, error) {
	args := m.Called(ctx, userID)
	history, _ := args.Get(0).(models.UserHistory)
	return history, args.Error(1)
}

func (m *MockPerformanceRepository) Read(ctx context.Context, userID, timestamp string) (*models.PerformanceRecord, error) {
	args := m.Called(ctx, userID, timestamp)
	record, _ := args.Get(0).(*models.PerformanceRecord)
	return record, args.Error(1)
}

// ===== CREDENTIALS =====

type fakeCredentials struct {
	mu    sync.Mutex
	users models.CredentialDocument
}

func newFakeCredentials() *fakeCredentials {
	return &fakeCredentials{users: make(models.CredentialDocument)}
}

func (f *fakeCredentials) Create(_ context.Context, cred models.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[cred.Username]; exists {
		return repositories.ErrDuplicate
	}
	f.users[cred.Username] = cred.PasswordHash
	return nil
}

func (f *fakeCredentials) Get(_ context.Context, username string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.users[username]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &models.Credential{Username: username, PasswordHash: hash}, nil
}

// ===== CACHE =====

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

// memoryCache is a working CacheService for tests that need real hits and misses.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.entries))
}

// ===== RECORDS =====

func record(examType models.ExamType, score, total int, parts ...models.PartResult) models.PerformanceRecord {
	if parts == nil {
		parts = []models.PartResult{}
	}
	return models.PerformanceRecord{
		ExamType:       examType,
		TotalScore:     score,
		TotalQuestions: total,
		Parts:          parts,
	}
}

func partResult(partID string, correct ...bool) models.PartResult {
	questions := make([]models.QuestionResult, 0, len(correct))
	for i, ok := range correct {
		questions = append(questions, models.QuestionResult{
			QuestionID: fmt.Sprintf("%s-q%d", partID, i+1),
			UserAnswer: json.RawMessage(`"a"`),
			IsCorrect:  ok,
		})
	}
	return models.PartResult{PartID: partID, Questions: questions}
}

// timestampAt returns the history key for the given day of March 2024 at 10:00 local time.
func timestampAt(day int) string {
	return models.FormatTimestamp(time.Date(2024, time.March, day, 10, 0, 0, 0, time.Local))
}
