package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exam-trainer-service/internal/cache"
	"github.com/SAP-F-2025/exam-trainer-service/internal/events"
	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"github.com/SAP-F-2025/exam-trainer-service/internal/validator"
)

// ServiceManager gives handlers access to every service.
type ServiceManager interface {
	Exam() ExamService
	Performance() PerformanceService
	Stats() StatsService
	Auth() AuthService
	Export() ExportService
}

// Dependencies holds everything the services are built from.
type Dependencies struct {
	Content       repositories.ContentRepository
	Performance   repositories.PerformanceRepository
	Credentials   repositories.CredentialRepository
	Cache         cache.CacheService
	Publisher     events.EventPublisher
	Validator     *validator.Validator
	Layout        models.ExamLayout
	Chooser       Chooser
	StatsCacheTTL time.Duration
	BcryptCost    int
	Logger        *slog.Logger
}

type serviceManager struct {
	exam        ExamService
	performance PerformanceService
	stats       StatsService
	auth        AuthService
	export      ExportService
}

func NewServiceManager(deps Dependencies) (ServiceManager, error) {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopCache()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Layout == nil {
		deps.Layout = models.DefaultExamLayout()
	}

	auth, err := NewAuthService(deps.Credentials, deps.Publisher, deps.Validator, deps.BcryptCost, deps.Logger)
	if err != nil {
		return nil, err
	}

	tracker := NewCompletionTracker(deps.Performance, deps.Logger)
	assembler := NewExamAssembler(deps.Content, deps.Layout, deps.Chooser, deps.Logger)

	return &serviceManager{
		exam:        NewExamService(tracker, assembler, deps.Publisher, deps.Logger),
		performance: NewPerformanceService(deps.Performance, deps.Content, deps.Cache, deps.Publisher, deps.Validator, deps.Logger),
		stats:       NewStatsService(deps.Performance, deps.Content, deps.Layout, deps.Cache, deps.StatsCacheTTL, deps.Logger),
		auth:        auth,
		export:      NewExportService(deps.Performance, deps.Logger),
	}, nil
}

func (m *serviceManager) Exam() ExamService               { return m.exam }
func (m *serviceManager) Performance() PerformanceService { return m.performance }
func (m *serviceManager) Stats() StatsService             { return m.stats }
func (m *serviceManager) Auth() AuthService               { return m.auth }
func (m *serviceManager) Export() ExportService           { return m.export }
