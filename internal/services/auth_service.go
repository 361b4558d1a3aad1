package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-trainer-service/internal/events"
	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"github.com/SAP-F-2025/exam-trainer-service/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	credentials repositories.CredentialRepository
	publisher   events.EventPublisher
	validator   *validator.Validator
	logger      *ServiceLogger
	cost        int
	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(
	credentials repositories.CredentialRepository,
	publisher events.EventPublisher,
	validator *validator.Validator,
	cost int,
	logger *slog.Logger,
) (AuthService, error) {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("exam-trainer-placeholder"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hashing: %w", err)
	}
	return &authService{
		credentials: credentials,
		publisher:   publisher,
		validator:   validator,
		logger:      NewServiceLogger(logger, LogConfig{Service: "exam-trainer", Component: "auth"}),
		cost:        cost,
		dummyHash:   dummyHash,
	}, nil
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (err error) {
	op := s.logger.WithOperation(ctx, "register", req.Username)
	defer func() { op.LogResult("", err) }()

	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.credentials.Create(ctx, models.Credential{
		Username:     req.Username,
		PasswordHash: string(hash),
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	publishEvent(ctx, s.publisher, s.logger.Logger(), events.EventUserRegistered, events.UserRegisteredEvent{
		Username: req.Username,
	})
	return nil
}

// Login returns the user id on success.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (userID string, err error) {
	op := s.logger.WithOperation(ctx, "login", req.Username)
	defer func() { op.LogResult("", err) }()

	if req.Username == "" || req.Password == "" {
		return "", ErrInvalidCredentials
	}

	hash := s.dummyHash
	cred, err := s.credentials.Get(ctx, req.Username)
	switch {
	case err == nil:
		hash = []byte(cred.PasswordHash)
	case !repositories.IsNotFoundError(err):
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}

	cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password))
	if cred == nil || cmpErr != nil {
		if cmpErr != nil && !errors.Is(cmpErr, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Logger().Error("Stored password hash is unusable", "username", req.Username, "error", cmpErr)
		}
		return "", ErrInvalidCredentials
	}

	return cred.Username, nil
}
