package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// LogLevel represents different log levels for service operations
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// Logger exposes the component-scoped slog logger.
func (l *ServiceLogger) Logger() *slog.Logger {
	return l.logger
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, userID string, resourceID string, duration time.Duration, err error) {
	logLevel := LogLevelInfo
	status := "success"

	if err != nil {
		logLevel = LogLevelError
		status = "error"

		// Adjust log level based on error type
		if IsValidation(err) {
			logLevel = LogLevelWarn
			status = "validation_error"
		} else if IsUnauthorized(err) {
			logLevel = LogLevelWarn
			status = "unauthorized"
		} else if IsConflict(err) {
			logLevel = LogLevelWarn
			status = "conflict"
		} else if IsNotFound(err) {
			logLevel = LogLevelInfo
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if resourceID != "" {
		attrs = append(attrs, slog.String("resource_id", resourceID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErr ValidationErrors
		if errors.As(err, &validationErr) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		}

		// Add caller information for unexpected errors
		if logLevel == LogLevelError {
			if pc, file, line, ok := runtime.Caller(2); ok {
				if fn := runtime.FuncForPC(pc); fn != nil {
					attrs = append(attrs,
						slog.String("caller_func", fn.Name()),
						slog.String("caller_file", file),
						slog.Int("caller_line", line),
					)
				}
			}
		}
	}

	message := fmt.Sprintf("%s operation %s", operation, status)

	switch logLevel {
	case LogLevelDebug:
		if l.config.EnableDebug {
			l.logger.LogAttrs(ctx, slog.LevelDebug, message, attrs...)
		}
	case LogLevelInfo:
		l.logger.LogAttrs(ctx, slog.LevelInfo, message, attrs...)
	case LogLevelWarn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, message, attrs...)
	case LogLevelError:
		l.logger.LogAttrs(ctx, slog.LevelError, message, attrs...)
	}
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation string, userID string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i < 5 { // Limit to first 5 errors to avoid log spam
			attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
				slog.String("field", err.Field),
				slog.String("message", err.Message),
			))
		}
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

// ===== MIDDLEWARE AND HELPERS =====

// ContextualLogger wraps operations with automatic logging
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID string, err error) {
	duration := time.Since(cl.startTime)
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, duration, err)

	var validationErrors ValidationErrors
	if errors.As(err, &validationErrors) {
		cl.logger.LogValidationError(cl.ctx, cl.operation, cl.userID, validationErrors)
	}
}
