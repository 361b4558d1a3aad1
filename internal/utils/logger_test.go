package utils

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger() (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewSlogLogger(logger), &buf
}

func TestLogRequestLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		logger, buf := bufferLogger()
		logger.LogRequest(http.MethodGet, "/api/exam-history", tt.status, "1ms")
		assert.Contains(t, buf.String(), tt.level)
		assert.Contains(t, buf.String(), "path=/api/exam-history")
	}
}

func TestContextLoggerAttachesRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := bufferLogger()

	router := gin.New()
	router.Use(ContextLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		GetLoggerFromContext(c).Info("handled")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "request_id=req-42")
	assert.Contains(t, buf.String(), "msg=handled")
}

func TestToSlogLogger(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, base, ToSlogLogger(NewSlogLogger(base)))
}
