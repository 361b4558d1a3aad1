package handlers

import (
	"github.com/SAP-F-2025/exam-trainer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// ExhaustedResponse tells the client every instance of some part has been taken
type ExhaustedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestLogger prefers the request-scoped logger set by ContextLogger
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	if logger, exists := c.Get(utils.LoggerKey); exists {
		if typed, ok := logger.(utils.Logger); ok {
			return typed
		}
	}
	return h.logger
}

func (h *BaseHandler) contextFields(c *gin.Context, additionalFields []interface{}) []interface{} {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	return append(fields, additionalFields...)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"remote_addr", c.ClientIP(),
		"user_agent", c.Request.UserAgent(),
	}
	fields = append(fields, additionalFields...)

	h.requestLogger(c).Info(message, h.contextFields(c, fields)...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, h.contextFields(c, additionalFields)...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, h.contextFields(c, additionalFields)...)
}

// LogInfo logs informational messages with context
func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Info(message, h.contextFields(c, additionalFields)...)
}

// extractUserID reads the user id the request acts for
func (h *BaseHandler) extractUserID(c *gin.Context) string {
	return c.Query("userId")
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Error: message,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= 500 {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}
