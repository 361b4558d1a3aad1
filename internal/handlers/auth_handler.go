package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-trainer-service/internal/services"
	"github.com/SAP-F-2025/exam-trainer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Register creates a new account
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.RegisterRequest true "Credentials"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Registering user", "username", req.Username)

	if err := h.authService.Register(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "User registered successfully.",
	})
}

// Login checks a username and password
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.LogWarn(c, "Unreadable login payload", "error", err.Error())
		h.handleServiceError(c, services.ErrInvalidCredentials)
		return
	}

	h.LogRequest(c, "Logging in", "username", req.Username)

	userID, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		UserID:  userID,
	})
}
