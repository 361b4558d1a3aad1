package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/exam-trainer-service/internal/services"
	"github.com/SAP-F-2025/exam-trainer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PerformanceHandler struct {
	BaseHandler
	performanceService services.PerformanceService
	statsService       services.StatsService
	exportService      services.ExportService
}

func NewPerformanceHandler(
	performanceService services.PerformanceService,
	statsService services.StatsService,
	exportService services.ExportService,
	logger utils.Logger,
) *PerformanceHandler {
	return &PerformanceHandler{
		BaseHandler:        NewBaseHandler(logger),
		performanceService: performanceService,
		statsService:       statsService,
		exportService:      exportService,
	}
}

// SaveExam stores a finished attempt
// @Summary Save exam performance
// @Tags performance
// @Accept json
// @Produce json
// @Param attempt body services.SaveExamRequest true "Attempt"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /save-exam [post]
func (h *PerformanceHandler) SaveExam(c *gin.Context) {
	var req services.SaveExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Saving exam performance", "submitted_by", req.UserID, "exam_type", req.ExamType)

	timestamp, err := h.performanceService.Save(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Exam performance saved", "timestamp", timestamp)
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Exam performance saved.",
	})
}

// GetDashboardStats returns the aggregated statistics of a user
// @Summary Dashboard statistics
// @Tags performance
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} models.DashboardStats
// @Failure 400 {object} ErrorResponse
// @Router /dashboard-stats [get]
func (h *PerformanceHandler) GetDashboardStats(c *gin.Context) {
	h.LogRequest(c, "Computing dashboard stats")

	stats, err := h.statsService.DashboardStats(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetExamHistory lists the attempts of a user, newest first
// @Summary Exam history
// @Tags performance
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {array} models.HistoryItem
// @Failure 400 {object} ErrorResponse
// @Router /exam-history [get]
func (h *PerformanceHandler) GetExamHistory(c *gin.Context) {
	h.LogRequest(c, "Listing exam history")

	items, err := h.performanceService.History(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// ExportExamHistory downloads the history as an Excel workbook
// @Summary Export exam history
// @Tags performance
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param userId query string true "User ID"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /exam-history/export [get]
func (h *PerformanceHandler) ExportExamHistory(c *gin.Context) {
	userID := c.Query("userId")
	h.LogRequest(c, "Exporting exam history")

	var buf bytes.Buffer
	if err := h.exportService.ExportHistory(c.Request.Context(), userID, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-history-%s.xlsx"`, userID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetExamResult rebuilds a past attempt with its original content
// @Summary Exam result
// @Tags performance
// @Produce json
// @Param timestamp path string true "Attempt timestamp"
// @Param userId query string true "User ID"
// @Success 200 {object} models.FullExamResult
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exam-result/{timestamp} [get]
func (h *PerformanceHandler) GetExamResult(c *gin.Context) {
	timestamp := c.Param("timestamp")
	h.LogRequest(c, "Reconstructing exam result", "timestamp", timestamp)

	result, err := h.performanceService.Reconstruct(c.Request.Context(), c.Query("userId"), timestamp)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
