package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/services"
	"github.com/SAP-F-2025/exam-trainer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// GetListeningExam assembles a listening exam
// @Summary Get listening exam
// @Tags exams
// @Produce json
// @Param userId query string false "User ID"
// @Success 200 {array} models.ContentInstance
// @Failure 500 {object} ErrorResponse
// @Router /listening-exam [get]
func (h *ExamHandler) GetListeningExam(c *gin.Context) {
	h.getExam(c, models.ExamTypeListening)
}

// GetReadingExam assembles a reading exam
// @Summary Get reading exam
// @Tags exams
// @Produce json
// @Param userId query string false "User ID"
// @Success 200 {array} models.ContentInstance
// @Failure 500 {object} ErrorResponse
// @Router /reading-exam [get]
func (h *ExamHandler) GetReadingExam(c *gin.Context) {
	h.getExam(c, models.ExamTypeReading)
}

func (h *ExamHandler) getExam(c *gin.Context, examType models.ExamType) {
	userID := c.Query("userId")
	h.LogRequest(c, "Assembling exam", "exam_type", examType)

	assembly, err := h.examService.GetExam(c.Request.Context(), examType, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if assembly.Exhausted() {
		c.JSON(http.StatusOK, ExhaustedResponse{
			Status:  string(models.ExamStatusAllCompleted),
			Message: fmt.Sprintf("User has completed all available %s exams.", examType),
		})
		return
	}

	c.JSON(http.StatusOK, assembly.Parts)
}
