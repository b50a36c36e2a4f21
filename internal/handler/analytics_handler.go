package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/response"
	"github.com/lumeno/lumeno-backend/internal/service"
)

// AnalyticsHandler serves per-course analytics for admins.
type AnalyticsHandler struct {
	analyticsService  *service.AnalyticsService
	enrollmentService *service.EnrollmentService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, enrollmentService *service.EnrollmentService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, enrollmentService: enrollmentService}
}

// CourseAnalytics godoc
// GET /api/v1/admin/courses/:course_id/analytics
// Aggregated dashboard figures. Degrades to a zero-valued report when a
// source read fails rather than erroring the whole dashboard.
func (h *AnalyticsHandler) CourseAnalytics(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	report := h.analyticsService.CourseAnalytics(c.Request.Context(), courseID)
	response.Success(c, http.StatusOK, gin.H{"analytics": report})
}

// CourseRoster godoc
// GET /api/v1/admin/courses/:course_id/students
// Lists every enrollment of the course with learner names and both
// assessment summaries.
func (h *AnalyticsHandler) CourseRoster(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	roster, err := h.enrollmentService.CourseRoster(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": roster})
}
