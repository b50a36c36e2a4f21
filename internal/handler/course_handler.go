package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lumeno/lumeno-backend/internal/config"
	"github.com/lumeno/lumeno-backend/internal/middleware"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/response"
	"github.com/lumeno/lumeno-backend/internal/service"
	"github.com/lumeno/lumeno-backend/internal/validator"
)

// CourseHandler handles admin course authoring endpoints.
type CourseHandler struct {
	courseService *service.CourseService
	cfg           *config.Config
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService, cfg *config.Config) *CourseHandler {
	return &CourseHandler{courseService: courseService, cfg: cfg}
}

// ListCourses godoc
// GET /api/v1/admin/courses
// Lists courses with pagination. Superadmins see all; authors see their own.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	status := model.CourseStatus(c.Query("status"))

	// courses:publish holders can manage everyone's courses.
	authorFilter := claims.UserID
	for _, p := range claims.Permissions {
		if p == string(model.PermissionCoursesPublish) {
			authorFilter = 0
			break
		}
	}

	courses, pagination, err := h.courseService.List(c.Request.Context(), authorFilter, status, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// GetCourse godoc
// GET /api/v1/admin/courses/:course_id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	lessons, err := h.courseService.ListLessons(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course, "lessons": lessons})
}

// CreateCourse godoc
// POST /api/v1/admin/courses
// Creates a new draft course authored by the caller.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	passingScore := req.PassingScore
	if passingScore == 0 {
		passingScore = h.cfg.DefaultPassingScore
	}

	course := &model.Course{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		AuthorID:     claims.UserID,
		PassingScore: passingScore,
	}

	if err := h.courseService.Create(c.Request.Context(), course); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse godoc
// PUT /api/v1/admin/courses/:course_id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	existing, err := h.courseService.GetByID(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	if req.Title != "" {
		existing.Title = req.Title
	}
	if req.Description != "" {
		existing.Description = req.Description
	}
	if req.ThumbnailURL != "" {
		existing.ThumbnailURL = req.ThumbnailURL
	}
	if req.PassingScore != nil {
		existing.PassingScore = *req.PassingScore
	}

	if err := h.courseService.Update(c.Request.Context(), h.authorFilter(claims), existing); err != nil {
		h.failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": existing})
}

// PublishCourse godoc
// POST /api/v1/admin/courses/:course_id/publish
// Publishes a course: warms exam papers + grading keys in Redis, then flips
// status.
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.Publish(c.Request.Context(), courseID, h.authorFilter(claims)); err != nil {
		h.failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"published": true})
}

// ArchiveCourse godoc
// POST /api/v1/admin/courses/:course_id/archive
func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.Archive(c.Request.Context(), courseID, h.authorFilter(claims)); err != nil {
		h.failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"archived": true})
}

// DeleteCourse godoc
// DELETE /api/v1/admin/courses/:course_id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), courseID, h.authorFilter(claims)); err != nil {
		h.failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddLesson godoc
// POST /api/v1/admin/courses/:course_id/lessons
func (h *CourseHandler) AddLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson := &model.Lesson{
		CourseID:   courseID,
		Title:      req.Title,
		LessonType: model.LessonType(req.LessonType),
		VideoURL:   req.VideoURL,
		Body:       req.Body,
		FileURL:    req.FileURL,
		OrderNum:   req.OrderNum,
	}

	if err := h.courseService.AddLesson(c.Request.Context(), h.authorFilter(claims), lesson); err != nil {
		h.failCourse(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"lesson": lesson})
}

// UpdateLesson godoc
// PUT /api/v1/admin/lessons/:lesson_id
func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson := &model.Lesson{
		ID:         lessonID,
		Title:      req.Title,
		LessonType: model.LessonType(req.LessonType),
		VideoURL:   req.VideoURL,
		Body:       req.Body,
		FileURL:    req.FileURL,
		OrderNum:   req.OrderNum,
	}

	if err := h.courseService.UpdateLesson(c.Request.Context(), h.authorFilter(claims), lesson); err != nil {
		h.failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lesson": lesson})
}

// ReorderLessons godoc
// PUT /api/v1/admin/courses/:course_id/lessons/order
func (h *CourseHandler) ReorderLessons(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReorderLessonsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.courseService.ReorderLessons(c.Request.Context(), h.authorFilter(claims), courseID, req.LessonIDs); err != nil {
		h.failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reordered": true})
}

// DeleteLesson godoc
// DELETE /api/v1/admin/lessons/:lesson_id
func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.courseService.DeleteLesson(c.Request.Context(), h.authorFilter(claims), lessonID); err != nil {
		h.failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// authorFilter returns 0 (no filter) for admins who can publish any course,
// otherwise the caller's own id.
func (h *CourseHandler) authorFilter(claims *service.Claims) int {
	for _, p := range claims.Permissions {
		if p == string(model.PermissionCoursesPublish) {
			return 0
		}
	}
	return claims.UserID
}

// failCourse maps course domain errors to API error codes.
func (h *CourseHandler) failCourse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotCourseAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotCourseAuthor)
	case errors.Is(err, service.ErrCourseNotDraft):
		response.Fail(c, http.StatusBadRequest, response.ErrCourseNotDraft)
	case errors.Is(err, service.ErrCourseNotPublished):
		response.Fail(c, http.StatusBadRequest, response.ErrCourseNotPublished)
	case errors.Is(err, service.ErrNoLessons):
		response.Fail(c, http.StatusBadRequest, response.ErrActionForbidden)
	case errors.Is(err, service.ErrInvalidLesson):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, service.ErrInvalidQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestion)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
