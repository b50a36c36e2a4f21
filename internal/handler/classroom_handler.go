package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lumeno/lumeno-backend/internal/middleware"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/response"
	"github.com/lumeno/lumeno-backend/internal/service"
	"github.com/lumeno/lumeno-backend/internal/validator"
)

// ClassroomHandler handles the learner-facing classroom endpoints: catalog,
// enrollment, lesson progress, exams and reviews.
type ClassroomHandler struct {
	courseService     *service.CourseService
	examService       *service.ExamService
	enrollmentService *service.EnrollmentService
	attemptService    *service.AttemptService
	reviewService     *service.ReviewService
}

// NewClassroomHandler creates a new ClassroomHandler.
func NewClassroomHandler(
	courseService *service.CourseService,
	examService *service.ExamService,
	enrollmentService *service.EnrollmentService,
	attemptService *service.AttemptService,
	reviewService *service.ReviewService,
) *ClassroomHandler {
	return &ClassroomHandler{
		courseService:     courseService,
		examService:       examService,
		enrollmentService: enrollmentService,
		attemptService:    attemptService,
		reviewService:     reviewService,
	}
}

// Catalog godoc
// GET /api/v1/learner/catalog
// Lists all published courses.
func (h *ClassroomHandler) Catalog(c *gin.Context) {
	courses, err := h.courseService.ListPublished(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// CourseDetail godoc
// GET /api/v1/learner/catalog/:slug
// Returns a published course with its lessons, exams and, when the caller is
// enrolled, their enrollment record.
func (h *ClassroomHandler) CourseDetail(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	course, err := h.courseService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if course.Status != model.CourseStatusPublished {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	lessons, err := h.courseService.ListLessons(c.Request.Context(), course.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	exams, err := h.examService.ListByCourse(c.Request.Context(), course.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	payload := gin.H{"course": course, "lessons": lessons, "exams": exams}
	if enrollment, err := h.enrollmentService.GetEnrollment(c.Request.Context(), learnerID, course.ID); err == nil {
		payload["enrollment"] = enrollment
	}

	response.Success(c, http.StatusOK, payload)
}

// Enroll godoc
// POST /api/v1/learner/courses/:course_id/enroll
func (h *ClassroomHandler) Enroll(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), learnerID, courseID)
	if err != nil {
		h.failClassroom(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"enrollment": enrollment})
}

// MyCourses godoc
// GET /api/v1/learner/courses
// Lists the caller's enrollments with course data, most recently accessed
// first.
func (h *ClassroomHandler) MyCourses(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	courses, err := h.enrollmentService.MyCourses(c.Request.Context(), learnerID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// CompleteLesson godoc
// POST /api/v1/learner/courses/:course_id/lessons/:lesson_id/complete
// Marks a lesson complete. Idempotent; progress recomputes asynchronously.
func (h *ClassroomHandler) CompleteLesson(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.enrollmentService.CompleteLesson(c.Request.Context(), learnerID, courseID, lessonID); err != nil {
		h.failClassroom(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"completed": true})
}

// StartExam godoc
// POST /api/v1/learner/exams/:exam_id/start
// Opens (or resumes) an exam session and starts the timer.
func (h *ClassroomHandler) StartExam(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.attemptService.StartExam(c.Request.Context(), learnerID, examID)
	if err != nil {
		h.failClassroom(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetExamPaper godoc
// GET /api/v1/learner/exams/:exam_id/paper
// Serves the cached exam paper (questions without answers). Requires an open
// session.
func (h *ClassroomHandler) GetExamPaper(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.attemptService.GetPaper(c.Request.Context(), learnerID, examID)
	if err != nil {
		h.failClassroom(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// GetSessionState godoc
// GET /api/v1/learner/exams/:exam_id/session
// Returns the session status and remaining seconds so a reloaded page can
// resume the countdown.
func (h *ClassroomHandler) GetSessionState(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.attemptService.GetSessionState(c.Request.Context(), learnerID, examID)
	if err != nil {
		h.failClassroom(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// SubmitExam godoc
// POST /api/v1/learner/exams/:exam_id/submit
// Grades the submission synchronously and returns the attempt. Duplicate
// submissions are rejected.
func (h *ClassroomHandler) SubmitExam(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), learnerID, examID, req.Answers)
	if err != nil {
		h.failClassroom(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// MyAttempts godoc
// GET /api/v1/learner/courses/:course_id/attempts
// Lists the caller's attempt history for a course, newest first.
func (h *ClassroomHandler) MyAttempts(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempts, err := h.attemptService.ListMyAttempts(c.Request.Context(), learnerID, courseID)
	if err != nil {
		h.failClassroom(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// CreateReview godoc
// POST /api/v1/learner/courses/:course_id/reviews
// One review per learner per course.
func (h *ClassroomHandler) CreateReview(c *gin.Context) {
	learnerID := middleware.GetUserID(c)

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	review := &model.Review{
		LearnerID: learnerID,
		CourseID:  courseID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := h.reviewService.Create(c.Request.Context(), review); err != nil {
		h.failClassroom(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"review": review})
}

// ListReviews godoc
// GET /api/v1/learner/courses/:course_id/reviews
func (h *ClassroomHandler) ListReviews(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reviews, err := h.reviewService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

// failClassroom maps classroom domain errors to API error codes.
func (h *ClassroomHandler) failClassroom(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, service.ErrLessonNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrCourseNotPublished):
		response.Fail(c, http.StatusBadRequest, response.ErrCourseNotPublished)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyEnrolled)
	case errors.Is(err, service.ErrExamNotAvailable):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
	case errors.Is(err, service.ErrNoSession):
		response.Fail(c, http.StatusBadRequest, response.ErrActionForbidden)
	case errors.Is(err, service.ErrAlreadySubmitted), errors.Is(err, service.ErrSubmitInFlight):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrAlreadyReviewed):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyReviewed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
