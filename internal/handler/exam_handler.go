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

// ExamHandler handles admin exam and question authoring endpoints.
type ExamHandler struct {
	examService   *service.ExamService
	courseService *service.CourseService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, courseService *service.CourseService) *ExamHandler {
	return &ExamHandler{examService: examService, courseService: courseService}
}

// ListExams godoc
// GET /api/v1/admin/courses/:course_id/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if !h.requireCourseAccess(c, courseID) {
		return
	}

	exams, err := h.examService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// CreateExam godoc
// POST /api/v1/admin/courses/:course_id/exams
// Attaches a pre- or post-test to a course. A course holds at most one exam
// per type.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if !h.requireCourseAccess(c, courseID) {
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam := &model.Exam{
		CourseID:        courseID,
		ExamType:        model.ExamType(req.ExamType),
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
	}

	if err := h.examService.Create(c.Request.Context(), exam); err != nil {
		// unique (course_id, exam_type)
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// UpdateExam godoc
// PUT /api/v1/admin/exams/:exam_id
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	exam := h.resolveExam(c)
	if exam == nil {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.DurationMinutes != 0 {
		exam.DurationMinutes = req.DurationMinutes
	}

	if err := h.examService.Update(c.Request.Context(), exam); err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// DeleteExam godoc
// DELETE /api/v1/admin/exams/:exam_id
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	exam := h.resolveExam(c)
	if exam == nil {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), exam.ID); err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListQuestions godoc
// GET /api/v1/admin/exams/:exam_id/questions
// Returns questions with answer keys; admin-only.
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	exam := h.resolveExam(c)
	if exam == nil {
		return
	}

	questions, err := h.examService.ListQuestions(c.Request.Context(), exam.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// AddQuestion godoc
// POST /api/v1/admin/exams/:exam_id/questions
func (h *ExamHandler) AddQuestion(c *gin.Context) {
	exam := h.resolveExam(c)
	if exam == nil {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question := questionFromRequest(exam.ID, req)
	if err := h.examService.AddQuestion(c.Request.Context(), question); err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// ReplaceQuestions godoc
// PUT /api/v1/admin/exams/:exam_id/questions
// Replaces the exam's full question set in one transaction.
func (h *ExamHandler) ReplaceQuestions(c *gin.Context) {
	exam := h.resolveExam(c)
	if exam == nil {
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for _, qr := range req.Questions {
		questions = append(questions, *questionFromRequest(exam.ID, qr))
	}

	if err := h.examService.ReplaceQuestions(c.Request.Context(), exam.ID, questions); err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"replaced": len(questions)})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/exams/:exam_id/questions/:question_id
func (h *ExamHandler) DeleteQuestion(c *gin.Context) {
	exam := h.resolveExam(c)
	if exam == nil {
		return
	}

	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.DeleteQuestion(c.Request.Context(), exam.ID, questionID); err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// resolveExam parses :exam_id, loads the exam and checks the caller may
// manage its course. Returns nil after writing the response on failure.
func (h *ExamHandler) resolveExam(c *gin.Context) *model.Exam {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return nil
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil
	}

	if !h.requireCourseAccess(c, exam.CourseID) {
		return nil
	}
	return exam
}

// requireCourseAccess verifies the caller authored the course or holds the
// publish permission. Writes the response on failure.
func (h *ExamHandler) requireCourseAccess(c *gin.Context, courseID uuid.UUID) bool {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return false
	}

	course, err := h.courseService.GetByID(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return false
	}

	for _, p := range claims.Permissions {
		if p == string(model.PermissionCoursesPublish) {
			return true
		}
	}
	if course.AuthorID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrNotCourseAuthor)
		return false
	}
	return true
}

func questionFromRequest(examID uuid.UUID, req model.AddQuestionRequest) *model.Question {
	choices := make([]model.Choice, 0, len(req.Choices))
	for _, cr := range req.Choices {
		choices = append(choices, model.Choice{
			ID:       cr.ID,
			Text:     cr.Text,
			ImageURL: cr.ImageURL,
			Correct:  cr.Correct,
		})
	}
	return &model.Question{
		ExamID:          examID,
		Prompt:          req.Prompt,
		QuestionType:    model.QuestionType(req.QuestionType),
		Choices:         choices,
		ReferenceAnswer: req.ReferenceAnswer,
		OrderNum:        req.OrderNum,
	}
}

// failExam maps exam domain errors to API error codes.
func (h *ExamHandler) failExam(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestion)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
