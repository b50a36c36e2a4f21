package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/response"
	"github.com/lumeno/lumeno-backend/internal/service"
	"github.com/lumeno/lumeno-backend/internal/validator"
)

// LearnerManagementHandler handles admin CRUD over learner accounts.
type LearnerManagementHandler struct {
	learnerService *service.LearnerService
	authService    *service.AuthService
}

// NewLearnerManagementHandler creates a new LearnerManagementHandler.
func NewLearnerManagementHandler(learnerService *service.LearnerService, authService *service.AuthService) *LearnerManagementHandler {
	return &LearnerManagementHandler{learnerService: learnerService, authService: authService}
}

// ListLearners godoc
// GET /api/v1/admin/learners
// Paginated list, optional ?search= over name and email.
func (h *LearnerManagementHandler) ListLearners(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	search := c.Query("search")

	learners, pagination, err := h.learnerService.List(c.Request.Context(), search, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"learners": learners}, pagination)
}

// GetLearner godoc
// GET /api/v1/admin/learners/:learner_id
func (h *LearnerManagementHandler) GetLearner(c *gin.Context) {
	learnerID, err := strconv.Atoi(c.Param("learner_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	learner, err := h.learnerService.GetByID(c.Request.Context(), learnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"learner": learner})
}

// CreateLearner godoc
// POST /api/v1/admin/learners
func (h *LearnerManagementHandler) CreateLearner(c *gin.Context) {
	var req model.CreateLearnerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	learner := &model.Learner{
		Email: req.Email,
		Name:  req.Name,
	}

	if err := h.learnerService.Create(c.Request.Context(), learner, req.Password); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"learner": learner})
}

// UpdateLearner godoc
// PUT /api/v1/admin/learners/:learner_id
// Password is updated only when provided.
func (h *LearnerManagementHandler) UpdateLearner(c *gin.Context) {
	learnerID, err := strconv.Atoi(c.Param("learner_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateLearnerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	learner := &model.Learner{
		ID:    learnerID,
		Email: req.Email,
		Name:  req.Name,
	}

	if err := h.learnerService.Update(c.Request.Context(), learner, req.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"learner": learner})
}

// DeleteLearner godoc
// DELETE /api/v1/admin/learners/:learner_id
func (h *LearnerManagementHandler) DeleteLearner(c *gin.Context) {
	learnerID, err := strconv.Atoi(c.Param("learner_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.learnerService.Delete(c.Request.Context(), learnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ResetLearnerSession godoc
// POST /api/v1/admin/learners/:learner_id/reset-session
// Clears the learner's active session so they can log in from a new device.
func (h *LearnerManagementHandler) ResetLearnerSession(c *gin.Context) {
	learnerID, err := strconv.Atoi(c.Param("learner_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetLearnerSession(c.Request.Context(), learnerID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}
