package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/lumeno/lumeno-backend/internal/middleware"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/response"
	"github.com/lumeno/lumeno-backend/internal/service"
	"github.com/lumeno/lumeno-backend/internal/validator"
)

// AuthHandler handles learner and admin authentication endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	learnerService *service.LearnerService
	adminService   *service.AdminUserService
	roleService    *service.AdminRoleService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	learnerService *service.LearnerService,
	adminService *service.AdminUserService,
	roleService *service.AdminRoleService,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		learnerService: learnerService,
		adminService:   adminService,
		roleService:    roleService,
	}
}

// LearnerRegister godoc
// POST /api/v1/auth/register
// Creates a learner account and returns a token.
func (h *AuthHandler) LearnerRegister(c *gin.Context) {
	var req model.CreateLearnerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	learner := &model.Learner{Email: req.Email, Name: req.Name}
	if err := h.learnerService.Create(c.Request.Context(), learner, req.Password); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	token, err := h.authService.GenerateLearnerToken(c.Request.Context(), learner.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, model.LearnerLoginResponse{Token: token, Learner: *learner})
}

// LearnerLogin godoc
// POST /api/v1/auth/login
// Authenticates a learner. The newest login supersedes any earlier session.
func (h *AuthHandler) LearnerLogin(c *gin.Context) {
	var req model.LearnerLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	learner, err := h.learnerService.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(learner.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateLearnerToken(c.Request.Context(), learner.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.LearnerLoginResponse{Token: token, Learner: *learner})
}

// LearnerLogout godoc
// POST /api/v1/learner/logout
// Drops the learner's active session.
func (h *AuthHandler) LearnerLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetLearnerSession(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// LearnerMe godoc
// GET /api/v1/learner/me
// Returns the authenticated learner's profile.
func (h *AuthHandler) LearnerMe(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	learner, err := h.learnerService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"learner": learner})
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Authenticates an admin and embeds role permissions in the token.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), admin.RoleID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateAdminToken(admin.ID, admin.RoleID, role.Permissions)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.AdminLoginResponse{
		Token:       token,
		Admin:       *admin,
		Permissions: role.Permissions,
	})
}

// AdminMe godoc
// GET /api/v1/admin/me
// Returns the authenticated admin's profile and permissions.
func (h *AuthHandler) AdminMe(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin, "permissions": claims.Permissions})
}
