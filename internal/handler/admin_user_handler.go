package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/lumeno/lumeno-backend/internal/middleware"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/response"
	"github.com/lumeno/lumeno-backend/internal/service"
	"github.com/lumeno/lumeno-backend/internal/validator"
)

// AdminUserHandler handles CRUD over admin accounts.
type AdminUserHandler struct {
	adminService *service.AdminUserService
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(adminService *service.AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{adminService: adminService}
}

// ListAdmins godoc
// GET /api/v1/admin/users
func (h *AdminUserHandler) ListAdmins(c *gin.Context) {
	admins, err := h.adminService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admins": admins})
}

// GetAdmin godoc
// GET /api/v1/admin/users/:admin_id
func (h *AdminUserHandler) GetAdmin(c *gin.Context) {
	adminID, err := strconv.Atoi(c.Param("admin_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}

// CreateAdmin godoc
// POST /api/v1/admin/users
func (h *AdminUserHandler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin := &model.Admin{
		Email:  req.Email,
		Name:   req.Name,
		RoleID: req.RoleID,
	}

	if err := h.adminService.Create(c.Request.Context(), admin, req.Password); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"admin": admin})
}

// UpdateAdmin godoc
// PUT /api/v1/admin/users/:admin_id
func (h *AdminUserHandler) UpdateAdmin(c *gin.Context) {
	adminID, err := strconv.Atoi(c.Param("admin_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin := &model.Admin{
		ID:     adminID,
		Email:  req.Email,
		Name:   req.Name,
		RoleID: req.RoleID,
	}

	if err := h.adminService.Update(c.Request.Context(), admin, req.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}

// DeleteAdmin godoc
// DELETE /api/v1/admin/users/:admin_id
// Admins cannot delete themselves.
func (h *AdminUserHandler) DeleteAdmin(c *gin.Context) {
	adminID, err := strconv.Atoi(c.Param("admin_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if claims := middleware.GetClaims(c); claims != nil && claims.UserID == adminID {
		response.Fail(c, http.StatusBadRequest, response.ErrActionForbidden)
		return
	}

	if err := h.adminService.Delete(c.Request.Context(), adminID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
