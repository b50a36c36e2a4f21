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

// AdminRoleHandler handles CRUD over roles and their permission sets.
type AdminRoleHandler struct {
	roleService *service.AdminRoleService
}

// NewAdminRoleHandler creates a new AdminRoleHandler.
func NewAdminRoleHandler(roleService *service.AdminRoleService) *AdminRoleHandler {
	return &AdminRoleHandler{roleService: roleService}
}

// ListRoles godoc
// GET /api/v1/admin/roles
func (h *AdminRoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"roles": roles})
}

// GetRole godoc
// GET /api/v1/admin/roles/:role_id
func (h *AdminRoleHandler) GetRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("role_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"role": role})
}

// CreateRole godoc
// POST /api/v1/admin/roles
func (h *AdminRoleHandler) CreateRole(c *gin.Context) {
	var req model.UpsertRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), req.Name, req.Permissions)
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"role": role})
}

// UpdateRole godoc
// PUT /api/v1/admin/roles/:role_id
// Replaces the role's name and full permission set.
func (h *AdminRoleHandler) UpdateRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("role_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpsertRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), roleID, req.Name, req.Permissions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"role": role})
}

// DeleteRole godoc
// DELETE /api/v1/admin/roles/:role_id
// Fails while admins still reference the role.
func (h *AdminRoleHandler) DeleteRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("role_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), roleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListPermissions godoc
// GET /api/v1/admin/permissions
// Returns every permission code the platform defines, for role editors.
func (h *AdminRoleHandler) ListPermissions(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"permissions": h.roleService.AllPermissionCodes()})
}
