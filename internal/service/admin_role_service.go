package service

import (
	"context"

	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
)

// AdminRoleService handles role and permission management.
type AdminRoleService struct {
	roleRepo *repository.RoleRepository
}

// NewAdminRoleService creates a new AdminRoleService.
func NewAdminRoleService(roleRepo *repository.RoleRepository) *AdminRoleService {
	return &AdminRoleService{roleRepo: roleRepo}
}

// List retrieves all roles with their permissions.
func (s *AdminRoleService) List(ctx context.Context) ([]model.RoleWithPermissions, error) {
	roles, err := s.roleRepo.ListRolesWithPermissions(ctx)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []model.RoleWithPermissions{}
	}
	return roles, nil
}

// GetByID retrieves a role with its permissions.
func (s *AdminRoleService) GetByID(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	return s.roleRepo.GetRoleByID(ctx, id)
}

// Create inserts a new role and assigns its permissions.
func (s *AdminRoleService) Create(ctx context.Context, name string, permissions []string) (*model.RoleWithPermissions, error) {
	id, err := s.roleRepo.CreateRole(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.roleRepo.AssignPermissionsToRole(ctx, id, permissions); err != nil {
		return nil, err
	}
	return s.roleRepo.GetRoleByID(ctx, id)
}

// Update renames a role and replaces its permission set.
func (s *AdminRoleService) Update(ctx context.Context, id int, name string, permissions []string) (*model.RoleWithPermissions, error) {
	if err := s.roleRepo.UpdateRole(ctx, id, name); err != nil {
		return nil, err
	}
	if err := s.roleRepo.DeleteAllPermissionsFromRole(ctx, id); err != nil {
		return nil, err
	}
	if err := s.roleRepo.AssignPermissionsToRole(ctx, id, permissions); err != nil {
		return nil, err
	}
	return s.roleRepo.GetRoleByID(ctx, id)
}

// Delete removes a role. Admins holding the role block deletion through the
// foreign key constraint.
func (s *AdminRoleService) Delete(ctx context.Context, id int) error {
	return s.roleRepo.DeleteRole(ctx, id)
}

// AllPermissionCodes lists every permission code the system defines.
func (s *AdminRoleService) AllPermissionCodes() []string {
	codes := make([]string, len(model.AllPermissions))
	for i, p := range model.AllPermissions {
		codes[i] = string(p)
	}
	return codes
}
