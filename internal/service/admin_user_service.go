package service

import (
	"context"

	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
)

// AdminUserService handles admin account management.
type AdminUserService struct {
	adminRepo *repository.AdminRepository
	authSvc   *AuthService
}

// NewAdminUserService creates a new AdminUserService.
func NewAdminUserService(adminRepo *repository.AdminRepository, authSvc *AuthService) *AdminUserService {
	return &AdminUserService{adminRepo: adminRepo, authSvc: authSvc}
}

// List retrieves all admins.
func (s *AdminUserService) List(ctx context.Context) ([]model.Admin, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	return admins, nil
}

// GetByEmail retrieves an admin by email. Used for login.
func (s *AdminUserService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.adminRepo.GetByEmail(ctx, email)
}

// GetByID retrieves an admin by id.
func (s *AdminUserService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// Create inserts a new admin with a hashed password.
func (s *AdminUserService) Create(ctx context.Context, admin *model.Admin, password string) error {
	hashed, err := s.authSvc.HashPassword(password)
	if err != nil {
		return err
	}
	admin.PasswordHash = hashed
	return s.adminRepo.Create(ctx, admin)
}

// Update modifies an admin. The password is changed only when non-empty.
func (s *AdminUserService) Update(ctx context.Context, admin *model.Admin, password string) error {
	if password != "" {
		hashed, err := s.authSvc.HashPassword(password)
		if err != nil {
			return err
		}
		admin.PasswordHash = hashed
	} else {
		admin.PasswordHash = ""
	}
	return s.adminRepo.Update(ctx, admin)
}

// Delete removes an admin account.
func (s *AdminUserService) Delete(ctx context.Context, id int) error {
	return s.adminRepo.Delete(ctx, id)
}
