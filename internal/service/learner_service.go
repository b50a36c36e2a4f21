package service

import (
	"context"

	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/lumeno/lumeno-backend/internal/response"
)

// LearnerService handles learner account business logic.
type LearnerService struct {
	learnerRepo *repository.LearnerRepository
	authSvc     *AuthService
}

// NewLearnerService creates a new LearnerService.
func NewLearnerService(learnerRepo *repository.LearnerRepository, authSvc *AuthService) *LearnerService {
	return &LearnerService{learnerRepo: learnerRepo, authSvc: authSvc}
}

// GetByEmail retrieves a learner by email.
func (s *LearnerService) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	return s.learnerRepo.GetByEmail(ctx, email)
}

// GetByID retrieves a learner by id.
func (s *LearnerService) GetByID(ctx context.Context, id int) (*model.Learner, error) {
	return s.learnerRepo.GetByID(ctx, id)
}

// List retrieves learners with pagination and optional name/email search.
func (s *LearnerService) List(ctx context.Context, search string, page, perPage int) ([]model.Learner, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	learners, total, err := s.learnerRepo.ListPaginated(ctx, search, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if learners == nil {
		learners = []model.Learner{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return learners, pagination, nil
}

// Create inserts a new learner account with a hashed password. Used both by
// public registration and by admin management.
func (s *LearnerService) Create(ctx context.Context, learner *model.Learner, password string) error {
	hashed, err := s.authSvc.HashPassword(password)
	if err != nil {
		return err
	}
	learner.PasswordHash = hashed
	return s.learnerRepo.Create(ctx, learner)
}

// Update modifies a learner. The password is changed only when non-empty.
func (s *LearnerService) Update(ctx context.Context, learner *model.Learner, password string) error {
	if password != "" {
		hashed, err := s.authSvc.HashPassword(password)
		if err != nil {
			return err
		}
		learner.PasswordHash = hashed
	} else {
		learner.PasswordHash = ""
	}
	return s.learnerRepo.Update(ctx, learner)
}

// Delete removes a learner account and resets any active session.
func (s *LearnerService) Delete(ctx context.Context, id int) error {
	if err := s.learnerRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.authSvc.ResetLearnerSession(ctx, id)
}
