package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrAlreadyReviewed is returned when a learner reviews a course twice.
var ErrAlreadyReviewed = errors.New("course already reviewed")

// ReviewService handles course review business logic.
type ReviewService struct {
	reviewRepo     *repository.ReviewRepository
	enrollmentRepo *repository.EnrollmentRepository
	log            zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviewRepo *repository.ReviewRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:     reviewRepo,
		enrollmentRepo: enrollmentRepo,
		log:            log.With().Str("component", "review_service").Logger(),
	}
}

// Create records a one-time review by an enrolled learner.
func (s *ReviewService) Create(ctx context.Context, review *model.Review) error {
	if _, err := s.enrollmentRepo.GetByLearnerAndCourse(ctx, review.LearnerID, review.CourseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("check enrollment: %w", err)
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ListByCourse retrieves a course's reviews, newest first.
func (s *ReviewService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}
