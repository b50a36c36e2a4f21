package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/analytics"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/rs/zerolog"
)

// AnalyticsService assembles the per-course analytics dashboard.
type AnalyticsService struct {
	enrollmentRepo *repository.EnrollmentRepository
	attemptRepo    *repository.AttemptRepository
	reviewRepo     *repository.ReviewRepository
	log            zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(
	enrollmentRepo *repository.EnrollmentRepository,
	attemptRepo *repository.AttemptRepository,
	reviewRepo *repository.ReviewRepository,
	log zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		enrollmentRepo: enrollmentRepo,
		attemptRepo:    attemptRepo,
		reviewRepo:     reviewRepo,
		log:            log.With().Str("component", "analytics_service").Logger(),
	}
}

// CourseAnalytics aggregates a course's enrollments, attempts, and reviews
// into the dashboard payload. The dashboard must always render: any read
// failure is logged and the fully-shaped zero-valued report is returned
// instead of an error.
func (s *AnalyticsService) CourseAnalytics(ctx context.Context, courseID uuid.UUID) analytics.CourseAnalytics {
	now := time.Now()

	enrollments, err := s.enrollmentRepo.ListByCourse(ctx, courseID)
	if err != nil {
		s.log.Warn().Err(err).Str("course_id", courseID.String()).Msg("Failed to load enrollments, returning empty analytics")
		return analytics.Empty(now)
	}

	attempts, err := s.attemptRepo.ListByCourse(ctx, courseID)
	if err != nil {
		s.log.Warn().Err(err).Str("course_id", courseID.String()).Msg("Failed to load attempts, returning empty analytics")
		return analytics.Empty(now)
	}

	reviews, err := s.reviewRepo.ListByCourse(ctx, courseID)
	if err != nil {
		s.log.Warn().Err(err).Str("course_id", courseID.String()).Msg("Failed to load reviews, returning empty analytics")
		return analytics.Empty(now)
	}

	return analytics.Aggregate(now, enrollments, attempts, reviews)
}
