package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lumeno/lumeno-backend/internal/config"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrLessonNotFound  = errors.New("lesson not found in this course")
)

// progressPayload is the queue message consumed by the progress worker.
type progressPayload struct {
	LearnerID int    `json:"learner_id"`
	CourseID  string `json:"course_id"`
}

// EnrolledCourse pairs an enrollment with its course for the learner's
// dashboard.
type EnrolledCourse struct {
	model.Enrollment
	Course *model.Course `json:"course,omitempty"`
}

// EnrollmentService handles enrollment and lesson progress business logic.
type EnrollmentService struct {
	enrollmentRepo *repository.EnrollmentRepository
	courseRepo     *repository.CourseRepository
	lessonRepo     *repository.LessonRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "enrollment_service").Logger(),
	}
}

// Enroll registers a learner in a published course.
func (s *EnrollmentService) Enroll(ctx context.Context, learnerID int, courseID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.Status != model.CourseStatusPublished {
		return nil, ErrCourseNotPublished
	}

	enrollment := &model.Enrollment{
		LearnerID: learnerID,
		CourseID:  courseID,
		Status:    model.EnrollmentStatusActive,
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	s.log.Info().Int("learner_id", learnerID).Str("course_id", courseID.String()).Msg("Learner enrolled")
	return enrollment, nil
}

// MyCourses returns the learner's enrollments with course details attached,
// most recently accessed first.
func (s *EnrollmentService) MyCourses(ctx context.Context, learnerID int) ([]EnrolledCourse, error) {
	enrollments, err := s.enrollmentRepo.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	courses := make([]EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		entry := EnrolledCourse{Enrollment: e}
		if course, err := s.courseRepo.GetByID(ctx, e.CourseID); err == nil {
			entry.Course = course
		}
		courses = append(courses, entry)
	}
	return courses, nil
}

// GetEnrollment returns one learner's enrollment in a course.
func (s *EnrollmentService) GetEnrollment(ctx context.Context, learnerID int, courseID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	return enrollment, nil
}

// CourseRoster returns every enrollment in a course with learner names, for
// the admin roster view.
func (s *EnrollmentService) CourseRoster(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if enrollments == nil {
		enrollments = []model.Enrollment{}
	}
	return enrollments, nil
}

// CompleteLesson records a lesson completion for an enrolled learner and
// queues a progress recompute. Completing the same lesson twice is a no-op
// and queues nothing.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, learnerID int, courseID, lessonID uuid.UUID) error {
	if _, err := s.GetEnrollment(ctx, learnerID, courseID); err != nil {
		return err
	}

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("get lesson: %w", err)
	}
	if lesson.CourseID != courseID {
		return ErrLessonNotFound
	}

	inserted, err := s.enrollmentRepo.CompleteLesson(ctx, learnerID, lessonID)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	if !inserted {
		return nil
	}

	s.enqueueProgressRecompute(ctx, learnerID, courseID)
	return nil
}

// enqueueProgressRecompute hands the progress update to the progress worker.
// Queue failures are logged, never surfaced: the completion row is already
// durable and the next completion re-triggers the recompute.
func (s *EnrollmentService) enqueueProgressRecompute(ctx context.Context, learnerID int, courseID uuid.UUID) {
	raw, err := json.Marshal(progressPayload{LearnerID: learnerID, CourseID: courseID.String()})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal progress payload")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.ProgressRecomputeQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Msg("Failed to enqueue progress recompute")
	}
}
