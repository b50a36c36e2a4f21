package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/lumeno/lumeno-backend/internal/response"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrNotCourseAuthor    = errors.New("not the author of this course")
	ErrCourseNotDraft     = errors.New("course status is not DRAFT")
	ErrCourseNotPublished = errors.New("course status is not PUBLISHED")
	ErrNoLessons          = errors.New("course has no lessons, cannot publish")
	ErrInvalidLesson      = errors.New("invalid lesson")
)

// CourseService handles course and lesson business logic.
type CourseService struct {
	courseRepo *repository.CourseRepository
	lessonRepo *repository.LessonRepository
	examRepo   *repository.ExamRepository
	examSvc    *ExamService
	log        zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	examRepo *repository.ExamRepository,
	examSvc *ExamService,
	log zerolog.Logger,
) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		examRepo:   examRepo,
		examSvc:    examSvc,
		log:        log.With().Str("component", "course_service").Logger(),
	}
}

// GetByID retrieves a course by its UUID.
func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// GetBySlug retrieves a course by its slug.
func (s *CourseService) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	return s.courseRepo.GetBySlug(ctx, slug)
}

// List retrieves courses with pagination, filtered by author unless
// authorID is 0 and by status unless status is empty.
func (s *CourseService) List(ctx context.Context, authorID int, status model.CourseStatus, page, perPage int) ([]model.Course, *response.Pagination, error) {
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

	courses, total, err := s.courseRepo.ListPaginated(ctx, authorID, status, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if courses == nil {
		courses = []model.Course{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return courses, pagination, nil
}

// ListPublished retrieves the learner-facing catalog.
func (s *CourseService) ListPublished(ctx context.Context) ([]model.Course, error) {
	courses, err := s.courseRepo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

// Create inserts a new course as DRAFT.
func (s *CourseService) Create(ctx context.Context, course *model.Course) error {
	course.Status = model.CourseStatusDraft
	return s.courseRepo.Create(ctx, course)
}

// Update modifies an existing course. Only the author may edit.
func (s *CourseService) Update(ctx context.Context, authorID int, course *model.Course) error {
	existing, err := s.courseRepo.GetByID(ctx, course.ID)
	if err != nil {
		return err
	}
	if authorID != 0 && existing.AuthorID != authorID {
		return ErrNotCourseAuthor
	}
	return s.courseRepo.Update(ctx, course)
}

// Publish moves a DRAFT course to PUBLISHED and warms the Redis cache for
// every attached exam. Publishing fails loudly if the course has no lessons
// or if any exam question violates its variant invariants, so a bad paper
// never reaches learners.
func (s *CourseService) Publish(ctx context.Context, courseID uuid.UUID, authorID int) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}

	if authorID != 0 && course.AuthorID != authorID {
		return ErrNotCourseAuthor
	}
	if course.Status != model.CourseStatusDraft {
		return ErrCourseNotDraft
	}

	lessonCount, err := s.lessonRepo.CountByCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("count lessons: %w", err)
	}
	if lessonCount == 0 {
		return ErrNoLessons
	}

	exams, err := s.examRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}
	for i := range exams {
		if err := s.examSvc.WarmExamCache(ctx, course, &exams[i]); err != nil {
			return fmt.Errorf("warm exam %s: %w", exams[i].ID, err)
		}
	}

	if err := s.courseRepo.UpdateStatus(ctx, courseID, model.CourseStatusPublished); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("course_id", courseID.String()).Int("exams", len(exams)).Msg("Course published")
	return nil
}

// Archive moves a PUBLISHED course to ARCHIVED and drops its exam caches.
// Existing enrollments keep their history; new enrollments are rejected.
func (s *CourseService) Archive(ctx context.Context, courseID uuid.UUID, authorID int) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}

	if authorID != 0 && course.AuthorID != authorID {
		return ErrNotCourseAuthor
	}
	if course.Status != model.CourseStatusPublished {
		return ErrCourseNotPublished
	}

	exams, err := s.examRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}
	for i := range exams {
		s.examSvc.DropExamCache(ctx, exams[i].ID)
	}

	if err := s.courseRepo.UpdateStatus(ctx, courseID, model.CourseStatusArchived); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("course_id", courseID.String()).Msg("Course archived")
	return nil
}

// Delete removes a draft course.
func (s *CourseService) Delete(ctx context.Context, id uuid.UUID, authorID int) error {
	existing, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if authorID != 0 && existing.AuthorID != authorID {
		return ErrNotCourseAuthor
	}
	if existing.Status != model.CourseStatusDraft {
		return ErrCourseNotDraft
	}
	return s.courseRepo.Delete(ctx, id)
}

// ListLessons retrieves a course's lessons in order.
func (s *CourseService) ListLessons(ctx context.Context, courseID uuid.UUID) ([]model.Lesson, error) {
	lessons, err := s.lessonRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if lessons == nil {
		lessons = []model.Lesson{}
	}
	return lessons, nil
}

// AddLesson validates and appends a lesson to a course.
func (s *CourseService) AddLesson(ctx context.Context, authorID int, lesson *model.Lesson) error {
	course, err := s.courseRepo.GetByID(ctx, lesson.CourseID)
	if err != nil {
		return err
	}
	if authorID != 0 && course.AuthorID != authorID {
		return ErrNotCourseAuthor
	}
	if err := lesson.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLesson, err)
	}
	return s.lessonRepo.Create(ctx, lesson)
}

// UpdateLesson validates and updates a lesson.
func (s *CourseService) UpdateLesson(ctx context.Context, authorID int, lesson *model.Lesson) error {
	existing, err := s.lessonRepo.GetByID(ctx, lesson.ID)
	if err != nil {
		return err
	}
	course, err := s.courseRepo.GetByID(ctx, existing.CourseID)
	if err != nil {
		return err
	}
	if authorID != 0 && course.AuthorID != authorID {
		return ErrNotCourseAuthor
	}
	if err := lesson.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLesson, err)
	}
	return s.lessonRepo.Update(ctx, lesson)
}

// ReorderLessons rewrites the lesson order of a course.
func (s *CourseService) ReorderLessons(ctx context.Context, authorID int, courseID uuid.UUID, lessonIDs []uuid.UUID) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if authorID != 0 && course.AuthorID != authorID {
		return ErrNotCourseAuthor
	}
	return s.lessonRepo.Reorder(ctx, courseID, lessonIDs)
}

// DeleteLesson removes a lesson from a course.
func (s *CourseService) DeleteLesson(ctx context.Context, authorID int, lessonID uuid.UUID) error {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return err
	}
	course, err := s.courseRepo.GetByID(ctx, lesson.CourseID)
	if err != nil {
		return err
	}
	if authorID != 0 && course.AuthorID != authorID {
		return ErrNotCourseAuthor
	}
	return s.lessonRepo.Delete(ctx, lessonID)
}
