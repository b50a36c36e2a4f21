package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/config"
	"github.com/lumeno/lumeno-backend/internal/grading"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrNoQuestions      = errors.New("exam has no questions")
	ErrExamNotAvailable = errors.New("exam is not available")
	ErrInvalidQuestion  = errors.New("invalid question")
)

// ExamService handles exam and question business logic plus Redis caching.
// The cached paper and grading key form the hot path: learners fetch papers
// and submissions grade without touching PostgreSQL.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	courseRepo   *repository.CourseRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	courseRepo *repository.CourseRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		courseRepo:   courseRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam by its UUID.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// ListByCourse retrieves the exams attached to a course.
func (s *ExamService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Exam, error) {
	exams, err := s.examRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// Create attaches an exam to a course. The author check lives in the handler
// via CourseService; the unique constraint rejects a duplicate exam type.
func (s *ExamService) Create(ctx context.Context, exam *model.Exam) error {
	return s.examRepo.Create(ctx, exam)
}

// Update modifies an exam's title and duration. If the parent course is
// published, the cache is refreshed so the new duration takes effect.
func (s *ExamService) Update(ctx context.Context, exam *model.Exam) error {
	if err := s.examRepo.Update(ctx, exam); err != nil {
		return err
	}
	return s.refreshIfPublished(ctx, exam.ID)
}

// Delete removes an exam and drops its cache entries.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.examRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.DropExamCache(ctx, id)
	return nil
}

// ListQuestions retrieves an exam's questions with answers, for authoring.
func (s *ExamService) ListQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// AddQuestion validates and appends a question to an exam. Normalization
// failures reject the write so malformed questions never reach storage.
func (s *ExamService) AddQuestion(ctx context.Context, q *model.Question) error {
	if err := q.Normalize(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidQuestion, err)
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return err
	}
	return s.refreshIfPublished(ctx, q.ExamID)
}

// ReplaceQuestions swaps an exam's entire question set. Every question is
// normalized first; one bad question rejects the whole batch.
func (s *ExamService) ReplaceQuestions(ctx context.Context, examID uuid.UUID, questions []model.Question) error {
	for i := range questions {
		if err := questions[i].Normalize(); err != nil {
			return fmt.Errorf("%w: question %d: %s", ErrInvalidQuestion, i, err)
		}
	}
	if err := s.questionRepo.ReplaceAll(ctx, examID, questions); err != nil {
		return err
	}
	return s.refreshIfPublished(ctx, examID)
}

// DeleteQuestion removes a single question and refreshes the cache.
func (s *ExamService) DeleteQuestion(ctx context.Context, examID, questionID uuid.UUID) error {
	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		return err
	}
	if err := s.refreshIfPublished(ctx, examID); err != nil {
		// Last question gone: drop the cache so the exam stops being served.
		if errors.Is(err, ErrNoQuestions) {
			s.DropExamCache(ctx, examID)
			return nil
		}
		return err
	}
	return nil
}

// refreshIfPublished re-warms an exam's cache when its parent course is
// already published, so edits propagate without a republish.
func (s *ExamService) refreshIfPublished(ctx context.Context, examID uuid.UUID) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("get exam: %w", err)
	}
	course, err := s.courseRepo.GetByID(ctx, exam.CourseID)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	if course.Status != model.CourseStatusPublished {
		return nil
	}
	return s.WarmExamCache(ctx, course, exam)
}

// WarmExamCache loads an exam's learner paper and grading key from
// PostgreSQL into Redis. Used by publish, question edits, and startup
// prewarming. Building the grading key normalizes every question and fails
// loudly on the first invalid one.
func (s *ExamService) WarmExamCache(ctx context.Context, course *model.Course, exam *model.Exam) error {
	questions, err := s.questionRepo.ListByExam(ctx, exam.ID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	key, err := grading.BuildKey(exam.ID, course.PassingScore, questions)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidQuestion, err)
	}
	keyJSON, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("marshal grading key: %w", err)
	}

	paper := model.ExamPaper{
		ExamID:    exam.ID,
		CourseID:  exam.CourseID,
		ExamType:  exam.ExamType,
		Title:     exam.Title,
		Duration:  exam.DurationMinutes,
		Questions: make([]model.QuestionForLearner, len(questions)),
	}
	for i, q := range questions {
		lq := model.QuestionForLearner{
			ID:           q.ID,
			Prompt:       q.Prompt,
			QuestionType: q.QuestionType,
			OrderNum:     q.OrderNum,
		}
		if len(q.Choices) > 0 {
			lq.Choices = make([]model.ChoiceForLearner, len(q.Choices))
			for j, c := range q.Choices {
				lq.Choices[j] = model.ChoiceForLearner{ID: c.ID, Text: c.Text, ImageURL: c.ImageURL}
			}
		}
		paper.Questions[i] = lq
	}

	paperJSON, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamPaperKey(exam.ID.String()), paperJSON, 0)
	pipe.Set(ctx, config.CacheKey.ExamGradingKey(exam.ID.String()), keyJSON, 0)
	pipe.Set(ctx, config.CacheKey.ExamDurationKey(exam.ID.String()), exam.DurationMinutes, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("exam_id", exam.ID.String()).
		Int("questions", len(questions)).
		Msg("Cache warmed")
	return nil
}

// DropExamCache removes an exam's cached paper, grading key, and duration.
func (s *ExamService) DropExamCache(ctx context.Context, examID uuid.UUID) {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ExamPaperKey(examID.String()))
	pipe.Del(ctx, config.CacheKey.ExamGradingKey(examID.String()))
	pipe.Del(ctx, config.CacheKey.ExamDurationKey(examID.String()))
	_, _ = pipe.Exec(ctx)
}

// PrewarmAllCaches loads every exam of every published course into Redis on
// application startup, so the first learner request never lazy-loads.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	courses, err := s.courseRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published courses: %w", err)
	}

	if len(courses) == 0 {
		s.log.Info().Msg("No published courses to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(courses)).Msg("Prewarming published courses...")

	warmed := 0
	for i := range courses {
		exams, err := s.examRepo.ListByCourse(ctx, courses[i].ID)
		if err != nil {
			s.log.Warn().Err(err).Str("course_id", courses[i].ID.String()).Msg("Failed to list exams, skipping")
			continue
		}
		for j := range exams {
			if err := s.WarmExamCache(ctx, &courses[i], &exams[j]); err != nil {
				s.log.Warn().
					Err(err).
					Str("exam_id", exams[j].ID.String()).
					Msg("Failed to warm exam, skipping")
				continue
			}
			warmed++
		}
	}

	s.log.Info().Int("warmed", warmed).Msg("Prewarming complete")
	return nil
}

// GetPaper retrieves the cached learner-facing paper from Redis.
func (s *ExamService) GetPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamPaperKey(examID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrExamNotAvailable
		}
		return nil, fmt.Errorf("get paper: %w", err)
	}

	var paper model.ExamPaper
	if err := json.Unmarshal(data, &paper); err != nil {
		return nil, fmt.Errorf("unmarshal paper: %w", err)
	}
	return &paper, nil
}

// GetGradingKey retrieves the cached grading key from Redis, falling back to
// rebuilding it from PostgreSQL on a cache miss.
func (s *ExamService) GetGradingKey(ctx context.Context, examID uuid.UUID) (*grading.Key, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamGradingKey(examID.String())).Bytes()
	if err == nil {
		var key grading.Key
		if err := json.Unmarshal(data, &key); err != nil {
			return nil, fmt.Errorf("unmarshal grading key: %w", err)
		}
		return &key, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get grading key: %w", err)
	}

	// Cache miss: rebuild from the source of truth and self-heal.
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	course, err := s.courseRepo.GetByID(ctx, exam.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.Status != model.CourseStatusPublished {
		return nil, ErrExamNotAvailable
	}
	if err := s.WarmExamCache(ctx, course, exam); err != nil {
		return nil, fmt.Errorf("rewarm cache: %w", err)
	}

	data, err = s.rdb.Get(ctx, config.CacheKey.ExamGradingKey(examID.String())).Bytes()
	if err != nil {
		return nil, fmt.Errorf("get grading key after rewarm: %w", err)
	}
	var key grading.Key
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("unmarshal grading key: %w", err)
	}
	return &key, nil
}
