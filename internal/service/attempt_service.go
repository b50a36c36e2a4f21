package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

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
	ErrNotEnrolled      = errors.New("not enrolled in this course")
	ErrAlreadySubmitted = errors.New("exam already submitted")
	ErrSubmitInFlight   = errors.New("a submission is already being graded")
	ErrNoSession        = errors.New("no exam session, start the exam first")
)

// summaryPayload is the queue message consumed by the summary worker.
type summaryPayload struct {
	LearnerID int    `json:"learner_id"`
	CourseID  string `json:"course_id"`
	ExamID    string `json:"exam_id"`
	ExamType  string `json:"exam_type"`
}

// AttemptService handles the exam-taking flow: session lifecycle, grading,
// and the append-only attempt history.
type AttemptService struct {
	attemptRepo    *repository.AttemptRepository
	sessionRepo    *repository.ExamSessionRepository
	enrollmentRepo *repository.EnrollmentRepository
	examSvc        *ExamService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	sessionRepo *repository.ExamSessionRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	examSvc *ExamService,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attemptRepo:    attemptRepo,
		sessionRepo:    sessionRepo,
		enrollmentRepo: enrollmentRepo,
		examSvc:        examSvc,
		rdb:            rdb,
		log:            log.With().Str("component", "attempt_service").Logger(),
	}
}

// StartExam opens (or resumes) an exam session for an enrolled learner.
// A FINISHED session is replaced so retakes start with a fresh timer;
// attempt history is never touched.
func (s *AttemptService) StartExam(ctx context.Context, learnerID int, examID uuid.UUID) (*model.ExamSession, error) {
	paper, err := s.examSvc.GetPaper(ctx, examID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, learnerID, paper.CourseID); err != nil {
		return nil, err
	}

	existing, err := s.sessionRepo.GetByExamAndLearner(ctx, examID, learnerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing session: %w", err)
	}

	if existing != nil {
		if existing.Status != model.SessionStatusFinished {
			// Resume: make sure the start time is cached for the countdown.
			startKey := config.CacheKey.ExamSessionStartKey(examID.String(), learnerID)
			_ = s.rdb.Set(ctx, startKey, existing.StartedAt.Unix(), 0)
			return existing, nil
		}
		// Retake: drop the finished session and start over.
		if err := s.sessionRepo.DeleteByExamAndLearner(ctx, examID, learnerID); err != nil {
			return nil, fmt.Errorf("reset finished session: %w", err)
		}
	}

	session := &model.ExamSession{
		ExamID:    examID,
		LearnerID: learnerID,
		StartedAt: time.Now(),
		Status:    model.SessionStatusInProgress,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent start: the other request won, return its session.
			existing, fetchErr := s.sessionRepo.GetByExamAndLearner(ctx, examID, learnerID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, fetch failed: %w", fetchErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Status = model.SessionStatusInProgress

	startKey := config.CacheKey.ExamSessionStartKey(examID.String(), learnerID)
	if err := s.rdb.Set(ctx, startKey, session.StartedAt.Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to cache session start time")
	}

	_ = s.enrollmentRepo.TouchLastAccess(ctx, learnerID, paper.CourseID)
	return session, nil
}

// GetPaper returns the cached learner paper, gated on an active session.
func (s *AttemptService) GetPaper(ctx context.Context, learnerID int, examID uuid.UUID) (*model.ExamPaper, error) {
	sess, err := s.sessionRepo.GetByExamAndLearner(ctx, examID, learnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Status == model.SessionStatusFinished {
		return nil, ErrAlreadySubmitted
	}
	return s.examSvc.GetPaper(ctx, examID)
}

// GetSessionState returns the session status and remaining seconds so a
// reloaded page resumes with the correct countdown.
func (s *AttemptService) GetSessionState(ctx context.Context, learnerID int, examID uuid.UUID) (*model.ExamSessionState, error) {
	sess, err := s.sessionRepo.GetByExamAndLearner(ctx, examID, learnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	durationStr, err := s.rdb.Get(ctx, config.CacheKey.ExamDurationKey(examID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get exam duration: %w", err)
	}
	durationMinutes, err := strconv.Atoi(durationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid duration in cache: %w", err)
	}

	startUnix, err := s.sessionStartUnix(ctx, examID, learnerID, sess)
	if err != nil {
		return nil, err
	}

	endTime := time.Unix(startUnix, 0).Add(time.Duration(durationMinutes) * time.Minute)
	remaining := time.Until(endTime)
	if remaining < 0 {
		remaining = 0
	}

	return &model.ExamSessionState{
		ExamID:           examID,
		LearnerID:        learnerID,
		Status:           sess.Status,
		RemainingSeconds: remaining.Seconds(),
	}, nil
}

// Submit grades a finished exam and appends the attempt. The conditional
// IN_PROGRESS → SUBMITTING transition is the double-submit guard: when a
// manual submit races the timer-expiry auto-submit, exactly one caller wins
// the transition and grades; the loser gets an error and no attempt is
// recorded twice. A failed grading rolls the session back to IN_PROGRESS.
func (s *AttemptService) Submit(ctx context.Context, learnerID int, examID uuid.UUID, answers []model.SubmittedAnswer) (*model.Attempt, error) {
	sess, err := s.sessionRepo.GetByExamAndLearner(ctx, examID, learnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	won, err := s.sessionRepo.Transition(ctx, examID, learnerID,
		model.SessionStatusInProgress, model.SessionStatusSubmitting)
	if err != nil {
		return nil, fmt.Errorf("transition session: %w", err)
	}
	if !won {
		if sess.Status == model.SessionStatusSubmitting {
			return nil, ErrSubmitInFlight
		}
		return nil, ErrAlreadySubmitted
	}

	attempt, err := s.gradeAndRecord(ctx, learnerID, examID, sess, answers)
	if err != nil {
		// Roll back so the learner can retry the submission.
		if _, rbErr := s.sessionRepo.Transition(ctx, examID, learnerID,
			model.SessionStatusSubmitting, model.SessionStatusInProgress); rbErr != nil {
			s.log.Error().Err(rbErr).Str("exam_id", examID.String()).Msg("Session rollback failed")
		}
		return nil, err
	}

	if err := s.sessionRepo.Finish(ctx, examID, learnerID); err != nil {
		s.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Failed to finish session")
	}
	_ = s.rdb.Del(ctx, config.CacheKey.ExamSessionStartKey(examID.String(), learnerID)).Err()

	s.enqueueSummaryPatch(ctx, attempt)

	return attempt, nil
}

func (s *AttemptService) gradeAndRecord(ctx context.Context, learnerID int, examID uuid.UUID, sess *model.ExamSession, answers []model.SubmittedAnswer) (*model.Attempt, error) {
	key, err := s.examSvc.GetGradingKey(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get grading key: %w", err)
	}
	paper, err := s.examSvc.GetPaper(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get paper: %w", err)
	}

	result := key.Grade(answers)

	startUnix, err := s.sessionStartUnix(ctx, examID, learnerID, sess)
	if err != nil {
		return nil, err
	}
	timeTaken := int(time.Now().Unix() - startUnix)
	if timeTaken < 0 {
		timeTaken = 0
	}

	attempt := &model.Attempt{
		LearnerID:        learnerID,
		CourseID:         paper.CourseID,
		ExamID:           examID,
		ExamType:         paper.ExamType,
		Score:            result.Score,
		Total:            result.Total,
		Percentage:       result.Percentage,
		Passed:           result.Passed,
		TimeTakenSeconds: timeTaken,
		Answers:          result.Answers,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	s.log.Info().
		Int("learner_id", learnerID).
		Str("exam_id", examID.String()).
		Int("percentage", attempt.Percentage).
		Bool("passed", attempt.Passed).
		Msg("Attempt recorded")
	return attempt, nil
}

// enqueueSummaryPatch hands the enrollment snapshot update to the summary
// worker. Queue failures are logged, never surfaced: the attempt is already
// safely recorded and the snapshot is best-effort.
func (s *AttemptService) enqueueSummaryPatch(ctx context.Context, attempt *model.Attempt) {
	payload := summaryPayload{
		LearnerID: attempt.LearnerID,
		CourseID:  attempt.CourseID.String(),
		ExamID:    attempt.ExamID.String(),
		ExamType:  string(attempt.ExamType),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal summary payload")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.AssessmentSummaryQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Msg("Failed to enqueue summary patch")
	}
}

// ListMyAttempts returns a learner's attempt history for one course.
func (s *AttemptService) ListMyAttempts(ctx context.Context, learnerID int, courseID uuid.UUID) ([]model.Attempt, error) {
	attempts, err := s.attemptRepo.ListByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, nil
}

func (s *AttemptService) requireEnrollment(ctx context.Context, learnerID int, courseID uuid.UUID) error {
	_, err := s.enrollmentRepo.GetByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("check enrollment: %w", err)
	}
	return nil
}

// sessionStartUnix reads the cached start time, falling back to the session
// row and self-healing the cache on a miss.
func (s *AttemptService) sessionStartUnix(ctx context.Context, examID uuid.UUID, learnerID int, sess *model.ExamSession) (int64, error) {
	startKey := config.CacheKey.ExamSessionStartKey(examID.String(), learnerID)
	val, err := s.rdb.Get(ctx, startKey).Result()
	if errors.Is(err, redis.Nil) {
		startUnix := sess.StartedAt.Unix()
		_ = s.rdb.Set(ctx, startKey, startUnix, 0)
		return startUnix, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get start time: %w", err)
	}
	startUnix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid start time in cache: %w", err)
	}
	return startUnix, nil
}
