package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

// GetByExamAndLearner retrieves the session for an exam-learner pair.
func (r *ExamSessionRepository) GetByExamAndLearner(ctx context.Context, examID uuid.UUID, learnerID int) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, learner_id, started_at, finished_at, status
		 FROM exam_sessions
		 WHERE exam_id = $1 AND learner_id = $2`, examID, learnerID,
	).Scan(&s.ID, &s.ExamID, &s.LearnerID, &s.StartedAt, &s.FinishedAt, &s.Status)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new session (learner starts the exam). The unique
// (exam_id, learner_id) constraint makes a second start a no-op.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, learner_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, learner_id) DO NOTHING
		 RETURNING id, started_at`,
		s.ExamID, s.LearnerID, model.SessionStatusInProgress,
	).Scan(&s.ID, &s.StartedAt)
}

// Transition performs a conditional status update and reports whether this
// caller won it. Grading must only start for the caller whose
// IN_PROGRESS → SUBMITTING transition succeeds; the loser of a manual-submit
// versus timer-expiry race sees false.
func (r *ExamSessionRepository) Transition(ctx context.Context, examID uuid.UUID, learnerID int, from, to model.SessionStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("illegal session transition %s -> %s", from, to)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET status = $1
		 WHERE exam_id = $2 AND learner_id = $3 AND status = $4`,
		to, examID, learnerID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Finish marks a session FINISHED with its completion time.
func (r *ExamSessionRepository) Finish(ctx context.Context, examID uuid.UUID, learnerID int) error {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET status = $1, finished_at = $2
		 WHERE exam_id = $3 AND learner_id = $4`,
		model.SessionStatusFinished, now, examID, learnerID)
	return err
}

// DeleteByExamAndLearner removes a session so the learner can retake the exam.
func (r *ExamSessionRepository) DeleteByExamAndLearner(ctx context.Context, examID uuid.UUID, learnerID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM exam_sessions WHERE exam_id = $1 AND learner_id = $2`,
		examID, learnerID)
	return err
}
