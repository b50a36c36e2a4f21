package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// AttemptRepository handles attempt data access. Attempts are append-only:
// there is no update or delete path.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, learner_id, course_id, exam_id, exam_type, score, total,
	percentage, passed, time_taken_seconds, answers, created_at`

// Create appends a graded attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (learner_id, course_id, exam_id, exam_type, score, total,
		                       percentage, passed, time_taken_seconds, answers)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		a.LearnerID, a.CourseID, a.ExamID, a.ExamType, a.Score, a.Total,
		a.Percentage, a.Passed, a.TimeTakenSeconds, a.Answers,
	).Scan(&a.ID, &a.CreatedAt)
}

// ListByLearnerAndCourse retrieves a learner's attempt history for one course,
// newest first.
func (r *AttemptRepository) ListByLearnerAndCourse(ctx context.Context, learnerID int, courseID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE learner_id = $1 AND course_id = $2
		 ORDER BY created_at DESC`, learnerID, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

// ListByCourse retrieves every attempt recorded for a course, oldest first.
// Feeds the analytics aggregation.
func (r *AttemptRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE course_id = $1
		 ORDER BY created_at ASC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

// GetLatestByLearnerAndExam retrieves the learner's most recent attempt for one
// exam. Used by the summary worker to patch the enrollment snapshot.
func (r *AttemptRepository) GetLatestByLearnerAndExam(ctx context.Context, learnerID int, examID uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE learner_id = $1 AND exam_id = $2
		 ORDER BY created_at DESC
		 LIMIT 1`, learnerID, examID,
	).Scan(&a.ID, &a.LearnerID, &a.CourseID, &a.ExamID, &a.ExamType, &a.Score, &a.Total,
		&a.Percentage, &a.Passed, &a.TimeTakenSeconds, &a.Answers, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanAttempts(rows pgx.Rows) ([]model.Attempt, error) {
	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.LearnerID, &a.CourseID, &a.ExamID, &a.ExamType, &a.Score, &a.Total,
			&a.Percentage, &a.Passed, &a.TimeTakenSeconds, &a.Answers, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
