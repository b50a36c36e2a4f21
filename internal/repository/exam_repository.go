package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `e.id, e.course_id, e.exam_type, e.title, e.duration_minutes,
	(SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id) AS question_count,
	e.created_at, e.updated_at`

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.id = $1`, id,
	).Scan(&e.ID, &e.CourseID, &e.ExamType, &e.Title, &e.DurationMinutes, &e.QuestionCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByCourseAndType retrieves the pre- or post-test of a course. Each course
// holds at most one exam per type.
func (r *ExamRepository) GetByCourseAndType(ctx context.Context, courseID uuid.UUID, examType model.ExamType) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.course_id = $1 AND e.exam_type = $2`,
		courseID, examType,
	).Scan(&e.ID, &e.CourseID, &e.ExamType, &e.Title, &e.DurationMinutes, &e.QuestionCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByCourse retrieves all exams attached to a course.
func (r *ExamRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.course_id = $1 ORDER BY e.exam_type`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.CourseID, &e.ExamType, &e.Title, &e.DurationMinutes, &e.QuestionCount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam. The unique (course_id, exam_type) constraint
// rejects a second exam of the same type.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (course_id, exam_type, title, duration_minutes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		e.CourseID, e.ExamType, e.Title, e.DurationMinutes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update updates an exam's title and duration.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET title = $1, duration_minutes = $2, updated_at = NOW() WHERE id = $3`,
		e.Title, e.DurationMinutes, e.ID)
	return err
}

// Delete removes an exam and its questions.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}
