package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// SummaryPatch is one enrollment assessment snapshot update, applied in bulk
// by the summary worker.
type SummaryPatch struct {
	LearnerID int            `json:"learner_id"`
	CourseID  uuid.UUID      `json:"course_id"`
	ExamType  model.ExamType `json:"exam_type"`
	Score     int            `json:"score"`
	Passed    bool           `json:"passed"`
}

// ProgressPatch is one enrollment progress update, applied in bulk by the
// progress worker.
type ProgressPatch struct {
	LearnerID       int                    `json:"learner_id"`
	CourseID        uuid.UUID              `json:"course_id"`
	ProgressPercent int                    `json:"progress_percent"`
	CompletedCount  int                    `json:"completed_count"`
	Status          model.EnrollmentStatus `json:"status"`
}

// EnrollmentRepository handles enrollment and lesson completion data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

const enrollmentColumns = `e.id, e.learner_id, e.course_id, e.status, e.progress_percent,
	e.completed_lessons, e.pre_score, e.pre_passed, e.post_score, e.post_passed,
	e.enrolled_at, e.last_access_at`

func scanEnrollment(row rowScanner, e *model.Enrollment) error {
	return row.Scan(&e.ID, &e.LearnerID, &e.CourseID, &e.Status, &e.ProgressPercent,
		&e.CompletedLessons, &e.PreTest.Score, &e.PreTest.Passed, &e.PostTest.Score, &e.PostTest.Passed,
		&e.EnrolledAt, &e.LastAccessAt)
}

// Create inserts a new enrollment. A duplicate enrollment is a conflict no-op,
// surfaced to the caller as pgx.ErrNoRows.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (learner_id, course_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (learner_id, course_id) DO NOTHING
		 RETURNING id, enrolled_at, last_access_at`,
		e.LearnerID, e.CourseID, model.EnrollmentStatusActive,
	).Scan(&e.ID, &e.EnrolledAt, &e.LastAccessAt)
}

// GetByLearnerAndCourse retrieves one learner's enrollment in a course.
func (r *EnrollmentRepository) GetByLearnerAndCourse(ctx context.Context, learnerID int, courseID uuid.UUID) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments e
		 WHERE e.learner_id = $1 AND e.course_id = $2`, learnerID, courseID)
	if err := scanEnrollment(row, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByLearner retrieves all of a learner's enrollments, most recently
// accessed first.
func (r *EnrollmentRepository) ListByLearner(ctx context.Context, learnerID int) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments e
		 WHERE e.learner_id = $1
		 ORDER BY e.last_access_at DESC`, learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := scanEnrollment(rows, &e); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// ListByCourse retrieves every enrollment in a course with the learner name
// joined in, newest enrollment first. Feeds the analytics aggregation and the
// admin roster view.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+enrollmentColumns+`, l.name
		 FROM enrollments e
		 JOIN learners l ON e.learner_id = l.id
		 WHERE e.course_id = $1
		 ORDER BY e.enrolled_at DESC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.CourseID, &e.Status, &e.ProgressPercent,
			&e.CompletedLessons, &e.PreTest.Score, &e.PreTest.Passed, &e.PostTest.Score, &e.PostTest.Passed,
			&e.EnrolledAt, &e.LastAccessAt, &e.LearnerName); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// CompleteLesson records a lesson completion and reports whether it was newly
// recorded. Completing the same lesson twice is a no-op.
func (r *EnrollmentRepository) CompleteLesson(ctx context.Context, learnerID int, lessonID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO lesson_completions (learner_id, lesson_id)
		 VALUES ($1, $2)
		 ON CONFLICT (learner_id, lesson_id) DO NOTHING`,
		learnerID, lessonID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CountCompletedLessons returns how many lessons of a course the learner has
// completed.
func (r *EnrollmentRepository) CountCompletedLessons(ctx context.Context, learnerID int, courseID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM lesson_completions lc
		 JOIN lessons l ON lc.lesson_id = l.id
		 WHERE lc.learner_id = $1 AND l.course_id = $2`,
		learnerID, courseID).Scan(&count)
	return count, err
}

// TouchLastAccess bumps the enrollment's last access timestamp.
func (r *EnrollmentRepository) TouchLastAccess(ctx context.Context, learnerID int, courseID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE enrollments SET last_access_at = NOW()
		 WHERE learner_id = $1 AND course_id = $2`,
		learnerID, courseID)
	return err
}

// BulkUpdateSummaries patches enrollment assessment snapshots in one statement
// per exam type. Patches must all carry the given exam type.
func (r *EnrollmentRepository) BulkUpdateSummaries(ctx context.Context, examType model.ExamType, patches []SummaryPatch) error {
	if len(patches) == 0 {
		return nil
	}

	learnerIDs := make([]int, len(patches))
	courseIDs := make([]uuid.UUID, len(patches))
	scores := make([]int, len(patches))
	passed := make([]bool, len(patches))
	for i, p := range patches {
		learnerIDs[i] = p.LearnerID
		courseIDs[i] = p.CourseID
		scores[i] = p.Score
		passed[i] = p.Passed
	}

	query := `UPDATE enrollments e
	          SET pre_score = u.score, pre_passed = u.passed
	          FROM UNNEST($1::int[], $2::uuid[], $3::int[], $4::bool[]) AS u(learner_id, course_id, score, passed)
	          WHERE e.learner_id = u.learner_id AND e.course_id = u.course_id`
	if examType == model.ExamTypePostTest {
		query = `UPDATE enrollments e
		         SET post_score = u.score, post_passed = u.passed
		         FROM UNNEST($1::int[], $2::uuid[], $3::int[], $4::bool[]) AS u(learner_id, course_id, score, passed)
		         WHERE e.learner_id = u.learner_id AND e.course_id = u.course_id`
	}

	_, err := r.pool.Exec(ctx, query, learnerIDs, courseIDs, scores, passed)
	return err
}

// BulkUpdateProgress patches enrollment progress in one statement.
func (r *EnrollmentRepository) BulkUpdateProgress(ctx context.Context, patches []ProgressPatch) error {
	if len(patches) == 0 {
		return nil
	}

	learnerIDs := make([]int, len(patches))
	courseIDs := make([]uuid.UUID, len(patches))
	percents := make([]int, len(patches))
	completed := make([]int, len(patches))
	statuses := make([]string, len(patches))
	for i, p := range patches {
		learnerIDs[i] = p.LearnerID
		courseIDs[i] = p.CourseID
		percents[i] = p.ProgressPercent
		completed[i] = p.CompletedCount
		statuses[i] = string(p.Status)
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE enrollments e
		 SET progress_percent = u.progress_percent,
		     completed_lessons = u.completed_lessons,
		     status = u.status,
		     last_access_at = NOW()
		 FROM UNNEST($1::int[], $2::uuid[], $3::int[], $4::int[], $5::text[])
		      AS u(learner_id, course_id, progress_percent, completed_lessons, status)
		 WHERE e.learner_id = u.learner_id AND e.course_id = u.course_id`,
		learnerIDs, courseIDs, percents, completed, statuses)
	return err
}
