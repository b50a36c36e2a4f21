package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `c.id, c.title, c.slug, c.description, c.thumbnail_url, c.author_id,
	c.passing_score, (SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS lesson_count,
	c.status, c.created_at, c.updated_at`

func scanCourse(row rowScanner, c *model.Course) error {
	return row.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.ThumbnailURL, &c.AuthorID,
		&c.PassingScore, &c.LessonCount, &c.Status, &c.CreatedAt, &c.UpdatedAt)
}

// rowScanner lets scanCourse accept both QueryRow results and rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// GetByID retrieves a course by its UUID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c := &model.Course{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, id)
	if err := scanCourse(row, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetBySlug retrieves a course by its slug.
func (r *CourseRepository) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	c := &model.Course{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.slug = $1`, slug)
	if err := scanCourse(row, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListPaginated retrieves courses with pagination, newest first. Pass
// authorID=0 to list all authors and status="" to list all statuses.
func (r *CourseRepository) ListPaginated(ctx context.Context, authorID int, status model.CourseStatus, limit, offset int) ([]model.Course, int, error) {
	where := ``
	args := []any{}
	if authorID > 0 {
		args = append(args, authorID)
		where += fmt.Sprintf(` AND c.author_id = $%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(` AND c.status = $%d`, len(args))
	}
	if where != "" {
		where = ` WHERE` + where[4:]
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses c`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + courseColumns + ` FROM courses c` + where +
		fmt.Sprintf(` ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

// ListPublished returns all courses with PUBLISHED status, newest first.
// Used for the learner catalog and cache prewarming on startup.
func (r *CourseRepository) ListPublished(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.status = $1 ORDER BY c.created_at DESC`,
		model.CourseStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, slug, description, thumbnail_url, author_id, passing_score, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Slug, c.Description, c.ThumbnailURL, c.AuthorID, c.PassingScore, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update updates a course's editable fields.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE courses SET title = $1, description = $2, thumbnail_url = $3, passing_score = $4, updated_at = NOW()
		 WHERE id = $5`,
		c.Title, c.Description, c.ThumbnailURL, c.PassingScore, c.ID)
	return err
}

// UpdateStatus updates a course's status.
func (r *CourseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CourseStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE courses SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// Delete removes a course and, via cascading constraints, its lessons, exams,
// enrollments, and reviews.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}
