package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// LessonRepository handles lesson data access.
type LessonRepository struct {
	pool *pgxpool.Pool
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

// ListByCourse retrieves all lessons of a course ordered by order_num.
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Lesson, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, title, lesson_type, video_url, body, file_url, order_num, created_at, updated_at
		 FROM lessons WHERE course_id = $1
		 ORDER BY order_num`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []model.Lesson
	for rows.Next() {
		var l model.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.LessonType, &l.VideoURL, &l.Body, &l.FileURL, &l.OrderNum, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// GetByID retrieves a lesson by id.
func (r *LessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	l := &model.Lesson{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, lesson_type, video_url, body, file_url, order_num, created_at, updated_at
		 FROM lessons WHERE id = $1`, id,
	).Scan(&l.ID, &l.CourseID, &l.Title, &l.LessonType, &l.VideoURL, &l.Body, &l.FileURL, &l.OrderNum, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// CountByCourse returns the number of lessons in a course.
func (r *LessonRepository) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lessons WHERE course_id = $1`, courseID).Scan(&count)
	return count, err
}

// Create inserts a new lesson.
func (r *LessonRepository) Create(ctx context.Context, l *model.Lesson) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO lessons (course_id, title, lesson_type, video_url, body, file_url, order_num)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		l.CourseID, l.Title, l.LessonType, l.VideoURL, l.Body, l.FileURL, l.OrderNum,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// Update updates a lesson's content fields.
func (r *LessonRepository) Update(ctx context.Context, l *model.Lesson) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lessons SET title = $1, lesson_type = $2, video_url = $3, body = $4, file_url = $5, updated_at = NOW()
		 WHERE id = $6`,
		l.Title, l.LessonType, l.VideoURL, l.Body, l.FileURL, l.ID)
	return err
}

// Reorder rewrites the order_num of a course's lessons to match the given id
// sequence in a single statement. Ids not belonging to the course are ignored.
func (r *LessonRepository) Reorder(ctx context.Context, courseID uuid.UUID, lessonIDs []uuid.UUID) error {
	orderNums := make([]int, len(lessonIDs))
	for i := range lessonIDs {
		orderNums[i] = i
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE lessons l
		 SET order_num = u.order_num, updated_at = NOW()
		 FROM UNNEST($1::uuid[], $2::int[]) AS u(id, order_num)
		 WHERE l.id = u.id AND l.course_id = $3`,
		lessonIDs, orderNums, courseID)
	return err
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	return err
}
