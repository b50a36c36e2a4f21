package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// ReviewRepository handles course review data access.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review. The unique (learner_id, course_id) constraint
// rejects a second review, surfaced as pgx.ErrNoRows.
func (r *ReviewRepository) Create(ctx context.Context, rv *model.Review) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO reviews (learner_id, course_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (learner_id, course_id) DO NOTHING
		 RETURNING id, created_at`,
		rv.LearnerID, rv.CourseID, rv.Rating, rv.Comment,
	).Scan(&rv.ID, &rv.CreatedAt)
}

// ListByCourse retrieves all reviews of a course with the learner name joined
// in, newest first.
func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT rv.id, rv.learner_id, l.name, rv.course_id, rv.rating, rv.comment, rv.created_at
		 FROM reviews rv
		 JOIN learners l ON rv.learner_id = l.id
		 WHERE rv.course_id = $1
		 ORDER BY rv.created_at DESC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.LearnerID, &rv.LearnerName, &rv.CourseID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
