package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// LearnerRepository handles learner data access.
type LearnerRepository struct {
	pool *pgxpool.Pool
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(pool *pgxpool.Pool) *LearnerRepository {
	return &LearnerRepository{pool: pool}
}

// GetByEmail retrieves a learner by email. Used for login.
func (r *LearnerRepository) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	l := &model.Learner{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, avatar_url, created_at, updated_at
		 FROM learners WHERE email = $1`, email,
	).Scan(&l.ID, &l.Email, &l.Name, &l.PasswordHash, &l.AvatarURL, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetByID retrieves a learner by id.
func (r *LearnerRepository) GetByID(ctx context.Context, id int) (*model.Learner, error) {
	l := &model.Learner{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, avatar_url, created_at, updated_at
		 FROM learners WHERE id = $1`, id,
	).Scan(&l.ID, &l.Email, &l.Name, &l.PasswordHash, &l.AvatarURL, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListPaginated retrieves learners ordered by name with pagination. An empty
// search lists everyone; otherwise name and email are matched case-insensitively.
func (r *LearnerRepository) ListPaginated(ctx context.Context, search string, limit, offset int) ([]model.Learner, int, error) {
	where := ``
	args := []any{}
	if search != "" {
		where = ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM learners`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, email, name, password_hash, avatar_url, created_at, updated_at
	          FROM learners` + where + ` ORDER BY name ASC`
	if search == "" {
		query += ` LIMIT $1 OFFSET $2`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var learners []model.Learner
	for rows.Next() {
		var l model.Learner
		if err := rows.Scan(&l.ID, &l.Email, &l.Name, &l.PasswordHash, &l.AvatarURL, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		learners = append(learners, l)
	}
	return learners, total, rows.Err()
}

// Create inserts a new learner.
func (r *LearnerRepository) Create(ctx context.Context, l *model.Learner) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO learners (email, name, password_hash, avatar_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		l.Email, l.Name, l.PasswordHash, l.AvatarURL,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// Update updates a learner's profile fields. PasswordHash is written only when
// non-empty.
func (r *LearnerRepository) Update(ctx context.Context, l *model.Learner) error {
	if l.PasswordHash != "" {
		_, err := r.pool.Exec(ctx,
			`UPDATE learners SET email = $1, name = $2, password_hash = $3, avatar_url = $4, updated_at = NOW()
			 WHERE id = $5`,
			l.Email, l.Name, l.PasswordHash, l.AvatarURL, l.ID)
		return err
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE learners SET email = $1, name = $2, avatar_url = $3, updated_at = NOW()
		 WHERE id = $4`,
		l.Email, l.Name, l.AvatarURL, l.ID)
	return err
}

// Delete removes a learner.
func (r *LearnerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM learners WHERE id = $1`, id)
	return err
}
