package model

import "time"

// Learner represents a student user.
type Learner struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LearnerLoginRequest is the payload for learner authentication.
type LearnerLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// LearnerLoginResponse is returned after successful learner login.
type LearnerLoginResponse struct {
	Token   string  `json:"token"`
	Learner Learner `json:"learner"`
}

// CreateLearnerRequest is the payload for creating a new learner account.
type CreateLearnerRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// UpdateLearnerRequest is the payload for updating an existing learner.
type UpdateLearnerRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
}
