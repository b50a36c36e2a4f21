package model

import (
	"time"

	"github.com/google/uuid"
)

// Review represents a learner's one-time rating of a course.
type Review struct {
	ID          uuid.UUID `json:"id"`
	LearnerID   int       `json:"learner_id"`
	LearnerName string    `json:"learner_name,omitempty"`
	CourseID    uuid.UUID `json:"course_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateReviewRequest is the payload for submitting a course review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}
