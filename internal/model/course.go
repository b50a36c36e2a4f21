package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseStatus enumerates the possible states of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// Course represents a course entity.
type Course struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Slug         string       `json:"slug"`
	Description  string       `json:"description"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	AuthorID     int          `json:"author_id"`
	// PassingScore is the percentage threshold applied to exam attempts.
	PassingScore int          `json:"passing_score"`
	LessonCount  int          `json:"lesson_count"`
	Status       CourseStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// CreateCourseRequest is the payload for creating a new course.
type CreateCourseRequest struct {
	Title        string `json:"title" binding:"required,min=3,max=255"`
	Slug         string `json:"slug" binding:"required,min=3,max=100,lowercase"`
	Description  string `json:"description" binding:"omitempty,max=5000"`
	ThumbnailURL string `json:"thumbnail_url" binding:"omitempty,max=500"`
	PassingScore int    `json:"passing_score" binding:"omitempty,min=1,max=100"`
}

// UpdateCourseRequest is the payload for updating an existing course.
type UpdateCourseRequest struct {
	Title        string `json:"title" binding:"omitempty,min=3,max=255"`
	Description  string `json:"description" binding:"omitempty,max=5000"`
	ThumbnailURL string `json:"thumbnail_url" binding:"omitempty,max=500"`
	PassingScore *int   `json:"passing_score" binding:"omitempty,min=1,max=100"`
}
