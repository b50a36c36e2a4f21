package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LessonType tags the lesson content variant.
type LessonType string

const (
	LessonTypeVideo   LessonType = "video"
	LessonTypeArticle LessonType = "article"
	LessonTypePDF     LessonType = "pdf"
)

// Lesson represents one ordered unit of course content. The content fields
// are variant-specific: VideoURL for video, Body for article, FileURL for pdf.
type Lesson struct {
	ID         uuid.UUID  `json:"id"`
	CourseID   uuid.UUID  `json:"course_id"`
	Title      string     `json:"title"`
	LessonType LessonType `json:"lesson_type"`
	VideoURL   string     `json:"video_url,omitempty"`
	Body       string     `json:"body,omitempty"`
	FileURL    string     `json:"file_url,omitempty"`
	OrderNum   int        `json:"order_num"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Validate enforces the variant invariant: each lesson type requires its
// content field and forbids the others. Called once at the ingestion boundary.
func (l *Lesson) Validate() error {
	switch l.LessonType {
	case LessonTypeVideo:
		if l.VideoURL == "" {
			return errors.New("video lesson requires video_url")
		}
		if l.Body != "" || l.FileURL != "" {
			return errors.New("video lesson must not carry body or file_url")
		}
	case LessonTypeArticle:
		if l.Body == "" {
			return errors.New("article lesson requires body")
		}
		if l.VideoURL != "" || l.FileURL != "" {
			return errors.New("article lesson must not carry video_url or file_url")
		}
	case LessonTypePDF:
		if l.FileURL == "" {
			return errors.New("pdf lesson requires file_url")
		}
		if l.VideoURL != "" || l.Body != "" {
			return errors.New("pdf lesson must not carry video_url or body")
		}
	default:
		return errors.New("unknown lesson type")
	}
	return nil
}

// AddLessonRequest is the payload for adding a lesson to a course.
type AddLessonRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=255"`
	LessonType string `json:"lesson_type" binding:"required,oneof=video article pdf"`
	VideoURL   string `json:"video_url" binding:"omitempty,url,max=500"`
	Body       string `json:"body" binding:"omitempty,max=50000"`
	FileURL    string `json:"file_url" binding:"omitempty,max=500"`
	OrderNum   int    `json:"order_num" binding:"min=0"`
}

// ReorderLessonsRequest is the payload for bulk reordering lessons.
type ReorderLessonsRequest struct {
	LessonIDs []uuid.UUID `json:"lesson_ids" binding:"required,min=1"`
}
