package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamType distinguishes the two assessments bracketing a course's content.
type ExamType string

const (
	ExamTypePreTest  ExamType = "pre_test"
	ExamTypePostTest ExamType = "post_test"
)

// Exam represents a pre- or post-test attached to a course.
// Each course holds at most one exam per type.
type Exam struct {
	ID              uuid.UUID `json:"id"`
	CourseID        uuid.UUID `json:"course_id"`
	ExamType        ExamType  `json:"exam_type"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateExamRequest is the payload for attaching an exam to a course.
type CreateExamRequest struct {
	ExamType        string `json:"exam_type" binding:"required,oneof=pre_test post_test"`
	Title           string `json:"title" binding:"required,min=3,max=255"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=480"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title           string `json:"title" binding:"omitempty,min=3,max=255"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
}

// ExamPaper is the Redis-cached payload sent to learners (no correct answers).
type ExamPaper struct {
	ExamID    uuid.UUID            `json:"exam_id"`
	CourseID  uuid.UUID            `json:"course_id"`
	ExamType  ExamType             `json:"exam_type"`
	Title     string               `json:"title"`
	Duration  int                  `json:"duration_minutes"`
	Questions []QuestionForLearner `json:"questions"`
}

// QuestionForLearner is a question stripped of correctness flags and the
// reference answer, safe to send to learners.
type QuestionForLearner struct {
	ID           uuid.UUID          `json:"id"`
	Prompt       string             `json:"prompt"`
	QuestionType QuestionType       `json:"question_type"`
	Choices      []ChoiceForLearner `json:"choices,omitempty"`
	OrderNum     int                `json:"order_num"`
}

// ChoiceForLearner is a choice without its correctness flag.
type ChoiceForLearner struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}
