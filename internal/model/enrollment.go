package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus enumerates enrollment states.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
)

// AssessmentSummary is the enrollment-embedded snapshot of the learner's
// latest attempt for one exam type. It is maintained best-effort by a
// background worker and mirrors, not owns, the attempt history.
type AssessmentSummary struct {
	Score  *int  `json:"score,omitempty"`
	Passed *bool `json:"passed,omitempty"`
}

// Enrollment represents a learner's registration and progress for one course.
type Enrollment struct {
	ID              uuid.UUID         `json:"id"`
	LearnerID       int               `json:"learner_id"`
	LearnerName     string            `json:"learner_name,omitempty"`
	CourseID        uuid.UUID         `json:"course_id"`
	Status          EnrollmentStatus  `json:"status"`
	ProgressPercent int               `json:"progress_percent"`
	CompletedLessons int              `json:"completed_lessons"`
	PreTest         AssessmentSummary `json:"pre_test"`
	PostTest        AssessmentSummary `json:"post_test"`
	EnrolledAt      time.Time         `json:"enrolled_at"`
	LastAccessAt    time.Time         `json:"last_access_at"`
}

// ComputeProgressPercent computes the rounded completion percentage for a lesson count.
func ComputeProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}
