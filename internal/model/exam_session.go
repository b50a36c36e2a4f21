package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states. The session is an explicit
// state machine so the timer-expiry auto-submit and a manual submit racing
// each other cannot both record an attempt: only the transition
// IN_PROGRESS → SUBMITTING may start grading, and it is performed as a
// conditional update.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusSubmitting SessionStatus = "SUBMITTING"
	SessionStatusFinished   SessionStatus = "FINISHED"
)

// CanTransition reports whether moving from s to next is a legal step.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	switch s {
	case SessionStatusInProgress:
		return next == SessionStatusSubmitting
	case SessionStatusSubmitting:
		// A failed grading attempt may roll back to IN_PROGRESS so the
		// learner can retry manually.
		return next == SessionStatusFinished || next == SessionStatusInProgress
	default:
		return false
	}
}

// ExamSession represents a learner's in-flight exam run.
type ExamSession struct {
	ID         uuid.UUID     `json:"id"`
	ExamID     uuid.UUID     `json:"exam_id"`
	LearnerID  int           `json:"learner_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Status     SessionStatus `json:"status"`
}

// ExamSessionState is returned to the frontend on page reload so the learner
// resumes with the correct countdown.
type ExamSessionState struct {
	ExamID           uuid.UUID     `json:"exam_id"`
	LearnerID        int           `json:"learner_id"`
	Status           SessionStatus `json:"status"`
	RemainingSeconds float64       `json:"remaining_seconds"`
}
