package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is the per-question outcome stored inside an attempt.
// ChoiceIDs holds the submitted selection (one id for single, the full set for
// multiple) and Text the free-form answer for text questions. Graded is false
// for text questions, which are never auto-graded.
type AnswerRecord struct {
	QuestionID uuid.UUID `json:"question_id"`
	ChoiceIDs  []string  `json:"choice_ids,omitempty"`
	Text       string    `json:"text,omitempty"`
	Correct    bool      `json:"correct"`
	Graded     bool      `json:"graded"`
}

// Attempt is one graded exam submission. Attempts are append-only history:
// they are never updated or deleted, and a learner may hold many per exam.
type Attempt struct {
	ID               uuid.UUID      `json:"id"`
	LearnerID        int            `json:"learner_id"`
	CourseID         uuid.UUID      `json:"course_id"`
	ExamID           uuid.UUID      `json:"exam_id"`
	ExamType         ExamType       `json:"exam_type"`
	Score            int            `json:"score"`
	Total            int            `json:"total"`
	Percentage       int            `json:"percentage"`
	Passed           bool           `json:"passed"`
	TimeTakenSeconds int            `json:"time_taken_seconds"`
	Answers          []AnswerRecord `json:"answers"`
	CreatedAt        time.Time      `json:"created_at"`
}

// SubmittedAnswer is one answer in a submission payload.
type SubmittedAnswer struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	ChoiceIDs  []string  `json:"choice_ids" binding:"omitempty,max=26,dive,min=1,max=40"`
	Text       string    `json:"text" binding:"omitempty,max=10000"`
}

// SubmitExamRequest is the payload for submitting a finished exam.
type SubmitExamRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,dive"`
}
