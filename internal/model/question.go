package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// QuestionType tags the question variant.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeText     QuestionType = "text"
)

// Choice is one selectable option of a choice question.
type Choice struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
	Correct  bool   `json:"correct"`
}

// Question represents a single exam question. Choices is empty for text
// questions; ReferenceAnswer is set only for text questions and is never
// auto-graded.
type Question struct {
	ID              uuid.UUID    `json:"id"`
	ExamID          uuid.UUID    `json:"exam_id"`
	Prompt          string       `json:"prompt"`
	QuestionType    QuestionType `json:"question_type"`
	Choices         []Choice     `json:"choices,omitempty"`
	ReferenceAnswer string       `json:"reference_answer,omitempty"`
	OrderNum        int          `json:"order_num"`
}

// Normalize validates the question variant invariants. It is the single seam
// where raw question documents are checked; downstream code may assume a
// normalized question without defensive defaulting.
//   - single: exactly one choice flagged correct
//   - multiple: at least one choice flagged correct
//   - text: no choices, a reference answer for display
func (q *Question) Normalize() error {
	switch q.QuestionType {
	case QuestionTypeSingle, QuestionTypeMultiple:
		if len(q.Choices) < 2 {
			return fmt.Errorf("%s question requires at least 2 choices", q.QuestionType)
		}
		seen := make(map[string]bool, len(q.Choices))
		correct := 0
		for _, c := range q.Choices {
			if c.ID == "" {
				return errors.New("choice id is required")
			}
			if seen[c.ID] {
				return fmt.Errorf("duplicate choice id %q", c.ID)
			}
			seen[c.ID] = true
			if c.Correct {
				correct++
			}
		}
		if q.QuestionType == QuestionTypeSingle && correct != 1 {
			return fmt.Errorf("single question requires exactly 1 correct choice, got %d", correct)
		}
		if q.QuestionType == QuestionTypeMultiple && correct < 1 {
			return errors.New("multiple question requires at least 1 correct choice")
		}
		if q.ReferenceAnswer != "" {
			return errors.New("choice question must not carry a reference answer")
		}
	case QuestionTypeText:
		if len(q.Choices) != 0 {
			return errors.New("text question must not carry choices")
		}
		if q.ReferenceAnswer == "" {
			return errors.New("text question requires a reference answer")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.QuestionType)
	}
	return nil
}

// CorrectChoiceIDs returns the ids of all choices flagged correct.
func (q *Question) CorrectChoiceIDs() []string {
	var ids []string
	for _, c := range q.Choices {
		if c.Correct {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ChoiceRequest is one choice in a question payload.
type ChoiceRequest struct {
	ID       string `json:"id" binding:"required,min=1,max=40"`
	Text     string `json:"text" binding:"required,min=1,max=2000"`
	ImageURL string `json:"image_url" binding:"omitempty,max=500"`
	Correct  bool   `json:"correct"`
}

// AddQuestionRequest is the payload for adding a question to an exam.
type AddQuestionRequest struct {
	Prompt          string          `json:"prompt" binding:"required,min=1,max=5000"`
	QuestionType    string          `json:"question_type" binding:"required,oneof=single multiple text"`
	Choices         []ChoiceRequest `json:"choices" binding:"omitempty,dive"`
	ReferenceAnswer string          `json:"reference_answer" binding:"omitempty,max=5000"`
	OrderNum        int             `json:"order_num" binding:"min=0"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing an exam's questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"dive"`
}
