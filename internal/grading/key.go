package grading

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// KeyQuestion is the minimal per-question data needed to grade an answer.
// CorrectIDs is kept sorted so set comparison never depends on input order.
type KeyQuestion struct {
	ID           uuid.UUID          `json:"id"`
	QuestionType model.QuestionType `json:"question_type"`
	CorrectIDs   []string           `json:"correct_ids,omitempty"`
}

// Key is an exam's grading key: the ordered question list with correct
// choice sets. It is built once when a course is published and cached in
// Redis so submissions grade without touching PostgreSQL.
type Key struct {
	ExamID       uuid.UUID     `json:"exam_id"`
	PassingScore int           `json:"passing_score"`
	Questions    []KeyQuestion `json:"questions"`
}

// BuildKey normalizes every question and extracts its correct choice set.
// Questions violating their variant invariants fail loudly here — this is
// the only seam where raw question documents are validated.
func BuildKey(examID uuid.UUID, passingScore int, questions []model.Question) (*Key, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("exam %s has no questions", examID)
	}

	key := &Key{
		ExamID:       examID,
		PassingScore: passingScore,
		Questions:    make([]KeyQuestion, len(questions)),
	}

	for i := range questions {
		q := &questions[i]
		if err := q.Normalize(); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}

		kq := KeyQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
		}
		if q.QuestionType != model.QuestionTypeText {
			kq.CorrectIDs = q.CorrectChoiceIDs()
			sort.Strings(kq.CorrectIDs)
		}
		key.Questions[i] = kq
	}

	return key, nil
}
