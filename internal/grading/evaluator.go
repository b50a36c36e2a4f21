// Package grading evaluates learner answer sets against an exam's grading
// key. All functions are pure; persistence belongs to the attempt service.
package grading

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/model"
)

// Result is the scored outcome of one submission.
type Result struct {
	Score      int
	Total      int
	Percentage int
	Passed     bool
	Answers    []model.AnswerRecord
}

// Grade scores a submission against the key. Every key question produces one
// answer record, in key order; unanswered choice questions are recorded wrong.
// Text questions are never auto-graded: their records carry Graded=false and
// cannot score, but they still count toward the total.
func (k *Key) Grade(answers []model.SubmittedAnswer) Result {
	byQuestion := make(map[uuid.UUID]*model.SubmittedAnswer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	res := Result{
		Total:   len(k.Questions),
		Answers: make([]model.AnswerRecord, len(k.Questions)),
	}

	for i, kq := range k.Questions {
		rec := model.AnswerRecord{QuestionID: kq.ID}
		sub := byQuestion[kq.ID]

		switch kq.QuestionType {
		case model.QuestionTypeText:
			if sub != nil {
				rec.Text = sub.Text
			}
		default:
			rec.Graded = true
			if sub != nil {
				rec.ChoiceIDs = sub.ChoiceIDs
				rec.Correct = evaluateChoice(kq, sub.ChoiceIDs)
			}
		}

		if rec.Correct {
			res.Score++
		}
		res.Answers[i] = rec
	}

	res.Percentage = Percentage(res.Score, res.Total)
	res.Passed = res.Percentage >= k.PassingScore
	return res
}

// evaluateChoice compares a submitted choice set against the correct set.
// Both sides are sorted before structural comparison so the verdict is
// order-independent. Any extra or missing selection makes the item wrong —
// no partial credit.
func evaluateChoice(kq KeyQuestion, submitted []string) bool {
	if len(submitted) != len(kq.CorrectIDs) {
		return false
	}

	ids := make([]string, len(submitted))
	copy(ids, submitted)
	sort.Strings(ids)

	// kq.CorrectIDs is sorted by BuildKey.
	for i := range ids {
		if ids[i] != kq.CorrectIDs[i] {
			return false
		}
	}
	return true
}

// Percentage returns round(score/total*100), or 0 for an empty total.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
