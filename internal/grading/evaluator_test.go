package grading

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/model"
)

func choiceQuestion(t *testing.T, qType model.QuestionType, correct ...string) model.Question {
	t.Helper()
	all := []string{"a", "b", "c", "d"}
	q := model.Question{
		ID:           uuid.New(),
		Prompt:       "prompt",
		QuestionType: qType,
	}
	isCorrect := make(map[string]bool, len(correct))
	for _, id := range correct {
		isCorrect[id] = true
	}
	for _, id := range all {
		q.Choices = append(q.Choices, model.Choice{ID: id, Text: "choice " + id, Correct: isCorrect[id]})
	}
	return q
}

func textQuestion() model.Question {
	return model.Question{
		ID:              uuid.New(),
		Prompt:          "explain",
		QuestionType:    model.QuestionTypeText,
		ReferenceAnswer: "because",
	}
}

func mustBuildKey(t *testing.T, passingScore int, questions ...model.Question) *Key {
	t.Helper()
	key, err := BuildKey(uuid.New(), passingScore, questions)
	if err != nil {
		t.Fatalf("BuildKey: %v", err)
	}
	return key
}

func TestGrade_SingleChoice(t *testing.T) {
	q := choiceQuestion(t, model.QuestionTypeSingle, "b")
	key := mustBuildKey(t, 60, q)

	tests := []struct {
		name    string
		choices []string
		correct bool
	}{
		{"exact match", []string{"b"}, true},
		{"wrong choice", []string{"a"}, false},
		{"empty selection", nil, false},
		{"two selections", []string{"a", "b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := key.Grade([]model.SubmittedAnswer{{QuestionID: q.ID, ChoiceIDs: tt.choices}})
			if res.Answers[0].Correct != tt.correct {
				t.Errorf("correct = %v, want %v", res.Answers[0].Correct, tt.correct)
			}
		})
	}
}

func TestGrade_MultipleChoiceSetEquality(t *testing.T) {
	q := choiceQuestion(t, model.QuestionTypeMultiple, "a", "c")
	key := mustBuildKey(t, 60, q)

	tests := []struct {
		name    string
		choices []string
		correct bool
	}{
		{"exact set in order", []string{"a", "c"}, true},
		{"exact set permuted", []string{"c", "a"}, true},
		{"strict subset", []string{"a"}, false},
		{"superset", []string{"a", "b", "c"}, false},
		{"differing set", []string{"b", "d"}, false},
		{"empty set", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := key.Grade([]model.SubmittedAnswer{{QuestionID: q.ID, ChoiceIDs: tt.choices}})
			if res.Answers[0].Correct != tt.correct {
				t.Errorf("choices %v: correct = %v, want %v", tt.choices, res.Answers[0].Correct, tt.correct)
			}
		})
	}
}

func TestGrade_TextNeverAutoGraded(t *testing.T) {
	q := textQuestion()
	key := mustBuildKey(t, 60, q)

	res := key.Grade([]model.SubmittedAnswer{{QuestionID: q.ID, Text: "because"}})

	rec := res.Answers[0]
	if rec.Graded {
		t.Error("text answer must not be graded")
	}
	if rec.Correct {
		t.Error("text answer must never score")
	}
	if rec.Text != "because" {
		t.Errorf("text = %q, want %q", rec.Text, "because")
	}
	// Text questions still count toward the total.
	if res.Total != 1 || res.Score != 0 {
		t.Errorf("score/total = %d/%d, want 0/1", res.Score, res.Total)
	}
}

func TestGrade_ScoreAndPassBoundary(t *testing.T) {
	q1 := choiceQuestion(t, model.QuestionTypeSingle, "a")
	q2 := choiceQuestion(t, model.QuestionTypeSingle, "b")
	q3 := choiceQuestion(t, model.QuestionTypeSingle, "c")
	q4 := choiceQuestion(t, model.QuestionTypeSingle, "d")
	q5 := choiceQuestion(t, model.QuestionTypeSingle, "a")

	// 3 of 5 correct = exactly 60%.
	key := mustBuildKey(t, 60, q1, q2, q3, q4, q5)
	res := key.Grade([]model.SubmittedAnswer{
		{QuestionID: q1.ID, ChoiceIDs: []string{"a"}},
		{QuestionID: q2.ID, ChoiceIDs: []string{"b"}},
		{QuestionID: q3.ID, ChoiceIDs: []string{"c"}},
		{QuestionID: q4.ID, ChoiceIDs: []string{"a"}},
		{QuestionID: q5.ID, ChoiceIDs: []string{"b"}},
	})

	if res.Score != 3 || res.Total != 5 {
		t.Fatalf("score/total = %d/%d, want 3/5", res.Score, res.Total)
	}
	if res.Percentage != 60 {
		t.Errorf("percentage = %d, want 60", res.Percentage)
	}
	if !res.Passed {
		t.Error("percentage equal to passing score must pass")
	}
}

func TestGrade_UnansweredQuestionIsWrong(t *testing.T) {
	q1 := choiceQuestion(t, model.QuestionTypeSingle, "a")
	q2 := choiceQuestion(t, model.QuestionTypeSingle, "b")
	key := mustBuildKey(t, 60, q1, q2)

	res := key.Grade([]model.SubmittedAnswer{{QuestionID: q1.ID, ChoiceIDs: []string{"a"}}})

	if res.Score != 1 {
		t.Errorf("score = %d, want 1", res.Score)
	}
	if res.Answers[1].Correct || !res.Answers[1].Graded {
		t.Error("unanswered choice question must be graded wrong")
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 5, 60},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := Percentage(tt.score, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestBuildKey_RejectsInvalidQuestions(t *testing.T) {
	single := choiceQuestion(t, model.QuestionTypeSingle, "a")

	noCorrect := choiceQuestion(t, model.QuestionTypeSingle)
	twoCorrect := choiceQuestion(t, model.QuestionTypeSingle, "a", "b")
	multipleNone := choiceQuestion(t, model.QuestionTypeMultiple)
	textWithChoices := choiceQuestion(t, model.QuestionTypeSingle, "a")
	textWithChoices.QuestionType = model.QuestionTypeText
	textNoReference := model.Question{ID: uuid.New(), Prompt: "p", QuestionType: model.QuestionTypeText}

	tests := []struct {
		name      string
		questions []model.Question
	}{
		{"no questions", nil},
		{"single without correct choice", []model.Question{noCorrect}},
		{"single with two correct choices", []model.Question{twoCorrect}},
		{"multiple without correct choice", []model.Question{multipleNone}},
		{"text with choices", []model.Question{textWithChoices}},
		{"text without reference answer", []model.Question{textNoReference}},
		{"valid then invalid", []model.Question{single, noCorrect}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildKey(uuid.New(), 60, tt.questions); err == nil {
				t.Error("expected BuildKey to fail")
			}
		})
	}
}

func TestBuildKey_SortsCorrectIDs(t *testing.T) {
	q := model.Question{
		ID:           uuid.New(),
		Prompt:       "p",
		QuestionType: model.QuestionTypeMultiple,
		Choices: []model.Choice{
			{ID: "d", Text: "d", Correct: true},
			{ID: "a", Text: "a", Correct: true},
			{ID: "b", Text: "b"},
		},
	}
	key := mustBuildKey(t, 60, q)

	got := key.Questions[0].CorrectIDs
	if len(got) != 2 || got[0] != "a" || got[1] != "d" {
		t.Errorf("CorrectIDs = %v, want [a d]", got)
	}
}
