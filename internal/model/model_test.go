package model

import "testing"

func TestSessionStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to SessionStatus
		want     bool
	}{
		{SessionStatusInProgress, SessionStatusSubmitting, true},
		{SessionStatusSubmitting, SessionStatusFinished, true},
		{SessionStatusSubmitting, SessionStatusInProgress, true}, // grading failure rollback
		{SessionStatusInProgress, SessionStatusFinished, false}, // must pass through SUBMITTING
		{SessionStatusFinished, SessionStatusSubmitting, false}, // finished is terminal
		{SessionStatusFinished, SessionStatusInProgress, false},
		{SessionStatusInProgress, SessionStatusInProgress, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s → %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestComputeProgressPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{5, 10, 50},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := ComputeProgressPercent(tt.completed, tt.total); got != tt.want {
			t.Errorf("ComputeProgressPercent(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestLessonValidate(t *testing.T) {
	tests := []struct {
		name    string
		lesson  Lesson
		wantErr bool
	}{
		{"valid video", Lesson{LessonType: LessonTypeVideo, VideoURL: "https://cdn/v.mp4"}, false},
		{"valid article", Lesson{LessonType: LessonTypeArticle, Body: "text"}, false},
		{"valid pdf", Lesson{LessonType: LessonTypePDF, FileURL: "https://cdn/f.pdf"}, false},
		{"video without url", Lesson{LessonType: LessonTypeVideo}, true},
		{"video with body", Lesson{LessonType: LessonTypeVideo, VideoURL: "u", Body: "b"}, true},
		{"article with file", Lesson{LessonType: LessonTypeArticle, Body: "b", FileURL: "f"}, true},
		{"unknown type", Lesson{LessonType: "quiz"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lesson.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionNormalize(t *testing.T) {
	choices := func(correct ...bool) []Choice {
		out := make([]Choice, len(correct))
		for i, c := range correct {
			out[i] = Choice{ID: string(rune('a' + i)), Text: "x", Correct: c}
		}
		return out
	}

	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"valid single", Question{QuestionType: QuestionTypeSingle, Choices: choices(true, false, false)}, false},
		{"valid multiple", Question{QuestionType: QuestionTypeMultiple, Choices: choices(true, true, false)}, false},
		{"valid text", Question{QuestionType: QuestionTypeText, ReferenceAnswer: "ref"}, false},
		{"single no correct", Question{QuestionType: QuestionTypeSingle, Choices: choices(false, false)}, true},
		{"single two correct", Question{QuestionType: QuestionTypeSingle, Choices: choices(true, true)}, true},
		{"multiple no correct", Question{QuestionType: QuestionTypeMultiple, Choices: choices(false, false)}, true},
		{"too few choices", Question{QuestionType: QuestionTypeSingle, Choices: choices(true)}, true},
		{"text with choices", Question{QuestionType: QuestionTypeText, ReferenceAnswer: "r", Choices: choices(true, false)}, true},
		{"text without reference", Question{QuestionType: QuestionTypeText}, true},
		{"unknown type", Question{QuestionType: "essay"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Normalize()
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionNormalize_DuplicateChoiceIDs(t *testing.T) {
	q := Question{
		QuestionType: QuestionTypeSingle,
		Choices: []Choice{
			{ID: "a", Text: "x", Correct: true},
			{ID: "a", Text: "y"},
		},
	}
	if err := q.Normalize(); err == nil {
		t.Error("expected duplicate choice ids to be rejected")
	}
}
