package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/model"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func postAttempt(learnerID, percentage int, answers ...model.AnswerRecord) model.Attempt {
	return model.Attempt{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		ExamType:   model.ExamTypePostTest,
		Percentage: percentage,
		Answers:    answers,
	}
}

func preAttempt(learnerID, percentage int) model.Attempt {
	return model.Attempt{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		ExamType:   model.ExamTypePreTest,
		Percentage: percentage,
	}
}

func enrollment(learnerID int, enrolledAt time.Time) model.Enrollment {
	return model.Enrollment{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		Status:     model.EnrollmentStatusActive,
		EnrolledAt: enrolledAt,
	}
}

func TestScoreBucketIndex_Boundaries(t *testing.T) {
	tests := []struct {
		percentage, want int
	}{
		{0, 0},
		{20, 0},  // 20/20.01 floors to 0
		{21, 1},
		{40, 1},  // 40/20.01 floors to 1
		{41, 2},
		{60, 2},
		{61, 3},
		{80, 3},
		{81, 4},
		{100, 4}, // never overflows into a sixth bucket
	}
	for _, tt := range tests {
		if got := scoreBucketIndex(tt.percentage); got != tt.want {
			t.Errorf("scoreBucketIndex(%d) = %d, want %d", tt.percentage, got, tt.want)
		}
	}
}

func TestAggregate_DistributionAndPostTestAverage(t *testing.T) {
	// 4 post-test attempts with percentages 50, 65, 90, 100.
	attempts := []model.Attempt{
		postAttempt(1, 50),
		postAttempt(2, 65),
		postAttempt(3, 90),
		postAttempt(4, 100),
	}

	res := Aggregate(testNow, nil, attempts, nil)

	if res.AvgPostTestScore != 76 {
		t.Errorf("AvgPostTestScore = %d, want 76", res.AvgPostTestScore)
	}

	wantPost := []int{0, 0, 1, 1, 2}
	for i, want := range wantPost {
		if got := res.ScoreDistribution[i].PostTest; got != want {
			t.Errorf("bucket %q post-test = %d, want %d", res.ScoreDistribution[i].Range, got, want)
		}
		if res.ScoreDistribution[i].PreTest != 0 {
			t.Errorf("bucket %q pre-test = %d, want 0", res.ScoreDistribution[i].Range, res.ScoreDistribution[i].PreTest)
		}
	}
}

func TestAggregate_PreAndPostCountedSeparately(t *testing.T) {
	attempts := []model.Attempt{
		preAttempt(1, 10),
		preAttempt(2, 100),
		postAttempt(1, 100),
	}

	res := Aggregate(testNow, nil, attempts, nil)

	if res.ScoreDistribution[0].PreTest != 1 || res.ScoreDistribution[4].PreTest != 1 {
		t.Errorf("pre-test distribution = %+v", res.ScoreDistribution)
	}
	if res.ScoreDistribution[4].PostTest != 1 {
		t.Errorf("post-test distribution = %+v", res.ScoreDistribution)
	}
	if res.AvgPostTestScore != 100 {
		t.Errorf("AvgPostTestScore = %d, want 100 (pre-test attempts excluded)", res.AvgPostTestScore)
	}
}

func TestAggregate_HardestQuestions(t *testing.T) {
	q := make([]uuid.UUID, 7)
	for i := range q {
		q[i] = uuid.New()
	}

	wrong := func(id uuid.UUID) model.AnswerRecord {
		return model.AnswerRecord{QuestionID: id, Graded: true, Correct: false}
	}
	right := func(id uuid.UUID) model.AnswerRecord {
		return model.AnswerRecord{QuestionID: id, Graded: true, Correct: true}
	}

	// q0 missed 3x, q1 missed 2x, q2..q5 missed 1x, q6 never attempted.
	attempts := []model.Attempt{
		postAttempt(1, 0, wrong(q[0]), wrong(q[1]), wrong(q[2]), wrong(q[3]), wrong(q[4]), wrong(q[5])),
		postAttempt(2, 50, wrong(q[0]), wrong(q[1]), right(q[2]), right(q[3]), right(q[4]), right(q[5])),
		postAttempt(3, 83, wrong(q[0]), right(q[1]), right(q[2]), right(q[3]), right(q[4]), right(q[5])),
	}

	res := Aggregate(testNow, nil, attempts, nil)

	if len(res.HardestQuestions) != 5 {
		t.Fatalf("len(HardestQuestions) = %d, want 5", len(res.HardestQuestions))
	}
	if res.HardestQuestions[0].QuestionID != q[0] || res.HardestQuestions[0].WrongCount != 3 {
		t.Errorf("hardest[0] = %+v, want q0 with 3 wrong", res.HardestQuestions[0])
	}
	if res.HardestQuestions[1].QuestionID != q[1] || res.HardestQuestions[1].WrongCount != 2 {
		t.Errorf("hardest[1] = %+v, want q1 with 2 wrong", res.HardestQuestions[1])
	}
	for i := 1; i < len(res.HardestQuestions); i++ {
		if res.HardestQuestions[i].WrongCount > res.HardestQuestions[i-1].WrongCount {
			t.Error("HardestQuestions not sorted by wrong count descending")
		}
	}
	for _, d := range res.HardestQuestions {
		if d.QuestionID == q[6] {
			t.Error("question with zero attempts must not appear")
		}
		if d.TotalAttempts == 0 {
			t.Error("TotalAttempts must never be zero")
		}
	}
	// q0: 3 wrong of 3 attempts.
	if res.HardestQuestions[0].DifficultyIndex != 100 {
		t.Errorf("difficulty index = %d, want 100", res.HardestQuestions[0].DifficultyIndex)
	}
}

func TestAggregate_UngradedAnswersExcludedFromDifficulty(t *testing.T) {
	qID := uuid.New()
	attempts := []model.Attempt{
		postAttempt(1, 0, model.AnswerRecord{QuestionID: qID, Graded: false}),
	}

	res := Aggregate(testNow, nil, attempts, nil)

	if len(res.HardestQuestions) != 0 {
		t.Errorf("HardestQuestions = %+v, want empty (text answers are not graded)", res.HardestQuestions)
	}
}

func TestAggregate_EnrollmentTrend(t *testing.T) {
	enrollments := []model.Enrollment{
		enrollment(1, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)),
		enrollment(2, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)),
		enrollment(3, time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)),
		// Outside the trailing 6-month window.
		enrollment(4, time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)),
	}

	res := Aggregate(testNow, enrollments, nil, nil)

	if len(res.EnrollmentTrend) != 6 {
		t.Fatalf("len(EnrollmentTrend) = %d, want 6", len(res.EnrollmentTrend))
	}
	wantMonths := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	wantCounts := []int{0, 0, 0, 1, 0, 2}
	for i := range wantMonths {
		if res.EnrollmentTrend[i].Month != wantMonths[i] {
			t.Errorf("trend[%d].Month = %q, want %q", i, res.EnrollmentTrend[i].Month, wantMonths[i])
		}
		if res.EnrollmentTrend[i].Students != wantCounts[i] {
			t.Errorf("trend[%d].Students = %d, want %d", i, res.EnrollmentTrend[i].Students, wantCounts[i])
		}
	}
}

func TestAggregate_CompletionRateAndRecentStudents(t *testing.T) {
	first := enrollment(1, testNow.AddDate(0, 0, -10))
	second := enrollment(2, testNow.AddDate(0, 0, -1))
	second.Status = model.EnrollmentStatusCompleted
	third := enrollment(3, testNow.AddDate(0, 0, -5))

	attempts := []model.Attempt{
		postAttempt(2, 90),
		postAttempt(2, 95),
		preAttempt(2, 40),
	}

	res := Aggregate(testNow, []model.Enrollment{first, second, third}, attempts, nil)

	if res.TotalStudents != 3 {
		t.Errorf("TotalStudents = %d, want 3", res.TotalStudents)
	}
	if res.CompletionRate != 33 {
		t.Errorf("CompletionRate = %d, want 33", res.CompletionRate)
	}

	if len(res.RecentStudents) != 3 {
		t.Fatalf("len(RecentStudents) = %d, want 3", len(res.RecentStudents))
	}
	// Sorted by enrollment time descending.
	if res.RecentStudents[0].LearnerID != 2 || res.RecentStudents[1].LearnerID != 3 || res.RecentStudents[2].LearnerID != 1 {
		t.Errorf("RecentStudents order = %d,%d,%d, want 2,3,1",
			res.RecentStudents[0].LearnerID, res.RecentStudents[1].LearnerID, res.RecentStudents[2].LearnerID)
	}
	// Attempts counts post-test attempts only.
	if res.RecentStudents[0].Attempts != 2 {
		t.Errorf("learner 2 attempts = %d, want 2", res.RecentStudents[0].Attempts)
	}
	if res.RecentStudents[2].Attempts != 0 {
		t.Errorf("learner 1 attempts = %d, want 0", res.RecentStudents[2].Attempts)
	}
}

func TestAggregate_Reviews(t *testing.T) {
	reviews := []model.Review{
		{Rating: 5},
		{Rating: 4},
		{Rating: 4},
	}

	res := Aggregate(testNow, nil, nil, reviews)

	if res.ReviewCount != 3 {
		t.Errorf("ReviewCount = %d, want 3", res.ReviewCount)
	}
	if res.AverageRating != 4.3 {
		t.Errorf("AverageRating = %v, want 4.3", res.AverageRating)
	}
}

func TestAggregate_EmptyCollectionsNeverNil(t *testing.T) {
	res := Aggregate(testNow, nil, nil, nil)

	if res.TotalStudents != 0 || res.CompletionRate != 0 || res.AvgPostTestScore != 0 {
		t.Errorf("counters not zero: %+v", res)
	}
	if res.ScoreDistribution == nil || len(res.ScoreDistribution) != 5 {
		t.Error("ScoreDistribution must be 5 zero buckets")
	}
	for _, b := range res.ScoreDistribution {
		if b.PreTest != 0 || b.PostTest != 0 {
			t.Errorf("bucket %q not zero", b.Range)
		}
	}
	if res.RecentStudents == nil || len(res.RecentStudents) != 0 {
		t.Error("RecentStudents must be an empty slice")
	}
	if res.HardestQuestions == nil || len(res.HardestQuestions) != 0 {
		t.Error("HardestQuestions must be an empty slice")
	}
	if res.EnrollmentTrend == nil || len(res.EnrollmentTrend) != 6 {
		t.Error("EnrollmentTrend must be 6 zero months")
	}
}

func TestEmpty_MatchesAggregateShape(t *testing.T) {
	e := Empty(testNow)
	a := Aggregate(testNow, nil, nil, nil)

	if len(e.ScoreDistribution) != len(a.ScoreDistribution) ||
		len(e.EnrollmentTrend) != len(a.EnrollmentTrend) {
		t.Error("Empty and zero-data Aggregate must produce identical shapes")
	}
	for i := range e.EnrollmentTrend {
		if e.EnrollmentTrend[i].Month != a.EnrollmentTrend[i].Month {
			t.Errorf("trend month mismatch at %d: %q vs %q", i, e.EnrollmentTrend[i].Month, a.EnrollmentTrend[i].Month)
		}
	}
}
