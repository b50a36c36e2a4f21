// Package analytics derives per-course statistics from read snapshots of
// enrollments, attempts, and reviews. The aggregation is stateless: every
// call recomputes everything from the rows it is handed, in a single pass
// per collection.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/model"
)

const (
	// bucketCount is the number of fixed score-distribution buckets.
	bucketCount = 5

	// bucketDivisor maps a percentage to its bucket as
	// min(floor(p/bucketDivisor), 4). The historical 20.01 divisor keeps
	// exactly 100% inside the last bucket (100/20.01 < 5) and exactly 20%
	// inside the first (20/20.01 < 1). Do not "fix" it to 20.
	bucketDivisor = 20.01

	// trendMonths is the number of trailing calendar months in the
	// enrollment trend.
	trendMonths = 6

	// hardestLimit caps the hardest-questions ranking.
	hardestLimit = 5
)

var bucketLabels = [bucketCount]string{"0-20%", "21-40%", "41-60%", "61-80%", "81-100%"}

// ScoreBucket is one row of the pre/post score distribution.
type ScoreBucket struct {
	Range    string `json:"range"`
	PreTest  int    `json:"pre_test"`
	PostTest int    `json:"post_test"`
}

// QuestionDifficulty ranks a question by how often it was answered wrong
// across post-test attempts.
type QuestionDifficulty struct {
	QuestionID    uuid.UUID `json:"question_id"`
	WrongCount    int       `json:"wrong_count"`
	TotalAttempts int       `json:"total_attempts"`
	// DifficultyIndex is the percentage of attempts that missed the question.
	DifficultyIndex int `json:"difficulty_index"`
}

// StudentSummary is the per-enrollment row shown in the course analytics table.
type StudentSummary struct {
	LearnerID       int       `json:"learner_id"`
	LearnerName     string    `json:"learner_name"`
	EnrolledAt      time.Time `json:"enrolled_at"`
	ProgressPercent int       `json:"progress_percent"`
	PreTestScore    *int      `json:"pre_test_score,omitempty"`
	PreTestPassed   *bool     `json:"pre_test_passed,omitempty"`
	PostTestScore   *int      `json:"post_test_score,omitempty"`
	PostTestPassed  *bool     `json:"post_test_passed,omitempty"`
	// Attempts counts the learner's post-test attempts for this course.
	Attempts int `json:"attempts"`
}

// MonthBucket is one calendar month of the enrollment trend.
type MonthBucket struct {
	Month    string `json:"month"`
	Students int    `json:"students"`
}

// CourseAnalytics is the full derived view for one course. Every field is
// always populated: slices are never nil even when the course has no data,
// so callers can render an empty state without null checks.
type CourseAnalytics struct {
	TotalStudents     int                  `json:"total_students"`
	CompletionRate    int                  `json:"completion_rate"`
	AvgPostTestScore  int                  `json:"avg_post_test_score"`
	ScoreDistribution []ScoreBucket        `json:"score_distribution"`
	HardestQuestions  []QuestionDifficulty `json:"hardest_questions"`
	RecentStudents    []StudentSummary     `json:"recent_students"`
	AverageRating     float64              `json:"average_rating"`
	ReviewCount       int                  `json:"review_count"`
	EnrollmentTrend   []MonthBucket        `json:"enrollment_trend"`
}

// Empty returns a fully-populated zero-valued result: five zero buckets and
// six zero month buckets ending at now. Used both as the aggregation seed
// and as the degraded response when any read fails.
func Empty(now time.Time) CourseAnalytics {
	dist := make([]ScoreBucket, bucketCount)
	for i := range dist {
		dist[i] = ScoreBucket{Range: bucketLabels[i]}
	}

	trend := make([]MonthBucket, trendMonths)
	base := firstOfMonth(now)
	for i := range trend {
		m := base.AddDate(0, i-(trendMonths-1), 0)
		trend[i] = MonthBucket{Month: m.Format("Jan")}
	}

	return CourseAnalytics{
		ScoreDistribution: dist,
		HardestQuestions:  []QuestionDifficulty{},
		RecentStudents:    []StudentSummary{},
		EnrollmentTrend:   trend,
	}
}

// Aggregate computes the full analytics view from snapshots of a course's
// enrollments, attempts, and reviews. now anchors the enrollment trend.
func Aggregate(now time.Time, enrollments []model.Enrollment, attempts []model.Attempt, reviews []model.Review) CourseAnalytics {
	res := Empty(now)

	// ─── Enrollments: totals, completion, trend, student summaries ─────
	res.TotalStudents = len(enrollments)

	completed := 0
	trendIndex := buildTrendIndex(now)
	postAttempts := make(map[int]int)
	for _, a := range attempts {
		if a.ExamType == model.ExamTypePostTest {
			postAttempts[a.LearnerID]++
		}
	}

	for _, e := range enrollments {
		if e.Status == model.EnrollmentStatusCompleted {
			completed++
		}

		if idx, ok := trendIndex[monthKey(e.EnrolledAt)]; ok {
			res.EnrollmentTrend[idx].Students++
		}

		res.RecentStudents = append(res.RecentStudents, StudentSummary{
			LearnerID:       e.LearnerID,
			LearnerName:     e.LearnerName,
			EnrolledAt:      e.EnrolledAt,
			ProgressPercent: e.ProgressPercent,
			PreTestScore:    e.PreTest.Score,
			PreTestPassed:   e.PreTest.Passed,
			PostTestScore:   e.PostTest.Score,
			PostTestPassed:  e.PostTest.Passed,
			Attempts:        postAttempts[e.LearnerID],
		})
	}

	if res.TotalStudents > 0 {
		res.CompletionRate = int(math.Round(float64(completed) / float64(res.TotalStudents) * 100))
	}

	sort.SliceStable(res.RecentStudents, func(i, j int) bool {
		return res.RecentStudents[i].EnrolledAt.After(res.RecentStudents[j].EnrolledAt)
	})

	// ─── Attempts: distribution, post-test average, hardest questions ──
	postSum, postCount := 0, 0
	difficulty := make(map[uuid.UUID]*QuestionDifficulty)
	var questionOrder []uuid.UUID

	for _, a := range attempts {
		bucket := scoreBucketIndex(a.Percentage)
		switch a.ExamType {
		case model.ExamTypePreTest:
			res.ScoreDistribution[bucket].PreTest++
		case model.ExamTypePostTest:
			res.ScoreDistribution[bucket].PostTest++
			postSum += a.Percentage
			postCount++

			for _, rec := range a.Answers {
				if !rec.Graded {
					continue
				}
				d := difficulty[rec.QuestionID]
				if d == nil {
					d = &QuestionDifficulty{QuestionID: rec.QuestionID}
					difficulty[rec.QuestionID] = d
					questionOrder = append(questionOrder, rec.QuestionID)
				}
				d.TotalAttempts++
				if !rec.Correct {
					d.WrongCount++
				}
			}
		}
	}

	if postCount > 0 {
		res.AvgPostTestScore = int(math.Round(float64(postSum) / float64(postCount)))
	}

	for _, id := range questionOrder {
		d := difficulty[id]
		d.DifficultyIndex = int(math.Round(float64(d.WrongCount) / float64(d.TotalAttempts) * 100))
		res.HardestQuestions = append(res.HardestQuestions, *d)
	}
	sort.SliceStable(res.HardestQuestions, func(i, j int) bool {
		return res.HardestQuestions[i].WrongCount > res.HardestQuestions[j].WrongCount
	})
	if len(res.HardestQuestions) > hardestLimit {
		res.HardestQuestions = res.HardestQuestions[:hardestLimit]
	}

	// ─── Reviews ───────────────────────────────────────────────────────
	res.ReviewCount = len(reviews)
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		res.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}

	return res
}

// scoreBucketIndex places a percentage into one of the five fixed buckets.
// The 20.01 divisor is load-bearing: 100/20.01 floors to 4, 20/20.01 to 0.
func scoreBucketIndex(percentage int) int {
	idx := int(math.Floor(float64(percentage) / bucketDivisor))
	if idx < 0 {
		idx = 0
	}
	if idx > bucketCount-1 {
		idx = bucketCount - 1
	}
	return idx
}

// monthKey collapses a timestamp to its calendar month.
func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// buildTrendIndex maps the trailing six calendar months to their bucket
// positions, oldest first.
func buildTrendIndex(now time.Time) map[int]int {
	idx := make(map[int]int, trendMonths)
	base := firstOfMonth(now)
	for i := 0; i < trendMonths; i++ {
		idx[monthKey(base.AddDate(0, i-(trendMonths-1), 0))] = i
	}
	return idx
}

// firstOfMonth anchors month arithmetic so AddDate never normalizes across
// a month boundary (e.g. Mar 30 minus one month is not Feb 30).
func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
