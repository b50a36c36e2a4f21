package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lumeno/lumeno-backend/internal/analytics"
)

// The dashboard handler serializes whatever CourseAnalytics hands back
// without a nil check, so the service must return the report by value and
// the degraded report must be fully shaped.
func TestCourseAnalyticsReturnsShapedValue(t *testing.T) {
	svc := NewAnalyticsService(nil, nil, nil, zerolog.Nop())

	var fn func(context.Context, uuid.UUID) analytics.CourseAnalytics = svc.CourseAnalytics
	if fn == nil {
		t.Fatal("CourseAnalytics method value is nil")
	}

	report := analytics.Empty(time.Now())
	if len(report.ScoreDistribution) != 5 {
		t.Errorf("ScoreDistribution has %d buckets, want 5", len(report.ScoreDistribution))
	}
	if len(report.EnrollmentTrend) != 6 {
		t.Errorf("EnrollmentTrend has %d months, want 6", len(report.EnrollmentTrend))
	}
	if report.HardestQuestions == nil {
		t.Error("HardestQuestions is nil, want empty slice")
	}
	if report.RecentStudents == nil {
		t.Error("RecentStudents is nil, want empty slice")
	}
}
