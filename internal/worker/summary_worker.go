package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lumeno/lumeno-backend/internal/config"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	SummaryBatchSize    = 50
	SummaryBatchTimeout = 2 * time.Second
	SummaryPollTimeout  = 1 * time.Second
)

// SummaryWorker drains the assessment summary queue and patches enrollment
// snapshots in bulk. The snapshot mirrors the latest attempt per exam; the
// attempt history itself is never touched.
type SummaryWorker struct {
	attemptRepo    *repository.AttemptRepository
	enrollmentRepo *repository.EnrollmentRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewSummaryWorker creates a new SummaryWorker.
func NewSummaryWorker(
	attemptRepo *repository.AttemptRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *SummaryWorker {
	return &SummaryWorker{
		attemptRepo:    attemptRepo,
		enrollmentRepo: enrollmentRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "summary_worker").Logger(),
	}
}

type summaryPayload struct {
	LearnerID int    `json:"learner_id"`
	CourseID  string `json:"course_id"`
	ExamID    string `json:"exam_id"`
	ExamType  string `json:"exam_type"`
}

// Start runs the worker loop until ctx is cancelled. Remaining batch items
// are flushed on shutdown.
func (w *SummaryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SummaryWorker started")

	batch := make([]*summaryPayload, 0, SummaryBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= SummaryBatchSize || time.Since(lastFlush) >= SummaryBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, SummaryPollTimeout, config.WorkerKey.AssessmentSummaryQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p summaryPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *SummaryWorker) flushSafe(ctx context.Context, batch []*summaryPayload) {
	if len(batch) == 0 {
		return
	}

	// Resolve each payload to the latest attempt, grouped by exam type for
	// the bulk update. Later payloads for the same enrollment win.
	patchesByType := map[model.ExamType][]repository.SummaryPatch{}
	for _, p := range batch {
		patch, examType, err := w.resolvePatch(ctx, p)
		if err != nil {
			w.log.Warn().
				Err(err).
				Int("learner_id", p.LearnerID).
				Str("exam_id", p.ExamID).
				Msg("Failed to resolve summary patch — requeueing")
			raw, _ := json.Marshal(p)
			w.rdb.RPush(ctx, config.WorkerKey.AssessmentSummaryQueue, raw)
			continue
		}
		patchesByType[examType] = append(patchesByType[examType], *patch)
	}

	for examType, patches := range patchesByType {
		if err := w.enrollmentRepo.BulkUpdateSummaries(ctx, examType, patches); err != nil {
			w.log.Warn().Err(err).Str("exam_type", string(examType)).Msg("Bulk summary update failed — requeueing")
			w.requeue(ctx, batch, examType)
		}
	}
}

func (w *SummaryWorker) resolvePatch(ctx context.Context, p *summaryPayload) (*repository.SummaryPatch, model.ExamType, error) {
	examID, err := uuid.Parse(p.ExamID)
	if err != nil {
		return nil, "", err
	}
	courseID, err := uuid.Parse(p.CourseID)
	if err != nil {
		return nil, "", err
	}

	attempt, err := w.attemptRepo.GetLatestByLearnerAndExam(ctx, p.LearnerID, examID)
	if err != nil {
		return nil, "", err
	}

	return &repository.SummaryPatch{
		LearnerID: p.LearnerID,
		CourseID:  courseID,
		ExamType:  attempt.ExamType,
		Score:     attempt.Percentage,
		Passed:    attempt.Passed,
	}, attempt.ExamType, nil
}

func (w *SummaryWorker) requeue(ctx context.Context, batch []*summaryPayload, examType model.ExamType) {
	for _, p := range batch {
		if p.ExamType != string(examType) {
			continue
		}
		raw, _ := json.Marshal(p)
		w.rdb.RPush(ctx, config.WorkerKey.AssessmentSummaryQueue, raw)
	}
}
