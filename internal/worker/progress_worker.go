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
	ProgressBatchSize    = 100
	ProgressBatchTimeout = 2 * time.Second
	ProgressPollTimeout  = 1 * time.Second
)

// ProgressWorker drains the progress recompute queue and rewrites enrollment
// progress in bulk. Progress is always recomputed from the completion rows,
// never incremented, so lost or duplicated queue messages cannot drift it.
type ProgressWorker struct {
	enrollmentRepo *repository.EnrollmentRepository
	lessonRepo     *repository.LessonRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewProgressWorker creates a new ProgressWorker.
func NewProgressWorker(
	enrollmentRepo *repository.EnrollmentRepository,
	lessonRepo *repository.LessonRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ProgressWorker {
	return &ProgressWorker{
		enrollmentRepo: enrollmentRepo,
		lessonRepo:     lessonRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "progress_worker").Logger(),
	}
}

type progressPayload struct {
	LearnerID int    `json:"learner_id"`
	CourseID  string `json:"course_id"`
}

// Start runs the worker loop until ctx is cancelled.
func (w *ProgressWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ProgressWorker started")

	batch := make([]*progressPayload, 0, ProgressBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ProgressBatchSize || time.Since(lastFlush) >= ProgressBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, ProgressPollTimeout, config.WorkerKey.ProgressRecomputeQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p progressPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *ProgressWorker) flushSafe(ctx context.Context, batch []*progressPayload) {
	if len(batch) == 0 {
		return
	}

	// Deduplicate: several completions in one batch need one recompute.
	type enrollmentKey struct {
		learnerID int
		courseID  string
	}
	seen := make(map[enrollmentKey]*progressPayload, len(batch))
	for _, p := range batch {
		seen[enrollmentKey{p.LearnerID, p.CourseID}] = p
	}

	patches := make([]repository.ProgressPatch, 0, len(seen))
	for _, p := range seen {
		patch, err := w.recompute(ctx, p)
		if err != nil {
			w.log.Warn().
				Err(err).
				Int("learner_id", p.LearnerID).
				Str("course_id", p.CourseID).
				Msg("Failed to recompute progress — requeueing")
			raw, _ := json.Marshal(p)
			w.rdb.RPush(ctx, config.WorkerKey.ProgressRecomputeQueue, raw)
			continue
		}
		patches = append(patches, *patch)
	}

	if err := w.enrollmentRepo.BulkUpdateProgress(ctx, patches); err != nil {
		w.log.Warn().Err(err).Msg("Bulk progress update failed — requeueing")
		for _, p := range seen {
			raw, _ := json.Marshal(p)
			w.rdb.RPush(ctx, config.WorkerKey.ProgressRecomputeQueue, raw)
		}
	}
}

func (w *ProgressWorker) recompute(ctx context.Context, p *progressPayload) (*repository.ProgressPatch, error) {
	courseID, err := uuid.Parse(p.CourseID)
	if err != nil {
		return nil, err
	}

	completed, err := w.enrollmentRepo.CountCompletedLessons(ctx, p.LearnerID, courseID)
	if err != nil {
		return nil, err
	}
	total, err := w.lessonRepo.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	percent := model.ComputeProgressPercent(completed, total)
	status := model.EnrollmentStatusActive
	if percent >= 100 {
		status = model.EnrollmentStatusCompleted
	}

	return &repository.ProgressPatch{
		LearnerID:       p.LearnerID,
		CourseID:        courseID,
		ProgressPercent: percent,
		CompletedCount:  completed,
		Status:          status,
	}, nil
}
