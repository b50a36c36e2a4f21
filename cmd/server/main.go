package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumeno/lumeno-backend/internal/config"
	"github.com/lumeno/lumeno-backend/internal/database"
	"github.com/lumeno/lumeno-backend/internal/handler"
	"github.com/lumeno/lumeno-backend/internal/logger"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/lumeno/lumeno-backend/internal/router"
	"github.com/lumeno/lumeno-backend/internal/service"
	"github.com/lumeno/lumeno-backend/internal/validator"
	"github.com/lumeno/lumeno-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Lumeno Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories
	learnerRepo := repository.NewLearnerRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	// Services
	authService := service.NewAuthService(cfg, rdb)
	learnerService := service.NewLearnerService(learnerRepo, authService)
	adminUserService := service.NewAdminUserService(adminRepo, authService)
	adminRoleService := service.NewAdminRoleService(roleRepo)
	examService := service.NewExamService(examRepo, questionRepo, courseRepo, rdb, log)
	courseService := service.NewCourseService(courseRepo, lessonRepo, examRepo, examService, log)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, lessonRepo, rdb, log)
	attemptService := service.NewAttemptService(attemptRepo, sessionRepo, enrollmentRepo, examService, rdb, log)
	reviewService := service.NewReviewService(reviewRepo, enrollmentRepo, log)
	analyticsService := service.NewAnalyticsService(enrollmentRepo, attemptRepo, reviewRepo, log)
	mediaService := service.NewMediaService(cfg)

	// Handlers
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService, learnerService, adminUserService, adminRoleService),
		Classroom:   handler.NewClassroomHandler(courseService, examService, enrollmentService, attemptService, reviewService),
		Course:      handler.NewCourseHandler(courseService, cfg),
		Exam:        handler.NewExamHandler(examService, courseService),
		Analytics:   handler.NewAnalyticsHandler(analyticsService, enrollmentService),
		Media:       handler.NewMediaHandler(mediaService),
		LearnerMgmt: handler.NewLearnerManagementHandler(learnerService, authService),
		AdminUser:   handler.NewAdminUserHandler(adminUserService),
		AdminRole:   handler.NewAdminRoleHandler(adminRoleService),
	}

	// Background workers: assessment summaries and progress recomputes are
	// queued in Redis and written back in batches.
	workerCtx, workerCancel := context.WithCancel(context.Background())

	summaryWorker := worker.NewSummaryWorker(attemptRepo, enrollmentRepo, rdb, log)
	progressWorker := worker.NewProgressWorker(enrollmentRepo, lessonRepo, rdb, log)

	go summaryWorker.Start(workerCtx)
	go progressWorker.Start(workerCtx)

	// Load every published course's exam papers and grading keys into Redis
	// BEFORE accepting traffic. This avoids race conditions from lazy
	// loading under thundering herd.
	if err := examService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
