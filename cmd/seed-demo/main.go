package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lumeno/lumeno-backend/internal/config"
	"github.com/lumeno/lumeno-backend/internal/database"
	"github.com/lumeno/lumeno-backend/internal/logger"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/repository"
	"github.com/lumeno/lumeno-backend/internal/service"
)

// Seeds a publishable demo course with lessons, both assessments and a batch
// of learner accounts. Idempotent on the course slug and learner emails.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
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

	learnerRepo := repository.NewLearnerRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)

	authService := service.NewAuthService(cfg, rdb)
	learnerService := service.NewLearnerService(learnerRepo, authService)
	examService := service.NewExamService(examRepo, questionRepo, courseRepo, rdb, log)
	courseService := service.NewCourseService(courseRepo, lessonRepo, examRepo, examService, log)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, lessonRepo, rdb, log)
	attemptService := service.NewAttemptService(attemptRepo, sessionRepo, enrollmentRepo, examService, rdb, log)

	fmt.Println("=== Seeding Demo Data ===")

	const slug = "go-for-beginners"

	course, err := courseRepo.GetBySlug(ctx, slug)
	switch {
	case err == nil:
		fmt.Printf("Found existing course %q (%s)\n", course.Title, course.ID)
	case err == pgx.ErrNoRows:
		course = &model.Course{
			Title:        "Go for Beginners",
			Slug:         slug,
			Description:  "An introduction to the Go programming language.",
			AuthorID:     1,
			PassingScore: cfg.DefaultPassingScore,
		}
		if err := courseService.Create(ctx, course); err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo course")
		}
		fmt.Printf("Created course %q (%s)\n", course.Title, course.ID)

		lessons := []*model.Lesson{
			{CourseID: course.ID, Title: "Why Go", LessonType: model.LessonTypeArticle, Body: "Go is a compiled, statically typed language built for simple, reliable software.", OrderNum: 1},
			{CourseID: course.ID, Title: "Installing the Toolchain", LessonType: model.LessonTypeVideo, VideoURL: "https://videos.example.com/go-install.mp4", OrderNum: 2},
			{CourseID: course.ID, Title: "Your First Program", LessonType: model.LessonTypeArticle, Body: "package main; func main() { println(\"hello\") }", OrderNum: 3},
		}
		for _, l := range lessons {
			if err := courseService.AddLesson(ctx, 0, l); err != nil {
				log.Fatal().Err(err).Str("lesson", l.Title).Msg("Failed to create lesson")
			}
		}
		fmt.Printf("Created %d lessons\n", len(lessons))

		for _, examType := range []model.ExamType{model.ExamTypePreTest, model.ExamTypePostTest} {
			exam := &model.Exam{
				CourseID:        course.ID,
				ExamType:        examType,
				Title:           fmt.Sprintf("Go for Beginners (%s)", examType),
				DurationMinutes: 15,
			}
			if err := examService.Create(ctx, exam); err != nil {
				log.Fatal().Err(err).Str("exam_type", string(examType)).Msg("Failed to create exam")
			}

			questions := []model.Question{
				{
					ExamID:       exam.ID,
					Prompt:       "Which keyword declares a new variable with inferred type?",
					QuestionType: model.QuestionTypeSingle,
					Choices: []model.Choice{
						{ID: "a", Text: "var", Correct: false},
						{ID: "b", Text: ":=", Correct: true},
						{ID: "c", Text: "let", Correct: false},
					},
					OrderNum: 1,
				},
				{
					ExamID:       exam.ID,
					Prompt:       "Which of these are built-in Go types?",
					QuestionType: model.QuestionTypeMultiple,
					Choices: []model.Choice{
						{ID: "a", Text: "string", Correct: true},
						{ID: "b", Text: "rune", Correct: true},
						{ID: "c", Text: "decimal", Correct: false},
					},
					OrderNum: 2,
				},
				{
					ExamID:          exam.ID,
					Prompt:          "Explain what a goroutine is in your own words.",
					QuestionType:    model.QuestionTypeText,
					ReferenceAnswer: "A lightweight thread of execution managed by the Go runtime.",
					OrderNum:        3,
				},
			}
			if err := examService.ReplaceQuestions(ctx, exam.ID, questions); err != nil {
				log.Fatal().Err(err).Str("exam_type", string(examType)).Msg("Failed to seed questions")
			}
			fmt.Printf("Created %s with %d questions\n", examType, len(questions))
		}

		if err := courseService.Publish(ctx, course.ID, 0); err != nil {
			log.Fatal().Err(err).Msg("Failed to publish demo course")
		}
		fmt.Println("Published demo course")
	default:
		log.Fatal().Err(err).Msg("Failed to check existing course")
	}

	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
	}

	created := 0
	for i, name := range names {
		email := fmt.Sprintf("learner%02d@lumeno.test", i+1)
		if _, err := learnerRepo.GetByEmail(ctx, email); err == nil {
			continue
		}
		learner := &model.Learner{Email: email, Name: name}
		if err := learnerService.Create(ctx, learner, "password123"); err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to create learner")
		}
		created++
	}
	fmt.Printf("Created %d learners (%d already existed)\n", created, len(names)-created)

	// Enroll the first few learners and push them through the pre-test so the
	// analytics dashboard has data out of the box.
	preExam, err := examRepo.GetByCourseAndType(ctx, course.ID, model.ExamTypePreTest)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load pre-test")
	}

	attempts := 0
	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("learner%02d@lumeno.test", i+1)
		learner, err := learnerRepo.GetByEmail(ctx, email)
		if err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to load learner")
		}

		if _, err := enrollmentService.Enroll(ctx, learner.ID, course.ID); err != nil && err != service.ErrAlreadyEnrolled {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to enroll learner")
		}

		if _, err := attemptService.StartExam(ctx, learner.ID, preExam.ID); err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to start exam")
		}

		paper, err := attemptService.GetPaper(ctx, learner.ID, preExam.ID)
		if err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to fetch paper")
		}

		// Odd-numbered learners answer everything, even-numbered ones skip the
		// choice questions, giving the dashboard a score spread.
		answers := make([]model.SubmittedAnswer, 0, len(paper.Questions))
		for _, q := range paper.Questions {
			answer := model.SubmittedAnswer{QuestionID: q.ID}
			if i%2 == 0 {
				switch q.QuestionType {
				case model.QuestionTypeSingle:
					answer.ChoiceIDs = []string{"b"}
				case model.QuestionTypeMultiple:
					answer.ChoiceIDs = []string{"a", "b"}
				case model.QuestionTypeText:
					answer.Text = "A goroutine is a lightweight thread."
				}
			}
			answers = append(answers, answer)
		}

		if _, err := attemptService.Submit(ctx, learner.ID, preExam.ID, answers); err != nil && err != service.ErrAlreadySubmitted {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to submit attempt")
		}
		attempts++
	}
	fmt.Printf("Recorded %d pre-test attempts\n", attempts)

	fmt.Println("Done.")
}
