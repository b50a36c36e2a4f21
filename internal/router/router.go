package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lumeno/lumeno-backend/internal/config"
	"github.com/lumeno/lumeno-backend/internal/handler"
	"github.com/lumeno/lumeno-backend/internal/middleware"
	"github.com/lumeno/lumeno-backend/internal/model"
	"github.com/lumeno/lumeno-backend/internal/response"
	"github.com/lumeno/lumeno-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Classroom   *handler.ClassroomHandler
	Course      *handler.CourseHandler
	Exam        *handler.ExamHandler
	Analytics   *handler.AnalyticsHandler
	Media       *handler.MediaHandler
	LearnerMgmt *handler.LearnerManagementHandler
	AdminUser   *handler.AdminUserHandler
	AdminRole   *handler.AdminRoleHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list; otherwise
	// allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Auth group: public, rate limited.
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.LearnerRegister)
		auth.POST("/login", handlers.Auth.LearnerLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireLearnerJWT(authService), handlers.Auth.LearnerLogout)
		auth.GET("/me", middleware.RequireLearnerJWT(authService), handlers.Auth.LearnerMe)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.AdminMe)
	}

	// Learner group: JWT + single active session.
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(
		middleware.RequireLearnerJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		learnerAPI.GET("/catalog", handlers.Classroom.Catalog)
		learnerAPI.GET("/catalog/:slug", handlers.Classroom.CourseDetail)

		learnerAPI.GET("/courses", handlers.Classroom.MyCourses)
		learnerAPI.POST("/courses/:course_id/enroll", handlers.Classroom.Enroll)
		learnerAPI.POST("/courses/:course_id/lessons/:lesson_id/complete", handlers.Classroom.CompleteLesson)
		learnerAPI.GET("/courses/:course_id/attempts", handlers.Classroom.MyAttempts)
		learnerAPI.GET("/courses/:course_id/reviews", handlers.Classroom.ListReviews)
		learnerAPI.POST("/courses/:course_id/reviews", handlers.Classroom.CreateReview)

		learnerAPI.POST("/exams/:exam_id/start", handlers.Classroom.StartExam)
		learnerAPI.GET("/exams/:exam_id/paper", handlers.Classroom.GetExamPaper)
		learnerAPI.GET("/exams/:exam_id/session", handlers.Classroom.GetSessionState)
		learnerAPI.POST("/exams/:exam_id/submit", handlers.Classroom.SubmitExam)
	}

	// Admin group: JWT + RBAC.
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Media upload
		adminAPI.POST("/media/upload",
			middleware.RequirePermission(string(model.PermissionMediaUpload)),
			handlers.Media.UploadMedia,
		)

		// Course authoring
		adminAPI.GET("/courses",
			middleware.RequirePermission(string(model.PermissionCoursesRead)),
			handlers.Course.ListCourses,
		)
		adminAPI.POST("/courses",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Course.CreateCourse,
		)
		adminAPI.GET("/courses/:course_id",
			middleware.RequirePermission(string(model.PermissionCoursesRead)),
			handlers.Course.GetCourse,
		)
		adminAPI.PUT("/courses/:course_id",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Course.UpdateCourse,
		)
		adminAPI.DELETE("/courses/:course_id",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Course.DeleteCourse,
		)
		adminAPI.POST("/courses/:course_id/publish",
			middleware.RequirePermission(string(model.PermissionCoursesPublish)),
			handlers.Course.PublishCourse,
		)
		adminAPI.POST("/courses/:course_id/archive",
			middleware.RequirePermission(string(model.PermissionCoursesPublish)),
			handlers.Course.ArchiveCourse,
		)

		// Lessons
		adminAPI.POST("/courses/:course_id/lessons",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Course.AddLesson,
		)
		adminAPI.PUT("/courses/:course_id/lessons/order",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Course.ReorderLessons,
		)
		adminAPI.PUT("/lessons/:lesson_id",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Course.UpdateLesson,
		)
		adminAPI.DELETE("/lessons/:lesson_id",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Course.DeleteLesson,
		)

		// Exams and questions
		adminAPI.GET("/courses/:course_id/exams",
			middleware.RequirePermission(string(model.PermissionCoursesRead)),
			handlers.Exam.ListExams,
		)
		adminAPI.POST("/courses/:course_id/exams",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Exam.CreateExam,
		)
		adminAPI.PUT("/exams/:exam_id",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Exam.UpdateExam,
		)
		adminAPI.DELETE("/exams/:exam_id",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Exam.DeleteExam,
		)
		adminAPI.GET("/exams/:exam_id/questions",
			middleware.RequirePermission(string(model.PermissionCoursesRead)),
			handlers.Exam.ListQuestions,
		)
		adminAPI.POST("/exams/:exam_id/questions",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Exam.AddQuestion,
		)
		adminAPI.PUT("/exams/:exam_id/questions",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Exam.ReplaceQuestions,
		)
		adminAPI.DELETE("/exams/:exam_id/questions/:question_id",
			middleware.RequirePermission(string(model.PermissionCoursesWrite)),
			handlers.Exam.DeleteQuestion,
		)

		// Analytics
		adminAPI.GET("/courses/:course_id/analytics",
			middleware.RequirePermission(string(model.PermissionAnalyticsRead)),
			handlers.Analytics.CourseAnalytics,
		)
		adminAPI.GET("/courses/:course_id/students",
			middleware.RequirePermission(string(model.PermissionAnalyticsRead)),
			handlers.Analytics.CourseRoster,
		)

		// Learner management
		adminAPI.GET("/learners",
			middleware.RequirePermission(string(model.PermissionLearnersRead)),
			handlers.LearnerMgmt.ListLearners,
		)
		adminAPI.POST("/learners",
			middleware.RequirePermission(string(model.PermissionLearnersWrite)),
			handlers.LearnerMgmt.CreateLearner,
		)
		adminAPI.GET("/learners/:learner_id",
			middleware.RequirePermission(string(model.PermissionLearnersRead)),
			handlers.LearnerMgmt.GetLearner,
		)
		adminAPI.PUT("/learners/:learner_id",
			middleware.RequirePermission(string(model.PermissionLearnersWrite)),
			handlers.LearnerMgmt.UpdateLearner,
		)
		adminAPI.DELETE("/learners/:learner_id",
			middleware.RequirePermission(string(model.PermissionLearnersWrite)),
			handlers.LearnerMgmt.DeleteLearner,
		)
		adminAPI.POST("/learners/:learner_id/reset-session",
			middleware.RequirePermission(string(model.PermissionLearnersResetSession)),
			handlers.LearnerMgmt.ResetLearnerSession,
		)

		// Admin user management
		adminAPI.GET("/users",
			middleware.RequirePermission(string(model.PermissionAdminsRead)),
			handlers.AdminUser.ListAdmins,
		)
		adminAPI.POST("/users",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.CreateAdmin,
		)
		adminAPI.GET("/users/:admin_id",
			middleware.RequirePermission(string(model.PermissionAdminsRead)),
			handlers.AdminUser.GetAdmin,
		)
		adminAPI.PUT("/users/:admin_id",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.UpdateAdmin,
		)
		adminAPI.DELETE("/users/:admin_id",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.DeleteAdmin,
		)

		// Role management
		adminAPI.GET("/roles",
			middleware.RequirePermission(string(model.PermissionRolesRead)),
			handlers.AdminRole.ListRoles,
		)
		adminAPI.POST("/roles",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.CreateRole,
		)
		adminAPI.GET("/roles/:role_id",
			middleware.RequirePermission(string(model.PermissionRolesRead)),
			handlers.AdminRole.GetRole,
		)
		adminAPI.PUT("/roles/:role_id",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.UpdateRole,
		)
		adminAPI.DELETE("/roles/:role_id",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.DeleteRole,
		)
		adminAPI.GET("/permissions",
			middleware.RequirePermission(string(model.PermissionRolesRead)),
			handlers.AdminRole.ListPermissions,
		)
	}

	return router
}
