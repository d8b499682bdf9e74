package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iquiz-service/internal/config"
	"iquiz-service/internal/db"
	"iquiz-service/internal/event"
	"iquiz-service/internal/handlers"
	"iquiz-service/internal/mail"
	"iquiz-service/internal/middleware"
	"iquiz-service/internal/repository"
	"iquiz-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.New()
	config.ServiceConfig = cfg

	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db.InitMongo(cfg.MongoURI, cfg.MongoDatabase)
	defer db.DisconnectMongo()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repository.EnsureIndexes(ctx, db.Database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	publisher, err := event.NewEventPublisher(cfg.RabbitURI, cfg.EventExchange, cfg.EmailQueue)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	mailer := mail.NewEmailService(cfg.SMTP)
	consumer, err := event.NewEventConsumer(cfg.RabbitURI, cfg.EventExchange, cfg.EmailQueue, cfg.FEAddress, mailer)
	if err != nil {
		log.Fatalf("Failed to set up email worker: %v", err)
	}
	if err := consumer.Start(); err != nil {
		log.Fatalf("Failed to start email worker: %v", err)
	}
	defer consumer.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db.Database)
	courseRepo := repository.NewCourseRepository(db.Database)
	quizRepo := repository.NewQuizRepository(db.Database)
	questionRepo := repository.NewQuestionRepository(db.Database)
	responseRepo := repository.NewResponseRepository(db.Database)
	txn := db.NewTxnRunner(db.Client)

	// Services
	userService := service.NewUserService(userRepo, publisher)
	courseService := service.NewCourseService(userRepo, courseRepo, txn)
	quizService := service.NewQuizService(userRepo, courseRepo, quizRepo, questionRepo, responseRepo, publisher, txn)
	responseService := service.NewResponseService(userRepo, courseRepo, quizRepo, responseRepo)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	courseHandler := handlers.NewCourseHandler(courseService)
	quizHandler := handlers.NewQuizHandler(quizService)
	responseHandler := handlers.NewResponseHandler(responseService)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(handlers.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", handlers.MetricsHandler())

	api := r.Group("/api")
	{
		// Session and account lifecycle
		api.POST("/users", userHandler.Register)
		api.POST("/users/login", userHandler.Login)
		api.POST("/users/logout", userHandler.Logout)
		api.POST("/users/verify", userHandler.VerifyEmail)
		api.POST("/users/forgot-password", userHandler.ForgotPassword)
		api.POST("/users/reset-password", userHandler.ResetPassword)

		auth := api.Group("")
		auth.Use(middleware.RequireAuth())
		{
			auth.GET("/users/me", userHandler.Me)

			auth.POST("/courses", courseHandler.CreateCourse)
			auth.GET("/courses", courseHandler.ListMyCourses)
			auth.GET("/courses/:courseId", courseHandler.GetCourse)
			auth.POST("/courses/:courseId/enroll", courseHandler.Enroll)
			auth.POST("/courses/:courseId/drop", courseHandler.Drop)
			auth.POST("/courses/:courseId/archive", courseHandler.Archive)

			auth.POST("/quizzes", quizHandler.CreateQuiz)
			auth.GET("/quizzes/:status", quizHandler.ListMyQuizzes)
			auth.GET("/quiz/:quizId", quizHandler.GetQuiz)
			auth.GET("/quiz/:quizId/questions", quizHandler.GetQuizWithQuestions)
			auth.POST("/quiz/:quizId/release", quizHandler.ReleaseQuiz)
			auth.PATCH("/quiz/:quizId", quizHandler.BasicUpdateQuiz)
			auth.PUT("/quiz/:quizId", quizHandler.UpdateQuiz)
			auth.DELETE("/quiz/:quizId", quizHandler.DeleteQuiz)
			auth.POST("/quiz/:quizId/release-grades", quizHandler.ReleaseGrades)

			auth.POST("/quiz/:quizId/responses", responseHandler.StartResponse)
			auth.PUT("/quiz/:quizId/responses", responseHandler.SaveResponse)
			auth.POST("/quiz/:quizId/responses/submit", responseHandler.SubmitResponse)
			auth.GET("/quiz/:quizId/responses", responseHandler.ListResponses)
			auth.POST("/quiz/:quizId/responses/grade", responseHandler.GradeResponse)
			auth.GET("/quiz/:quizId/result", responseHandler.GetMyResult)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("iQuiz service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
