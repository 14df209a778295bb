package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agricensus/internal/cache"
	"agricensus/internal/config"
	"agricensus/internal/repository"
	"agricensus/internal/service"
	"agricensus/internal/transport/rest"
	"agricensus/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	questionnaireRepo := repository.NewQuestionnaireRepo(db)
	responseRepo := repository.NewResponseRepo(db)

	// Initialize caches
	interviewCache := cache.NewInterviewCache(rdb)
	questionnaireCache := cache.NewQuestionnaireCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	questionnaireSvc := service.NewQuestionnaireService(questionnaireRepo)
	interviewSvc := service.NewInterviewService(questionnaireRepo, responseRepo, interviewCache, questionnaireCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	interviewSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:          authSvc,
		QuestionnaireService: questionnaireSvc,
		InterviewService:     interviewSvc,
		WSHub:                wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/auth/enumerator-token")
		log.Println("  POST/GET /v1/questionnaires")
		log.Println("  GET  /v1/questionnaires/{id}/versions/{version}/validation")
		log.Println("  POST /v1/questionnaires/{id}/publish")
		log.Println("  PUT  /v1/questionnaires/{id}/questions/{code}/goto")
		log.Println("  POST /v1/interviews")
		log.Println("  POST /v1/interviews/{id}/answers")
		log.Println("  WS   /v1/ws/questionnaires/{id}/progress")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
