package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"parkingpal/internal/api"
	"parkingpal/internal/api/handler"
	"parkingpal/internal/api/middleware"
	"parkingpal/internal/config"
	"parkingpal/internal/repository/postgresql"
	"parkingpal/internal/scan"
	"parkingpal/internal/service"
)

func main() {
	// 1. Load configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Database connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database.")

	// 3. AWS SDK config and clients
	awsSDKCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Could not load AWS SDK config: %v", err)
	}
	log.Println("AWS SDK config loaded for region:", cfg.AWSRegion)

	rekognitionClient := rekognition.NewFromConfig(awsSDKCfg)
	sqsClient := sqs.NewFromConfig(awsSDKCfg)

	// 4. Repositories
	userRepo := postgresql.NewPgUserRepository(db)
	signRepo := postgresql.NewPgParkingSignRepository(db)
	historyRepo := postgresql.NewPgParkingHistoryRepository(db)

	// 5. WebSocket manager for the live scan feed
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket manager started.")

	// 6. Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	ocrService := service.NewOCRService(rekognitionClient)
	signService := service.NewSignService(ocrService, signRepo, historyRepo, webSocketManager)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 7. SQS scan-job consumer
	var wg sync.WaitGroup
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())

	if cfg.SQSScanQueueURL == "" {
		log.Println("WARNING: SQS_SCAN_QUEUE_URL is not configured. The scan-job consumer will not run.")
	} else {
		sqsConsumer := scan.NewSQSConsumer(sqsClient, cfg, signService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sqsConsumer.Start(consumerCtx)
			log.Println("SQS Consumer stopped.")
		}()
	}

	// 8. HTTP server
	router := api.SetupRouter(authService, signService, authMiddleware, webSocketManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancelConsumer()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shut down: %v", err)
	}

	if cfg.SQSScanQueueURL != "" {
		log.Println("Waiting for SQS consumer to stop (up to 5 seconds)...")
		c := make(chan struct{})
		go func() {
			defer close(c)
			wg.Wait()
		}()
		select {
		case <-c:
			log.Println("SQS consumer stopped cleanly.")
		case <-time.After(5 * time.Second):
			log.Println("SQS consumer did not stop within the grace period.")
		}
	}

	log.Println("Server stopped.")
}
