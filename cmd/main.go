package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"tree-service/internal/config"
	"tree-service/internal/database/minio"
	"tree-service/internal/database/postgres"
	"tree-service/internal/database/redis"
	"tree-service/internal/event"
	"tree-service/internal/handlers"
	"tree-service/internal/kobo"
	"tree-service/internal/repository"
	"tree-service/internal/services"
	"tree-service/internal/worker"

	"github.com/gofiber/fiber/v3"
	redislib "github.com/redis/go-redis/v9"
)

func setupLogging() (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	logDir := filepath.Join("/var", "log", "tree_service")
	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()
	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		// Block until the database comes up; everything downstream needs it.
		postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}
	defer db.Close()

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Printf("error connect to redis: %s", err)
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		log.Printf("error connect to minio: %s", err)
	}

	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Printf("error connect to rabbitmq: %s", err)
	}
	defer func() {
		if rabbitConn != nil {
			rabbitConn.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// repositories
	speciesRepo := repository.NewSpeciesRepository(db)
	treeRepo := repository.NewTreeRepository(db)
	monitoringRepo := repository.NewMonitoringRepository(db)
	ingestionRepo := repository.NewIngestionRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	var cache *redislib.Client
	if redisClient != nil {
		cache = redisClient.GetClient()
	}

	// services
	speciesService := services.NewSpeciesService(speciesRepo, cache)
	if err := speciesService.SeedDefaults(); err != nil {
		log.Printf("error seeding species defaults: %s", err)
	}
	estimator := services.NewCarbonEstimator(speciesService)
	ingestionService := services.NewIngestionService(ingestionRepo, treeRepo, estimator)
	qrService := services.NewQRService(minioClient, cfg.KoboCfg)
	treeService := services.NewTreeService(treeRepo, monitoringRepo, qrService)
	dashboardService := services.NewDashboardService(dashboardRepo, monitoringRepo, cache)

	var donationNotifier services.DonationNotifier
	var treePublisher worker.TreeEventPublisher
	if rabbitConn != nil {
		publisher := event.NewNotificationPublisher(rabbitConn)
		donationNotifier = publisher
		treePublisher = publisher
	}
	certificateService := services.NewCertificateService(minioClient)
	donationService := services.NewDonationService(donationRepo, treeRepo, donationNotifier, certificateService)

	// payment events consumer
	if rabbitConn != nil {
		paymentConsumer := event.NewPaymentConsumer(rabbitConn, event.NewDonationPaymentHandler(donationService))
		if err := paymentConsumer.Start(ctx); err != nil {
			log.Printf("error starting payment consumer: %s", err)
		}
	}

	// submission polling
	koboClient := kobo.NewClient(cfg.KoboCfg)
	lookback := time.Duration(cfg.WorkerCfg.LookbackHours) * time.Hour
	syncJobs := worker.NewSyncJobs(koboClient, ingestionService, treeService, treePublisher, cfg.KoboCfg, lookback)

	pool := worker.NewWorkingPool(cfg.WorkerCfg.NumWorkers, 32)
	var poolWg sync.WaitGroup
	poolWg.Add(1)
	go pool.Start(ctx, &poolWg)

	scheduler := worker.NewJobScheduler("kobo-sync", time.Duration(cfg.WorkerCfg.PollIntervalMinutes)*time.Minute, pool)
	scheduler.AddJob(syncJobs.SyncPlantings)
	scheduler.AddJob(syncJobs.SyncMonitoring)
	go scheduler.Run(ctx)

	// handlers
	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Tree service is healthy")
	})

	handlers.NewTreeHandler(treeService, ingestionService).RegisterRoutes(app)
	handlers.NewSpeciesHandler(speciesService).RegisterRoutes(app)
	handlers.NewDashboardHandler(dashboardService).RegisterRoutes(app)
	handlers.NewDonationHandler(donationService).RegisterRoutes(app)
	handlers.NewIngestionHandler(syncJobs, ingestionRepo).RegisterRoutes(app)

	go func() {
		log.Printf("Starting tree-service on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signaled. Stopping server.")
	if err := app.Shutdown(); err != nil {
		log.Printf("error shutting down server: %s", err)
	}
	poolWg.Wait()
	log.Println("Tree service stopped.")
}
