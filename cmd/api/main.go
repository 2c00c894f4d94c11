package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application/analyzer"
	appuploads "github.com/mattdimens/vehicle-analyzer-sub000/internal/application/uploads"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/config"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/analysis"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/vision"
	geminiEngine "github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/ai/gemini"
	openaiEngine "github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/ai/openai"
	mysqlp "github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/db/mysql"
	postgresp "github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/db/postgres"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/fetch"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/httpserver"
	minioStore "github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/storage"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	// connect database
	var db *sql.DB
	var repo analysis.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewAnalysisRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewAnalysisRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
		cfg.Minio.PublicBaseURL,
		time.Duration(cfg.Minio.UploadExpiry)*time.Minute,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init vision engine
	var engine vision.Engine
	switch cfg.AI.Provider {
	case "openai":
		engine = openaiEngine.NewClient(cfg.AI.APIKey)
	default:
		g, err := geminiEngine.New(ctx, cfg.AI.APIKey)
		if err != nil {
			log.Fatalf("gemini init error: %v", err)
		}
		defer g.Close()
		engine = g
	}

	// init services
	analyzerSvc := &analyzer.Service{
		Engine:       engine,
		Fetcher:      fetch.New(30 * time.Second),
		Repo:         repo,
		Clock:        application.SystemClock{},
		ScoutModel:   cfg.AI.ScoutModel,
		SniperModel:  cfg.AI.SniperModel,
		Threshold:    cfg.AI.ConfidenceThreshold,
		InferTimeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}
	uploadsSvc := appuploads.NewService(store)

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(30, 1))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage":  middleware.CheckerFunc(store.Check),
	}))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(analyzerSvc, uploadsSvc, repo))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // analyze requests wait on two model passes
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.Server.AllowedOrigins) > 0 {
		return cfg.Server.AllowedOrigins
	}
	return []string{"*"}
}
