package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"civicreport/analysis"
	"civicreport/blockchain"
	"civicreport/config"
	"civicreport/database"
	"civicreport/handlers"
	"civicreport/jobs"
	"civicreport/queue"
	"civicreport/service"
	ws "civicreport/websocket"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables")
	}

	cfg := config.Load()

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.InitializeSchema(db.DB()); err != nil {
		log.WithError(err).Fatal("failed to initialize schema")
	}

	hub := ws.NewHub()
	go hub.Run()

	var publisher queue.Publisher
	if cfg.AMQPURL != "" {
		p, err := queue.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to message broker")
		}
		defer p.Close()
		publisher = p
		log.Info("analysis queue publishing enabled")
	}

	var classifier analysis.Classifier
	if cfg.OpenAIKey != "" {
		classifier = analysis.NewOpenAIClassifier(cfg.OpenAIKey, cfg.OpenAIModel)
		log.WithField("model", cfg.OpenAIModel).Info("report classification enabled")
	}

	reportService := service.NewReportService(db, hub, publisher, classifier, cfg.AnalysisQueue)
	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenExpiry)
	analyticsService := service.NewAnalyticsService(db)
	anchor := blockchain.NewKeccakAnchor()

	sweeper := jobs.NewSLASweeper(db)
	if err := sweeper.Start(cfg.SLASweepSpec); err != nil {
		log.WithError(err).Fatal("failed to schedule sla sweep")
	}

	h := handlers.New(reportService, authService, analyticsService, anchor, hub, db)
	router := handlers.SetupRouter(h, authService, cfg.TrustedProxies)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("starting civic report service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}

	sweeper.Stop()
	hub.Stop()

	log.Info("stopped")
}
