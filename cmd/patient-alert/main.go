package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/careconnect/go-patient-alerts/internal/api"
	"github.com/careconnect/go-patient-alerts/internal/channel"
	"github.com/careconnect/go-patient-alerts/internal/config"
	"github.com/careconnect/go-patient-alerts/internal/directory"
	"github.com/careconnect/go-patient-alerts/internal/escalation"
	"github.com/careconnect/go-patient-alerts/internal/logging"
	"github.com/careconnect/go-patient-alerts/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	store, err := repository.NewSQLiteStore(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	dir := directory.New(directory.DemoProviders())

	hub := channel.NewHub()
	registry := channel.NewRegistry(
		channel.NewDashboardSender(hub),
		channel.NewSMSSender(cfg.Channels.SMSGatewayURL, cfg.Dispatch.SendTimeout),
		channel.NewPagerSender(cfg.Channels.PagerGatewayURL, cfg.Dispatch.SendTimeout),
		channel.NewEmailSender(cfg.Channels.EmailGatewayURL, cfg.Dispatch.SendTimeout),
	)

	resolver := escalation.NewResolver(dir, cfg.Escalation.PrimaryNurse, cfg.Escalation.PrimaryPhysician)
	dispatcher := escalation.NewDispatcher(registry, cfg.Dispatch.SendTimeout)
	svc := escalation.NewService(store, dir, resolver, dispatcher, cfg.Dispatch.MaxWorkers)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst))
	router.Use(api.RequestIDMiddleware())

	handler := api.NewHandler(svc, hub)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	hub.Close() // Drop all dashboard feeds gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
