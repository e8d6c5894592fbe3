package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/app/background"
	"github.com/LavaJover/shvark-commission-service/internal/app/setup"
	"github.com/LavaJover/shvark-commission-service/internal/config"
	"github.com/LavaJover/shvark-commission-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-commission-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	// Reading config
	cfg := config.MustLoad()
	log := logger.MustNew(cfg.LogConfig)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to init dependencies", zap.Error(err))
	}
	defer deps.Close()

	uc, err := setup.InitializeUseCases(deps)
	if err != nil {
		log.Fatal("failed to init usecases", zap.Error(err))
	}
	if err := uc.GraphStore.Refresh(ctx); err != nil {
		log.Fatal("failed to load commission graph", zap.Error(err))
	}

	loc, err := time.LoadLocation(cfg.Eligibility.Timezone)
	if err != nil {
		log.Fatal("invalid timezone", zap.Error(err))
	}
	tasks := &background.BackgroundTasks{
		Salary:          uc.Attribution,
		Graph:           uc.GraphStore,
		Subscriber:      deps.Subscriber,
		SalarySchedule:  cfg.Salary.Schedule,
		RefreshInterval: cfg.Graph.RefreshInterval,
		RevenueTopic:    cfg.KafkaService.RevenueTopic,
		GroupID:         cfg.KafkaService.GroupID,
		Location:        loc,
		Logger:          log.Named("background"),
		Revenue: func(ctx context.Context, event domain.RevenueEvent) error {
			_, err := uc.Attribution.Attribute(ctx, event)
			return err
		},
	}
	if err := tasks.StartAll(ctx); err != nil {
		log.Fatal("failed to start background tasks", zap.Error(err))
	}
	defer tasks.Stop()

	// gRPC health для проб оркестратора
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		log.Fatal("failed to listen grpc", zap.Error(err))
	}
	go func() {
		log.Info("gRPC health server started", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc server stopped", zap.Error(err))
		}
	}()

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	identity := middleware.HeaderIdentity{}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(log.Named("http")))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, identity, log.Named("ratelimit"))
	commissionHandler := handlers.NewCommissionHandler(
		uc.RequestUsecase,
		uc.UserUsecase,
		uc.GraphStore,
		uc.Ledger,
		uc.Attribution,
		identity,
		log.Named("handler"),
	)
	api := router.Group("/api/v1", middleware.Identity())
	commissionHandler.Register(api, limiter.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}
	go func() {
		log.Info("HTTP server started", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
}
