package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/intend-project/inserv-orch/internal/config"
	"github.com/intend-project/inserv-orch/internal/graphstore"
	"github.com/intend-project/inserv-orch/internal/infrastructure/wire"
	"github.com/intend-project/inserv-orch/internal/logging"
	"github.com/intend-project/inserv-orch/internal/redis"
)

func main() {
	// Bootstrap logger for failures before the structured logger is up.
	bootstrap, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize bootstrap logger: %v", err)
	}
	defer bootstrap.Sync()

	cfg, err := config.Load("")
	if err != nil {
		bootstrap.Fatal("failed to load configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		bootstrap.Fatal("configuration validation failed", zap.Error(err))
	}

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	structuredLogger := logging.NewStructuredLogger(&logging.LoggerConfig{
		Component: "inserv-orch",
		Level:     level,
	})

	graphClient := graphstore.NewClient(&cfg.GraphDB, structuredLogger)

	redisClient, err := redis.NewClient(&cfg.Redis, slogger)
	if err != nil {
		bootstrap.Fatal("failed to connect to redis", zap.Error(err))
	}

	k8sConfig, k8sClient, dynamicClient := bootstrapKubernetes(cfg, slogger)

	app, err := wire.InitializeApp(cfg, graphClient, redisClient, k8sClient, dynamicClient, k8sConfig, slogger, structuredLogger)
	if err != nil {
		bootstrap.Fatal("failed to initialize application", zap.Error(err))
	}

	if cfg.Server.Host == "0.0.0.0" && os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logging.LoggingMiddleware(structuredLogger))
	router.Use(logging.RecoveryMiddleware(structuredLogger))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.POST("/tmf-api/intentManagement/v5/intent", app.IntentHandler.CreateIntent)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		slogger.Info("starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			bootstrap.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		bootstrap.Fatal("server forced to shutdown", zap.Error(err))
	}

	slogger.Info("server exited")
}

// bootstrapKubernetes tries in-cluster config first, falling back to
// KUBECONFIG/~/.kube/config, the same chain cmd/api used before it.
func bootstrapKubernetes(cfg *config.Config, logger *slog.Logger) (*rest.Config, kubernetes.Interface, dynamic.Interface) {
	if !cfg.K8s.Enabled {
		return nil, nil, nil
	}

	restConfig, err := rest.InClusterConfig()
	if err != nil {
		kubeconfigPath := cfg.K8s.ConfigPath
		if kubeconfigPath == "" {
			kubeconfigPath = os.Getenv("KUBECONFIG")
		}
		if kubeconfigPath == "" {
			kubeconfigPath = os.Getenv("HOME") + "/.kube/config"
		}
		restConfig, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
		if err != nil {
			logger.Warn("failed to resolve kubernetes config", "error", err)
			return nil, nil, nil
		}
	}

	k8sClient, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		logger.Warn("failed to create kubernetes client", "error", err)
		return restConfig, nil, nil
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		logger.Warn("failed to create dynamic kubernetes client", "error", err)
		return restConfig, k8sClient, nil
	}

	return restConfig, k8sClient, dynamicClient
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
