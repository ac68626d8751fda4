package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicbook/clinicbook/backend/go-services/handlers"
	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic/handler"
	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic/repository"
	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic/service"
	"github.com/clinicbook/clinicbook/backend/go-services/internal/config"
	"github.com/clinicbook/clinicbook/backend/go-services/internal/database"
	"github.com/clinicbook/clinicbook/backend/go-services/pkg/logger"
	"github.com/clinicbook/clinicbook/backend/go-services/pkg/metrics"
	"github.com/clinicbook/clinicbook/backend/go-services/pkg/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.UseProduction(cfg.IsProduction())
	defer logger.Sync()
	logger.Infof("config loaded: env=%s mongo=%v unique_services=%v", cfg.Server.Environment, cfg.MongoDB.URI != "", cfg.Services.Unique)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger.L()))
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig()))

	ctx := context.Background()
	storeOpts := repository.Options{UniqueServices: cfg.Services.Unique}

	var store repository.Store
	var client *mongo.Client
	if cfg.MongoDB.URI != "" {
		client = connectMongo(ctx, cfg)
		ms, err := repository.NewMongoStore(ctx, client.Database(cfg.MongoDB.Database), storeOpts)
		switch {
		case errors.Is(err, repository.ErrIndexConflict):
			logger.Fatalf("cannot enforce unique services on database %q, remove the duplicate services or set SERVICES_UNIQUE=false: %v", cfg.MongoDB.Database, err)
		case err != nil:
			// retried before the next insert that needs it
			logger.Warnf("mongo indexes not ready: %v", err)
		}
		store = ms
		logger.Infof("using MongoDB store (database=%s)", cfg.MongoDB.Database)
	} else {
		store = repository.NewMemoryStore(storeOpts)
		logger.Warn("MONGO_URL not set; using in-memory store, data is lost on restart")
	}

	handler.RegisterRoutes(r, service.New(store))
	handlers.RegisterHealth(r, store, startTime)
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting clinic booking service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	if client != nil {
		if err := client.Disconnect(shutdownCtx); err != nil {
			logger.Warnf("mongo disconnect: %v", err)
		}
	}
	logger.Info("server exited")
}

// connectMongo retries with backoff to tolerate startup races. When the server
// stays unreachable the last client is kept: the driver reconnects on its own
// and /ready reports the outage meanwhile.
func connectMongo(ctx context.Context, cfg *config.Config) *mongo.Client {
	const maxAttempts = 5
	backoff := time.Second
	var client *mongo.Client
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			logger.Infof("connected to MongoDB")
			return client
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if client == nil {
			// the URI itself is unusable; retrying will not help
			logger.Fatalf("invalid MongoDB configuration: %v", err)
		}
		if attempt < maxAttempts {
			_ = client.Disconnect(ctx)
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	logger.Warnf("could not reach MongoDB after %d attempts, serving anyway: %v", maxAttempts, err)
	return client
}

func corsConfig() cors.Config {
	c := cors.DefaultConfig()
	c.AllowAllOrigins = true
	c.AllowHeaders = append(c.AllowHeaders, middleware.HeaderXRequestID)
	c.ExposeHeaders = []string{"Content-Length", middleware.HeaderXRequestID}
	return c
}
