package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"webscada.dev/scada-core-service/pkg/broadcast"
	"webscada.dev/scada-core-service/pkg/collector"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/db"
	scadaHttp "webscada.dev/scada-core-service/pkg/http"
	"webscada.dev/scada-core-service/pkg/metrics"
	"webscada.dev/scada-core-service/pkg/scada"
	"webscada.dev/scada-core-service/pkg/sim"

	"github.com/joho/godotenv"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	scadaDbType := os.Getenv(common.EnvKeyScadaDBType)
	switch scadaDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	default:
		log.Fatal("Unknown SCADA_DB_TYPE: " + scadaDbType)
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyScadaHttpHostPort))

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyScadaDefaultRate), 64); err != nil {
		log.Fatal("Invalid SCADA_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyScadaDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid SCADA_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	defaultTick := collector.DefaultTick
	if tickMs := os.Getenv(common.EnvKeyScadaDefaultTickMs); tickMs != "" {
		ms, err := strconv.Atoi(tickMs)
		if err != nil || ms <= 0 {
			log.Fatal("Invalid SCADA_DEFAULT_TICK_MS, should be a positive int value")
		}
		defaultTick = time.Duration(ms) * time.Millisecond
	}

	logger := common.GetLogger()

	metrics.Init()

	hub := broadcast.NewHub(broadcast.DefaultQueueSize)

	scadaCore := scada.SCADA{
		Db: *dbInstance,
	}
	scadaCore.WithServices(scada.ServiceOpts{
		Measurement: scadaCore.GetIMeasurement(),
		Alarm:       scadaCore.GetIAlarm(),
		Config:      scadaCore.GetIConfig(),
		Sink:        hub,
	})

	supervisor := collector.NewSupervisor(&scadaCore, sim.NewSampler(), defaultTick)

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	rs := &scadaHttp.RestfulServer{
		Server:           gin.Default(),
		Scada:            &scadaCore,
		Supervisor:       supervisor,
		Hub:              hub,
		RateLimiterStore: scada.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst)),
		zap.Duration("default_tick", defaultTick))

	server := &http.Server{
		Addr:    httpHostPort,
		Handler: rs.Server,
	}

	go func() {
		logger.Info("Starting HTTP server on: " + httpHostPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down, stopping all device collection loops")
	supervisor.StopAll()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
