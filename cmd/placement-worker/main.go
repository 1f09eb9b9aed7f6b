package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/betslip-service/wallet"
	"github.com/radieske/sports-betslip/internal/placement-worker/repo"
	"github.com/radieske/sports-betslip/internal/placement-worker/worker"
	"github.com/radieske/sports-betslip/internal/shared/config"
	"github.com/radieske/sports-betslip/internal/shared/db"
	"github.com/radieske/sports-betslip/internal/shared/kafka"
	"github.com/radieske/sports-betslip/internal/shared/logger"
	"github.com/radieske/sports-betslip/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "placement-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres: slips e slip_legs
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: slip_placed com commit manual
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicSlipPlaced, "placement-worker")
	defer reader.Close()

	// Kafka producers: slip_confirmed e DLQ
	confirmedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSlipConfirmed)
	defer confirmedWriter.Close()

	var dlq worker.Writer
	if cfg.TopicSlipPlacedDLQ != "" {
		dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSlipPlacedDLQ)
		defer dlqWriter.Close()
		dlq = dlqWriter
	}

	m := metrics.NewWorker(prometheus.DefaultRegisterer)
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Check{Name: "postgres", Fn: pg.PingContext})
	log.Info("metrics/health", zap.String("addr", msrv.Addr))

	p := &worker.Processor{
		Log:         log,
		Reader:      reader,
		Store:       repo.NewPostgres(pg),
		Wallet:      wallet.New(cfg.WalletURL),
		Confirmed:   confirmedWriter,
		DLQ:         dlq,
		Retries:     3,
		Backoff:     300 * time.Millisecond,
		OnConsumed:  m.Consumed.Inc,
		OnPersisted: m.Persisted.Inc,
		OnError:     func(stage string) { m.Errors.WithLabelValues(stage).Inc() },
	}

	log.Info("placement-worker started",
		zap.String("consume", cfg.TopicSlipPlaced),
		zap.String("publish", cfg.TopicSlipConfirmed),
	)
	if err := p.Run(ctx); err != nil {
		log.Error("worker stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = msrv.Shutdown(shutdownCtx)
}
