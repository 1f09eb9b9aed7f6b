package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/betslip"
	bhttp "github.com/radieske/sports-betslip/internal/betslip-service/http"
	"github.com/radieske/sports-betslip/internal/betslip-service/odds"
	"github.com/radieske/sports-betslip/internal/betslip-service/placement"
	kpub "github.com/radieske/sports-betslip/internal/betslip-service/producer"
	"github.com/radieske/sports-betslip/internal/betslip-service/wallet"
	"github.com/radieske/sports-betslip/internal/betslip-service/ws"
	"github.com/radieske/sports-betslip/internal/catalog"
	catcache "github.com/radieske/sports-betslip/internal/catalog/cache"
	"github.com/radieske/sports-betslip/internal/catalog/repo"
	"github.com/radieske/sports-betslip/internal/shared/cache"
	"github.com/radieske/sports-betslip/internal/shared/config"
	"github.com/radieske/sports-betslip/internal/shared/db"
	"github.com/radieske/sports-betslip/internal/shared/kafka"
	"github.com/radieske/sports-betslip/internal/shared/kv"
	"github.com/radieske/sports-betslip/internal/shared/logger"
	"github.com/radieske/sports-betslip/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "betslip-service"
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// conecta com db Postgres (catálogo + kv opcional)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("redis connected")

	store, err := newStore(cfg, pg, rdb)
	if err != nil {
		log.Fatal("kv backend", zap.String("backend", cfg.KVBackend), zap.Error(err))
	}
	log.Info("betslip store ready", zap.String("backend", cfg.KVBackend), zap.Duration("ttl", cfg.SlipTTL))

	// Kafka writer (topic slip_placed)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSlipPlaced)
	defer writer.Close()

	m := metrics.NewBetslip(prometheus.DefaultRegisterer)

	// estado do slip por sessão
	slips := betslip.NewService(log, betslip.NewBuilder(cfg.DefaultStake), store)
	slips.OnMutation = func(op string) { m.Mutations.WithLabelValues(op).Inc() }
	slips.OnError = func(op string) { m.Errors.WithLabelValues(op).Inc() }

	// push via websocket, replicado entre instâncias pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	relay := &ws.Relay{R: rdb, Channel: cfg.RedisPubSubChannel, Hub: hub, Log: log}
	relay.Start(ctx)
	slips.OnChange = func(session string, snap betslip.Snapshot) {
		pctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := relay.Publish(pctx, ws.SlipUpdate{SessionID: session, Payload: snap}); err != nil {
			log.Warn("betslip relay publish", zap.String("session", session), zap.Error(err))
		}
	}

	placer := &placement.Placer{
		Log:       log,
		Slips:     slips,
		Wallet:    wallet.New(cfg.WalletURL),
		Publisher: kpub.NewKafkaPublisher(writer, cfg.TopicSlipPlaced),
		OnOutcome: func(o string) { m.Placements.WithLabelValues(o).Inc() },
	}

	api := &bhttp.Server{
		Log:     log,
		Catalog: catalog.New(log, &repo.ReadRepo{DB: pg}, catcache.New(rdb)),
		Slips:   slips,
		Placer:  placer.Place,
		WS:      hub.HandleWS,
	}
	if cfg.OddsDriftCheck {
		api.Odds = odds.NewValidator(rdb)
	}

	// sobe servidor de métricas e health
	msrv := metrics.StartMetricsServer(cfg.MetricsPort,
		metrics.Check{Name: "postgres", Fn: pg.PingContext},
		metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)
	log.Info("metrics/health server starting", zap.String("addr", msrv.Addr))

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("betslip-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = msrv.Shutdown(shutdownCtx)
}

// newStore escolhe onde o slip é persistido (KV_BACKEND)
func newStore(cfg config.Config, pg *sql.DB, rdb *redis.Client) (betslip.Persister, error) {
	switch cfg.KVBackend {
	case kv.BackendRedis:
		return kv.NewRedisStore[betslip.Snapshot](rdb, cfg.SlipTTL), nil
	case kv.BackendPostgres:
		return kv.NewPostgresStore[betslip.Snapshot](pg), nil
	case kv.BackendMemory:
		return kv.NewMemoryStore[betslip.Snapshot](), nil
	}
	return nil, fmt.Errorf("%w: %q", kv.ErrUnknownBackend, cfg.KVBackend)
}
