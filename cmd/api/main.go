package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/afterclass/lessons-api/internal/config"
	"github.com/afterclass/lessons-api/internal/events"
	"github.com/afterclass/lessons-api/internal/httpx"
	kafkax "github.com/afterclass/lessons-api/internal/kafka"
	"github.com/afterclass/lessons-api/internal/metrics"
	"github.com/afterclass/lessons-api/internal/redisx"
	ordersvc "github.com/afterclass/lessons-api/internal/service/orders"
	"github.com/afterclass/lessons-api/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	logger := log.WithField("component", "api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.NewCache(rdb)

	// Kafka producers, one per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCancelled, 1024)
	pCancelled.Start(ctx)

	// Repos & services
	lessonRepo := postgres.NewLessonRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	creds := postgres.NewCredentialStore(db)
	m := metrics.NewOrderMetrics()
	svc := ordersvc.NewService(lessonRepo, orderRepo, lessonRepo, m)

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Svc:               svc,
		ProducerCreated:   pCreated,
		ProducerCancelled: pCancelled,
		Cache:             cache,
		Service:           cfg.ServiceName,
	}
	oh.Register(router)
	lh := &httpx.LessonsHandler{Repo: lessonRepo, Cache: cache}
	lh.Register(router)
	ah := &httpx.AuthHandler{Credentials: creds}
	ah.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close()
	pCancelled.Close()
	cancel()
	pCreated.WaitClosed()
	pCancelled.WaitClosed()
}
