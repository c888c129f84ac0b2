package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/afterclass/lessons-api/internal/config"
	"github.com/afterclass/lessons-api/internal/events"
	kafkax "github.com/afterclass/lessons-api/internal/kafka"
	"github.com/afterclass/lessons-api/internal/notifier"
	"github.com/afterclass/lessons-api/internal/redisx"
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
	logger := log.WithField("component", "notifier-main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := notifier.New(rdb, cfg.ServiceName+"-notifier")

	var wg sync.WaitGroup
	for _, topic := range []string{events.TopicOrderCreated, events.TopicOrderCancelled} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, topic, cfg.NotifierWorkers)
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			logger.WithField("topic", topic).Info("consumer started")
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				logger.WithError(err).WithField("topic", topic).Error("consumer exit")
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down consumers...")
	cancel()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}
