package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fpedia/fpedia-backend/internal/config"
	kafkax "github.com/fpedia/fpedia-backend/internal/kafka"
	"github.com/fpedia/fpedia-backend/internal/notify"
	"github.com/fpedia/fpedia-backend/internal/redisx"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis utk dedup event
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service: dispatch job WA / email
	svc := &notify.Service{
		Redis:       rdb,
		WhatsApp:    notify.NewWhatsAppClient(cfg.WhatsAppURL, cfg.WhatsAppSecret),
		Email:       notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass),
		ServiceName: cfg.ServiceName + "-notifier",
	}

	// Consumer
	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, notify.TopicJobs, workers)

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, notify.TopicJobs, workers)
		if err := cons.Start(ctx, svc.HandleJob); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
