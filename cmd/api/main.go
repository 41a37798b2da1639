package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fpedia/fpedia-backend/internal/catalog"
	"github.com/fpedia/fpedia-backend/internal/config"
	"github.com/fpedia/fpedia-backend/internal/crypto"
	"github.com/fpedia/fpedia-backend/internal/httpx"
	kafkax "github.com/fpedia/fpedia-backend/internal/kafka"
	"github.com/fpedia/fpedia-backend/internal/notify"
	"github.com/fpedia/fpedia-backend/internal/orders"
	"github.com/fpedia/fpedia-backend/internal/otp"
	"github.com/fpedia/fpedia-backend/internal/payment"
	"github.com/fpedia/fpedia-backend/internal/postgres"
	"github.com/fpedia/fpedia-backend/internal/ratelimit"
	"github.com/fpedia/fpedia-backend/internal/redisx"
	"github.com/fpedia/fpedia-backend/internal/validation"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer: semua notifikasi lewat topic notify.jobs
	prod := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicJobs, 1024)
	prod.Start(ctx)
	queue := &notify.Queue{Producer: prod, Service: cfg.ServiceName}

	// Repos & services
	catalogRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	box := crypto.New(cfg.EncryptionKey)
	if !box.Enabled() {
		log.Printf("WARNING: ENCRYPTION_KEY bukan 32 byte, kredensial disimpan apa adanya")
	}
	limitRepo := &ratelimit.Repo{DB: db}
	limiter := &ratelimit.Limiter{Store: limitRepo}
	otpSvc := &otp.Service{Store: &otp.Repo{DB: db}}
	gateway := payment.NewClient(cfg.PakasirBaseURL, cfg.PakasirSlug, cfg.PakasirAPIKey)
	validate := validation.New()

	fulfill := &orders.Fulfillment{
		Store:      orderRepo,
		Stock:      catalogRepo,
		Notify:     queue,
		Crypto:     box,
		AdminEmail: cfg.AdminEmail,
		SiteURL:    cfg.SiteURL,
	}

	router := httpx.NewRouter()
	httpx.Register(router, httpx.Handlers{
		Checkout: &httpx.CheckoutHandler{
			Catalog:       catalogRepo,
			Orders:        orderRepo,
			Gateway:       gateway,
			Notify:        queue,
			Validate:      validate,
			AdminEmail:    cfg.AdminEmail,
			AdminWhatsApp: cfg.AdminWhatsApp,
		},
		Webhook: &httpx.WebhookHandler{
			Orders:        orderRepo,
			Fulfill:       fulfill,
			GatewayAPIKey: cfg.PakasirAPIKey,
		},
		Stock:  &httpx.StockHandler{Catalog: catalogRepo, Limiter: limiter, Redis: rdb},
		Status: &httpx.OrderStatusHandler{Orders: orderRepo, Redis: rdb},
		OTP:    &httpx.OTPHandler{OTP: otpSvc, Limiter: limiter, Notify: queue, Validate: validate},
		Admin: &httpx.AdminHandler{
			Catalog:  catalogRepo,
			Orders:   orderRepo,
			Crypto:   box,
			Notify:   queue,
			Validate: validate,
		},
		Cron: &httpx.CronHandler{
			Orders:  orderRepo,
			Limits:  limitRepo,
			Notify:  queue,
			Secret:  cfg.CronSecret,
			SiteURL: cfg.SiteURL,
		},
	}, cfg.AdminEmail, cfg.Maintenance)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
