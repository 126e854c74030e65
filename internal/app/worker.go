package app

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"shopcore/internal/config"
	"shopcore/internal/pdf"
	"shopcore/internal/queue"
	"shopcore/internal/repositories"
	"shopcore/internal/services"
	"shopcore/internal/worker"
)

// RunWorker starts the background consumer and the inventory sweep.
func RunWorker() {
	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("db open: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("db close: %v", err)
		}
	}()

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	tokenService := services.NewTokenService(cfg.Auth.EmailTokenSecret)
	verificationService := services.NewVerificationService(
		userRepo,
		tokenService,
		emailService,
		cfg.SiteURL,
		cfg.EmailSilentFail(),
	)

	alertService, err := services.NewAlertService(cfg.Telegram.BotToken, cfg.Telegram.OpsChatID)
	if err != nil {
		log.Printf("alerts disabled: %v", err)
	}

	invoiceGen := pdf.NewInvoiceGenerator("files/invoices")
	notificationService := services.NewNotificationService(
		orderRepo, productRepo, emailService, invoiceGen, alertService,
	)

	w := worker.New(
		verificationService,
		notificationService,
		alertService,
		cfg.Worker.LowStockThreshold,
		time.Duration(cfg.Worker.LowStockIntervalMin)*time.Minute,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go w.RunLowStockSweep(ctx)

	consumer := queue.NewConsumer(cfg.Kafka.Broker, cfg.Kafka.Topic, cfg.Kafka.GroupID, w)
	defer consumer.Close()

	log.Printf("worker consuming topic %q (group=%s)", cfg.Kafka.Topic, cfg.Kafka.GroupID)
	consumer.Listen(ctx)
}
