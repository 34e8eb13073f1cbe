package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"productapi/internal/config"
	"productapi/internal/logger"
	"productapi/internal/middleware"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/server"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// bootstrap loads config and installs the logger.
func bootstrap(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	log := logger.New(logCfg)
	return cfg, log, nil
}

// openService opens the store and, if configured, the event publisher.
// The returned cleanup closes both.
func openService(ctx context.Context, cfg *config.Config, log *slog.Logger) (*services.ProductService, func(), error) {
	repo, err := repositories.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	cleanup := func() {
		if err := repo.Close(); err != nil {
			log.Warn("failed to close store", slog.Any("error", err))
		}
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.Exchange}, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		publisher = mqClient
		closeStore := cleanup
		cleanup = func() {
			if err := mqClient.Close(); err != nil {
				log.Warn("failed to close RabbitMQ client", slog.Any("error", err))
			}
			closeStore()
		}
	} else {
		log.Info("RABBITMQ_URL not set, product events are disabled")
	}

	return services.NewProductService(repo, publisher, log), cleanup, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	service, cleanup, err := openService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	app := server.New(server.Options{
		Service:   service,
		APIKey:    cfg.APIKey,
		Logger:    log,
		StoreName: cfg.Store.Driver,
		Middleware: middleware.Options{
			AllowOrigins: cfg.CORSOrigins,
			AccessLog:    cfg.AccessLog,
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("addr", cfg.AppPort), slog.String("store", cfg.Store.Driver))
		errCh <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	log.Info("server gracefully stopped")
	return nil
}

func migrateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	opts := cfg.Store
	opts.AutoMigrate = false
	repo, err := repositories.Open(ctx, opts)
	if err != nil {
		return err
	}
	defer repo.Close()

	m, ok := repo.(repositories.Migrator)
	if !ok {
		log.Info("store needs no migration", slog.String("store", opts.Driver))
		return nil
	}
	if err := m.Migrate(ctx); err != nil {
		return err
	}
	log.Info("migration complete", slog.String("store", opts.Driver))
	return nil
}

func seedAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	service, cleanup, err := openService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	n := seedProducts(ctx, service, log)
	log.Info("seeding complete", slog.Int("created", n))
	return nil
}

func eventsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required")
	}
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.Exchange}, log)
	if err != nil {
		return err
	}
	defer mqClient.Close()

	return mqClient.Consume(ctx, cmd.String("queue"), "product.#", func(msg amqp.Delivery) error {
		log.Info("product event",
			slog.String("routing_key", msg.RoutingKey),
			slog.String("body", string(msg.Body)),
		)
		return nil
	})
}

// sampleProducts is the data inserted by the seed command.
func sampleProducts() []models.ProductInput {
	price := func(v float64) *float64 { return &v }
	stock := func(v bool) *bool { return &v }
	return []models.ProductInput{
		{Name: "Laptop", Description: "High performance laptop", Price: price(1200), Category: "electronics", InStock: stock(true)},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: price(75), Category: "electronics", InStock: stock(true)},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Price: price(25), Category: "electronics", InStock: stock(false)},
		{Name: "Coffee Maker", Description: "Programmable drip coffee maker", Price: price(49.99), Category: "kitchen", InStock: stock(true)},
		{Name: "Desk Lamp", Description: "LED lamp with adjustable arm", Price: price(19.5), Category: "home", InStock: stock(true)},
	}
}

// seedProducts creates the sample products and returns how many were created.
func seedProducts(ctx context.Context, service *services.ProductService, log *slog.Logger) int {
	created := 0
	for _, input := range sampleProducts() {
		product, err := service.CreateProduct(ctx, input)
		if err != nil {
			log.Warn("error seeding product", slog.String("name", input.Name), slog.Any("error", err))
			continue
		}
		created++
		log.Info("seeded product", slog.String("name", product.Name), slog.String("id", product.ID))
	}
	return created
}
