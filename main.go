package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"productapi/internal/logger"

	"github.com/urfave/cli/v3"
)

func main() {
	// Replaced once config is loaded.
	logger.New(logger.DefaultConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		slog.Error("productapi failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "productapi",
		Usage: "HTTP API for the product catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "path to an environment file",
				Value: ".env",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP server",
				Action: serveAction,
			},
			{
				Name:   "migrate",
				Usage:  "create tables or indexes for the configured store",
				Action: migrateAction,
			},
			{
				Name:   "seed",
				Usage:  "insert sample products",
				Action: seedAction,
			},
			{
				Name:  "events",
				Usage: "log product events published to RabbitMQ",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "queue",
						Usage: "queue to declare and consume from",
						Value: "product_events_log",
					},
				},
				Action: eventsAction,
			},
		},
	}
}
