package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"quickeats/cmd/notificationservice"
	"quickeats/cmd/orderservice"
	"quickeats/internal/shared/config"
	"quickeats/internal/shared/httpapi"
)

func main() {
	// serialized timestamps are local date-times; force UTC so they never drift
	time.Local = time.UTC

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:    "quickeats",
		Usage:   "food ordering platform services",
		Version: httpapi.Version,
		Commands: []*cli.Command{
			{
				Name:  "notification-service",
				Usage: "consume order events and push live notifications over /ws",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Usage: "override TRANSPORT_LISTEN (host:port)"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					if listen := c.String("listen"); listen != "" {
						cfg.Transport.Listen = listen
					}
					return notificationservice.Run(c.Context, cfg)
				},
			},
			{
				Name:  "order-service",
				Usage: "HTTP API for placing orders and emitting lifecycle events",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Usage: "override HTTP_LISTEN (host:port)"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					if listen := c.String("listen"); listen != "" {
						cfg.HTTP.Listen = listen
					}
					return orderservice.Run(c.Context, cfg)
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
