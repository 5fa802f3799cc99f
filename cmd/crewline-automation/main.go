package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/crewline/automation/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "crewline-automation",
		Usage:                 "Start the Crewline workflow automation engine",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL (postgres://... or a file path)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:     "api-base-url",
				Usage:    "Base URL of the suite's internal record API",
				Required: true,
				Sources:  cli.EnvVars("CRM_API_URL"),
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "Bearer token for the internal record API",
				Sources: cli.EnvVars("CRM_API_TOKEN"),
			},
			&cli.StringFlag{
				Name:     "redis-url",
				Usage:    "Redis URL for the outbound mail queue",
				Required: true,
				Sources:  cli.EnvVars("REDIS_URL"),
			},
			&cli.IntFlag{
				Name:    "http-port",
				Usage:   "Port for the engine HTTP API",
				Value:   8087,
				Sources: cli.EnvVars("HTTP_PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			return run(ctx, runConfig{
				databaseURL: command.String("database-url"),
				eventBus:    command.String("event-bus"),
				apiBaseURL:  command.String("api-base-url"),
				apiToken:    command.String("api-token"),
				redisURL:    command.String("redis-url"),
				httpPort:    int(command.Int("http-port")),
			})
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
