// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/capgate/capgate/cmd/app/commands"
	"github.com/capgate/capgate/internal/app"
	"github.com/capgate/capgate/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "capgate",
		Usage:   "Capability authorization gate",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the authorization HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "validate",
				Usage: "Validate capability and policy files without starting a server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "capabilities",
						Aliases: []string{"c"},
						Usage:   "Path of the capability declaration file (defaults to CAPABILITY_FILE)",
					},
					&cli.StringFlag{
						Name:    "policies",
						Aliases: []string{"p"},
						Usage:   "Path of the policy set file (defaults to POLICY_FILE)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()

					capabilityFile := cmd.String("capabilities")
					if capabilityFile == "" {
						capabilityFile = cfg.CapabilityFile
					}
					policyFile := cmd.String("policies")
					if policyFile == "" {
						policyFile = cfg.PolicyFile
					}

					return commands.RunValidate(capabilityFile, policyFile, os.Stdout)
				},
			},
			{
				Name:  "check",
				Usage: "Decide a single authorization request against the configured policy files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "capability",
						Required: true,
						Usage:    "Capability name (e.g., fs.read)",
					},
					&cli.StringFlag{
						Name:     "principal",
						Required: true,
						Usage:    "Requesting principal (e.g., agent.build)",
					},
					&cli.StringFlag{
						Name:  "action",
						Value: "execute",
						Usage: "Requested action",
					},
					&cli.StringFlag{
						Name:  "context",
						Usage: "Request context as a JSON object (e.g., '{\"env\": \"prod\"}')",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					defer shutdownContainer(ctx, container)

					gate, err := container.Gate()
					if err != nil {
						return fmt.Errorf("failed to initialize gate: %w", err)
					}

					return commands.RunCheck(
						ctx,
						gate,
						os.Stdout,
						cmd.String("capability"),
						cmd.String("principal"),
						cmd.String("action"),
						cmd.String("context"),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "list-capabilities",
				Usage: "List the capabilities of the configured snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					defer shutdownContainer(ctx, container)

					store, err := container.SnapshotStore()
					if err != nil {
						return fmt.Errorf("failed to load snapshot: %w", err)
					}

					return commands.RunListCapabilities(store.Current().Registry, os.Stdout, cmd.String("format"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// shutdownContainer releases container resources for one-shot commands.
func shutdownContainer(ctx context.Context, container *app.Container) {
	if err := container.Shutdown(ctx); err != nil {
		container.Logger().Error("failed to shutdown container", slog.Any("error", err))
	}
}
