// Package main is the entry point for the go-emmet-lsp language server.
package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	glspserver "github.com/tliron/glsp/server"
	"github.com/urfave/cli/v3"

	"github.com/CWBudde/go-emmet-lsp/internal/config"
	"github.com/CWBudde/go-emmet-lsp/internal/lsp"
	"github.com/CWBudde/go-emmet-lsp/internal/server"
	"github.com/CWBudde/go-emmet-lsp/internal/telemetry"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    lsp.Name,
		Usage:   "Language server that expands Emmet abbreviations",
		Version: lsp.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "tcp",
				Usage: "Run server in TCP mode (for debugging)",
			},
			&cli.BoolFlag{
				Name:  "websocket",
				Usage: "Run server in WebSocket mode",
			},
			&cli.IntFlag{
				Name:  "port",
				Value: 8765,
				Usage: "Port to listen on (used with --tcp or --websocket)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "error",
				Usage:   "Log level: trace, debug, info, warn, error",
				Sources: cli.EnvVars("EMMET_LSP_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file path (default: stderr)",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Settings file (yaml, json or toml) applied below client settings",
				Sources: cli.EnvVars("EMMET_LSP_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "trace-file",
				Usage: "Write completion traces to this file",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Record completion metrics and log a summary on shutdown",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			expandCommand(),
			schemaCommand(),
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintf(cmd.Root().Writer, "%s version %s\n", lsp.Name, lsp.Version)
					return err
				},
			},
		},
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	closeLog, err := setupLogging(cmd.String("log-level"), cmd.String("log-file"))
	if err != nil {
		return err
	}
	defer closeLog()

	loader, err := config.NewLoader(cmd.String("config"))
	if err != nil {
		return err
	}

	provider, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:   lsp.Name,
		TraceFile:     cmd.String("trace-file"),
		EnableMetrics: cmd.Bool("metrics"),
	})
	if err != nil {
		return err
	}

	defer func() {
		if counts, err := provider.CompletionCounts(ctx); err == nil && counts != nil {
			log.WithField("completions", counts).Info("completion summary")
		}

		if err := provider.Shutdown(ctx); err != nil {
			log.Errorf("telemetry shutdown: %v", err)
		}
	}()

	srv := server.New(server.WithLoader(loader), server.WithTelemetry(provider))

	// Apply the settings file before any client settings arrive.
	warnings, err := srv.ReloadSettings(nil)
	if err != nil {
		return err
	}

	for _, w := range warnings {
		log.Warn(w)
	}

	lsp.SetServer(srv)

	glspServer := glspserver.NewServer(lsp.NewHandler(), lsp.Name, false)

	address := fmt.Sprintf("127.0.0.1:%d", cmd.Int("port"))

	switch {
	case cmd.Bool("tcp"):
		log.Infof("%s %s listening on tcp %s", lsp.Name, lsp.Version, address)
		return glspServer.RunTCP(address)
	case cmd.Bool("websocket"):
		log.Infof("%s %s listening on websocket %s", lsp.Name, lsp.Version, address)
		return glspServer.RunWebSocket(address)
	default:
		log.Infof("%s %s serving on stdio", lsp.Name, lsp.Version)
		return glspServer.RunStdio()
	}
}
