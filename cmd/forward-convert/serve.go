// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/forward-convert/internal/convert"
	"github.com/pdiddy/forward-convert/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion form and the /api/convert endpoint",
	Long: `Serve starts an HTTP server with the conversion form at / and the
POST /api/convert endpoint. It shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "address to listen on (default :8080)")
	serveCmd.Flags().Int64("max-body-bytes", 0, "maximum request body size in bytes (default 1048576)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.max_body_bytes", serveCmd.Flags().Lookup("max-body-bytes"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appConfig.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := slog.Default()
	logger.Info("starting forward-convert", "version", version, "listen", appConfig.Server.Listen,
		"max_body_bytes", appConfig.Server.MaxBodyBytes)

	return server.New(appConfig.Server, convert.RuleConverter{}, logger).Run(ctx)
}
