// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the forward-convert CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/forward-convert/internal/logging"
	"github.com/pdiddy/forward-convert/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appConfig is the effective configuration, resolved before any subcommand runs.
	appConfig types.Config

	// configErr holds a config file error from initConfig until a command
	// can return it.
	configErr error
)

// rootCmd is the base command for the forward-convert CLI.
var rootCmd = &cobra.Command{
	Use:   "forward-convert",
	Short: "Convert Xiandan panel forward rules into Nyanpass rules",
	Long: `forward-convert turns the "forwards" export of the Xiandan panel into
Nyanpass rule lines (one JSON object per line).

Run "serve" to expose the conversion form and the /api/convert endpoint, or
"convert" to convert a file from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		if err := viper.Unmarshal(&appConfig); err != nil {
			return fmt.Errorf("decoding configuration: %w", err)
		}
		logger, err := logging.New(appConfig.Log, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./forward-convert.yaml or ~/.config/forward-convert/config.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn or error (default info)")
	pf.String("log-format", "", "log format: text or json (default text)")
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

// setDefaults registers every configuration key so that environment
// variables and viper.Unmarshal see the full tree.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(types.LogText))
	v.SetDefault("client.timeout", "30s")
	v.SetDefault("client.user_agent", "forward-convert/"+version)
	v.SetDefault("client.max_retries", 3)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("forward-convert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "forward-convert"))
		}
	}

	viper.SetEnvPrefix("FORWARD_CONVERT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		return
	}
	var notFound viper.ConfigFileNotFoundError
	if cfgFile != "" || !errors.As(err, &notFound) {
		configErr = fmt.Errorf("reading config file: %w", err)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
