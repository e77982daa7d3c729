/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/welldata/dlis/pkg/config"
	"github.com/welldata/dlis/pkg/dlis"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dlis",
	Short: "dlis - well log file inspector",
	Long: `dlis reads RP66 v1 well log files: it indexes their logical
records, decodes explicitly formatted metadata and serves both over a
REST API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default is ~/.config/dlis/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("verify-checksums", false, "Verify segment checksums while reading")
}

// loadConfig resolves the effective configuration: an explicit --config path
// must exist, the default path is optional.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadConfig(path)
	}

	path = config.GetDefaultConfigPath()
	if !config.ConfigExists(path) {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

// newLogger builds the process logger. The flag wins over the config file.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return zcfg.Build()
}

// openFile opens a well log file with options from flags and config.
func openFile(cmd *cobra.Command, cfg *config.Config, path string) (*dlis.File, error) {
	verify := cfg.Reader.VerifyChecksums
	if cmd.Flags().Changed("verify-checksums") {
		verify, _ = cmd.Flags().GetBool("verify-checksums")
	}

	return dlis.Open(path, dlis.WithChecksumVerification(verify))
}
