/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/welldata/dlis/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a file over the REST API",
	Long: `Open a well log file, index it, and serve its label, record index
and decoded metadata over HTTP.

Examples:
  dlis serve survey.dlis --port=8080
  dlis serve survey.dlis --api-key=mysecretkey --bind=0.0.0.0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			cmd.Printf("Error loading config: %v\n", err)
			return
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}
		defer logger.Sync()

		f, err := openFile(cmd, cfg, args[0])
		if err != nil {
			cmd.Printf("Error opening file: %v\n", err)
			return
		}
		defer f.Close()

		noCache, _ := cmd.Flags().GetBool("no-cache")
		if _, _, err := buildIndex(f, cfg.CacheDir, noCache, logger); err != nil {
			cmd.Printf("Warning: index is partial: %v\n", err)
		}

		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		bind := cfg.Bind
		if cmd.Flags().Changed("bind") {
			bind, _ = cmd.Flags().GetString("bind")
		}
		apiKey, _ := cmd.Flags().GetString("api-key")
		if apiKey == "" && cfg.Security.APIKey != "auto" {
			apiKey = cfg.Security.APIKey
		}

		serverConfig := api.ServerConfig{
			Port:   port,
			Bind:   bind,
			APIKey: apiKey,
		}

		if err := api.StartServer(f, serverConfig, logger); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind")
	serveCmd.Flags().String("api-key", "", "API key clients must present (empty disables auth)")
	serveCmd.Flags().Bool("no-cache", false, "Skip the on-disk index cache")
}
