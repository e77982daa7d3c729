package cmd

import (
	"github.com/spf13/cobra"

	"github.com/welldata/dlis/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with a generated API key",
	Long: `Create the dlis configuration file. An API key is generated and
stored in it; pass --cache-dir to override where record indexes are
cached.

Example:
  dlis init --cache-dir /var/cache/dlis`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(path) {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				cmd.Printf("Config already exists at %s (use --force to overwrite)\n", path)
				return
			}
		}

		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		cfg, err := config.BootstrapConfig(path, cacheDir)
		if err != nil {
			cmd.Printf("Error creating config: %v\n", err)
			return
		}

		cmd.Printf("Wrote %s\n", path)
		cmd.Printf("Cache directory: %s\n", cfg.CacheDir)
		cmd.Printf("API key: %s\n", cfg.Security.APIKey)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("cache-dir", "", "Cache directory to record in the config")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
