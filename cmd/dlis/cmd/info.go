package cmd

import (
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the storage unit label of a file",
	Long: `Show the storage unit label of a well log file.

Example:
  dlis info survey.dlis`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			cmd.Printf("Error loading config: %v\n", err)
			return
		}

		f, err := openFile(cmd, cfg, args[0])
		if err != nil {
			cmd.Printf("Error opening file: %v\n", err)
			return
		}
		defer f.Close()

		label := f.Label()
		cmd.Printf("Path:              %s\n", f.Path())
		cmd.Printf("Size:              %d bytes\n", f.Size())
		cmd.Printf("Storage set:       %s\n", label.ID)
		cmd.Printf("Sequence:          %d\n", label.Sequence)
		cmd.Printf("Format version:    %s\n", label.Version)
		cmd.Printf("Layout:            %s\n", label.Layout)
		cmd.Printf("Max record length: %d\n", label.MaxRecordLength)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
