package cmd

import (
	"io"
	"os"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file> <position>",
	Short: "Write the raw payload of one logical record",
	Long: `Write the reassembled payload of the logical record at the given
byte position, with all segment headers and trailers removed. Positions
come from 'dlis index'.

Examples:
  dlis dump survey.dlis 80 --output record.bin
  dlis dump survey.dlis 80 --zstd --output record.bin.zst`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			cmd.Printf("Error loading config: %v\n", err)
			return
		}

		pos, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			cmd.Printf("Error: invalid position %q\n", args[1])
			return
		}

		f, err := openFile(cmd, cfg, args[0])
		if err != nil {
			cmd.Printf("Error opening file: %v\n", err)
			return
		}
		defer f.Close()

		if err := f.IndexAll(); err != nil {
			cmd.Printf("Warning: index is partial: %v\n", err)
		}

		payload, err := f.RawRecordAt(pos)
		if err != nil {
			cmd.Printf("Error reading record: %v\n", err)
			return
		}

		var out io.Writer = cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			file, err := os.Create(path)
			if err != nil {
				cmd.Printf("Error creating output file: %v\n", err)
				return
			}
			defer file.Close()
			out = file
		}

		if compress, _ := cmd.Flags().GetBool("zstd"); compress {
			enc, err := zstd.NewWriter(out)
			if err != nil {
				cmd.Printf("Error creating compressor: %v\n", err)
				return
			}
			if _, err := enc.Write(payload); err != nil {
				cmd.Printf("Error writing payload: %v\n", err)
				enc.Close()
				return
			}
			if err := enc.Close(); err != nil {
				cmd.Printf("Error flushing compressor: %v\n", err)
			}
			return
		}

		if _, err := out.Write(payload); err != nil {
			cmd.Printf("Error writing payload: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	dumpCmd.Flags().Bool("zstd", false, "Compress the payload with zstd")
}
