package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/welldata/dlis/pkg/dlis"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Decode and print the metadata sets of a file",
	Long: `Walk every explicitly formatted record in the file and print its
sets, objects and attribute values.

Examples:
  dlis describe survey.dlis
  dlis describe survey.dlis --type CHANNEL`,
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

		if err := f.IndexAll(); err != nil {
			cmd.Printf("Warning: index is partial: %v\n", err)
		}

		typeFilter, _ := cmd.Flags().GetString("type")

		for _, e := range f.Index().Entries() {
			if !e.Explicit || e.Encrypted {
				continue
			}
			sets, err := f.DecodeExplicitAt(e.Position)
			if err != nil && len(sets) == 0 {
				if !errors.Is(err, dlis.ErrEncryptedRecord) {
					cmd.Printf("Warning: record at %d: %v\n", e.Position, err)
				}
				continue
			}
			if err != nil {
				cmd.Printf("Warning: record at %d decoded partially: %v\n", e.Position, err)
			}

			for _, set := range sets {
				if typeFilter != "" && !strings.EqualFold(set.Type, typeFilter) {
					continue
				}
				printSet(cmd, set)
			}
		}
	},
}

func printSet(cmd *cobra.Command, set *dlis.Set) {
	if set.Name != "" {
		cmd.Printf("SET %s (%s)\n", set.Type, set.Name)
	} else {
		cmd.Printf("SET %s\n", set.Type)
	}
	for _, obj := range set.Objects {
		cmd.Printf("  OBJECT %s\n", obj.Name)
		for _, attr := range obj.Attributes {
			value := "-"
			if len(attr.Values) == 1 {
				value = attr.Values[0].String()
			} else if len(attr.Values) > 1 {
				parts := make([]string, len(attr.Values))
				for i, v := range attr.Values {
					parts[i] = v.String()
				}
				value = "[" + strings.Join(parts, ", ") + "]"
			}
			if attr.Units != "" {
				value += " " + attr.Units
			}
			if attr.Absent {
				value += " (absent)"
			}
			cmd.Printf("    %-20s %s\n", attr.Label, value)
		}
	}
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().String("type", "", "Only print sets of this type")
}
