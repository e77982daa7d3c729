package cmd

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/welldata/dlis/pkg/dlis"
	"github.com/welldata/dlis/pkg/indexcache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Build or load the logical record index",
	Long: `Build the logical record index of a file and print it. The index
is cached on disk keyed by path, size and modification time, so a second
run on an unchanged file skips the scan.

Examples:
  dlis index survey.dlis
  dlis index survey.dlis --json
  dlis index survey.dlis --no-cache`,
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
		entries, fromCache, err := buildIndex(f, cfg.CacheDir, noCache, logger)
		if err != nil {
			cmd.Printf("Error indexing file: %v\n", err)
			if len(entries) == 0 {
				return
			}
			cmd.Printf("Index is partial: %d records before the damage\n", len(entries))
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				cmd.Printf("Error encoding index: %v\n", err)
				return
			}
			cmd.Println(string(out))
			return
		}

		if fromCache {
			cmd.Printf("Loaded %d records from cache\n", len(entries))
		} else {
			cmd.Printf("Indexed %d records\n", len(entries))
		}
		for _, e := range entries {
			kind := "implicit"
			if e.Explicit {
				kind = "explicit"
			}
			suffix := ""
			if e.Encrypted {
				suffix = " (encrypted)"
			}
			cmd.Printf("  %10d  type %3d  %s%s\n", e.Position, e.Type, kind, suffix)
		}
	},
}

// buildIndex loads the index from the cache when possible, otherwise scans
// the file and refreshes the cache. Cache failures degrade to a plain scan.
func buildIndex(f *dlis.File, cacheDir string, noCache bool, logger *zap.Logger) ([]dlis.IndexEntry, bool, error) {
	var cache *indexcache.Cache
	if !noCache {
		var err error
		cache, err = indexcache.Open(cacheDir)
		if err != nil {
			logger.Warn("index cache unavailable", zap.Error(err))
		} else {
			defer cache.Close()
		}
	}

	if cache != nil {
		entries, ok, err := cache.Get(f.Path())
		if err != nil {
			logger.Warn("index cache read failed", zap.Error(err))
		} else if ok {
			if err := f.RestoreIndex(entries); err == nil {
				return entries, true, nil
			}
			logger.Warn("cached index rejected, rescanning", zap.String("path", f.Path()))
		}
	}

	scanErr := f.IndexAll()
	entries := f.Index().Entries()

	if cache != nil && scanErr == nil {
		if err := cache.Put(f.Path(), entries); err != nil {
			logger.Warn("index cache write failed", zap.Error(err))
		}
	}
	return entries, false, scanErr
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().Bool("json", false, "Print the index as JSON")
	indexCmd.Flags().Bool("no-cache", false, "Skip the on-disk index cache")
}
