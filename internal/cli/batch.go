package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"kotok/config"
	"kotok/internal/adapter/fs"
	"kotok/internal/adapter/store"
	"kotok/internal/usecase"
)

var batchCmd = &cobra.Command{
	Use:   "batch [path]",
	Short: "Tokenize every sentence file under a directory",
	Long: `Tokenize files in the specified directory, one sentence per line, and store
the token lists in .kotok/tokens.db within that directory. Unchanged files are
skipped on later runs.

Examples:
  kotok batch .              # Tokenize current directory
  kotok batch /path/to/corpus`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create .kotok directory: %w", err)
	}

	dbPath := config.StoreDBPath(path)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	defer st.Close()

	migrationResult, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}
	if migrationResult.NeedsRebuild {
		fmt.Printf("Store rebuild required: %s\n", migrationResult.Reason)
		fmt.Println("Clearing stored token lists...")
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
	} else if migrationResult.NeedsMigration {
		fmt.Printf("Running schema migration: %s\n", migrationResult.Reason)
	}
	if err := st.Migrate(cfg); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	reader, err := fs.NewSentenceFileReader(cfg.Batch.Encoding, cfg.Batch.SkipBlankLines)
	if err != nil {
		return err
	}
	walker := fs.NewWalker(cfg.Batch.Includes, cfg.Batch.Excludes)

	tok, release, err := newTokenizer(cfg)
	if err != nil {
		return err
	}
	defer release()

	batchUC := usecase.NewBatchUseCase(st, walker, reader, tok)

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	progress := func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Tokenizing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 && processed < total {
			rate := float64(processed) / time.Since(startTime).Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-processed)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Tokenizing[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}

	result, err := batchUC.Run(path, progress)
	if err != nil {
		return fmt.Errorf("batch tokenization failed: %w", err)
	}

	fmt.Printf("\nBatch complete:\n")
	fmt.Printf("  Files tokenized: %d\n", result.FilesTokenized)
	fmt.Printf("  Files skipped:   %d (unchanged)\n", result.FilesSkipped)
	fmt.Printf("  Files deleted:   %d (removed)\n", result.FilesDeleted)
	fmt.Printf("  Sentences:       %d\n", result.Sentences)
	fmt.Printf("  Tokens:          %d\n", result.Tokens)
	fmt.Printf("  Store totals:    %d docs, %d sentences, %d tokens\n",
		result.Stats.TotalDocs, result.Stats.TotalSentences, result.Stats.TotalTokens)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nToken lists stored at: %s\n", dbPath)
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
