package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"kotok/config"
	"kotok/internal/adapter/store"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Show stored token lists",
	Long: `Print the token lists stored by 'kotok batch' for one file, or list the stored
files with their counts when no file is given. The store is read from the root
directory, and relative file paths are resolved against it.

Examples:
  kotok show -d corpus                # List stored files
  kotok show -d corpus news.txt       # Print token lists of one file`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "", "output format: json or text (default from config)")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	rootDir := GetRootDir()

	dbPath := config.StoreDBPath(rootDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no token store found. Run 'kotok batch' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	defer st.Close()

	format, err := resolveFormat(cfg.Output.Format, showFormat)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		docs, err := st.ListDocs()
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

		stats, err := st.GetStats()
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}
		for _, doc := range docs {
			rel, err := filepath.Rel(rootDir, doc.Path)
			if err != nil {
				rel = doc.Path
			}
			fmt.Fprintf(out, "%-40s %6d sentences %8d tokens  %s\n",
				rel, doc.Sentences, doc.Tokens, doc.ModTime.Format(time.RFC3339))
		}
		fmt.Fprintf(out, "\n%d docs, %d sentences, %d tokens\n",
			stats.TotalDocs, stats.TotalSentences, stats.TotalTokens)
		return nil
	}

	path := args[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}
	doc, err := st.FindDocByPath(path)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s has not been tokenized. Run 'kotok batch' first", args[0])
	}
	if err != nil {
		return err
	}

	sentences, err := st.GetSentences(doc.ID)
	if err != nil {
		return fmt.Errorf("failed to read sentences: %w", err)
	}

	tokenLists := make([][]string, len(sentences))
	for i, s := range sentences {
		tokenLists[i] = s.Tokens
	}
	return writeTokenLists(out, format, tokenLists)
}
