package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"kotok/internal/domain"
)

var (
	tokenizeFormat    string
	tokenizeTags      bool
	tokenizeSkipBlank bool
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [sentence...]",
	Short: "Tokenize sentences into morpheme surface forms",
	Long: `Tokenize each sentence given as an argument, or each line of stdin when no
arguments are given. Output has one token list per input sentence, in order.

Examples:
  kotok tokenize "나는 학교에 간다" "비가 온다"
  kotok tokenize --format text < sentences.txt
  kotok tokenize --tags "감기에 걸렸다"`,
	RunE: runTokenize,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	tokenizeCmd.Flags().StringVarP(&tokenizeFormat, "format", "f", "", "output format: json or text (default from config)")
	tokenizeCmd.Flags().BoolVar(&tokenizeTags, "tags", false, "print surface/tag pairs instead of surface forms")
	tokenizeCmd.Flags().BoolVar(&tokenizeSkipBlank, "skip-blank", false, "ignore blank stdin lines")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	format, err := resolveFormat(cfg.Output.Format, tokenizeFormat)
	if err != nil {
		return err
	}

	sentences := args
	if len(sentences) == 0 {
		sentences, err = readLines(cmd.InOrStdin(), tokenizeSkipBlank)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	tok, release, err := newTokenizer(cfg)
	if err != nil {
		return err
	}
	defer release()

	out := cmd.OutOrStdout()
	if tokenizeTags {
		analyses, err := tok.Analyze(sentences)
		if err != nil {
			return fmt.Errorf("tokenization failed: %w", err)
		}
		return writeAnalyses(out, format, analyses)
	}

	tokenLists, err := tok.Tokenize(sentences)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	return writeTokenLists(out, format, tokenLists)
}

// resolveFormat lets a --format flag override the configured output format.
func resolveFormat(configured, flag string) (string, error) {
	format := configured
	if flag != "" {
		format = flag
	}
	if format != "json" && format != "text" {
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
	return format, nil
}

func readLines(r io.Reader, skipBlank bool) ([]string, error) {
	lines := []string{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if skipBlank && strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func writeTokenLists(w io.Writer, format string, tokenLists [][]string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(tokenLists)
	}
	bw := bufio.NewWriter(w)
	for _, tokens := range tokenLists {
		fmt.Fprintln(bw, strings.Join(tokens, " "))
	}
	return bw.Flush()
}

func writeAnalyses(w io.Writer, format string, analyses [][]domain.Morpheme) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(analyses)
	}
	bw := bufio.NewWriter(w)
	for _, morphs := range analyses {
		pairs := make([]string, len(morphs))
		for i, m := range morphs {
			pairs[i] = m.SurfaceForm + "/" + m.Tag
		}
		fmt.Fprintln(bw, strings.Join(pairs, " "))
	}
	return bw.Flush()
}
