package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"kotok/config"
	"kotok/internal/adapter/analyzer"
	"kotok/internal/adapter/fs"
	"kotok/internal/adapter/tagger"
	"kotok/internal/port"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding kotok.yaml")
	input := flag.String("input", "", "Sentence file, one sentence per line")
	backend := flag.String("backend", "", "Override tagger backend")
	batches := flag.Int("batches", 10, "Number of Tokenize calls per mode")
	flag.Parse()

	if *input == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -input sentences.txt [-backend komoran] [-batches 10]")
		fmt.Println("\nCompares:")
		fmt.Println("  1. per-call tagger construction (one tagger per Tokenize call)")
		fmt.Println("  2. shared tagger reused across calls")
		os.Exit(1)
	}

	if err := benchmark(os.Stdout, *dir, *input, *backend, *batches); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// benchmark returns instead of exiting so the shared tagger is always closed.
func benchmark(out io.Writer, dir, input, backend string, batches int) error {
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if backend != "" {
		cfg.Tagger.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	reader, err := fs.NewSentenceFileReader(cfg.Batch.Encoding, true)
	if err != nil {
		return err
	}
	sentences, err := reader.ReadSentences(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	factory, err := tagger.NewFactory(cfg.Tagger)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "TOKENIZER BENCHMARK")
	fmt.Fprintln(out, strings.Repeat("=", 70))
	fmt.Fprintf(out, "Backend:   %s\n", cfg.Tagger.Backend)
	fmt.Fprintf(out, "Sentences: %d per call, %d calls per mode\n\n", len(sentences), batches)

	total := len(sentences) * batches

	perCallTime, tokens, err := timeCalls(analyzer.NewTokenizer(factory), sentences, batches)
	if err != nil {
		return fmt.Errorf("per-call run failed: %w", err)
	}
	report(out, "per-call", perCallTime, total, tokens)

	shared, err := factory()
	if err != nil {
		return fmt.Errorf("failed to start tagger: %w", err)
	}
	defer closeTagger(shared)
	sharedTime, tokens, err := timeCalls(analyzer.NewSharedTokenizer(shared), sentences, batches)
	if err != nil {
		return fmt.Errorf("shared run failed: %w", err)
	}
	report(out, "shared", sharedTime, total, tokens)

	fmt.Fprintln(out, strings.Repeat("-", 70))
	if sharedTime > 0 {
		fmt.Fprintf(out, "Per-call overhead: %.1fx\n", float64(perCallTime)/float64(sharedTime))
	}
	return nil
}

func timeCalls(tok port.Tokenizer, sentences []string, batches int) (time.Duration, int, error) {
	tokens := 0
	start := time.Now()
	for i := 0; i < batches; i++ {
		lists, err := tok.Tokenize(sentences)
		if err != nil {
			return 0, 0, err
		}
		for _, l := range lists {
			tokens += len(l)
		}
	}
	return time.Since(start), tokens, nil
}

func report(out io.Writer, mode string, elapsed time.Duration, sentences, tokens int) {
	secs := elapsed.Seconds()
	if secs == 0 {
		secs = 1e-9
	}
	fmt.Fprintf(out, "%-9s %10s  %10.0f sentences/s  %10.0f tokens/s\n",
		mode, elapsed.Round(time.Millisecond), float64(sentences)/secs, float64(tokens)/secs)
}

func closeTagger(t port.Tagger) {
	if c, ok := t.(io.Closer); ok {
		c.Close()
	}
}
