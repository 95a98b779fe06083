package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
	"kotok/config"
	"kotok/internal/adapter/analyzer"
	"kotok/internal/adapter/tagger"
)

var (
	cfgFile   string
	cfg       *config.Config
	rootDir   string
	klogFlags = flag.NewFlagSet("klog", flag.ContinueOnError)
)

var rootCmd = &cobra.Command{
	Use:   "kotok",
	Short: "Korean sentence tokenizer backed by a morphological analyzer",
	Long: `kotok splits Korean sentences into morpheme surface forms using Komoran
(through konlpy), a remote tagging service, or a built-in whitespace tagger.

Example usage:
  kotok tokenize "아버지가 방에 들어가신다"   # Tokenize one sentence
  cat corpus.txt | kotok tokenize --format text  # One token line per input line
  kotok batch ./corpus                           # Tokenize every *.txt into .kotok/tokens.db
  kotok show -d ./corpus news.txt                # Print stored token lists`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir = "."
		}
		// The store keeps absolute paths.
		rootDir, err = filepath.Abs(rootDir)
		if err != nil {
			return fmt.Errorf("failed to resolve root directory: %w", err)
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if !cmd.Flags().Changed("v") && cfg.Logging.Verbosity > 0 {
			if err := klogFlags.Set("v", strconv.Itoa(cfg.Logging.Verbosity)); err != nil {
				return fmt.Errorf("failed to set log verbosity: %w", err)
			}
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		klog.Flush()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
}

func init() {
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlag(klogFlags.Lookup("v"))
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./kotok.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// newTokenizer builds the tokenizer the config asks for. The returned
// release func must be called once the tokenizer is no longer used.
func newTokenizer(cfg *config.Config) (*analyzer.Tokenizer, func(), error) {
	factory, err := tagger.NewFactory(cfg.Tagger)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Tagger.Reuse {
		return analyzer.NewTokenizer(factory), func() {}, nil
	}

	t, err := factory()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start %s tagger: %w", cfg.Tagger.Backend, err)
	}
	release := func() {
		if closer, ok := t.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				klog.Warningf("Failed to close %s tagger: %v", cfg.Tagger.Backend, err)
			}
		}
	}
	return analyzer.NewSharedTokenizer(t), release, nil
}
