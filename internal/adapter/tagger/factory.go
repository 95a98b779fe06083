package tagger

import (
	"fmt"
	"os"
	"time"

	"kotok/config"
	"kotok/internal/port"
)

// NewFactory returns a TaggerFactory for the configured backend.
func NewFactory(cfg config.TaggerConfig) (port.TaggerFactory, error) {
	switch cfg.Backend {
	case "komoran":
		opts := KomoranOptions{
			Python:         cfg.Komoran.Python,
			UserDictionary: cfg.Komoran.UserDictionary,
			ModelPath:      cfg.Komoran.ModelPath,
			MaxHeapSize:    cfg.Komoran.MaxHeapSize,
		}
		return func() (port.Tagger, error) {
			t, err := NewKomoranTagger(opts)
			if err != nil {
				return nil, err
			}
			return t, nil
		}, nil
	case "remote":
		opts := RemoteOptions{
			Endpoint:   cfg.Remote.Endpoint,
			Timeout:    time.Duration(cfg.Remote.TimeoutSeconds) * time.Second,
			MaxRetries: cfg.Remote.MaxRetries,
		}
		if cfg.Remote.APIKeyEnv != "" {
			opts.APIKey = os.Getenv(cfg.Remote.APIKeyEnv)
		}
		return func() (port.Tagger, error) {
			t, err := NewRemoteTagger(opts)
			if err != nil {
				return nil, err
			}
			return t, nil
		}, nil
	case "whitespace":
		return func() (port.Tagger, error) {
			return NewWhitespaceTagger(), nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported tagger backend: %s", cfg.Backend)
	}
}
