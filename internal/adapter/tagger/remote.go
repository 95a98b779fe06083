package tagger

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"k8s.io/klog/v2"
	"kotok/internal/domain"
)

const (
	defaultRemoteTimeout = 30 * time.Second
	posPath              = "/pos"
)

// RemoteOptions configures a RemoteTagger.
type RemoteOptions struct {
	Endpoint     string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

type posRequest struct {
	Text string `json:"text"`
}

type posResponse struct {
	Morphs []domain.Morpheme `json:"morphs"`
	Error  string            `json:"error,omitempty"`
}

// RemoteTagger asks an HTTP tagging service for part-of-speech analyses.
// It is safe for concurrent use.
type RemoteTagger struct {
	endpoint string
	apiKey   string
	client   *retryablehttp.Client
}

func NewRemoteTagger(opts RemoteOptions) (*RemoteTagger, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("remote tagger endpoint is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRemoteTimeout
	}

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = opts.Timeout
	if opts.MaxRetries >= 0 {
		client.RetryMax = opts.MaxRetries
	}
	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}
	client.Logger = klogAdapter{}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &RemoteTagger{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		apiKey:   opts.APIKey,
		client:   client,
	}, nil
}

func (t *RemoteTagger) Pos(sentence string) ([]domain.Morpheme, error) {
	body, err := json.Marshal(posRequest{Text: sentence})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, t.endpoint+posPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	// With the passthrough handler an exhausted retry still hands back the
	// last response; its status is reported below.
	resp, err := t.client.Do(req)
	if resp == nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: truncate(string(data), 200)}
	}

	var posResp posResponse
	if err := json.Unmarshal(data, &posResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", truncate(string(data), 200), err)
	}
	if posResp.Error != "" {
		return nil, fmt.Errorf("tagging service error: %s", posResp.Error)
	}
	if posResp.Morphs == nil {
		return []domain.Morpheme{}, nil
	}
	return posResp.Morphs, nil
}

// Close releases idle connections.
func (t *RemoteTagger) Close() error {
	t.client.HTTPClient.CloseIdleConnections()
	return nil
}

// klogAdapter routes retryablehttp logs to klog.
type klogAdapter struct{}

func (klogAdapter) Error(msg string, keysAndValues ...interface{}) {
	klog.ErrorS(nil, msg, keysAndValues...)
}

func (klogAdapter) Info(msg string, keysAndValues ...interface{}) {
	klog.V(2).InfoS(msg, keysAndValues...)
}

func (klogAdapter) Debug(msg string, keysAndValues ...interface{}) {
	klog.V(4).InfoS(msg, keysAndValues...)
}

func (klogAdapter) Warn(msg string, keysAndValues ...interface{}) {
	klog.InfoS(msg, keysAndValues...)
}
