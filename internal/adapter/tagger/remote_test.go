package tagger

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kotok/internal/domain"
)

func newTestRemote(t *testing.T, url string, retries int) *RemoteTagger {
	t.Helper()
	tagger, err := NewRemoteTagger(RemoteOptions{
		Endpoint:     url + "/",
		APIKey:       "secret",
		Timeout:      2 * time.Second,
		MaxRetries:   retries,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	return tagger
}

func TestRemoteTagger_Pos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pos", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req posRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "밥을 먹었다", req.Text)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"morphs":[{"surface":"밥","tag":"NNG"},{"surface":"을","tag":"JKO"},{"surface":"먹","tag":"VV"},{"surface":"었","tag":"EP"},{"surface":"다","tag":"EF"}]}`))
	}))
	defer server.Close()

	tagger := newTestRemote(t, server.URL, 0)
	defer tagger.Close()

	morphs, err := tagger.Pos("밥을 먹었다")
	require.NoError(t, err)
	require.Len(t, morphs, 5)
	assert.Equal(t, domain.Morpheme{SurfaceForm: "을", Tag: "JKO"}, morphs[1])
}

func TestRemoteTagger_EmptyMorphs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	morphs, err := newTestRemote(t, server.URL, 0).Pos("")
	require.NoError(t, err)
	assert.NotNil(t, morphs)
	assert.Empty(t, morphs)
}

func TestRemoteTagger_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"morphs":[{"surface":"네","tag":"IC"}]}`))
	}))
	defer server.Close()

	morphs, err := newTestRemote(t, server.URL, 3).Pos("네")
	require.NoError(t, err)
	assert.Equal(t, []domain.Morpheme{{SurfaceForm: "네", Tag: "IC"}}, morphs)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRemoteTagger_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("unsupported encoding"))
	}))
	defer server.Close()

	_, err := newTestRemote(t, server.URL, 3).Pos("x")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "unsupported encoding", httpErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRemoteTagger_RetriesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestRemote(t, server.URL, 1).Pos("x")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

func TestRemoteTagger_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"dictionary not loaded"}`))
	}))
	defer server.Close()

	_, err := newTestRemote(t, server.URL, 0).Pos("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dictionary not loaded")
}

func TestNewRemoteTagger_RequiresEndpoint(t *testing.T) {
	_, err := NewRemoteTagger(RemoteOptions{})
	assert.Error(t, err)
}
