package tagger

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"k8s.io/klog/v2"
	"kotok/internal/domain"
)

//go:embed komoran_helper.py
var komoranHelper string

// KomoranOptions configures the konlpy Komoran helper process.
type KomoranOptions struct {
	Python         string
	UserDictionary string
	ModelPath      string
	MaxHeapSize    int
}

type helperOptions struct {
	UserDic     string `json:"userdic,omitempty"`
	ModelPath   string `json:"modelpath,omitempty"`
	MaxHeapSize int    `json:"max_heap_size,omitempty"`
}

type helperRequest struct {
	Text string `json:"text"`
}

type helperResponse struct {
	Ready  bool       `json:"ready,omitempty"`
	Morphs [][]string `json:"morphs"`
	Error  string     `json:"error,omitempty"`
}

// KomoranTagger drives a Python process hosting konlpy's Komoran. The process
// is started once and answers one JSON line per request.
type KomoranTagger struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *bytes.Buffer
	closed bool
}

// NewKomoranTagger starts the helper and waits until Komoran is loaded.
func NewKomoranTagger(opts KomoranOptions) (*KomoranTagger, error) {
	python := opts.Python
	if python == "" {
		python = "python3"
	}
	args, err := json.Marshal(helperOptions{
		UserDic:     opts.UserDictionary,
		ModelPath:   opts.ModelPath,
		MaxHeapSize: opts.MaxHeapSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode helper options: %w", err)
	}
	return startKomoran(komoranCommand(python, string(args)))
}

// komoranCommand pins the helper's stdio to UTF-8; Python otherwise uses the
// locale encoding (cp949 on Korean Windows).
func komoranCommand(python, args string) *exec.Cmd {
	cmd := exec.Command(python, "-c", komoranHelper, args)
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")
	return cmd
}

func startKomoran(cmd *exec.Cmd) (*KomoranTagger, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open helper stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open helper stdout: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start komoran helper: %w", err)
	}
	klog.V(2).Infof("Started komoran helper (pid %d)", cmd.Process.Pid)

	t := &KomoranTagger{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
		stderr: stderr,
	}

	resp, err := t.readResponse()
	if err != nil {
		t.kill()
		return nil, err
	}
	if resp.Error != "" {
		t.kill()
		return nil, &HelperError{Message: resp.Error}
	}
	if !resp.Ready {
		t.kill()
		return nil, fmt.Errorf("komoran helper sent unexpected handshake")
	}
	return t, nil
}

// Pos returns Komoran's (surface form, tag) pairs for sentence.
func (t *KomoranTagger) Pos(sentence string) ([]domain.Morpheme, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrTaggerClosed
	}

	line, err := json.Marshal(helperRequest{Text: sentence})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	line = append(line, '\n')
	if _, err := t.stdin.Write(line); err != nil {
		return nil, fmt.Errorf("failed to write to komoran helper: %w", err)
	}

	resp, err := t.readResponse()
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &HelperError{Message: resp.Error}
	}

	morphs := make([]domain.Morpheme, 0, len(resp.Morphs))
	for _, pair := range resp.Morphs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("komoran helper returned malformed pair %q", pair)
		}
		morphs = append(morphs, domain.Morpheme{SurfaceForm: pair[0], Tag: pair[1]})
	}
	return morphs, nil
}

func (t *KomoranTagger) readResponse() (*helperResponse, error) {
	data, err := t.stdout.ReadBytes('\n')
	if err != nil {
		if err == io.EOF {
			return nil, t.exitError()
		}
		return nil, fmt.Errorf("failed to read from komoran helper: %w", err)
	}
	var resp helperResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse helper response %q: %w", truncate(string(data), 200), err)
	}
	return &resp, nil
}

// exitError reaps the helper after it closed stdout.
func (t *KomoranTagger) exitError() error {
	t.stdin.Close()
	waitErr := t.cmd.Wait()
	t.closed = true
	msg := strings.TrimSpace(t.stderr.String())
	if msg == "" && waitErr != nil {
		msg = waitErr.Error()
	}
	if msg == "" {
		msg = "exited"
	}
	return &HelperError{Message: truncate(msg, 500), Exited: true}
}

// Close stops the helper process.
func (t *KomoranTagger) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.stdin.Close()
	err := t.cmd.Wait()
	klog.V(2).Infof("Stopped komoran helper")
	return err
}

func (t *KomoranTagger) kill() {
	t.stdin.Close()
	if t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	t.cmd.Wait()
	t.closed = true
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
