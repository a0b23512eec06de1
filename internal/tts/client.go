package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "tts-1"
	defaultVoice       = "nova"
	defaultHTTPTimeout = 120 * time.Second
	maxErrorBody       = 512
)

// Voices accepted by the speech endpoint.
var Voices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// Config captures the runtime settings required to talk to the speech API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Voice          string
	TimeoutSeconds int
}

// Client wraps an OpenAI-compatible /audio/speech endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a speech client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:   strings.TrimSpace(cfg.Model),
			Voice:   strings.ToLower(strings.TrimSpace(cfg.Voice)),
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	if client.cfg.Voice == "" {
		client.cfg.Voice = defaultVoice
	}
	return client
}

// Request describes one synthesis call.
type Request struct {
	Text string
	// Voice overrides the configured voice when set.
	Voice      string
	OutputPath string
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("tts request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Synthesize converts req.Text to speech and writes the audio to req.OutputPath.
func (c *Client) Synthesize(ctx context.Context, req Request) (string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", errors.New("tts synthesize: text required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("tts synthesize: api key required (set OPENAI_API_KEY)")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return "", errors.New("tts synthesize: output path required")
	}
	voice := strings.ToLower(strings.TrimSpace(req.Voice))
	if voice == "" {
		voice = c.cfg.Voice
	}
	if !slices.Contains(Voices, voice) {
		return "", fmt.Errorf("tts synthesize: unsupported voice %q (supported: %s)", voice, strings.Join(Voices, ", "))
	}

	payload, err := json.Marshal(speechRequest{Model: c.cfg.Model, Voice: voice, Input: text})
	if err != nil {
		return "", fmt.Errorf("tts synthesize: encode payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("tts synthesize: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("tts synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := writeAtomic(req.OutputPath, resp.Body); err != nil {
		return "", fmt.Errorf("tts synthesize: %w", err)
	}
	return req.OutputPath, nil
}

func writeAtomic(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".speech-*")
	if err != nil {
		return fmt.Errorf("create temp audio: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	written, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	if written == 0 {
		return errors.New("empty audio response")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store audio: %w", err)
	}
	return nil
}
