package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.OllamaURL,
		model:      cfg.Model,
		logger:     logger.With("component", "ollama-client"),
	}
}

type ollamaRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Format string   `json:"format,omitempty"`
	Stream bool     `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate sends the prompt and clip frames to the model and returns its raw
// text. The model is asked for JSON, but the caller still has to parse
// defensively.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if len(req.Images) == 0 {
		return "", errors.New("no frame data provided")
	}

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, base64.StdEncoding.EncodeToString(img))
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		Images: images,
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	var out ollamaResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != "" {
			return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}

	c.logger.Debug("generation complete",
		"model", c.model,
		"images", len(images),
		"response_len", len(out.Response),
		"duration", time.Since(start))

	return out.Response, nil
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
