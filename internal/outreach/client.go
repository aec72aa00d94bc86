// engine/internal/outreach/client.go
package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const generateTimeout = 5 * time.Minute

// preferredModels is the pick order when the configured model isn't on
// the server.
var preferredModels = []string{
	"llama3:70b", "llama3-70b", "llama-3-70b", "llama-3:70b", "llama3", "llama-3",
	"mistral", "phi3", "phi-3", "phi", "gemma", "qwen",
}

// Client talks to an Ollama server.
type Client struct {
	BaseURL string
	Model   string

	HTTPClient *http.Client
	Limiter    *HostLimiter
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: &http.Client{Timeout: generateTimeout},
		Limiter:    NewHostLimiter(1, 2),
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	return c.Limiter.WaitURL(ctx, c.BaseURL)
}

// Available probes the server root.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Models lists what the server can run, trying both tag endpoints.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var lastErr error
	for _, ep := range []string{"/api/tags", "/api/models"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+ep, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%s: status %d", ep, resp.StatusCode)
			continue
		}

		var tagged struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		if err := json.Unmarshal(body, &tagged); err == nil && len(tagged.Models) > 0 {
			names := make([]string, 0, len(tagged.Models))
			for _, m := range tagged.Models {
				names = append(names, m.Name)
			}
			return names, nil
		}
		return nil, nil
	}
	return nil, lastErr
}

// PickModel chooses the configured model when present, otherwise the
// first preference hit, otherwise the first model on the server.
func PickModel(models []string, configured string) string {
	if len(models) == 0 {
		return ""
	}
	for _, m := range models {
		if m == configured {
			return m
		}
	}
	for _, pref := range preferredModels {
		for _, m := range models {
			if strings.Contains(strings.ToLower(m), pref) {
				return m
			}
		}
	}
	return models[0]
}

type generatePayload struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

// Generate runs a non-streaming completion on model.
func (c *Client) Generate(ctx context.Context, model, system, prompt string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	payload := generatePayload{
		Model:  model,
		Prompt: prompt,
		System: system,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.7,
			TopP:        0.9,
			TopK:        40,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[ollama] generating with %s", model)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("generate: decode: %w", err)
	}
	return out.Response, nil
}
