package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNoImage is returned when the inference API answered without an image URL
var ErrNoImage = errors.New("image: no image URL returned")

// Params are the optional knobs forwarded to the inference API.
type Params struct {
	ModelID        string
	Width          int
	Height         int
	Steps          int
	NegativePrompt string
}

// Generator is the port the chat pipeline consumes.
type Generator interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

// Config configures the hosted-inference client
type Config struct {
	Endpoint string
	APIKey   string
	ModelID  string
	Timeout  time.Duration
}

// Client calls a hosted image-inference API that accepts multipart form
// requests and returns JSON with image URLs.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates an image generation client
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("image: API key is required")
	}
	if config.Endpoint == "" {
		return nil, fmt.Errorf("image: endpoint is required")
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type inferenceResponse struct {
	Images  []string `json:"images"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Generate submits a prompt and returns the URL of the generated image.
func (c *Client) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("image: prompt is required")
	}

	modelID := params.ModelID
	if modelID == "" {
		modelID = c.config.ModelID
	}
	if modelID == "" {
		return "", fmt.Errorf("image: model id is required")
	}

	var body strings.Builder
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"access_token": c.config.APIKey,
		"model_id":     modelID,
		"prompt":       prompt,
		"num_images":   "1",
	}
	if params.Width > 0 {
		fields["width"] = strconv.Itoa(params.Width)
	}
	if params.Height > 0 {
		fields["height"] = strconv.Itoa(params.Height)
	}
	if params.Steps > 0 {
		fields["steps"] = strconv.Itoa(params.Steps)
	}
	if params.NegativePrompt != "" {
		fields["negative_prompt"] = params.NegativePrompt
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("image: building request: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("image: building request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, strings.NewReader(body.String()))
	if err != nil {
		return "", fmt.Errorf("image: creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("image: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image: API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed inferenceResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("image: decoding response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("image: API error: %s", parsed.Error)
	}
	if len(parsed.Images) == 0 || parsed.Images[0] == "" {
		return "", ErrNoImage
	}

	return parsed.Images[0], nil
}
