package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/config"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/metrics"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// OpenAIPort calls an OpenAI-compatible chat-completions endpoint with the
// schema prompt and parses the JSON object the model returns.
type OpenAIPort struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewOpenAIPort creates the production extraction port.
func NewOpenAIPort(cfg config.ExtractionConfig, logger *zap.Logger) *OpenAIPort {
	return &OpenAIPort{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Extract sends the framed prompt and text and decodes the model's JSON
// answer. Every failure mode wraps ErrPort.
func (p *OpenAIPort) Extract(ctx context.Context, text string, schema FieldSchema) (map[string]any, error) {
	start := time.Now()
	defer func() {
		metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: schema.Prompt()},
			{Role: "user", Content: "Analyze this input: " + text},
		},
		Temperature:    0,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrPort, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrPort, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPort, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrPort, err)
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrPort, err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrPort, cr.Error.Message, cr.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrPort, resp.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrPort)
	}

	fields, err := parseModelJSON(cr.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("extraction completed",
		util.String("kind", schema.Kind),
		util.Int("fields", len(fields)),
	)
	return fields, nil
}

// parseModelJSON decodes the model output as a JSON object, tolerating a
// ```json fence but nothing looser. Malformed output is a port failure, never
// an empty default.
func parseModelJSON(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("%w: model output is not a JSON object: %v", ErrPort, err)
	}
	return fields, nil
}
