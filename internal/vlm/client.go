package vlm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	chatCompletionsSuffix = "/v1/chat/completions"
	systemPromptText      = "You are a multi-modal VQA Data Quality Assessment Expert, able to accurately assess the quality of image and dialogue data."
	defaultTimeout        = 120 * time.Second
)

// ErrRetriesExhausted marks an inference call whose transport retries were all consumed.
var ErrRetriesExhausted = errors.New("inference retries exhausted")

// Client talks to an OpenAI-compatible vision endpoint. Each concurrent task
// should own its own Client value; the zero HTTPClient is replaced lazily.
type Client struct {
	BaseURL    string
	Token      string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream"`
}

type chatChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Message chatChoiceMessage `json:"message"`
}

type chatCompletionResponse struct {
	Choices []chatChoice    `json:"choices"`
	Output  json.RawMessage `json:"output,omitempty"`
	Text    string          `json:"text,omitempty"`
}

// APIURL normalizes the configured base URL to the fixed chat-completions path.
func (c Client) APIURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if strings.Contains(base, chatCompletionsSuffix) {
		return base
	}
	return base + chatCompletionsSuffix
}

func (c Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{}
}

func (c Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

// Infer sends one prompt with zero or more image attachments and returns the
// generated text. Transport failures (network errors, timeouts, non-2xx
// statuses) are retried up to maxRetries attempts; exhaustion yields an error
// wrapping ErrRetriesExhausted.
func (c Client) Infer(ctx context.Context, promptText string, imagePaths []string, maxRetries int) (string, error) {
	content := make([]contentPart, 0, len(imagePaths)+1)
	for _, imagePath := range imagePaths {
		dataURI, encodeErr := EncodeImageDataURI(imagePath)
		if encodeErr != nil {
			return "", fmt.Errorf("encode image %s: %w", imagePath, encodeErr)
		}
		content = append(content, contentPart{Type: "image_url", ImageURL: &imageURL{URL: dataURI}})
	}
	content = append(content, contentPart{Type: "text", Text: promptText})

	payload := chatCompletionRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPromptText},
			{Role: "user", Content: content},
		},
		MaxTokens: c.MaxTokens,
		Stream:    false,
	}
	requestBytes, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return "", marshalErr
	}

	attempts := maxRetries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, callErr := c.callOnce(ctx, requestBytes)
		if callErr == nil {
			return text, nil
		}
		lastErr = callErr
		if ctx.Err() != nil {
			break
		}
		c.logger().Warn("inference attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(callErr))
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, attempts, lastErr)
}

func (c Client) callOnce(ctx context.Context, requestBytes []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	httpRequest, buildErr := http.NewRequestWithContext(callCtx, http.MethodPost, c.APIURL(), bytes.NewReader(requestBytes))
	if buildErr != nil {
		return "", buildErr
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+c.Token)

	httpResponse, httpErr := c.httpClient().Do(httpRequest)
	if httpErr != nil {
		return "", httpErr
	}
	defer func(closer io.ReadCloser) { _ = closer.Close() }(httpResponse.Body)

	bodyBytes, readErr := io.ReadAll(httpResponse.Body)
	if readErr != nil {
		return "", readErr
	}
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		return "", fmt.Errorf("inference http error %d: %s", httpResponse.StatusCode, truncateForLog(string(bodyBytes), 200))
	}
	return parseCompletion(bodyBytes)
}

// parseCompletion accepts the chat-completions shape plus the bare output and
// text shapes some gateways return.
func parseCompletion(bodyBytes []byte) (string, error) {
	var completion chatCompletionResponse
	if decodeErr := json.Unmarshal(bodyBytes, &completion); decodeErr != nil {
		return "", fmt.Errorf("decode completion: %w (body=%s)", decodeErr, truncateForLog(string(bodyBytes), 200))
	}
	if len(completion.Choices) > 0 {
		return strings.TrimSpace(completion.Choices[0].Message.Content), nil
	}
	if len(completion.Output) > 0 && string(completion.Output) != "null" {
		var outputString string
		if err := json.Unmarshal(completion.Output, &outputString); err == nil {
			return strings.TrimSpace(outputString), nil
		}
		var outputObject struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(completion.Output, &outputObject); err == nil && outputObject.Text != "" {
			return strings.TrimSpace(outputObject.Text), nil
		}
	}
	if completion.Text != "" {
		return strings.TrimSpace(completion.Text), nil
	}
	return "", fmt.Errorf("unsupported completion shape: %s", truncateForLog(string(bodyBytes), 200))
}

func truncateForLog(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
