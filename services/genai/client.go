package genai

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

	"github.com/avast/retry-go/v4"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Collaborator message roles. The wire protocol calls the assistant side
// "model".
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrEmptyCompletion indicates the service answered without any text.
var ErrEmptyCompletion = errors.New("genai: empty completion")

// Message is one role-tagged entry in the request history.
type Message struct {
	Role string
	Text string
}

// Client calls a generative-language API for single text completions over
// a role-tagged message history. No streaming contract is assumed.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a generative-language client. Empty baseURL and model
// select the public endpoint and default model.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiPart struct {
	Text string `json:"text"`
}

type apiContent struct {
	Role  string    `json:"role"`
	Parts []apiPart `json:"parts"`
}

type apiRequest struct {
	Contents []apiContent `json:"contents"`
}

type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []apiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// transientError marks a failure worth retrying (rate limit or 5xx).
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Generate sends the ordered message history and returns the single text
// completion. Rate-limit and server errors are retried a bounded number of
// times before surfacing.
func (c *Client) Generate(ctx context.Context, messages []Message) (string, error) {
	contents := make([]apiContent, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != RoleUser && role != RoleModel {
			role = RoleUser
		}
		contents = append(contents, apiContent{
			Role:  role,
			Parts: []apiPart{{Text: m.Text}},
		})
	}

	var completion string
	err := retry.Do(
		func() error {
			text, err := c.call(ctx, apiRequest{Contents: contents})
			if err != nil {
				return err
			}
			completion = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var te *transientError
			return errors.As(err, &te)
		}),
	)
	if err != nil {
		return "", err
	}
	return completion, nil
}

// GenerateText is a one-shot convenience for a single user prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.Generate(ctx, []Message{{Role: RoleUser, Text: prompt}})
}

func (c *Client) call(ctx context.Context, request apiRequest) (string, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &transientError{fmt.Errorf("genai api request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &transientError{fmt.Errorf("genai api status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))}
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("genai api status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("genai api error %d: %s", result.Error.Code, result.Error.Message)
	}

	var sb strings.Builder
	for _, cand := range result.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
