package airuntime

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/stylescout/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client talks to an Ollama-compatible model server and adapts it to the
// session-oriented runtime the analyzer consumes. Sessions accumulate turns
// client-side; the full conversation is replayed on every prompt because the
// chat endpoint is stateless.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
}

// NewClient creates a runtime client for the given server and model name
func NewClient(baseURL, model string) *Client {
	// local model servers handle one generation at a time; keep a small
	// burst so availability probes never queue behind analysis calls
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL:     baseURL,
		model:       model,
		rateLimiter: limiter,
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Availability probes the model server. An unreachable server maps to "no",
// a reachable server without the configured model maps to "after-download"
// (the server can pull it), and a listed model is "available". Probe
// failures are part of the tri-state, not errors.
func (c *Client) Availability(ctx context.Context) (domain.Availability, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return domain.AvailabilityNo, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[RUNTIME] availability probe failed: %v", err)
		return domain.AvailabilityNo, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[RUNTIME] availability probe status %d", resp.StatusCode)
		return domain.AvailabilityNo, nil
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		log.Printf("[RUNTIME] availability decode error: %v", err)
		return domain.AvailabilityNo, nil
	}

	for _, m := range tags.Models {
		if m.Name == c.model {
			return domain.AvailabilityAvailable, nil
		}
	}
	log.Printf("[RUNTIME] model %q not present on server, download required", c.model)
	return domain.AvailabilityAfterDownload, nil
}

// CreateSession starts a fresh conversation. The session is a client-side
// transcript; nothing is allocated on the server until the first prompt.
func (c *Client) CreateSession(_ context.Context, opts domain.SessionOptions) (domain.ModelSession, error) {
	s := &session{client: c, opts: opts}
	if opts.SystemPrompt != "" {
		s.messages = append(s.messages, chatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	return s, nil
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

type session struct {
	client    *Client
	opts      domain.SessionOptions
	messages  []chatMessage
	destroyed bool
}

// Append adds user turns to the transcript without prompting the model
func (s *session) Append(_ context.Context, turns []domain.Turn) error {
	if s.destroyed {
		return domain.ErrRuntimeUnavailable
	}
	for _, turn := range turns {
		msg := chatMessage{Role: "user", Content: turn.Text}
		if len(turn.ImageJPEG) > 0 {
			msg.Images = []string{base64.StdEncoding.EncodeToString(turn.ImageJPEG)}
		}
		s.messages = append(s.messages, msg)
	}
	return nil
}

// Prompt sends the transcript plus the given text and returns the model's
// reply. Transient failures are retried up to 3 times with linear backoff.
func (s *session) Prompt(ctx context.Context, text string) (string, error) {
	if s.destroyed {
		return "", domain.ErrRuntimeUnavailable
	}

	payload := chatRequest{
		Model:    s.client.model,
		Messages: append(append([]chatMessage{}, s.messages...), chatMessage{Role: "user", Content: text}),
		Stream:   false,
		Options:  chatOptions{Temperature: s.opts.Temperature, TopK: s.opts.TopK},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := s.client.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		reply, err := s.client.chat(ctx, body)
		if err != nil {
			log.Printf("[RUNTIME] chat error (attempt %d): %v", attempt, err)
			// a missing model will not heal between retries
			if errors.Is(err, domain.ErrModelNotReady) {
				return "", err
			}
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		s.messages = append(s.messages,
			chatMessage{Role: "user", Content: text},
			chatMessage{Role: "assistant", Content: reply})
		return reply, nil
	}

	log.Printf("[RUNTIME] all chat retries failed")
	return "", lastErr
}

// Destroy drops the transcript; further calls on the session fail
func (s *session) Destroy() {
	s.destroyed = true
	s.messages = nil
}

func (c *Client) chat(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRuntimeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", domain.ErrModelNotReady, string(respBody))
		}
		return "", fmt.Errorf("%w: status %d, body: %s", domain.ErrRuntimeUnavailable, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	return chatResp.Message.Content, nil
}
