package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/flightdeck/pkg/cache"
	"github.com/matzehuels/flightdeck/pkg/errors"
	"github.com/matzehuels/flightdeck/pkg/httputil"
	"github.com/matzehuels/flightdeck/pkg/observability"
	"github.com/matzehuels/flightdeck/pkg/panel"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	httpTimeout    = 60 * time.Second

	// cacheTTL bounds how long a verdict for an identical
	// (model, command, state) triple is replayed from cache.
	cacheTTL = 24 * time.Hour
)

// ClientConfig configures the OpenAI-compatible chat client.
type ClientConfig struct {
	BaseURL string // API root, e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
}

// Client calls an OpenAI-compatible chat completions endpoint and
// enforces the cockpit safety constraints on the model's answer.
// It implements Adjuster.
type Client struct {
	http  *http.Client
	cache cache.Cache
	cfg   ClientConfig
}

// NewClient creates a chat client. Empty BaseURL and Model fall back to
// the OpenAI defaults. Pass a NullCache to disable verdict caching.
func NewClient(cfg ClientConfig, c cache.Cache) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:  &http.Client{Timeout: httpTimeout},
		cache: c,
		cfg:   cfg,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

// Configured reports whether the client has credentials to call the API.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// === chat completions wire types ===

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Adjust sends the command and current state to the model and returns
// its verdict with the safety constraints enforced.
//
// Identical calls with an accepted verdict are answered from cache;
// rejections are never cached. A rejected command is a successful call
// (Result.Success false); only configuration, transport, and decoding
// failures return an error.
func (c *Client) Adjust(ctx context.Context, command string, current panel.State) (Result, error) {
	start := time.Now()
	observability.Agent().OnAdjustStart(ctx, command)

	res, err := c.adjust(ctx, command, current)
	observability.Agent().OnAdjustComplete(ctx, command, err == nil && res.Success, time.Since(start), err)
	return res, err
}

func (c *Client) adjust(ctx context.Context, command string, current panel.State) (Result, error) {
	if err := errors.ValidateCommand(command); err != nil {
		return Result{}, err
	}
	if !c.Configured() {
		return Result{}, errors.New(errors.ErrCodeAgentUnavailable, "no API key configured")
	}
	current = current.Normalize()

	key := cache.AgentKey(c.cfg.Model, command, current)
	if data, hit, _ := c.cache.Get(ctx, key); hit {
		observability.Cache().OnCacheHit(ctx, "agent")
		var res Result
		if err := json.Unmarshal(data, &res); err == nil {
			_, res = Apply(current, res)
			return res, nil
		}
		// Corrupt entry: drop it and fall through to a live call.
		_ = c.cache.Delete(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, "agent")
	}

	prompt, err := BuildPrompt(command, current)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "build prompt")
	}

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return Result{}, err
	}

	res, err := ParseResult(raw)
	if err != nil {
		return Result{}, err
	}
	_, res = Apply(current, res)

	// Only accepted verdicts are cached. A rejection is asked again on
	// the next call so a rephrased state or a different model answer can
	// still succeed.
	if res.Success {
		if data, err := json.Marshal(res); err == nil {
			if err := c.cache.Set(ctx, key, data, cacheTTL); err == nil {
				observability.Cache().OnCacheSet(ctx, "agent", len(data))
			}
		}
	}
	return res, nil
}

// complete performs one chat completions round trip and returns the
// assistant message content. Network failures and 5xx responses are
// retried with backoff; 4xx responses fail immediately.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		// Temperature 0 keeps verdicts reproducible across calls.
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}

	var content string
	err = httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "call model endpoint")}
		}
		defer resp.Body.Close()

		if err := checkStatus(resp.StatusCode); err != nil {
			return err
		}

		var decoded chatResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&decoded); err != nil {
			return errors.Wrap(errors.ErrCodeAgentResponse, err, "decode completions response")
		}
		if decoded.Error != nil {
			return errors.New(errors.ErrCodeAgentResponse, "model endpoint error: %s", decoded.Error.Message)
		}
		if len(decoded.Choices) == 0 {
			return errors.New(errors.ErrCodeAgentResponse, "model returned no choices")
		}
		content = decoded.Choices[0].Message.Content
		return nil
	})
	return content, err
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: &errors.RateLimitedError{RetryAfter: 5}}
	case code >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeAgentUnavailable, "model endpoint returned status %d", code)}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeAgentUnavailable, "model endpoint rejected credentials (status %d)", code)
	default:
		return errors.New(errors.ErrCodeAgentResponse, "model endpoint returned status %d", code)
	}
}

// Ensure Client implements Adjuster.
var _ Adjuster = (*Client)(nil)

// String describes the client target for logs.
func (c *Client) String() string {
	return fmt.Sprintf("openai(%s, model=%s)", c.cfg.BaseURL, c.cfg.Model)
}
