package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/voyager/internal/sse"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:streamGenerateContent?alt=sse"

	appIDHeader  = "X-App-Id"
	apiKeyHeader = "x-goog-api-key"
	readSize     = 4096
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Part struct {
	Text string `json:"text"`
}

// Message is one turn of conversational context sent upstream.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// UserMessage builds a single-part user turn.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{{Text: text}}}
}

type request struct {
	Contents []Message `json:"contents"`
}

type streamChunk struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c streamChunk) text() string {
	if len(c.Candidates) == 0 || len(c.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return c.Candidates[0].Content.Parts[0].Text
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Status)
}

// Callbacks receive the outcome of a Stream call. OnChunk fires once per text
// delta in arrival order; exactly one of OnComplete or OnError fires, unless
// the transport never returns.
type Callbacks struct {
	OnChunk    func(text string)
	OnComplete func()
	OnError    func(err error)
}

type Config struct {
	Endpoint string
	AppID    string
	APIKey   string
}

type Client struct {
	endpoint string
	appID    string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		appID:    cfg.AppID,
		apiKey:   cfg.APIKey,
		// No Timeout: generation streams run as long as the model writes.
		client: &http.Client{},
		logger: logger,
	}
}

// Stream posts messages to the generation endpoint and reports text deltas
// through cb as they arrive. It returns once the stream has ended.
func (c *Client) Stream(ctx context.Context, messages []Message, cb Callbacks) {
	if err := c.stream(ctx, messages, cb.OnChunk); err != nil {
		c.logger.Error("generation stream failed", "error", err)
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return
	}
	if cb.OnComplete != nil {
		cb.OnComplete()
	}
}

// Collect streams messages and returns the concatenated text.
func (c *Client) Collect(ctx context.Context, messages []Message) (string, error) {
	var (
		sb     strings.Builder
		result error
	)
	c.Stream(ctx, messages, Callbacks{
		OnChunk: func(text string) { sb.WriteString(text) },
		OnError: func(err error) { result = err },
	})
	if result != nil {
		return "", result
	}
	return sb.String(), nil
}

func (c *Client) stream(ctx context.Context, messages []Message, onChunk func(string)) error {
	body, err := json.Marshal(request{Contents: messages})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.appID != "" {
		req.Header.Set(appIDHeader, c.appID)
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return errors.New("no response body")
	}

	dec := sse.NewDecoder(func(evt sse.Event) {
		var chunk streamChunk
		if err := json.Unmarshal([]byte(evt.Data), &chunk); err != nil {
			c.logger.Warn("skipping malformed stream event", "error", err, "data", evt.Data)
			return
		}
		if text := chunk.text(); text != "" && onChunk != nil {
			onChunk(text)
		}
	})

	buf := make([]byte, readSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			dec.Close()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
	}
}
