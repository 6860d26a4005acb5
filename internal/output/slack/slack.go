// Package slack delivers rendered reports to a Slack channel via
// chat.postMessage, translating the renderer's block sequence into Slack
// Block Kit JSON.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crimson-sun/vitals/internal/output"
	"github.com/crimson-sun/vitals/internal/render"
)

const (
	defaultEndpoint = "https://slack.com/api"
	defaultTimeout  = 10 * time.Second
	maxRetries      = 3
)

// Option configures a slack Output.
type Option func(*Output)

// WithEndpoint overrides the Slack API base URL. Used in tests.
func WithEndpoint(url string) Option {
	return func(o *Output) { o.endpoint = url }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.client.Timeout = d }
}

// Output posts a rendered report to a Slack channel. Retries on 5xx and
// 429 with exponential backoff; Slack-level errors ("ok": false) are
// surfaced verbatim and never retried.
type Output struct {
	client   *http.Client
	endpoint string
	token    string
	channel  string
}

// New creates a Slack output posting as the given bot token to channel.
func New(token, channel string, opts ...Option) *Output {
	o := &Output{
		client:   &http.Client{Timeout: defaultTimeout},
		endpoint: defaultEndpoint,
		token:    token,
		channel:  channel,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// textObject is a Slack text composition object.
type textObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// apiBlock is one Slack Block Kit block. Only the fields the mapped block
// type uses are populated.
type apiBlock struct {
	Type     string       `json:"type"`
	Text     *textObject  `json:"text,omitempty"`
	Fields   []textObject `json:"fields,omitempty"`
	Elements []textObject `json:"elements,omitempty"`
	ImageURL string       `json:"image_url,omitempty"`
	AltText  string       `json:"alt_text,omitempty"`
}

type postMessageRequest struct {
	Channel string     `json:"channel"`
	Text    string     `json:"text"`
	Blocks  []apiBlock `json:"blocks"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Deliver maps the rendered blocks onto Block Kit and posts them.
func (o *Output) Deliver(ctx context.Context, rec output.Record) error {
	req := postMessageRequest{
		Channel: o.channel,
		Text:    rec.Message.Fallback,
		Blocks:  mapBlocks(rec.Message.Blocks),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("slack output: marshal: %w", err)
	}
	return o.postWithRetry(ctx, body)
}

// Close is a no-op; the output holds no persistent resources.
func (o *Output) Close() error {
	return nil
}

// mapBlocks translates renderer blocks into Slack Block Kit blocks.
// Header text becomes plain_text, everything else mrkdwn.
func mapBlocks(blocks []render.Block) []apiBlock {
	out := make([]apiBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case render.BlockHeader:
			out = append(out, apiBlock{
				Type: "header",
				Text: &textObject{Type: "plain_text", Text: b.Text, Emoji: true},
			})
		case render.BlockSection:
			ab := apiBlock{Type: "section"}
			if b.Text != "" {
				ab.Text = &textObject{Type: "mrkdwn", Text: b.Text}
			}
			for _, f := range b.Fields {
				ab.Fields = append(ab.Fields, textObject{Type: "mrkdwn", Text: f})
			}
			out = append(out, ab)
		case render.BlockContext:
			out = append(out, apiBlock{
				Type:     "context",
				Elements: []textObject{{Type: "mrkdwn", Text: b.Text}},
			})
		case render.BlockDivider:
			out = append(out, apiBlock{Type: "divider"})
		case render.BlockImage:
			out = append(out, apiBlock{
				Type:     "image",
				ImageURL: b.ImageURL,
				AltText:  b.AltText,
			})
		}
	}
	return out
}

// postWithRetry sends the chat.postMessage body, retrying on 5xx and 429.
func (o *Output) postWithRetry(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return fmt.Errorf("slack output: %w", ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			o.endpoint+"/chat.postMessage", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("slack output: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+o.token)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		resp, err := o.client.Do(req)
		if err != nil {
			return fmt.Errorf("slack output: %w", err)
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("slack output: HTTP %d", resp.StatusCode)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("slack output: read response: %w", err)
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("slack output: HTTP %d", resp.StatusCode)
		}

		var pm postMessageResponse
		if err := json.Unmarshal(respBody, &pm); err != nil {
			return fmt.Errorf("slack output: decode response: %w", err)
		}
		if !pm.OK {
			return fmt.Errorf("slack output: API error: %s", pm.Error)
		}
		return nil
	}
	return lastErr
}
