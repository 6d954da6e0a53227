// Package slack provides a minimal Slack Web API client: posting replies
// and paging through channel history.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Slack Web API operations used by the delivery path and
// the replay/collect drivers.
type Client interface {
	// PostMessage posts text to a channel, optionally as a thread reply.
	PostMessage(ctx context.Context, req PostMessageRequest) (*PostMessageResponse, error)
	// History fetches a page of channel messages.
	History(ctx context.Context, req HistoryRequest) (*HistoryResponse, error)
}

// PostMessageRequest is the body for chat.postMessage.
type PostMessageRequest struct {
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

// PostMessageResponse is the parsed chat.postMessage response.
type PostMessageResponse struct {
	OK      bool   `json:"ok"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	Error   string `json:"error,omitempty"`
}

// HistoryRequest configures a conversations.history call.
type HistoryRequest struct {
	Channel string
	Limit   int
	Cursor  string
}

// HistoryResponse is the parsed conversations.history response.
type HistoryResponse struct {
	OK               bool              `json:"ok"`
	Messages         []json.RawMessage `json:"messages"`
	HasMore          bool              `json:"has_more"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
	Error string `json:"error,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Slack Web API client authenticated with a bot token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://slack.com/api",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) PostMessage(ctx context.Context, req PostMessageRequest) (*PostMessageResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "slack: marshal post message")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "slack: create post request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result PostMessageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "slack: unmarshal post response")
	}
	if !result.OK {
		return nil, eris.Errorf("slack: chat.postMessage failed: %s", result.Error)
	}
	return &result, nil
}

func (c *httpClient) History(ctx context.Context, req HistoryRequest) (*HistoryResponse, error) {
	q := url.Values{}
	q.Set("channel", req.Channel)
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Cursor != "" {
		q.Set("cursor", req.Cursor)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/conversations.history?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "slack: create history request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result HistoryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "slack: unmarshal history response")
	}
	if !result.OK {
		return nil, eris.Errorf("slack: conversations.history failed: %s", result.Error)
	}
	return &result, nil
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "slack: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "slack: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("slack: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
