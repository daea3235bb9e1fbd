// Package display adapts the channel-agnostic payloads onto a message-board
// HTTP API. The board owns the handle space: sending a payload returns the
// message handle that later edits and deletes address.
package display

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/partyboard/internal/party/render"
)

// Client talks to a message-board endpoint over JSON. It implements both the
// display surface and the operator notifier contracts.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a board client. baseURL is the API root, token an
// optional bearer credential.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("display endpoint is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse display endpoint: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type messageBody struct {
	Title       string   `json:"title"`
	Body        string   `json:"body,omitempty"`
	Schedule    string   `json:"schedule,omitempty"`
	SlotRows    []string `json:"slot_rows,omitempty"`
	WaitingRows []string `json:"waiting_rows,omitempty"`
	Terminal    bool     `json:"terminal,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send posts a new message to the given board location and returns the
// handle assigned by the board.
func (c *Client) Send(ctx context.Context, location string, payload render.Payload) (string, error) {
	if strings.TrimSpace(location) == "" {
		return "", fmt.Errorf("board location is required")
	}
	target := fmt.Sprintf("%s/locations/%s/messages", c.baseURL, url.PathEscape(location))
	body, err := c.do(ctx, http.MethodPost, target, encodePayload(payload))
	if err != nil {
		return "", err
	}

	var resp sendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("board returned no message id")
	}
	return resp.ID, nil
}

// Edit replaces the content of an existing message.
func (c *Client) Edit(ctx context.Context, handle string, payload render.Payload) error {
	target := fmt.Sprintf("%s/messages/%s", c.baseURL, url.PathEscape(handle))
	_, err := c.do(ctx, http.MethodPatch, target, encodePayload(payload))
	return err
}

// Delete removes a message. A missing message is treated as already deleted.
func (c *Client) Delete(ctx context.Context, handle string) error {
	target := fmt.Sprintf("%s/messages/%s", c.baseURL, url.PathEscape(handle))
	_, err := c.do(ctx, http.MethodDelete, target, nil)
	return err
}

func encodePayload(payload render.Payload) messageBody {
	return messageBody{
		Title:       payload.Title,
		Body:        payload.Body,
		Schedule:    payload.Schedule,
		SlotRows:    payload.SlotRows,
		WaitingRows: payload.WaitingRows,
		Terminal:    payload.Terminal,
	}
}

func (c *Client) do(ctx context.Context, method, target string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build board request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call board: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read board response: %w", err)
	}
	if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
		return data, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("board returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
