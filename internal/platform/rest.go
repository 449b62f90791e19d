// internal/platform/rest.go
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RESTClient talks to the platform adapter over plain JSON HTTP. The
// adapter owns all platform-specific payload shaping; this client only
// ships Views.
type RESTClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewRESTClient builds a client against the adapter base URL.
func NewRESTClient(baseURL, token string) *RESTClient {
	return &RESTClient{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *RESTClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bot "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, b)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SendMessage posts a new message and returns its handle.
func (c *RESTClient) SendMessage(ctx context.Context, channelID string, v View) (MessageRef, error) {
	var ref MessageRef
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := c.do(ctx, http.MethodPost, path, v, &ref); err != nil {
		return MessageRef{}, err
	}
	if ref.ChannelID == "" {
		ref.ChannelID = channelID
	}
	return ref, nil
}

// EditMessage replaces the view on an existing message.
func (c *RESTClient) EditMessage(ctx context.Context, ref MessageRef, v View) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", ref.ChannelID, ref.MessageID)
	return c.do(ctx, http.MethodPatch, path, v, nil)
}

// UpdateInteractionResponse answers the triggering interaction in place.
func (c *RESTClient) UpdateInteractionResponse(ctx context.Context, interactionID string, v View) error {
	path := fmt.Sprintf("/interactions/%s/response", interactionID)
	return c.do(ctx, http.MethodPost, path, v, nil)
}
