package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"focusflow/internal/model"
)

// Client is an HTTP client for the FocusFlow API, scoped to one session.
// It implements timer.Store; the companion BeaconSender implements
// timer.Flusher.
type Client struct {
	baseURL   string
	token     string
	sessionID string
	http      *http.Client
}

// New creates an API client for the given session
func New(baseURL, token, sessionID string) *Client {
	return &Client{
		baseURL:   baseURL,
		token:     token,
		sessionID: sessionID,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Fetch loads the session record
func (c *Client) Fetch(ctx context.Context) (*model.Session, error) {
	var session model.Session
	err := c.do(ctx, "GET", fmt.Sprintf("/v1/sessions/%s", c.sessionID), nil, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveDuration checkpoints the elapsed seconds
func (c *Client) SaveDuration(ctx context.Context, seconds int) error {
	body := map[string]int{"duration": seconds}
	return c.do(ctx, "POST", fmt.Sprintf("/v1/sessions/%s/duration", c.sessionID), body, nil)
}

// SaveNotes persists the notes text
func (c *Client) SaveNotes(ctx context.Context, notes string) error {
	body := map[string]string{"notes": notes}
	return c.do(ctx, "PUT", fmt.Sprintf("/v1/sessions/%s/notes", c.sessionID), body, nil)
}

// Finalize completes the session with its reflection
func (c *Client) Finalize(ctx context.Context, reflection model.ReflectionPayload, notes string, seconds int) error {
	body := map[string]interface{}{
		"reflection": reflection,
		"notes":      notes,
		"duration":   seconds,
	}
	return c.do(ctx, "POST", fmt.Sprintf("/v1/sessions/%s/complete", c.sessionID), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error (%d)", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// BeaconSender is the best-effort duration transport used on exit. The
// send is issued without waiting for a response; delivery is not
// guaranteed and never retried.
type BeaconSender struct {
	baseURL   string
	token     string
	sessionID string
	http      *http.Client
}

// NewBeaconSender creates a best-effort sender for the given session
func NewBeaconSender(baseURL, token, sessionID string) *BeaconSender {
	return &BeaconSender{
		baseURL:   baseURL,
		token:     token,
		sessionID: sessionID,
		http: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

// SendDuration fires the duration write and returns immediately
func (b *BeaconSender) SendDuration(seconds int) {
	data, err := json.Marshal(map[string]int{"duration": seconds})
	if err != nil {
		return
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/sessions/%s/duration", b.baseURL, b.sessionID), bytes.NewReader(data))
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Content-Type", "application/json")

	go func() {
		resp, err := b.http.Do(req)
		if err != nil {
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
}
