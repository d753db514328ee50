package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds how much of a response body the JSON helpers read.
const maxBodyBytes = 1 << 20

// APIError carries the HTTP status and the human-readable message parsed
// from a non-2xx response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// PostJSON serializes body, performs a POST through Do, and decodes the JSON
// response into out (which may be nil). A non-2xx response is returned as an
// *APIError carrying the message field of the error body when present,
// otherwise the raw body text. An empty 2xx body decodes as an empty object.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = data
	}

	resp, err := c.Do(ctx, endpoint, RequestOptions{Method: http.MethodPost, Body: payload})
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	return decodeResponse(resp, out)
}

// GetJSON performs a GET through Do and decodes the JSON response into out
// with the same error and empty-body semantics as PostJSON.
func (c *Client) GetJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.Do(ctx, endpoint, RequestOptions{})
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp)}
	}

	// An absent body on success is valid and must not be a parse error.
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts a human message from an error body: the JSON message
// field when present, the raw text otherwise, the status line as a last
// resort.
func errorMessage(data []byte, resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := string(bytes.TrimSpace(data)); text != "" {
		return text
	}
	return resp.Status
}
