package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenSource yields a bearer token for outgoing requests.
type TokenSource func(ctx context.Context) (string, error)

type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      TokenSource
}

func NewHttpClient(baseURL string, token TokenSource) *HttpClient {
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// DecodeData unwraps the {"data": ...} success envelope into target.
func (r *Response) DecodeData(target any) error {
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := r.DecodeJSON(&envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, target)
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (c *HttpClient) GET(ctx context.Context, path string) (*Response, error) {
	return c.request(ctx, http.MethodGet, path, nil)
}

func (c *HttpClient) POST(ctx context.Context, path string, body any) (*Response, error) {
	return c.request(ctx, http.MethodPost, path, body)
}

func (c *HttpClient) PATCH(ctx context.Context, path string, body any) (*Response, error) {
	return c.request(ctx, http.MethodPatch, path, body)
}

func (c *HttpClient) DELETE(ctx context.Context, path string) (*Response, error) {
	return c.request(ctx, http.MethodDelete, path, nil)
}

func (c *HttpClient) request(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := c.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}, nil
}

func (c *HttpClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.Token != nil {
		token, err := c.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *HttpClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.HTTPClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become healthy within %v", maxWait)
		case <-ticker.C:
		}
	}
}

func GetErrorMessage(resp *Response) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := resp.DecodeJSON(&errResp); err != nil {
		return fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	if errResp.Error != "" {
		return errResp.Error
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	return errResp.Code
}
