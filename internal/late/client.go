package late

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
)

// Client talks to the Late publishing API
//
// config: API configuration
// httpClient: HTTP client shared by all requests
// baseURL: API base URL
type Client struct {
	config     *Config
	httpClient *http.Client
	// uploadClient has no overall timeout; uploads get a deadline scaled to
	// the file size instead.
	uploadClient  *http.Client
	uploadTimeout func(size int64) time.Duration
	baseURL       string
}

// NewClient creates a Late client
//
// Example:
//
//	client, err := late.NewClient(&late.Config{
//		APIKey:  os.Getenv("LATE_API_KEY"),
//		APIURL:  late.DefaultAPIURL,
//		Timeout: 120,
//	})
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	timeout := time.Duration(config.Timeout) * time.Second
	return &Client{
		config:  config,
		baseURL: strings.TrimRight(config.APIURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		uploadClient: &http.Client{},
		uploadTimeout: func(size int64) time.Duration {
			return UploadTimeout(timeout, size)
		},
	}, nil
}

func (c *Client) ListProfiles(ctx context.Context) ([]Profile, error) {
	var resp profilesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/profiles", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return resp.Profiles, nil
}

// ProfileByName returns nil without error when no profile has that name.
func (c *Client) ProfileByName(ctx context.Context, name string) (*Profile, error) {
	profiles, err := c.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], nil
		}
	}
	return nil, nil
}

func (c *Client) ListAccounts(ctx context.Context, profileID string) ([]Account, error) {
	var resp accountsResponse
	path := "/accounts?profileId=" + url.QueryEscape(profileID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return resp.Accounts, nil
}

// CreatePost submits one scheduled post and returns the remote post ID,
// which may be empty when the response carries none.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (string, error) {
	var resp CreatePostResponse
	if err := c.doJSON(ctx, http.MethodPost, "/posts", req, &resp); err != nil {
		return "", err
	}
	return resp.PostID(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(c.httpClient, req, out)
}

// do sends req with auth headers, maps error statuses and decodes a 2xx body
// into out.
func (c *Client) do(httpClient *http.Client, req *http.Request, out any) error {
	for key, value := range c.config.GetHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransportError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read response body", Err: err}
	}

	if err := checkStatus(resp, responseBody); err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(responseBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       truncateBody(responseBody),
			Err:        err,
		}
	}
	return nil
}

func checkStatus(resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		msg := "Check your plan limits"
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			if eb.Error != "" {
				msg = eb.Error
			} else if eb.Message != "" {
				msg = eb.Message
			}
		}
		return &ForbiddenError{Message: msg}
	case resp.StatusCode == http.StatusTooManyRequests:
		reset := resp.Header.Get("X-RateLimit-Reset")
		return &RateLimitError{Reset: reset, ResetAt: parseReset(reset)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

const maxErrorBody = 512

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
