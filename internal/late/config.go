package late

import (
	"fmt"
	"strings"
)

const (
	DefaultAPIURL    = "https://getlate.dev/api/v1"
	DefaultUserAgent = "latepost/1.0"
)

// Config holds the configuration for the Late API client
//
// APIKey: bearer credential
// APIURL: API base URL, without trailing slash
// Timeout: request timeout in seconds; uploads share it
// UserAgent: value of the User-Agent header
type Config struct {
	APIKey    string `json:"api_key"`
	APIURL    string `json:"api_url"`
	Timeout   int    `json:"timeout"`
	UserAgent string `json:"user_agent"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("API key is required")
	}
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("API URL is required")
	}
	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	return nil
}

func (c *Config) GetHeaders() map[string]string {
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return map[string]string{
		"Authorization": "Bearer " + c.APIKey,
		"User-Agent":    ua,
	}
}
