package client

import (
	"time"

	"github.com/clipstream/clipstream-go/pkg/config"
	"github.com/clipstream/clipstream-go/pkg/logger"
	"github.com/go-resty/resty/v2"
)

var httpClient *resty.Client

// Init initializes the HTTP client
func Init() {
	httpClient = resty.New()

	baseURL := config.GetString("api.base_url")
	timeout := time.Duration(config.GetInt("api.timeout")) * time.Second

	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", "Clipstream-Go/0.1.0")

	// Add request/response logging
	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode())
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sets the authorization token
func SetAuthToken(token string) {
	if httpClient == nil {
		Init()
	}
	httpClient.SetHeader("Authorization", "Bearer "+token)
}

// ClearAuthToken clears the authorization token
func ClearAuthToken() {
	// Re-init the client to clear auth headers
	Init()
}

// SetBaseURL overrides the API base URL, primarily for tests
func SetBaseURL(baseURL string) {
	if httpClient == nil {
		Init()
	}
	httpClient.SetBaseURL(baseURL)
}
