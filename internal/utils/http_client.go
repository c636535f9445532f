package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// AdminUserAgent identifies the desktop tool to the device admin API.
const AdminUserAgent = "pimsync-desktop"

// HTTPClient is the resty client the desktop tool talks to the device
// admin API with.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client rooted at baseURL. A zero timeout leaves
// requests unbounded.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", AdminUserAgent)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPClient{Client: client}
}
