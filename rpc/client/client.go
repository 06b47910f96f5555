// Package client provides methods to do http GET / POST request.
package client

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout = 60 // seconds

	maxIdleConns        int = 100
	maxIdleConnsPerHost int = 10
	maxConnsPerHost     int = 50
	idleConnTimeout     int = 90

	maxReadContentLength int64 = 1024 * 1024 * 10 // 10M
)

var restClient = resty.NewWithClient(createHTTPClient())

// InitHTTPClient init http client
func InitHTTPClient() {
	restClient = resty.NewWithClient(createHTTPClient())
}

// createHTTPClient for connection re-use
func createHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxConnsPerHost:     maxConnsPerHost,
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConnsPerHost,
			IdleConnTimeout:     time.Duration(idleConnTimeout) * time.Second,
		},
	}
}

func newRequest(ctx context.Context, timeoutSeconds int) (*resty.Request, context.CancelFunc) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
	return restClient.R().SetContext(ctx), cancel
}

// HTTPGet http get, returns response body
func HTTPGet(ctx context.Context, url string, params, headers map[string]string, timeout int) ([]byte, error) {
	req, cancel := newRequest(ctx, timeout)
	defer cancel()
	resp, err := req.SetQueryParams(params).SetHeaders(headers).Get(url)
	return checkResponse(resp, err)
}

// HTTPPost http post json body, returns response body
func HTTPPost(ctx context.Context, url string, body interface{}, params, headers map[string]string, timeout int) ([]byte, error) {
	req, cancel := newRequest(ctx, timeout)
	defer cancel()
	req.SetQueryParams(params).SetHeaders(headers)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Post(url)
	return checkResponse(resp, err)
}
