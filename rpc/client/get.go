package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// RPCGet get and unmarshal json result
func RPCGet(ctx context.Context, result interface{}, url string) error {
	return RPCGetRequest(ctx, result, url, nil, nil, defaultTimeout)
}

// RPCGetWithTimeout get with timeout
func RPCGetWithTimeout(ctx context.Context, result interface{}, url string, timeout int) error {
	return RPCGetRequest(ctx, result, url, nil, nil, timeout)
}

// RPCGetRequest get with params and headers
func RPCGetRequest(ctx context.Context, result interface{}, url string, params, headers map[string]string, timeout int) error {
	body, err := HTTPGet(ctx, url, params, headers, timeout)
	if err != nil {
		return fmt.Errorf("GET request error: %w (url: %v, params: %v)", err, url, params)
	}
	err = json.Unmarshal(body, &result)
	if err != nil {
		return fmt.Errorf("unmarshal result error: %w", err)
	}
	return nil
}
