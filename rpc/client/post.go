package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

var requestID uint64

// Request json-rpc request
type Request struct {
	Method  string
	Params  interface{}
	Timeout int
	ID      uint64
}

// NewRequest request with positional params
func NewRequest(method string, params ...interface{}) *Request {
	if params == nil {
		params = []interface{}{}
	}
	return &Request{
		Method:  method,
		Params:  params,
		Timeout: defaultTimeout,
		ID:      atomic.AddUint64(&requestID, 1),
	}
}

// NewObjectRequest request with named params object
func NewObjectRequest(method string, params interface{}) *Request {
	return &Request{
		Method:  method,
		Params:  params,
		Timeout: defaultTimeout,
		ID:      atomic.AddUint64(&requestID, 1),
	}
}

// RequestBody json-rpc request body
type RequestBody struct {
	Version string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      uint64      `json:"id"`
}

// JSONRPCError error object returned by json-rpc server
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (err *JSONRPCError) Error() string {
	return fmt.Sprintf("json-rpc error %d, %s", err.Code, err.Message)
}

type jsonrpcResponse struct {
	Version string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// ErrResponseStatus non 200 http status
var ErrResponseStatus = errors.New("wrong response status")

// RPCPost json-rpc call with positional params
func RPCPost(ctx context.Context, result interface{}, url, method string, params ...interface{}) error {
	return RPCPostRequest(ctx, url, NewRequest(method, params...), result)
}

// RPCPostWithTimeout json-rpc call with timeout
func RPCPostWithTimeout(ctx context.Context, timeout int, result interface{}, url, method string, params ...interface{}) error {
	req := NewRequest(method, params...)
	req.Timeout = timeout
	return RPCPostRequest(ctx, url, req, result)
}

// RPCPostObject json-rpc call with named params
func RPCPostObject(ctx context.Context, result interface{}, url, method string, params interface{}) error {
	return RPCPostRequest(ctx, url, NewObjectRequest(method, params), result)
}

// RPCPostRequest do json-rpc request
func RPCPostRequest(ctx context.Context, url string, req *Request, result interface{}) error {
	reqBody := &RequestBody{
		Version: "2.0",
		Method:  req.Method,
		Params:  req.Params,
		ID:      req.ID,
	}
	body, err := HTTPPost(ctx, url, reqBody, nil, nil, req.Timeout)
	if err != nil {
		return err
	}
	return getResultFromJSONResponse(result, body)
}

func getResultFromJSONResponse(result interface{}, body []byte) error {
	var jsonResp jsonrpcResponse
	err := json.Unmarshal(body, &jsonResp)
	if err != nil {
		return fmt.Errorf("unmarshal body error: %w", err)
	}
	if jsonResp.Error != nil {
		return jsonResp.Error
	}
	if len(jsonResp.Result) == 0 {
		return errors.New("json-rpc response without result")
	}
	err = json.Unmarshal(jsonResp.Result, &result)
	if err != nil {
		return fmt.Errorf("unmarshal result error: %w", err)
	}
	return nil
}

func checkResponse(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	body := resp.Body()
	if int64(len(body)) > maxReadContentLength {
		return nil, fmt.Errorf("response too large: %v bytes", len(body))
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w %v. message: %v", ErrResponseStatus, resp.StatusCode(), string(body))
	}
	return body, nil
}
