package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONRPCServer(t *testing.T, handle func(req *RequestBody) (interface{}, *JSONRPCError)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, rpcErr := handle(&req)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestRPCPostObject(t *testing.T) {
	srv := newJSONRPCServer(t, func(req *RequestBody) (interface{}, *JSONRPCError) {
		assert.Equal(t, "getLatestLedger", req.Method)
		return map[string]interface{}{"sequence": 1234, "protocolVersion": 20}, nil
	})
	defer srv.Close()

	var result struct {
		Sequence uint32 `json:"sequence"`
	}
	err := RPCPostObject(context.Background(), &result, srv.URL, "getLatestLedger", nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), result.Sequence)
}

func TestRPCPostPositionalParams(t *testing.T) {
	srv := newJSONRPCServer(t, func(req *RequestBody) (interface{}, *JSONRPCError) {
		params, ok := req.Params.([]interface{})
		require.True(t, ok)
		return params[0], nil
	})
	defer srv.Close()

	var echo string
	require.NoError(t, RPCPost(context.Background(), &echo, srv.URL, "echo", "hello"))
	assert.Equal(t, "hello", echo)
}

func TestRPCPostError(t *testing.T) {
	srv := newJSONRPCServer(t, func(req *RequestBody) (interface{}, *JSONRPCError) {
		return nil, &JSONRPCError{Code: -32602, Message: "invalid params"}
	})
	defer srv.Close()

	var result interface{}
	err := RPCPost(context.Background(), &result, srv.URL, "sendTransaction")
	var rpcErr *JSONRPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32602, rpcErr.Code)
}

func TestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	var result interface{}
	err := RPCGet(context.Background(), &result, srv.URL)
	assert.True(t, errors.Is(err, ErrResponseStatus))
}

func TestRPCPostCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var result interface{}
	err := RPCPost(ctx, &result, srv.URL, "getHealth")
	assert.Error(t, err)
}
