package chain

import (
	"context"
	"fmt"

	"github.com/anyswap/soroban-counter/rpc/client"
)

// WrapRPCQueryError wrap rpc error
func WrapRPCQueryError(err error, method string, params ...interface{}) error {
	if err == nil {
		return fmt.Errorf("call '%s %v' failed, err='%w'", method, params, ErrNotFound)
	}
	return fmt.Errorf("%w: call '%s %v' failed, err='%v'", ErrRPCQueryError, method, params, err)
}

// RPCCall call each url in turn until one succeeds
func RPCCall(ctx context.Context, result interface{}, urls []string, method string, params interface{}) (err error) {
	for _, url := range urls {
		err = client.RPCPostObject(ctx, result, url, method, params)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return WrapRPCQueryError(err, method, params)
}
