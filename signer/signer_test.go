package signer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/chain/soroban"
	"github.com/anyswap/soroban-counter/chain/soroban/sorobantest"
	"github.com/anyswap/soroban-counter/rpc/client"
	"github.com/anyswap/soroban-counter/types"
)

type fakeWallet struct {
	address    string
	signStatus string
	polls      int
}

func (w *fakeWallet) serve(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     uint64            `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var result interface{}
		switch req.Method {
		case "signer_isConnected", "signer_isAllowed", "signer_setAllowed":
			result = BoolResp{Status: StatusSuccess, Data: true}
		case "signer_getAddress":
			result = DataResultResp{Status: StatusSuccess, Data: &DataResult{Result: w.address}}
		case "signer_signTransaction":
			var data SignData
			require.NoError(t, json.Unmarshal(req.Params[0], &data))
			assert.NotEmpty(t, data.RequestID)
			switch w.signStatus {
			case StatusSuccess:
				result = DataResultResp{Status: StatusSuccess, Data: &DataResult{Result: "signed:" + data.EnvelopeXDR}}
			case StatusPending:
				result = DataResultResp{Status: StatusPending}
			default:
				result = DataResultResp{Status: w.signStatus, Error: "declined by holder"}
			}
		case "signer_getSignStatus":
			w.polls++
			status := SignStatus{Status: StatusPending}
			if w.polls >= 2 {
				status = SignStatus{Status: StatusSuccess, EnvelopeXDR: "signed-later"}
			}
			data, _ := json.Marshal(status)
			result = DataResultResp{Status: StatusSuccess, Data: &DataResult{Result: string(data)}}
		default:
			_ = json.NewEncoder(rw).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": req.ID,
				"error": client.JSONRPCError{Code: -32601, Message: "method not found"},
			})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
}

func TestRemoteSigner(t *testing.T) {
	wallet := &fakeWallet{address: sorobantest.RandomAccount().Address(), signStatus: StatusSuccess}
	srv := wallet.serve(t)
	defer srv.Close()

	s := NewRemoteSigner(srv.URL, 5)
	ctx := context.Background()

	connected, err := s.IsConnected(ctx)
	require.NoError(t, err)
	assert.True(t, connected)
	allowed, err := s.SetAllowed(ctx)
	require.NoError(t, err)
	assert.True(t, allowed)

	address, err := s.GetAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, wallet.address, address)

	signed, err := s.SignTransaction(ctx, "AAAA", network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Equal(t, "signed:AAAA", signed)
}

func TestRemoteSignerRejected(t *testing.T) {
	wallet := &fakeWallet{signStatus: StatusRejected}
	srv := wallet.serve(t)
	defer srv.Close()

	_, err := NewRemoteSigner(srv.URL, 5).SignTransaction(context.Background(), "AAAA", network.TestNetworkPassphrase)
	assert.ErrorIs(t, err, chain.ErrUserRejected)

	wallet.signStatus = StatusNotConnected
	_, err = NewRemoteSigner(srv.URL, 5).SignTransaction(context.Background(), "AAAA", network.TestNetworkPassphrase)
	assert.ErrorIs(t, err, chain.ErrSignerUnavailable)
}

func TestRemoteSignerPending(t *testing.T) {
	wallet := &fakeWallet{signStatus: StatusPending}
	srv := wallet.serve(t)
	defer srv.Close()

	s := NewRemoteSigner(srv.URL, 5)
	s.SignStatusInterval = time.Millisecond
	signed, err := s.SignTransaction(context.Background(), "AAAA", network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Equal(t, "signed-later", signed)
	assert.Equal(t, 2, wallet.polls)
}

func TestRemoteSignerUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := NewRemoteSigner(url, 1)
	_, err := s.IsConnected(context.Background())
	assert.ErrorIs(t, err, chain.ErrSignerUnavailable)
	_, err = s.SignTransaction(context.Background(), "AAAA", network.TestNetworkPassphrase)
	assert.ErrorIs(t, err, chain.ErrSignerUnavailable)
}

func TestKeystoreRoundTrip(t *testing.T) {
	key := sorobantest.RandomAccount()
	keyjson, err := EncryptKey(key, "secret", LightScryptN, LightScryptP)
	require.NoError(t, err)

	decrypted, err := DecryptKey(keyjson, "secret")
	require.NoError(t, err)
	assert.Equal(t, key.Seed(), decrypted.Seed())

	_, err = DecryptKey(keyjson, "wrong")
	assert.ErrorIs(t, err, ErrDecrypt)

	dir := t.TempDir()
	keyfile := filepath.Join(dir, "key.json")
	passfile := filepath.Join(dir, "pass.txt")
	require.NoError(t, os.WriteFile(keyfile, keyjson, 0600))
	require.NoError(t, os.WriteFile(passfile, []byte("secret\n"), 0600))
	loaded, err := LoadKeyStore(keyfile, passfile)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), loaded.Address())
}

func TestKeystoreSignerSigns(t *testing.T) {
	key := sorobantest.RandomAccount()
	s := NewKeystoreSigner(key)

	address, err := s.GetAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key.Address(), address)

	unsigned, err := soroban.BuildInvocation(&types.AccountRef{Address: key.Address(), Sequence: 5},
		types.OpIncrement, soroban.DefaultContractID, 100, network.TestNetworkPassphrase, 30)
	require.NoError(t, err)

	signed, err := s.SignTransaction(context.Background(), unsigned.EnvelopeXDR, network.TestNetworkPassphrase)
	require.NoError(t, err)
	gtx, err := txnbuild.TransactionFromXDR(signed)
	require.NoError(t, err)
	tx, ok := gtx.Transaction()
	require.True(t, ok)
	assert.Len(t, tx.Signatures(), 1)

	other := NewKeystoreSigner(sorobantest.RandomAccount())
	_, err = other.SignTransaction(context.Background(), unsigned.EnvelopeXDR, network.TestNetworkPassphrase)
	assert.Error(t, err)

	var none KeystoreSigner
	_, err = none.SignTransaction(context.Background(), unsigned.EnvelopeXDR, network.TestNetworkPassphrase)
	assert.ErrorIs(t, err, chain.ErrSignerUnavailable)
}
