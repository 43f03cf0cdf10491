// Package fixtures provides an in-process JSON-RPC node for integration
// tests.
package fixtures

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// Handler answers one JSON-RPC method.
type Handler func(params []json.RawMessage) (interface{}, error)

// Node is a JSON-RPC endpoint backed by per-method handlers. Unknown
// methods fail with -32601.
type Node struct {
	URL string

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
}

// NewNode starts a node that is shut down when the test ends.
func NewNode(t *testing.T) *Node {
	t.Helper()
	n := &Node{handlers: map[string]Handler{}, calls: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(srv.Close)
	n.URL = srv.URL
	return n
}

// On registers h for method, replacing any earlier handler.
func (n *Node) On(method string, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

// Result registers a handler that always returns v.
func (n *Node) Result(method string, v interface{}) {
	n.On(method, func([]json.RawMessage) (interface{}, error) { return v, nil })
}

// Count is how many times method was called.
func (n *Node) Count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	h, ok := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
	} else if result, err := h(req.Params); err != nil {
		resp["error"] = map[string]interface{}{"code": -32000, "message": err.Error()}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

// ServeToken answers eth_call for the Andy Coin ABI. outputs is consulted on
// every call so tests can change state between reads.
func (n *Node) ServeToken(t *testing.T, outputs func(method string) []interface{}) {
	t.Helper()
	b, ok := contract.GetBuiltin(contract.AndyCoinID)
	require.True(t, ok)
	n.On("eth_call", func(params []json.RawMessage) (interface{}, error) {
		var msg struct {
			Input hexutil.Bytes `json:"input"`
			Data  hexutil.Bytes `json:"data"`
		}
		require.NoError(t, json.Unmarshal(params[0], &msg))
		input := msg.Input
		if len(input) == 0 {
			input = msg.Data
		}
		method, err := b.ABI.MethodById(input[:4])
		require.NoError(t, err)
		vals := outputs(method.Name)
		require.NotNil(t, vals, "unexpected call to %s", method.Name)
		packed, err := method.Outputs.Pack(vals...)
		require.NoError(t, err)
		return hexutil.Encode(packed), nil
	})
}

// ServeFees answers the nonce, code, fee and gas lookups a transactor makes
// before signing.
func (n *Node) ServeFees() {
	n.Result("eth_getCode", "0x6080604052")
	n.Result("eth_getTransactionCount", "0x0")
	n.Result("eth_maxPriorityFeePerGas", "0x3b9aca00")
	n.Result("eth_estimateGas", "0x13880")
	n.Result("eth_getBlockByNumber", &types.Header{
		Number:     big.NewInt(100),
		Difficulty: big.NewInt(0),
		GasLimit:   30_000_000,
		BaseFee:    big.NewInt(1_000_000_000),
	})
}

// TokenLog builds a log for event name as the token at address would emit
// it, with indexed as the first topic argument.
func TokenLog(t *testing.T, address common.Address, name string, txHash common.Hash, block uint64, indexed common.Address, data ...interface{}) *types.Log {
	t.Helper()
	b, _ := contract.GetBuiltin(contract.AndyCoinID)
	ev, ok := b.ABI.Events[name]
	require.True(t, ok, "unknown event %s", name)
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	require.NoError(t, err)
	return &types.Log{
		Address:     address,
		Topics:      []common.Hash{ev.ID, common.BytesToHash(indexed.Bytes())},
		Data:        packed,
		BlockNumber: block,
		TxHash:      txHash,
		BlockHash:   common.HexToHash("0xb10c"),
	}
}
