package fixtures

import (
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// Ledger is the Andy Coin state a token node serves. Every transaction it
// receives is mined at once and adds SupplyDelta to the supply.
type Ledger struct {
	Owner       common.Address
	Balance     *big.Int
	SupplyDelta *big.Int

	mu     sync.Mutex
	supply *big.Int
	sent   []*types.Transaction
}

// Supply returns the current total supply.
func (l *Ledger) Supply() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.supply)
}

// Last is the most recent transaction sent, or nil.
func (l *Ledger) Last() *types.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.sent) == 0 {
		return nil
	}
	return l.sent[len(l.sent)-1]
}

func (l *Ledger) outputs(method string) []interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch method {
	case "name":
		return []interface{}{"Andy Coin"}
	case "symbol":
		return []interface{}{"ANDY"}
	case "owner":
		return []interface{}{l.Owner}
	case "totalSupply":
		return []interface{}{new(big.Int).Set(l.supply)}
	case "balanceOf":
		return []interface{}{l.Balance}
	}
	return nil
}

// NewTokenNode serves token reads, fees, sends and receipts for a chain at
// block 100. Event logs are left to the caller.
func NewTokenNode(t *testing.T, owner common.Address, supply *big.Int) (*Node, *Ledger) {
	t.Helper()
	n := NewNode(t)
	l := &Ledger{Owner: owner, Balance: new(big.Int), supply: new(big.Int).Set(supply)}

	n.ServeToken(t, l.outputs)
	n.ServeFees()
	n.Result("eth_chainId", "0x7a69")
	n.Result("eth_blockNumber", "0x64")
	n.On("eth_sendRawTransaction", func(params []json.RawMessage) (interface{}, error) {
		var raw hexutil.Bytes
		require.NoError(t, json.Unmarshal(params[0], &raw))
		tx := new(types.Transaction)
		require.NoError(t, tx.UnmarshalBinary(raw))
		l.mu.Lock()
		l.sent = append(l.sent, tx)
		if l.SupplyDelta != nil {
			l.supply.Add(l.supply, l.SupplyDelta)
		}
		l.mu.Unlock()
		return tx.Hash().Hex(), nil
	})
	n.On("eth_getTransactionReceipt", func([]json.RawMessage) (interface{}, error) {
		tx := l.Last()
		if tx == nil {
			return nil, nil
		}
		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			TxHash:      tx.Hash(),
			BlockNumber: big.NewInt(101),
			BlockHash:   common.HexToHash("0xb10c"),
			Logs:        []*types.Log{},
		}, nil
	})
	return n, l
}

// EmitFor answers eth_getLogs with one name event for the latest sent
// transaction, built by data.
func (n *Node) EmitFor(t *testing.T, l *Ledger, address common.Address, name string, data ...interface{}) {
	t.Helper()
	n.On("eth_getLogs", func([]json.RawMessage) (interface{}, error) {
		tx := l.Last()
		if tx == nil {
			return []*types.Log{}, nil
		}
		return []*types.Log{TokenLog(t, address, name, tx.Hash(), 101, l.Owner, data...)}, nil
	})
}

// Andy Coin has 18 decimals.
var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(dapp.Decimals), nil)

// Tokens converts whole tokens to base units.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), unit)
}
