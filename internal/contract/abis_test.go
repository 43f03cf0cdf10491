package contract_test

import (
	"testing"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// registry
// ---------------------------------------------------------------------------

func TestAndyCoinBuiltinRegistered(t *testing.T) {
	b, ok := contract.GetBuiltin(contract.AndyCoinID)
	require.True(t, ok)

	for _, m := range []string{"name", "symbol", "owner", "totalSupply", "balanceOf", "transfer", "burn", "mint"} {
		assert.Contains(t, b.ABI.Methods, m)
	}
	for _, e := range []string{contract.EventTransfer, contract.EventTokensBurned, contract.EventTokensMinted} {
		assert.Contains(t, b.ABI.Events, e)
	}
}

func TestGetBuiltinNotFound(t *testing.T) {
	_, ok := contract.GetBuiltin("does-not-exist")
	assert.False(t, ok)
}

func TestAllBuiltinsSorted(t *testing.T) {
	all := contract.AllBuiltins()
	require.GreaterOrEqual(t, len(all), 2)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestRegisterBuiltinPanicsOnBadABI(t *testing.T) {
	assert.Panics(t, func() {
		contract.RegisterBuiltin("broken", "Broken", "bad json", `[{"type":`)
	})
}

// ---------------------------------------------------------------------------
// selectors and topics
// ---------------------------------------------------------------------------

func TestKeccakMatchesABIIDs(t *testing.T) {
	b, _ := contract.GetBuiltin(contract.AndyCoinID)

	burned := b.ABI.Events[contract.EventTokensBurned]
	assert.Equal(t, burned.ID.Bytes(), contract.Keccak(burned.Sig))

	mint := b.ABI.Methods["mint"]
	assert.Equal(t, mint.ID, contract.Keccak(mint.Sig)[:4])
}

func TestSignaturesKnownSelectors(t *testing.T) {
	b, _ := contract.GetBuiltin(contract.AndyCoinID)

	byName := map[string]string{}
	for _, s := range contract.Signatures(b.ABI) {
		byName[s.Signature] = s.ID
	}
	assert.Equal(t, "0xa9059cbb", byName["transfer(address,uint256)"])
	assert.Equal(t, "0x42966c68", byName["burn(uint256)"])
	assert.Equal(t, "0x40c10f19", byName["mint(address,uint256)"])
	assert.Equal(t, "0x8da5cb5b", byName["owner()"])
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		byName["Transfer(address,address,uint256)"])
}

func TestSignaturesFunctionsBeforeEvents(t *testing.T) {
	b, _ := contract.GetBuiltin(contract.ERC20ID)
	sigs := contract.Signatures(b.ABI)

	seenEvent := false
	for _, s := range sigs {
		if s.Kind == "event" {
			seenEvent = true
			_, err := hexutil.Decode(s.ID)
			assert.NoError(t, err)
			assert.Len(t, s.ID, 66)
			continue
		}
		assert.False(t, seenEvent, "function %s listed after an event", s.Signature)
		assert.Len(t, s.ID, 10)
	}
	assert.True(t, seenEvent)
}
