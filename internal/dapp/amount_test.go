package dapp_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want *big.Int
	}{
		{"1", tokens(1)},
		{" 1000 ", tokens(1000)},
		{"0.5", new(big.Int).Div(tokens(1), big.NewInt(2))},
		{"0", big.NewInt(0)},
		{"1e3", tokens(1000)},
		{"0.000000000000000001", big.NewInt(1)},
	}
	for _, tc := range cases {
		got, err := dapp.ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, 0, tc.want.Cmp(got), "%s → %s", tc.in, got)
	}
}

func TestParseAmountRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "1.2.3", "0x10", "0.0000000000000000001", "1e60", "1e2000000000"} {
		_, err := dapp.ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestParseAmountUint256Bound(t *testing.T) {
	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	v, err := dapp.ParseAmount("115792089237316195423570985008687907853269984665640564039457.584007913129639935")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(maxUint256))

	for _, in := range []string{
		"115792089237316195423570985008687907853269984665640564039457.584007913129639936",
		"1e60",
		"1e78",
	} {
		_, err := dapp.ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestParseAmountHugeExponentFailsFast(t *testing.T) {
	done := make(chan error, 2)
	go func() {
		_, err := dapp.ParseAmount("1e2000000000")
		done <- err
	}()
	go func() {
		_, err := dapp.ParseAmount("1e-2000000000")
		done <- err
	}()
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			assert.Error(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("exponent was not bounded before scaling")
		}
	}
}

func TestParseAmountExponentNotation(t *testing.T) {
	v, err := dapp.ParseAmount("1.5e3")
	require.NoError(t, err)
	assert.Equal(t, "1500.0", dapp.FormatAmount(v))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000.0", dapp.FormatAmount(tokens(1000)))
	assert.Equal(t, "12.5", dapp.FormatAmount(new(big.Int).Div(tokens(25), big.NewInt(2))))
	assert.Equal(t, "0.0", dapp.FormatAmount(big.NewInt(0)))
	assert.Equal(t, "0.0", dapp.FormatAmount(nil))
	assert.Equal(t, "0.000000000000000001", dapp.FormatAmount(big.NewInt(1)))
}
