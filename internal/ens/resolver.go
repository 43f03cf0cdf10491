// Package ens resolves ENS names for token recipients and owner display.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry, deployed at the same address on
// Ethereum mainnet and Sepolia.
var RegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// ErrNotFound is returned when a name or address has no usable record.
var ErrNotFound = errors.New("ens: no record")

// ErrUnsupported is returned for chains without an ENS registry.
var ErrUnsupported = errors.New("ens: not available on this network")

const ensABI = `[
	{"type":"function","name":"resolver","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"addr","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]}
]`

var parsedABI = mustParse(ensABI)

func mustParse(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}

// Supported reports whether chainID has the ENS registry.
func Supported(chainID int64) bool {
	return chainID == 1 || chainID == 11155111
}

// IsName reports whether s looks like an ENS name rather than an address.
func IsName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || common.IsHexAddress(s) || strings.HasPrefix(s, "0x") {
		return false
	}
	return strings.Contains(s, ".") && !strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".")
}

// Resolver queries the ENS registry through any contract caller.
type Resolver struct {
	caller   ethereum.ContractCaller
	registry common.Address
}

// NewResolver uses the canonical registry.
func NewResolver(caller ethereum.ContractCaller) *Resolver {
	return &Resolver{caller: caller, registry: RegistryAddress}
}

// Resolve returns the address record of name.
func (r *Resolver) Resolve(ctx context.Context, name string) (common.Address, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	node := Namehash(name)

	resolver, err := r.resolverFor(ctx, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	var addr common.Address
	if err := r.call(ctx, resolver, "addr", node, &addr); err != nil {
		return common.Address{}, fmt.Errorf("querying resolver for %s: %w", name, err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s has no address", ErrNotFound, name)
	}
	return addr, nil
}

// Reverse returns the primary name of addr. The name must resolve back to
// addr, otherwise ErrNotFound.
func (r *Resolver) Reverse(ctx context.Context, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(addr.Hex()[2:]) + ".addr.reverse")

	resolver, err := r.resolverFor(ctx, node)
	if err != nil {
		return "", fmt.Errorf("%s: %w", addr.Hex(), err)
	}
	var name string
	if err := r.call(ctx, resolver, "name", node, &name); err != nil {
		return "", fmt.Errorf("querying reverse resolver: %w", err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: %s has no reverse name", ErrNotFound, addr.Hex())
	}

	fwd, err := r.Resolve(ctx, name)
	if err != nil {
		return "", err
	}
	if fwd != addr {
		return "", fmt.Errorf("%w: %s resolves to %s, not %s", ErrNotFound, name, fwd.Hex(), addr.Hex())
	}
	return name, nil
}

func (r *Resolver) resolverFor(ctx context.Context, node [32]byte) (common.Address, error) {
	var resolver common.Address
	if err := r.call(ctx, r.registry, "resolver", node, &resolver); err != nil {
		return common.Address{}, fmt.Errorf("querying ENS registry: %w", err)
	}
	if resolver == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no resolver set", ErrNotFound)
	}
	return resolver, nil
}

func (r *Resolver) call(ctx context.Context, to common.Address, method string, node [32]byte, out interface{}) error {
	input, err := parsedABI.Pack(method, node)
	if err != nil {
		return err
	}
	res, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return err
	}
	if len(res) == 0 {
		return fmt.Errorf("%w: no contract at %s", ErrUnsupported, to.Hex())
	}
	return parsedABI.UnpackIntoInterface(out, method, res)
}

// Namehash implements the EIP-137 namehash.
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak256([]byte(labels[i]))
		copy(node[:], keccak256(node[:], label))
	}
	return node
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
