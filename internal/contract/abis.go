package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// BuiltinKind is a contract ABI embedded in the binary. New built-ins
// register themselves from init() in their own <name>_abi.go file.
type BuiltinKind struct {
	ID          string  // machine key, e.g. "andycoin", "erc20"
	Name        string  // human label
	Description string  // one-line summary shown by `token abi`
	ABI         abi.ABI // parsed ABI, ready to bind
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin parses abiJSON and adds it to the registry. It panics on a
// malformed ABI since built-ins are compiled in.
func RegisterBuiltin(id, name, description, abiJSON string) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("contract: builtin %s: %v", id, err))
	}
	builtinRegistry[id] = BuiltinKind{ID: id, Name: name, Description: description, ABI: parsed}
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Signature is one function selector or event topic of an ABI.
type Signature struct {
	Kind      string // "function" | "event"
	Signature string // canonical form, e.g. "transfer(address,uint256)"
	ID        string // 4-byte selector or 32-byte topic, 0x-prefixed
}

// Signatures lists every function and event of a, functions first, each
// group sorted by signature.
func Signatures(a abi.ABI) []Signature {
	var fns, evs []Signature
	for _, m := range a.Methods {
		fns = append(fns, Signature{Kind: "function", Signature: m.Sig, ID: hexutil.Encode(Keccak(m.Sig)[:4])})
	}
	for _, e := range a.Events {
		evs = append(evs, Signature{Kind: "event", Signature: e.Sig, ID: hexutil.Encode(Keccak(e.Sig))})
	}
	bySig := func(s []Signature) {
		sort.Slice(s, func(i, j int) bool { return s[i].Signature < s[j].Signature })
	}
	bySig(fns)
	bySig(evs)
	return append(fns, evs...)
}

// Keccak returns the legacy Keccak-256 digest of s.
func Keccak(s string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s)) //nolint:errcheck
	return h.Sum(nil)
}
