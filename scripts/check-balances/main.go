// check-balances: queries the ANDY balance of a set of holders in parallel
// and prints a summary table with each holder's share of the supply.
//
// Run from the module root:
//
//	go run ./scripts/check-balances -network sepolia 0xabc... 0xdef...
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/chain"
	"github.com/Mohsinsiddi/andycoin/internal/config"
	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/Mohsinsiddi/andycoin/internal/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const rpcTimeout = 12 * time.Second

type result struct {
	holder  common.Address
	balance *big.Int
	err     string
}

func main() {
	network := flag.String("network", "sepolia", "network name")
	tokenFlag := flag.String("contract", config.DefaultContractAddress, "token contract address")
	flag.Parse()

	if flag.NArg() == 0 || !common.IsHexAddress(*tokenFlag) {
		fmt.Fprintln(os.Stderr, "usage: check-balances [-network name] [-contract addr] <holder>...")
		os.Exit(2)
	}

	n, err := chain.NewRegistry().GetByName(*network)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	url, err := rpc.Select(ctx, n.RPCs, rpc.AlgorithmFastest, n.ChainID)
	if err != nil {
		fatal(err)
	}
	client, err := chain.Dial(ctx, url)
	if err != nil {
		fatal(err)
	}
	defer client.Close()

	tok, err := contract.NewToken(common.HexToAddress(*tokenFlag), client.Eth())
	if err != nil {
		fatal(err)
	}
	supply, err := tok.TotalSupply(ctx)
	if err != nil {
		fatal(fmt.Errorf("reading supply: %s", contract.Message(err)))
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	for _, arg := range flag.Args() {
		if !common.IsHexAddress(arg) {
			results = append(results, result{err: "invalid address " + arg})
			continue
		}
		wg.Add(1)
		go func(holder common.Address) {
			defer wg.Done()
			r := result{holder: holder}
			bal, err := tok.BalanceOf(ctx, holder)
			if err != nil {
				r.err = shortErr(contract.Message(err))
			} else {
				r.balance = bal
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(common.HexToAddress(arg))
	}
	wg.Wait()

	fmt.Printf("%s on %s, total supply %s\n\n", *tokenFlag, n.DisplayName, dapp.FormatAmount(supply))
	printTable(results, supply)
}

func printTable(results []result, supply *big.Int) {
	// Largest holders first; failures last.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.balance == nil) != (b.balance == nil) {
			return a.balance != nil
		}
		if a.balance != nil && a.balance.Cmp(b.balance) != 0 {
			return a.balance.Cmp(b.balance) > 0
		}
		return a.holder.Hex() < b.holder.Hex()
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOLDER\tBALANCE\tSHARE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 12))

	for _, r := range results {
		balance, share := "-", "-"
		if r.balance != nil {
			balance = dapp.FormatAmount(r.balance)
			share = sharePct(r.balance, supply)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortAddr(r.holder.Hex()), balance, share, r.err)
	}
	w.Flush()
}

func sharePct(balance, supply *big.Int) string {
	if supply.Sign() == 0 {
		return "-"
	}
	pct := decimal.NewFromBigInt(balance, 2).Div(decimal.NewFromBigInt(supply, 0))
	return pct.StringFixed(2) + "%"
}

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(s string) string {
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "check-balances:", err)
	os.Exit(1)
}
