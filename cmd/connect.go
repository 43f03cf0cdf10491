package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/andycoin/internal/chain"
	"github.com/Mohsinsiddi/andycoin/internal/config"
	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/Mohsinsiddi/andycoin/internal/rpc"
	"github.com/Mohsinsiddi/andycoin/internal/ui"
	"github.com/Mohsinsiddi/andycoin/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// dappSession is everything a token command needs once connected.
type dappSession struct {
	ctrl    *dapp.Controller
	network *chain.Network
	client  *chain.Client
	wallet  *wallet.Wallet
}

func (s *dappSession) Close() { s.client.Close() }

func (s *dappSession) info() ui.AppInfo {
	return ui.AppInfo{
		Network:  s.network.DisplayName,
		Contract: tokenAddress().Hex(),
		RPC:      s.client.URL(),
	}
}

// tokenAddress is --contract when given, otherwise the configured token.
func tokenAddress() common.Address {
	if contractArg != "" {
		return common.HexToAddress(contractArg)
	}
	return cfg.Contract()
}

// resolveNetwork picks --network or the configured default.
func resolveNetwork() (*chain.Network, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	n, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q: run `andycoin network list`", name)
	}
	return n, nil
}

// networkRPCs returns custom endpoints first, then the built-in ones.
func networkRPCs(n *chain.Network) []string {
	urls := append([]string{}, cfg.GetRPCs(n.Name)...)
	for _, u := range n.RPCs {
		if !containsString(urls, u) {
			urls = append(urls, u)
		}
	}
	return urls
}

func pickRPC(ctx context.Context, n *chain.Network) (string, error) {
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.Select(ctx, networkRPCs(n), algo, n.ChainID)
	if err != nil {
		return "", fmt.Errorf("no usable RPC for %s: %w", n.DisplayName, err)
	}
	return url, nil
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir())),
	)
}

// openDapp dials the network and builds a controller for the selected
// wallet. A missing wallet is not an error here: the controller reports it
// the same way a browser without a wallet extension would.
func openDapp(ctx context.Context, approve wallet.ApproveFunc) (*dappSession, error) {
	n, err := resolveNetwork()
	if err != nil {
		return nil, err
	}
	url, err := pickRPC(ctx, n)
	if err != nil {
		return nil, err
	}
	client, err := chain.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	log := logger.Component("cmd")
	log.Debug().Str("network", n.Name).Str("rpc", url).Msg("rpc selected")

	mgr := newWalletManager()
	w, err := mgr.Resolve(walletFlag)
	switch {
	case errors.Is(err, wallet.ErrWalletNotFound) && walletFlag == "":
		w = nil
	case err != nil:
		client.Close()
		return nil, err
	}

	var provider dapp.Provider
	if w != nil {
		provider = wallet.NewProvider(w, mgr.Keystore(), client.Eth(), tokenAddress(), big.NewInt(n.ChainID),
			wallet.WithApprover(approve),
			wallet.WithEventPollInterval(config.EventPollInterval),
			wallet.WithProviderLogger(logger.Component("wallet")),
		)
	}

	ctrl := dapp.New(provider,
		dapp.WithEventTimeout(cfg.EventTimeout()),
		dapp.WithConfirmTimeout(config.TxConfirmTimeout),
		dapp.WithLogger(logger.Component("dapp")),
	)
	return &dappSession{ctrl: ctrl, network: n, client: client, wallet: w}, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
