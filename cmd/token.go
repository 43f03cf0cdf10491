package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/Mohsinsiddi/andycoin/internal/ens"
	"github.com/Mohsinsiddi/andycoin/internal/price"
	"github.com/Mohsinsiddi/andycoin/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	tokenTo     string
	tokenAmount string
	tokenYes    bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Read and operate the Andy Coin token",
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show token name, supply, owner and your balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		s, err := openDapp(ctx, nil)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := connect(ctx, s); err != nil {
			return err
		}
		v := s.ctrl.View()

		role := ui.Meta("holder")
		if v.Token.IsOwner {
			role = ui.Success("owner")
		}
		owner := ui.Addr(v.Token.Owner.Hex())
		if name := reverseName(ctx, s, v.Token.Owner); name != "" {
			owner += " " + ui.Val(name)
		}
		pairs := [][2]string{
			{"Symbol", ui.Val(v.Token.Symbol)},
			{"Total Supply", ui.Val(v.Token.TotalSupply + " " + v.Token.Symbol)},
			{"Owner", owner},
			{"Wallet", fmt.Sprintf("%s %s", ui.Val(s.wallet.Name), ui.Addr(v.Session.Account.Hex()))},
			{"Balance", ui.Val(v.Balance + " " + v.Token.Symbol)},
			{"Role", role},
			{"Network", ui.NetworkName(s.network.DisplayName)},
			{"Contract", ui.Addr(tokenAddress().Hex())},
		}
		if url := s.network.AddressURL(tokenAddress().Hex()); url != "" {
			pairs = append(pairs, [2]string{"Explorer", ui.Meta(url)})
		}
		fmt.Println(ui.KeyValueBlock(ui.TokenName(v.Token.Name), pairs))
		return nil
	},
}

var tokenAbiCmd = &cobra.Command{
	Use:   "abi [builtin]",
	Short: "List function selectors and event topics of a built-in ABI",
	Long: `List function selectors and event topics. Defaults to the Andy Coin
ABI; pass "erc20" to compare with the plain ERC-20 interface.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := contract.AndyCoinID
		if len(args) == 1 {
			id = strings.ToLower(args[0])
		}
		b, ok := contract.GetBuiltin(id)
		if !ok {
			var ids []string
			for _, k := range contract.AllBuiltins() {
				ids = append(ids, k.ID)
			}
			return fmt.Errorf("unknown built-in ABI %q (available: %s)", id, strings.Join(ids, ", "))
		}
		fmt.Println(ui.StyleTitle.Render(b.Name) + "  " + ui.Meta(b.Description))

		t := ui.NewTable([]ui.Column{
			{Title: "Kind", Width: 9},
			{Title: "Signature", Width: 44},
			{Title: "Selector / Topic", Width: 66},
		})
		for _, sig := range contract.Signatures(b.ABI) {
			t.AddRow(ui.Row{ui.Meta(sig.Kind), ui.Val(sig.Signature), ui.Addr(sig.ID)})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer tokens to another address",
	Long: `Transfer tokens to another address. On Ethereum and Sepolia the
recipient may also be an ENS name.`,
	Example: `  andycoin token transfer --to 0x7099...79C8 --amount 12.5
  andycoin token transfer --to vitalik.eth --amount 3
  andycoin token transfer --to 0x7099...79C8 --amount 1 --wallet alice --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenAction(dapp.ActionTransfer, map[dapp.Field]string{
			dapp.FieldWalletAddress:  tokenTo,
			dapp.FieldTransferAmount: tokenAmount,
		})
	},
}

var tokenBurnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn tokens from the owner's balance (owner only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenAction(dapp.ActionBurn, map[dapp.Field]string{
			dapp.FieldBurnAmount: tokenAmount,
		})
	},
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint new tokens to the owner (owner only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenAction(dapp.ActionMint, map[dapp.Field]string{
			dapp.FieldMintAmount: tokenAmount,
		})
	},
}

// connect runs the controller's startup and prints its notification on
// failure.
func connect(ctx context.Context, s *dappSession) error {
	spin := ui.NewSpinner(fmt.Sprintf("Connecting to %s...", s.network.DisplayName))
	spin.Start()
	err := s.ctrl.Start(ctx)
	spin.Stop()
	if err != nil {
		printNotification(s.ctrl.View().Notification)
		return err
	}
	return nil
}

func runTokenAction(action dapp.Action, fields map[dapp.Field]string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := openDapp(ctx, approveTx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := connect(ctx, s); err != nil {
		return err
	}
	v := s.ctrl.View()
	if action != dapp.ActionTransfer && !v.Token.IsOwner {
		return fmt.Errorf("only the contract owner (%s) can %s", v.Token.Owner.Hex(), action)
	}

	if to := fields[dapp.FieldWalletAddress]; ens.IsName(to) {
		addr, err := resolveRecipient(ctx, s, to)
		if err != nil {
			return err
		}
		fields[dapp.FieldWalletAddress] = addr.Hex()
	}

	for f, val := range fields {
		s.ctrl.SetField(f, val)
	}

	var note dapp.Notification
	unsubNote := s.ctrl.OnNotification(func(n dapp.Notification) { note = n })
	defer unsubNote()

	prog := newProgress(action)
	unsubView := s.ctrl.Subscribe(prog.observe)
	defer unsubView()

	switch action {
	case dapp.ActionTransfer:
		err = s.ctrl.Transfer(ctx)
	case dapp.ActionBurn:
		err = s.ctrl.Burn(ctx)
	case dapp.ActionMint:
		err = s.ctrl.Mint(ctx)
	}
	prog.stop()

	printNotification(note)
	if tx := s.ctrl.View().LastTx; tx != "" {
		fmt.Println(ui.Meta("  tx " + tx))
		if url := s.network.TxURL(tx); url != "" {
			fmt.Println(ui.Hint(url))
		}
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", action, err)
	}
	if action != dapp.ActionTransfer {
		v = s.ctrl.View()
		fmt.Println(ui.Info(fmt.Sprintf("Total supply: %s %s", v.Token.TotalSupply, v.Token.Symbol)))
	}
	return nil
}

// progress drives a spinner from the action's phase changes. It starts
// only after signing so the approval prompt owns the terminal.
type progress struct {
	action  dapp.Action
	phase   dapp.Phase
	spinner *ui.Spinner
}

func newProgress(a dapp.Action) *progress { return &progress{action: a} }

func (p *progress) observe(v dapp.View) {
	phase := v.Phases[p.action]
	if phase == p.phase {
		return
	}
	p.phase = phase
	switch phase {
	case dapp.PhaseAwaitingConfirmation:
		if p.spinner == nil {
			p.spinner = ui.NewSpinner("Waiting for confirmation...")
			p.spinner.Start()
		}
	case dapp.PhaseAwaitingEvent:
		msg := fmt.Sprintf("Waiting for %s event...", eventFor(p.action))
		if p.spinner == nil {
			p.spinner = ui.NewSpinner(msg)
			p.spinner.Start()
			return
		}
		p.spinner.Update(msg)
	}
}

func (p *progress) stop() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}

func eventFor(a dapp.Action) string {
	switch a {
	case dapp.ActionBurn:
		return contract.EventTokensBurned
	case dapp.ActionMint:
		return contract.EventTokensMinted
	default:
		return contract.EventTransfer
	}
}

func printNotification(n dapp.Notification) {
	if !n.Visible {
		return
	}
	if n.Kind == dapp.KindSuccess {
		fmt.Println(ui.Success(n.Header + ": " + n.Body))
		return
	}
	fmt.Println(ui.Err(n.Header + ": " + n.Body))
}

// approveTx previews the signed call and asks before it is sent.
func approveTx(tx *types.Transaction) bool {
	fmt.Println(ui.KeyValueBlock("Sign Transaction", describeTx(tx)))
	if tokenYes {
		return true
	}
	return ui.Confirm("Sign and send?")
}

// describeTx decodes a token call for the approval preview.
func describeTx(tx *types.Transaction) [][2]string {
	var pairs [][2]string
	data := tx.Data()
	if b, ok := contract.GetBuiltin(contract.AndyCoinID); ok && len(data) >= 4 {
		if m, err := b.ABI.MethodById(data[:4]); err == nil {
			pairs = append(pairs, [2]string{"Method", ui.Val(m.Sig)})
			if vals, err := m.Inputs.Unpack(data[4:]); err == nil {
				for i, in := range m.Inputs {
					pairs = append(pairs, [2]string{argLabel(in.Name), formatArg(vals[i])})
				}
			}
		}
	}
	if to := tx.To(); to != nil {
		pairs = append(pairs, [2]string{"Contract", ui.Addr(to.Hex())})
	}
	pairs = append(pairs,
		[2]string{"Nonce", fmt.Sprintf("%d", tx.Nonce())},
		[2]string{"Gas Limit", fmt.Sprintf("%d", tx.Gas())},
		[2]string{"Max Fee", gwei(tx.GasFeeCap()) + " Gwei"},
	)
	if cost := fiatCost(tx); cost != "" {
		pairs = append(pairs, [2]string{"Max Cost", ui.Meta(cost)})
	}
	return pairs
}

// fiatCost estimates gas limit * max fee in USD. Testnets and price
// failures show nothing.
func fiatCost(tx *types.Transaction) string {
	n, err := resolveNetwork()
	if err != nil || n.Testnet {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	f := price.NewFetcher("usd")
	unit, err := f.NativePrice(ctx, n.NativeCurrency)
	if err != nil {
		logger.Debug().Err(err).Str("currency", n.NativeCurrency).Msg("price unavailable")
		return ""
	}
	wei := new(big.Int).Mul(tx.GasFeeCap(), new(big.Int).SetUint64(tx.Gas()))
	return fmt.Sprintf("~$%s", price.FeeValue(wei, unit).StringFixed(2))
}

// resolveRecipient turns an ENS name into the address the transfer is
// validated and sent with.
func resolveRecipient(ctx context.Context, s *dappSession, name string) (common.Address, error) {
	if !ens.Supported(s.network.ChainID) {
		return common.Address{}, fmt.Errorf("cannot resolve %q: %w", name, ens.ErrUnsupported)
	}
	addr, err := ens.NewResolver(s.client.Eth()).Resolve(ctx, name)
	if err != nil {
		return common.Address{}, err
	}
	fmt.Println(ui.Info(fmt.Sprintf("%s resolves to %s", name, ui.Addr(addr.Hex()))))
	logger.Info().Str("name", name).Str("address", addr.Hex()).Msg("recipient resolved")
	return addr, nil
}

// reverseName is the owner's primary ENS name, or "" when there is none.
func reverseName(ctx context.Context, s *dappSession, addr common.Address) string {
	if !ens.Supported(s.network.ChainID) {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	name, err := ens.NewResolver(s.client.Eth()).Reverse(ctx, addr)
	if err != nil {
		logger.Debug().Err(err).Str("address", addr.Hex()).Msg("no reverse name")
		return ""
	}
	return name
}

func argLabel(name string) string {
	if name == "" {
		return "Arg"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func formatArg(v interface{}) string {
	switch x := v.(type) {
	case *big.Int:
		return ui.Val(dapp.FormatAmount(x))
	case common.Address:
		return ui.Addr(x.Hex())
	default:
		return fmt.Sprintf("%v", x)
	}
}

func gwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -9).StringFixed(2)
}

func init() {
	for _, c := range []*cobra.Command{tokenTransferCmd, tokenBurnCmd, tokenMintCmd} {
		c.Flags().StringVar(&tokenAmount, "amount", "", "amount in whole tokens, e.g. 1.5")
		c.Flags().BoolVarP(&tokenYes, "yes", "y", false, "sign without asking")
	}
	tokenTransferCmd.Flags().StringVar(&tokenTo, "to", "", "recipient address or ENS name")

	tokenCmd.AddCommand(tokenInfoCmd, tokenAbiCmd, tokenTransferCmd, tokenBurnCmd, tokenMintCmd)
}
