package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/andycoin/internal/ui"
	"github.com/spf13/cobra"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Open the interactive token screen (default)",
	Long: `Open the full-screen Andy Coin client.

Tab / ↑↓ move between inputs and buttons, Enter submits, Ctrl+R reloads
token info. Esc closes an open notification and otherwise quits; q also
quits while a button is focused. Connect Wallet asks the wallet for its
account again. Burn and Mint only appear when the selected wallet owns the
contract.`,
	Args: cobra.NoArgs,
	RunE: runApp,
}

func runApp(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spin := ui.NewSpinner("Selecting RPC...")
	spin.Start()
	s, err := openDapp(ctx, nil)
	spin.Stop()
	if err != nil {
		return err
	}
	defer s.Close()

	return ui.RunApp(ctx, s.ctrl, s.info())
}
