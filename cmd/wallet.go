package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/andycoin/internal/ui"
	"github.com/Mohsinsiddi/andycoin/internal/wallet"
	"github.com/spf13/cobra"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a signing wallet with --key, or a watch-only wallet by address.

Watch-only wallets can read the token but cannot transfer, burn or mint
unless ANDYCOIN_KEY holds the matching private key.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			w, err := mgr.AddWithKey(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		} else {
			if len(args) < 2 {
				return fmt.Errorf("address required for watch-only wallet\n  Usage: andycoin wallet add <name> <address>\n  Or for signing: andycoin wallet add <name> --key <private-key>")
			}
			w, err := mgr.AddWatchOnly(name, args[1])
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		}
		if d := mgr.Default(); d != nil && d.Name != name {
			fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: andycoin wallet use %s", name)))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		wallets := mgr.List()

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: andycoin wallet generate myWallet"))
			return nil
		}

		session := wallet.DefaultSession()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Unlocked", Width: 9},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def, unlocked := "", ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			if w.CanSign() && session.Unlocked(w.Name) {
				unlocked = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address),
				ui.Meta(walletTypeLabel(w)),
				unlocked,
				def,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr := newWalletManager()
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Long:  "Set the default wallet. Without a name, pick one interactively.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			items := make([]ui.PickerItem, 0)
			for _, w := range mgr.List() {
				items = append(items, ui.PickerItem{
					Label:    w.Name,
					SubLabel: ui.TruncateAddr(w.Address) + "  " + walletTypeLabel(w),
					Value:    w.Name,
					Current:  w.IsDefault,
				})
			}
			picked, err := ui.PickItem("Select default wallet", items)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new wallet",
	Long: `Generate a brand-new keypair and store the private key in the OS keychain.

The private key is displayed ONCE immediately after creation.
Copy it and store it in a password manager. Re-export later with:
andycoin wallet export <name>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		w, err := mgr.Generate(name)
		if err != nil {
			return err
		}
		hexKey, err := mgr.ExportKey(name)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Printf("  %s  %s\n", ui.Meta("Wallet :"), ui.Val(w.Name))
		fmt.Printf("  %s  %s\n\n", ui.Meta("Address:"), ui.Addr(w.Address))
		fmt.Println(ui.DangerBox(
			ui.Warn("SAVE YOUR PRIVATE KEY. It is shown only once. Never share it.") + "\n\n" +
				ui.Val("0x"+hexKey),
		))
		fmt.Println()
		return nil
	},
}

var walletExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Show the private key of a signing wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		fmt.Println(ui.Warn("You are about to reveal a private key. Keep it secret."))
		input := ui.PromptInput(fmt.Sprintf("Type wallet name %q to confirm", name), "")
		if input != name {
			fmt.Println(ui.Err("Name mismatch, export cancelled."))
			return nil
		}

		hexKey, err := newWalletManager().ExportKey(name)
		if err != nil {
			return err
		}
		fmt.Println(ui.DangerBox(ui.Warn("PRIVATE KEY. Do not share this with anyone.") + "\n\n" + ui.Val("0x"+hexKey)))
		return nil
	},
}

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name...]",
	Short: "Cache signing keys for this login session",
	Long: `Read signing keys from the keychain once and cache them in a
user-only file, so the app does not prompt for the keyring password on
every transaction. Without names, every signing wallet is unlocked.
Undo with: andycoin wallet lock`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()

		targets := make([]*wallet.Wallet, 0)
		if len(args) == 0 {
			for _, w := range mgr.List() {
				if w.CanSign() {
					targets = append(targets, w)
				}
			}
		} else {
			for _, name := range args {
				w, err := mgr.Get(name)
				if err != nil {
					return err
				}
				if !w.CanSign() {
					return fmt.Errorf("%q: %w", name, wallet.ErrWatchOnly)
				}
				targets = append(targets, w)
			}
		}
		if len(targets) == 0 {
			fmt.Println(ui.Info("No signing wallets to unlock."))
			return nil
		}

		keys := make(map[string]string, len(targets))
		for _, w := range targets {
			hexKey, err := mgr.Keystore().Retrieve(w.KeyRef)
			if err != nil {
				return fmt.Errorf("reading key for %q: %w", w.Name, err)
			}
			keys[w.KeyRef] = hexKey
		}
		session := wallet.DefaultSession()
		if err := session.PutAll(keys); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Unlocked %d wallet(s).", len(keys))))
		fmt.Println(ui.Hint("Keys are cached in " + session.Path() + ". Run `andycoin wallet lock` when done."))
		return nil
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Forget all cached signing keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := wallet.DefaultSession()
		if !session.Active() {
			fmt.Println(ui.Meta("No wallets unlocked."))
			return nil
		}
		names := session.Names()
		sort.Strings(names)
		if err := session.Clear(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Locked: " + strings.Join(names, ", ")))
		return nil
	},
}

func walletTypeLabel(w *wallet.Wallet) string {
	if w.CanSign() {
		return "signing"
	}
	return "watch-only"
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd,
		walletGenerateCmd, walletExportCmd, walletUnlockCmd, walletLockCmd)
}
