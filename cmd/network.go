package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/andycoin/internal/chain"
	"github.com/Mohsinsiddi/andycoin/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 14},
			{Title: "Display", Width: 16},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 9},
			{Title: "Testnet", Width: 8},
			{Title: "Default", Width: 8},
		})

		for i, n := range reg.All() {
			testnet, def := "", ""
			if n.Testnet {
				testnet = "yes"
			}
			if n.Name == cfg.DefaultNetwork {
				def = ui.StyleSuccess.Render("✓")
				t.SelIdx = i
			}
			t.AddRow(ui.Row{
				ui.NetworkName(n.Name),
				n.DisplayName,
				fmt.Sprintf("%d", n.ChainID),
				n.NativeCurrency,
				testnet,
				def,
			})
		}

		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d networks", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use [network]",
	Short: "Set the default network",
	Long: `Set the default network and persist it to config. Without a name,
pick one interactively.

Examples:
  andycoin network use sepolia
  andycoin network use localhost   # hardhat / anvil on :8545`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			items := make([]ui.PickerItem, 0, len(reg.All()))
			for _, n := range reg.All() {
				items = append(items, ui.PickerItem{
					Label:    n.Name,
					SubLabel: fmt.Sprintf("%s · chain %d", n.DisplayName, n.ChainID),
					Value:    n.Name,
					Current:  n.Name == cfg.DefaultNetwork,
				})
			}
			picked, err := ui.PickItem("Select default network", items)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		n, err := reg.GetByName(name)
		if err != nil {
			return fmt.Errorf("unknown network %q: run `andycoin network list`", name)
		}
		cfg.DefaultNetwork = n.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.NetworkName(n.Name))))
		return nil
	},
}

func networkNames(reg *chain.Registry) []string {
	var names []string
	for _, n := range reg.All() {
		names = append(names, n.Name)
	}
	return names
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
