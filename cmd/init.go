package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/andycoin/internal/chain"
	"github.com/Mohsinsiddi/andycoin/internal/rpc"
	"github.com/Mohsinsiddi/andycoin/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Choose the default network, RPC selection and token contract.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		algos := make([]string, 0, len(rpc.Algorithms))
		for _, a := range rpc.Algorithms {
			algos = append(algos, string(a))
		}
		result, err := ui.RunWizard(ui.WizardOptions{
			Networks:        networkNames(chain.NewRegistry()),
			Algorithms:      algos,
			ContractAddress: cfg.ContractAddress,
		})
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		// Apply wizard results to config.
		if result.DefaultNetwork != "" {
			cfg.DefaultNetwork = result.DefaultNetwork
		}
		if result.RPCAlgorithm != "" {
			cfg.RPCAlgorithm = result.RPCAlgorithm
		}
		if result.ContractAddress != "" && result.ContractAddress != cfg.ContractAddress {
			if err := cfg.SetContract(result.ContractAddress); err != nil {
				return err
			}
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(ui.Success("andycoin configured!"))
		if len(newWalletManager().List()) == 0 {
			fmt.Println(ui.Hint("Next: andycoin wallet generate <name>  or  andycoin wallet add <name> --key <key>"))
		} else {
			fmt.Println(ui.Hint("Run `andycoin` to open the token screen."))
		}
		return nil
	},
}
