package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/andycoin/internal/chain"
	"github.com/Mohsinsiddi/andycoin/internal/config"
	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/Mohsinsiddi/andycoin/internal/deployments"
	"github.com/Mohsinsiddi/andycoin/internal/logging"
	"github.com/Mohsinsiddi/andycoin/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta("Log file:         " + cfg.LogPath()))
		return nil
	},
}

var configSetContractCmd = &cobra.Command{
	Use:   "set-contract <address>",
	Short: "Set the token contract address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetContract(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Token contract set to " + ui.Addr(cfg.ContractAddress)))
		return nil
	},
}

var configSetNetworkCmd = &cobra.Command{
	Use:   "set-network <network>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q: run `andycoin network list`", args[0])
		}
		cfg.DefaultNetwork = n.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.NetworkName(n.Name))))
		return nil
	},
}

var configSetEventTimeoutCmd = &cobra.Command{
	Use:   "set-event-timeout <seconds>",
	Short: "Set how long to wait for the contract event after confirmation",
	Long: `Set how long a transfer, burn or mint waits for its contract event
once the transaction is confirmed. 0 waits until the action is cancelled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secs, err := strconv.Atoi(args[0])
		if err != nil || secs < 0 {
			return fmt.Errorf("invalid timeout %q: want a whole number of seconds >= 0", args[0])
		}
		cfg.EventTimeoutSeconds = secs
		if err := cfg.Save(); err != nil {
			return err
		}
		if secs == 0 {
			fmt.Println(ui.Success("Event wait is now unbounded"))
			return nil
		}
		fmt.Println(ui.Success(fmt.Sprintf("Event timeout set to %ds", secs)))
		return nil
	},
}

var configSetLogLevelCmd = &cobra.Command{
	Use:   "set-log-level <level>",
	Short: "Set the log file level (trace, debug, info, warn, error)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(args[0])
		if err != nil {
			return err
		}
		cfg.LogLevel = level.String()
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Log level set to %q", cfg.LogLevel)))
		return nil
	},
}

var configSyncCmd = &cobra.Command{
	Use:   "sync [manifest-url]",
	Short: "Set the token contract from a deployments manifest",
	Long: `Fetch a deployments manifest and store the Andy Coin address published
for the current network. The URL is remembered for later syncs.

Manifest format:
  {"contracts": {"andycoin": {"sepolia": {"address": "0x..."}}}}`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := cfg.DeploymentsURL
		if len(args) == 1 {
			url = args[0]
		}
		if url == "" {
			return fmt.Errorf("no manifest URL: pass one or set it once with `andycoin config sync <url>`")
		}
		n, err := resolveNetwork()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.RPCSelectTimeout)
		defer cancel()
		m, err := deployments.NewFetcher().Fetch(ctx, url)
		if err != nil {
			return err
		}
		addr, err := m.Address(contract.AndyCoinID, n.Name)
		if err != nil {
			return err
		}

		prev := cfg.ContractAddress
		cfg.ContractAddress = addr.Hex()
		cfg.DeploymentsURL = url
		if err := cfg.Save(); err != nil {
			return err
		}
		logger.Info().Str("network", n.Name).Str("contract", addr.Hex()).Str("manifest", url).Msg("contract synced")

		if prev == addr.Hex() {
			fmt.Println(ui.Info("Token contract unchanged: " + ui.Addr(addr.Hex())))
			return nil
		}
		fmt.Println(ui.Success(fmt.Sprintf("Token contract on %s set to %s", ui.NetworkName(n.Name), ui.Addr(addr.Hex()))))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetContractCmd, configSetNetworkCmd,
		configSetEventTimeoutCmd, configSetLogLevelCmd, configSyncCmd)
}
