package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/andycoin/internal/config"
	"github.com/Mohsinsiddi/andycoin/internal/rpc"
	"github.com/Mohsinsiddi/andycoin/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a custom RPC URL for the network",
	Long: `Add a custom RPC URL. Custom URLs are tried before the built-in ones.
The endpoint is probed first; one serving another chain is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		n, err := resolveNetwork()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.RPCSelectTimeout)
		defer cancel()
		ep, err := rpc.HealthCheck(ctx, url, n.ChainID, 0)
		if err != nil {
			return fmt.Errorf("rejecting %s: %w", url, err)
		}

		if err := cfg.AddRPC(n.Name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s (%dms, block %d)",
			ui.NetworkName(n.Name), url, ep.Latency.Milliseconds(), ep.BlockNumber)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		if err := cfg.RemoveRPC(n.Name, args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", n.Name, args[0])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all RPCs for the network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", n.DisplayName)))
		fmt.Println(ui.StyleHeader.Render("Built-in RPCs:"))
		for _, r := range n.RPCs {
			fmt.Printf("  %s\n", r)
		}

		if custom := cfg.GetRPCs(n.Name); len(custom) > 0 {
			fmt.Println(ui.StyleHeader.Render("Custom RPCs:"))
			for _, r := range custom {
				fmt.Printf("  %s\n", r)
			}
		}
		fmt.Println(ui.Meta("Selection: " + cfg.RPCAlgorithm))
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Probe every RPC for the network and show which one would be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", n.DisplayName)))

		ctx, cancel := context.WithTimeout(context.Background(), config.RPCSelectTimeout)
		defer cancel()
		probes := rpc.ProbeAll(ctx, networkRPCs(n), n.ChainID)

		winner := ""
		if ep, err := rpc.NewPicker(algo).Pick(rpc.ToEndpoints(probes)); err == nil {
			winner = ep.URL
		}
		fmt.Println(benchmarkTable(probes, winner).Render())
		if winner == "" {
			return fmt.Errorf("no healthy RPC for %s", n.DisplayName)
		}
		fmt.Println(ui.Meta(fmt.Sprintf("%s picks %s", algo, winner)))
		return nil
	},
}

func benchmarkTable(probes []rpc.Probe, winner string) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "RPC URL", Width: 40},
		{Title: "Latency", Width: 10},
		{Title: "Block #", Width: 12},
		{Title: "Status", Width: 12},
	})
	for i, p := range probes {
		status := ui.Success("healthy")
		latency := fmt.Sprintf("%dms", p.Latency.Milliseconds())
		block := fmt.Sprintf("%d", p.BlockNumber)
		if p.Err != nil {
			status = ui.Err("down")
			latency, block = "-", "-"
		}
		if p.URL == winner {
			t.SelIdx = i
		}
		t.AddRow(ui.Row{p.URL, latency, block, status})
	}
	return t
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Show or set the RPC selection algorithm",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Info("RPC algorithm: " + cfg.RPCAlgorithm))
		return nil
	},
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:   "set <fastest|round-robin|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(args[0])
		if err != nil {
			return err
		}
		cfg.RPCAlgorithm = string(algo)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC algorithm set to %q", algo)))
		return nil
	},
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
