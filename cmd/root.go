package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/andycoin/internal/config"
	"github.com/Mohsinsiddi/andycoin/internal/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/andycoin/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	logger      *logging.Logger
	verbose     bool
	networkFlag string
	walletFlag  string
	contractArg string
)

// rootCmd is the top-level command. Without a sub-command it opens the
// interactive token screen.
var rootCmd = &cobra.Command{
	Use:   "andycoin",
	Short: "Andy Coin 🦊 token client",
	Long: `andycoin: a terminal client for the Andy Coin token.

  Connect a wallet, see the token name, supply and your balance, and
  transfer tokens. The contract owner can also burn and mint.

Run without arguments for the interactive screen, or use the token
sub-commands for scripted use.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return logger.Close()
		}
		return nil
	},
	RunE: runApp,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	// Load config (skip for commands that don't need it).
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	var err error
	cfg, err = config.Load(cfgDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if contractArg != "" && !common.IsHexAddress(contractArg) {
		return fmt.Errorf("invalid --contract address %q", contractArg)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err = logging.New(logging.Options{
		Path:  cfg.LogPath(),
		Level: level,
		// Mirroring to stderr would tear the full-screen app.
		Verbose: verbose && !isApp(cmd),
	})
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	logger.Debug().Str("command", cmd.CommandPath()).Str("config", cfg.Dir()).Msg("starting")
	return nil
}

func isApp(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == appCmd
}

func init() {
	// Assigned here rather than in the literal: setup -> isApp -> rootCmd
	// would otherwise form an initialization cycle.
	rootCmd.PersistentPreRunE = setup

	// ANDYCOIN_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("ANDYCOIN_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.andycoin)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, mirrored to stderr outside the app")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network to use (default: config default_network)")
	rootCmd.PersistentFlags().StringVar(&walletFlag, "wallet", "", "wallet to use (default: config default_wallet)")
	rootCmd.PersistentFlags().StringVar(&contractArg, "contract", "", "token contract address (default: config contract_address)")

	// Register all sub-commands.
	rootCmd.AddCommand(
		appCmd,
		initCmd,
		tokenCmd,
		walletCmd,
		networkCmd,
		rpcCmd,
		configCmd,
	)
}
