package config

// Config holds all andycoin configuration.
type Config struct {
	DefaultNetwork  string              `json:"default_network"`
	DefaultWallet   string              `json:"default_wallet"`
	RPCAlgorithm    string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs      map[string][]string `json:"custom_rpcs"`
	ContractAddress string              `json:"contract_address"`
	// EventTimeoutSeconds bounds the wait for a contract event after a
	// transaction confirms. 0 waits until the user cancels.
	EventTimeoutSeconds int    `json:"event_timeout_seconds"`
	LogLevel            string `json:"log_level"` // zerolog level name
	// DeploymentsURL is the manifest `config sync` reads when no URL is given.
	DeploymentsURL string `json:"deployments_url,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}
