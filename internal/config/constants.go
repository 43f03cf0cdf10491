package config

import "time"

// DefaultContractAddress is the deployed Andy Coin token.
const DefaultContractAddress = "0x8b185cE9B81A4ccD69F64b441986eD3c850A05A6"

// Timeouts shared by cmd and the dapp controller.
const (
	RPCSelectTimeout    = 10 * time.Second // endpoint benchmark / selection
	TxConfirmTimeout    = 3 * time.Minute  // transaction confirmation wait
	DefaultEventTimeout = 2 * time.Minute  // contract event wait after confirmation
	EventPollInterval   = 2 * time.Second  // log polling when the node has no subscriptions
)
