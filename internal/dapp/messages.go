package dapp

// User-facing notification text.
const (
	HeaderError            = "Error"
	HeaderTransactionError = "Transaction Error"
	HeaderSuccess          = "Success"
	HeaderNoWallet         = "Wallet not installed"

	DefaultErrorBody     = "An error occured"
	DefaultSuccessHeader = "Transaction Success"
	DefaultSuccessBody   = "Your transaction was successful"

	BodyNoWallet       = "Add a wallet to use Andy Coin..."
	BodyConnectFailed  = "An error occured while loading the application"
	BodyTransferred    = "The tokens was successfully transferred"
	BodyOperationOK    = "Operation was successful"
	BodyMissingAddress = "Please enter the address that will receive the token"
	BodyInvalidAmount  = "Please enter a valid amount"
	BodyInvalidAddress = "Please enter a valid address"
)
