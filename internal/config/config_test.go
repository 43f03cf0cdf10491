package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sepolia", cfg.DefaultNetwork)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.DefaultContractAddress, cfg.ContractAddress)
	assert.Equal(t, config.DefaultEventTimeout, cfg.EventTimeout())
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "localhost"
	cfg.DefaultWallet = "mywallet"
	cfg.RPCAlgorithm = "round-robin"
	cfg.EventTimeoutSeconds = 30

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "localhost", reloaded.DefaultNetwork)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
	assert.Equal(t, 30*time.Second, reloaded.EventTimeout())
}

func TestZeroEventTimeoutMeansUnbounded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"event_timeout_seconds":0}`), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Zero(t, cfg.EventTimeout())
}

func TestNegativeEventTimeoutRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"event_timeout_seconds":-5}`), 0o600))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestMalformedConfigErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{not json`), 0o600))

	_, err := config.Load(dir)
	assert.ErrorContains(t, err, "parsing config")
}

// ---------------------------------------------------------------------------
// Contract address
// ---------------------------------------------------------------------------

func TestEmptyContractFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"contract_address":""}`), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(config.DefaultContractAddress), cfg.Contract())
}

func TestSetContractChecksums(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	require.NoError(t, cfg.SetContract("  0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266 "))
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", cfg.ContractAddress)
}

func TestSetContractRejectsGarbage(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	assert.Error(t, cfg.SetContract("0x1234"))
	assert.Equal(t, config.DefaultContractAddress, cfg.ContractAddress)
}

// ---------------------------------------------------------------------------
// Custom RPCs
// ---------------------------------------------------------------------------

func TestAddCustomRPC(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("sepolia", "https://custom.sepolia.rpc"))
	assert.Contains(t, cfg.GetRPCs("sepolia"), "https://custom.sepolia.rpc")
}

func TestAddDuplicateRPCErrors(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	cfg.AddRPC("sepolia", "https://custom.sepolia.rpc") //nolint:errcheck
	assert.Error(t, cfg.AddRPC("sepolia", "https://custom.sepolia.rpc"))
}

func TestRemoveCustomRPC(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	cfg.AddRPC("sepolia", "https://rpc1.sepolia") //nolint:errcheck
	cfg.AddRPC("sepolia", "https://rpc2.sepolia") //nolint:errcheck

	require.NoError(t, cfg.RemoveRPC("sepolia", "https://rpc1.sepolia"))

	rpcs := cfg.GetRPCs("sepolia")
	assert.NotContains(t, rpcs, "https://rpc1.sepolia")
	assert.Contains(t, rpcs, "https://rpc2.sepolia")
}

func TestRemoveNonExistentRPCErrors(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	assert.Error(t, cfg.RemoveRPC("sepolia", "https://nonexistent.rpc"))
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	_, err := os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err, "config.json should be created on save")
}

func TestPathsLiveUnderConfigDir(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
	assert.Equal(t, filepath.Join(dir, "logs", "andycoin.log"), cfg.LogPath())
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", cfg.DefaultNetwork)
	assert.DirExists(t, dir)
}
