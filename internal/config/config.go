// Package config parses node configuration from environment variables and
// command-line flags, grounded on the teacher repo's
// provers/types/config.go NewConfig(args ...string)/getEnv pattern.
package config

import (
	"fmt"
	"os"
)

// Config holds everything a cmd/server or cmd/setup-circuit process needs
// to start (spec.md §5 ambient configuration).
type Config struct {
	// ListenAddr is the HTTP address internal/api binds to.
	ListenAddr string

	// SRSPath points at the serialized structured reference string
	// (monomial + Lagrange towers) this node loads at startup rather than
	// ever running a live ceremony (spec.md §4.1).
	SRSPath string

	// CertDir is where internal/cert writes issued certificate ZIP
	// bundles (spec.md §6).
	CertDir string

	// EthereumNodeURL and IPFSAPIURL back the internal/chain and
	// internal/blob interfaces respectively; both are out of scope for
	// this protocol's cryptography but are still real wiring points so
	// the node can be pointed at a live chain/blob backend (spec.md §6
	// Non-goals).
	EthereumNodeURL string
	IPFSAPIURL      string

	LogLevel string
}

// NewConfig parses configuration from environment variables, then
// overrides with any --flag value pairs present in args (typically
// os.Args[1:]).
func NewConfig(args ...string) *Config {
	cfg := &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", "127.0.0.1:3000"),
		SRSPath:         getEnv("SRS_PATH", "./srs.bin"),
		CertDir:         getEnv("CERT_DIR", "./certificates"),
		EthereumNodeURL: getEnv("ETHEREUM_NODE_URL", "http://127.0.0.1:8545"),
		IPFSAPIURL:      getEnv("IPFS_API_URL", "http://localhost:5001"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	for i := 0; i < len(args); i++ {
		if len(args) <= i+1 {
			panic(fmt.Errorf("missing argument for %s", args[i]))
		}
		switch args[i] {
		case "--listen":
			cfg.ListenAddr = args[i+1]
			i++
		case "--srs":
			cfg.SRSPath = args[i+1]
			i++
		case "--cert-dir":
			cfg.CertDir = args[i+1]
			i++
		case "--eth-node":
			cfg.EthereumNodeURL = args[i+1]
			i++
		case "--ipfs-api":
			cfg.IPFSAPIURL = args[i+1]
			i++
		case "--log-level":
			cfg.LogLevel = args[i+1]
			i++
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
