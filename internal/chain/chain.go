// Package chain models the blockchain transport the issuer and verifier
// pipelines submit column-commitment calldata to and read it back from
// (spec.md §6 "Chain API", deliberately out of scope for the hard-core
// cryptography beyond the off-chain pairing check it must still support).
// Client is the narrow interface the crypto core depends on; MemClient is
// a development stand-in, grounded on the teacher's ethclient-shaped
// fetcher conventions (provers/api_fetcher.go) without ever dialing a
// live node.
package chain

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Client is the transaction submission / calldata retrieval / contract
// view-call capability spec.md §6 assigns the chain layer: `put_calldata`,
// `get_calldata`, `call_view`.
type Client interface {
	PutCalldata(ctx context.Context, data []byte) (txHash string, err error)
	GetCalldata(ctx context.Context, txHash string) ([]byte, error)
	CallView(ctx context.Context, contract, method string, args []byte) ([]byte, error)
}

// MemClient is an in-process Client: PutCalldata mints a random
// common.Hash-shaped tx hash and stores the calldata under it, matching
// spec.md §5's "the chain transaction for issuance uses confirmations=0 —
// issuance returns before finality" (there is no finality to wait for at
// all here).
type MemClient struct {
	mu   sync.RWMutex
	data map[common.Hash][]byte
}

// NewMemClient returns an empty MemClient.
func NewMemClient() *MemClient {
	return &MemClient{data: make(map[common.Hash][]byte)}
}

func (c *MemClient) PutCalldata(_ context.Context, data []byte) (string, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("chain: minting tx hash: %w", err)
	}
	txHash := common.BytesToHash(raw[:])

	stored := make([]byte, len(data))
	copy(stored, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[txHash] = stored
	return txHash.Hex(), nil
}

func (c *MemClient) GetCalldata(_ context.Context, txHash string) ([]byte, error) {
	h := common.HexToHash(txHash)

	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.data[h]
	if !ok {
		return nil, fmt.Errorf("chain: no calldata for tx %s", txHash)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// CallView has no backing contract in MemClient: the off-chain pairing
// check this repo performs in internal/verifier supersedes it (spec.md §9:
// "the core spec above describes the off-chain pairing check that must
// hold, independent of any on-chain helper"), so this is only here to
// satisfy Client for a future live deployment.
func (c *MemClient) CallView(_ context.Context, contract, method string, _ []byte) ([]byte, error) {
	return nil, fmt.Errorf("chain: no contract deployed, cannot call %s.%s", contract, method)
}
