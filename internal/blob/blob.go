// Package blob models the content-addressed JSON/image store the issuer,
// holder, and verifier pipelines fetch and publish redacted records
// through (spec.md §6 "Blob API", an IPFS-shaped capability explicitly
// scoped out of the hard-core cryptography). Store is the narrow interface
// the crypto core depends on; MemStore is a development stand-in so the
// rest of the system can be exercised without a live IPFS daemon.
package blob

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/sha3"
)

// Store puts and fetches opaque byte blobs by content address, exactly the
// `put(bytes) -> cid` / `get_bytes(cid) -> bytes` shape spec.md §6 assigns
// the blob layer.
type Store interface {
	Put(ctx context.Context, data []byte) (cid string, err error)
	Get(ctx context.Context, cid string) ([]byte, error)
}

// MemStore is an in-process, content-addressed Store: the cid is the hex
// Keccak256 digest of the stored bytes, so Put is idempotent and Get never
// depends on insertion order (spec.md §5 "issuance writes are idempotent
// at the blob layer").
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Put(_ context.Context, data []byte) (string, error) {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	cid := hex.EncodeToString(h.Sum(nil))

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[cid] = stored
	return cid, nil
}

func (m *MemStore) Get(_ context.Context, cid string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[cid]
	if !ok {
		return nil, fmt.Errorf("blob: no content for cid %q", cid)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
