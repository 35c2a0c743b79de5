package cert

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/protolambda/ztyp/tree"
	"golang.org/x/crypto/sha3"
)

// ManifestFileName is the zip entry WriteZip adds alongside each
// certificate's own <id>.json, carrying a Merkle root over the whole
// batch so an auditor can check a batch's integrity without trusting any
// single certificate file in isolation.
const ManifestFileName = "MANIFEST.json"

// Manifest is the structure serialized into ManifestFileName.
type Manifest struct {
	Count int    `json:"count"`
	Root  string `json:"root"`
}

// ManifestRoot computes a binary Merkle root over certs: one leaf per
// certificate (the Keccak256 digest of its canonical JSON encoding),
// zero-padded to the next power of two and combined pairwise via
// protolambda/ztyp/tree's generic SSZ-style hash function — reused here
// outside its original beacon-chain Merkleization purpose for a plain
// batch-integrity root.
func ManifestRoot(certs []Certificate) (tree.Root, error) {
	var zero tree.Root
	if len(certs) == 0 {
		return zero, nil
	}

	leaves := make([]tree.Root, nextPowerOfTwo(len(certs)))
	for i, c := range certs {
		body, err := json.Marshal(c)
		if err != nil {
			return zero, fmt.Errorf("cert: marshaling %s for manifest: %w", c.ID, err)
		}
		h := sha3.NewLegacyKeccak256()
		h.Write(body)
		copy(leaves[i][:], h.Sum(nil))
	}

	hashFn := tree.GetHashFn()
	for len(leaves) > 1 {
		next := make([]tree.Root, len(leaves)/2)
		for i := range next {
			next[i] = hashFn(leaves[2*i], leaves[2*i+1])
		}
		leaves = next
	}
	return leaves[0], nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func manifestJSON(certs []Certificate) ([]byte, error) {
	root, err := ManifestRoot(certs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Manifest{Count: len(certs), Root: "0x" + hex.EncodeToString(root[:])})
}
