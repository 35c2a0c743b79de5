package chain

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// EncodeCommitments packs a batch's per-segment column commitments into the
// calldata bytes an issuer submits via PutCalldata: each commitment as its
// canonical uncompressed affine encoding, concatenated in segment-index
// order (spec.md §3 "commitments... live on-chain as raw bytes in
// transaction calldata").
func EncodeCommitments(commits []bn254.G1Affine) []byte {
	buf := make([]byte, 0, len(commits)*bn254.SizeOfG1AffineUncompressed)
	for _, c := range commits {
		b := c.RawBytes()
		buf = append(buf, b[:]...)
	}
	return buf
}

// DecodeCommitments is EncodeCommitments's inverse.
func DecodeCommitments(data []byte) ([]bn254.G1Affine, error) {
	const size = bn254.SizeOfG1AffineUncompressed
	if len(data)%size != 0 {
		return nil, fmt.Errorf("chain: calldata length %d is not a multiple of %d", len(data), size)
	}
	n := len(data) / size
	out := make([]bn254.G1Affine, n)
	for i := 0; i < n; i++ {
		if _, err := out[i].SetBytes(data[i*size : (i+1)*size]); err != nil {
			return nil, fmt.Errorf("chain: segment %d: invalid G1 point: %w", i, err)
		}
	}
	return out, nil
}
