// Package aggregate implements the protocol's two-level Horner compression
// transcript (spec.md §4.4): folding a segment's field vector down to one
// scalar, folding a credential's segments down to one scalar under a
// Fiat-Shamir challenge ξ, and folding every disclosed credential down to
// one scalar under a second challenge δ. The same fold shape is
// mirrored in-circuit by internal/circuit so a holder's native transcript
// and a verifier's optional SNARK check the identical arithmetic.
package aggregate

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/cx-edu/edu-verify/internal/model"
	"github.com/cx-edu/edu-verify/internal/poseidon"
)

// RANDOM is the fixed, public domain-separation scalar used to fold a
// segment's own field vector into one value before it is ever committed
// (spec.md §4.4). It is not a Fiat-Shamir challenge — every segment in the
// system is compressed against the same constant so column assembly is
// reproducible without a transcript. The reference implementation seeds a
// ChaCha20 RNG from a fixed counter and samples a field element from its
// stream, which this repo cannot reproduce bit-for-bit without porting
// that exact stream cipher; instead RANDOM is the Poseidon hash of a
// single seed scalar derived from a fixed label, an equally deterministic
// and process-global substitute (see DESIGN.md).
var RANDOM fr.Element

func init() {
	var seed fr.Element
	seed.SetUint64(model.HashToU64([]byte("edu-verify/random/v1")))
	RANDOM = poseidon.Hash([]fr.Element{seed})
}

// CompressFr folds values into a single scalar via Horner's method under
// coefficient r: ((values[n-1]*r + values[n-2])*r + ... )*r + values[0].
func CompressFr(values []fr.Element, r fr.Element) fr.Element {
	var acc fr.Element
	if len(values) == 0 {
		return acc
	}
	acc = values[len(values)-1]
	for i := len(values) - 2; i >= 0; i-- {
		acc.Mul(&acc, &r)
		acc.Add(&acc, &values[i])
	}
	return acc
}

// CompressG1 is CompressFr's group-valued counterpart, folding a vector of
// G1 commitments under the same Horner schedule: the verifier reconstructs
// an aggregate commitment from on-chain per-segment commitments this way,
// using the identical r the holder used to fold the corresponding scalars
// (spec.md §4.4, §6).
func CompressG1(points []bn254.G1Affine, r fr.Element) bn254.G1Affine {
	var acc bn254.G1Affine
	if len(points) == 0 {
		return acc
	}
	var rBig big.Int
	r.BigInt(&rBig)

	acc = points[len(points)-1]
	for i := len(points) - 2; i >= 0; i-- {
		acc.ScalarMultiplication(&acc, &rBig)
		acc.Add(&acc, &points[i])
	}
	return acc
}

// DeriveXi is the transcript's first Fiat-Shamir challenge: the Poseidon
// hash of every segment's compressed scalar, across every credential, in
// credential-major/segment-minor order (spec.md §4.4 step 2). Using
// Poseidon rather than Keccak keeps the challenge inside the same field the
// disclosure circuit operates over, so it can be re-derived in-circuit
// without a hash-to-field gadget.
func DeriveXi(allSegmentValues []fr.Element) fr.Element {
	return poseidon.Hash(allSegmentValues)
}

// DeriveDelta is the transcript's second challenge: the Poseidon hash of
// every credential's ξ-folded value (spec.md §4.4 step 4).
func DeriveDelta(perCredentialValues []fr.Element) fr.Element {
	return poseidon.Hash(perCredentialValues)
}

// FoldSegment compresses one credential segment's decomposed field vector
// into the single scalar that is actually committed for that student's
// column entry (spec.md §3, §4.4).
func FoldSegment(seg model.Segment) fr.Element {
	return CompressFr(model.Decompose(seg), RANDOM)
}

// FoldCredential folds a credential's per-segment compressed values into
// one scalar under challenge ξ (spec.md §4.4's second layer).
func FoldCredential(segmentValues []fr.Element, xi fr.Element) fr.Element {
	return CompressFr(segmentValues, xi)
}

// FoldAll folds every disclosed credential's folded value into the final
// transcript scalar under challenge δ (spec.md §4.4's third layer).
func FoldAll(credentialValues []fr.Element, delta fr.Element) fr.Element {
	return CompressFr(credentialValues, delta)
}
