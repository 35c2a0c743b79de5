// Package circuit implements the disclosure circuit (spec.md §4.4): the
// in-circuit twin of internal/aggregate's Horner compression, proving that
// a holder's masked fields and per-segment scalars were derived from a
// witnessed decomposition under the same RANDOM constant and ξ challenge
// the native transcript uses. Grounded on the teacher's
// circuits/eth2_sc_update.go struct-tag/Define layout and the disclosure
// shape of other_examples' muri-zkproof PoI circuit.
package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/cx-edu/edu-verify/internal/aggregate"
)

// Fixed circuit geometry (spec.md §4.4): T_max credentials, each with
// S_max segments of F_max fields. Plonk-style arithmetization needs a
// static shape, so under-sized holder input is padded before witness
// generation (see Pad in witness.go).
const (
	TMax = 2
	SMax = 2
	FMax = 10
)

// DisclosureCircuit is the fixed-shape redaction circuit. Public inputs
// follow the declaration order of the public fields below: the whole
// Masked matrix (credential-major, then segment, then field), then every
// SegmentScalars entry (credential-major/segment-minor), then ξ, then each
// credential's folded scalar. A segment's masked fields are not
// interleaved with that segment's compressed scalar.
type DisclosureCircuit struct {
	// Fields holds the raw decomposed field scalars (private: the circuit
	// trusts the holder's decomposition — soundness comes from c binding
	// to the issuer's committed column, not from re-deriving it here).
	Fields [TMax][SMax][FMax]frontend.Variable
	// Labels are the 0/1 disclosure witnesses.
	Labels [TMax][SMax][FMax]frontend.Variable

	// Masked is the public masked-field matrix: m = d*label.
	Masked [TMax][SMax][FMax]frontend.Variable `gnark:",public"`
	// SegmentScalars are the public per-segment compressed values c_{t,s}.
	SegmentScalars [TMax][SMax]frontend.Variable `gnark:",public"`
	// Xi is the public first transcript challenge.
	Xi frontend.Variable `gnark:",public"`
	// CredentialScalars are the public per-credential folded values C_t.
	CredentialScalars [TMax]frontend.Variable `gnark:",public"`
}

// Define implements the circuit's constraints (spec.md §4.4 items 1-6).
func (c *DisclosureCircuit) Define(api frontend.API) error {
	chip, err := NewPoseidonChip(api)
	if err != nil {
		return fmt.Errorf("circuit: building poseidon chip: %w", err)
	}

	var randomConst big.Int
	aggregate.RANDOM.BigInt(&randomConst)

	var allSegmentScalars []frontend.Variable

	for t := 0; t < TMax; t++ {
		for s := 0; s < SMax; s++ {
			for f := 0; f < FMax; f++ {
				api.AssertIsBoolean(c.Labels[t][s][f])
				masked := api.Mul(c.Fields[t][s][f], c.Labels[t][s][f])
				api.AssertIsEqual(masked, c.Masked[t][s][f])
			}

			segmentScalar := hornerFold(api, c.Fields[t][s][:], &randomConst)
			api.AssertIsEqual(segmentScalar, c.SegmentScalars[t][s])
			allSegmentScalars = append(allSegmentScalars, c.SegmentScalars[t][s])
		}
	}

	xi := chip.Hash(allSegmentScalars)
	api.AssertIsEqual(xi, c.Xi)

	for t := 0; t < TMax; t++ {
		credentialScalar := hornerFold(api, c.SegmentScalars[t][:], xi)
		api.AssertIsEqual(credentialScalar, c.CredentialScalars[t])
	}

	return nil
}

// hornerFold mirrors internal/aggregate.CompressFr exactly, folding from
// the highest index to the lowest under coefficient r (spec.md §4.2).
func hornerFold(api frontend.API, xs []frontend.Variable, r frontend.Variable) frontend.Variable {
	acc := xs[len(xs)-1]
	for i := len(xs) - 2; i >= 0; i-- {
		acc = api.Mul(acc, r)
		acc = api.Add(acc, xs[i])
	}
	return acc
}
