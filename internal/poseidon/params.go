// Package poseidon implements the native Poseidon2 sponge over the BN254
// scalar field used throughout the credential protocol (spec.md §4.3): the
// domain-separating RANDOM constant, the two-level compression transcript's
// ξ and δ challenges, and the disclosure circuit's public Poseidon outputs
// all go through this one sponge construction.
package poseidon

// Width (t), Rate, FullRounds (R_F), and PartialRounds (R_P) are fixed by
// spec.md §4.3 and must match the in-circuit chip in internal/circuit bit
// for bit — the circuit asserts ξ and δ equal their native counterparts.
const (
	Width         = 3
	Rate          = 2
	FullRounds    = 8
	PartialRounds = 57
)
