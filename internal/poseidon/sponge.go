package poseidon

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gcposeidon2 "github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Sponge is the native half of the witness/circuit duality required by
// spec.md §9: the same absorb/permute/squeeze orchestration is written once
// here (over fr.Element) and once in internal/circuit (over
// frontend.Variable), both driving a Width=3/Rate=2 Poseidon2 permutation
// built from identical parameters, so neither needs to be trusted to agree
// with the other by accident.
type Sponge struct {
	perm  *gcposeidon2.Permutation
	state [Width]fr.Element
	pos   int
}

// NewSponge returns a fresh sponge with zeroed state (capacity lane
// included), matching the in-circuit chip's initial state.
func NewSponge() *Sponge {
	return &Sponge{perm: gcposeidon2.NewPermutation(Width, FullRounds, PartialRounds)}
}

// Absorb folds one field element into the rate portion of the sponge
// state, permuting first if the current block is full.
func (s *Sponge) Absorb(x fr.Element) {
	if s.pos == Rate {
		s.permute()
	}
	s.state[s.pos].Add(&s.state[s.pos], &x)
	s.pos++
}

func (s *Sponge) permute() {
	out, err := s.perm.Permutation(s.state[:])
	if err != nil {
		panic(fmt.Errorf("poseidon: permutation failed: %w", err))
	}
	copy(s.state[:], out)
	s.pos = 0
}

// Squeeze permutes any pending absorbed block and returns the first rate
// lane as the sponge's single output element (spec.md §4.3).
func (s *Sponge) Squeeze() fr.Element {
	if s.pos != 0 {
		s.permute()
	}
	return s.state[0]
}

// Hash absorbs all of xs and squeezes one Fr — the `poseidon(xs) -> Fr`
// primitive of spec.md §4.3.
func Hash(xs []fr.Element) fr.Element {
	s := NewSponge()
	for _, x := range xs {
		s.Absorb(x)
	}
	return s.Squeeze()
}
