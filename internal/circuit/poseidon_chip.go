package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"

	"github.com/cx-edu/edu-verify/internal/poseidon"
)

// PoseidonChip is the in-circuit half of the witness/circuit duality
// (spec.md §4.3, §9): the same Width/Rate/FullRounds/PartialRounds
// parameters as internal/poseidon.Sponge, driving gnark's
// std/permutation/poseidon2 permutation through a Merkle-Damgard sponge
// wrapper instead of internal/poseidon's hand-written one, since the
// circuit side already has a battle-tested sponge gadget in the std
// library.
type PoseidonChip struct {
	h hash.FieldHasher
}

// NewPoseidonChip builds the chip with the protocol's fixed parameters.
func NewPoseidonChip(api frontend.API) (*PoseidonChip, error) {
	perm, err := poseidon2.NewPoseidon2FromParameters(api, poseidon.Width, poseidon.FullRounds, poseidon.PartialRounds)
	if err != nil {
		return nil, fmt.Errorf("poseidon chip: %w", err)
	}
	return &PoseidonChip{h: hash.NewMerkleDamgardHasher(api, perm, 0)}, nil
}

// Hash absorbs xs and returns the squeezed digest, the in-circuit
// counterpart of internal/poseidon.Hash.
func (c *PoseidonChip) Hash(xs []frontend.Variable) frontend.Variable {
	c.h.Reset()
	c.h.Write(xs...)
	return c.h.Sum()
}
