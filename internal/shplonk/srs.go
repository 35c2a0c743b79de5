// Package shplonk implements the KZG/SHPLONK polynomial commitment engine
// over BN254 (spec.md §4.1): a monomial- and Lagrange-basis structured
// reference string, single-point opening, and pairing-based verification.
//
// Grounded on github.com/consensys/gnark-crypto/ecc/bn254/kzg's data shapes
// (SRS{Pk,Vk}, Digest = bn254.G1Affine) as used by the fflonk commitment
// scheme in the retrieved corpus, but hand-rolled here because this
// protocol needs a dual monomial/Lagrange SRS and a custom two-level
// Horner aggregation (internal/aggregate) that the upstream kzg package
// does not expose.
package shplonk

import (
	"errors"
	"fmt"
	"math/big"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// ErrDomainOverflow is returned whenever a caller presents more
// coefficients/evaluations than the SRS's fixed domain size M (spec.md
// §4.1 "Failure semantics"). It is a programmer-precondition violation,
// not a verification failure, and is surfaced as a 500 by internal/api
// (spec.md §7).
var ErrDomainOverflow = errors.New("shplonk: input longer than domain size M")

// SRS is the process-wide, read-only structured reference string: a fixed
// size-M domain, monomial-basis towers in G1/G2, and their Lagrange-basis
// duals (spec.md §4.1). Every proof in the system shares one SRS instance;
// after Setup returns it is never mutated (spec.md §5).
type SRS struct {
	Domain *fft.Domain

	G1    []bn254.G1Affine // crs_g1[i] = τ^i · g1
	G2    []bn254.G2Affine // crs_g2[i] = τ^i · g2
	G2Tau bn254.G2Affine   // τ · g2

	LagrangeG1 []bn254.G1Affine
	LagrangeG2 []bn254.G2Affine
}

// Setup builds a deterministic SRS from (g1, g2, tau, size). tau is the
// toxic waste of the ceremony: the caller must let it go out of scope
// immediately after this call returns. A test harness may pass a fixed tau
// (e.g. τ=1, as the reference implementation does); a production
// deployment instead deserializes a ceremony transcript's
// (τ^i·g1, τ^i·g2) tables from disk rather than ever holding a live tau.
func Setup(tau fr.Element, size uint64) (*SRS, error) {
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("shplonk: domain size %d is not a power of two", size)
	}

	_, _, g1Gen, g2Gen := bn254.Generators()

	powers := computePowers(tau, size)

	g1Table, err := scalarMulTableG1(g1Gen, powers)
	if err != nil {
		return nil, fmt.Errorf("shplonk: building G1 monomial table: %w", err)
	}
	g2Table, err := scalarMulTableG2(g2Gen, powers)
	if err != nil {
		return nil, fmt.Errorf("shplonk: building G2 monomial table: %w", err)
	}

	domain := fft.NewDomain(size)

	lagrangeG1 := ifftG1(g1Table, domain)
	lagrangeG2 := ifftG2(g2Table, domain)

	return &SRS{
		Domain:     domain,
		G1:         g1Table,
		G2:         g2Table,
		G2Tau:      g2Table[1],
		LagrangeG1: lagrangeG1,
		LagrangeG2: lagrangeG2,
	}, nil
}

// computePowers returns [1, tau, tau^2, ..., tau^(size-1)].
func computePowers(tau fr.Element, size uint64) []fr.Element {
	powers := make([]fr.Element, size)
	powers[0].SetOne()
	for i := uint64(1); i < size; i++ {
		powers[i].Mul(&powers[i-1], &tau)
	}
	return powers
}

// scalarMulTableG1 is embarrassingly parallel over its index range (spec.md
// §5): each τ^i·g1 is independent, so the work is split across
// runtime.GOMAXPROCS(0) goroutines.
func scalarMulTableG1(gen bn254.G1Affine, scalars []fr.Element) ([]bn254.G1Affine, error) {
	out := make([]bn254.G1Affine, len(scalars))
	parallelFor(len(scalars), func(i int) {
		var bi big.Int
		scalars[i].BigInt(&bi)
		out[i].ScalarMultiplication(&gen, &bi)
	})
	return out, nil
}

func scalarMulTableG2(gen bn254.G2Affine, scalars []fr.Element) ([]bn254.G2Affine, error) {
	out := make([]bn254.G2Affine, len(scalars))
	parallelFor(len(scalars), func(i int) {
		var bi big.Int
		scalars[i].BigInt(&bi)
		out[i].ScalarMultiplication(&gen, &bi)
	})
	return out, nil
}

// parallelFor runs fn(i) for i in [0, n) by splitting the range into
// runtime.GOMAXPROCS(0) contiguous chunks, one goroutine per chunk
// (spec.md §5 "MSMs are the dominant cost...").
func parallelFor(n int, fn func(i int)) {
	nbTasks := runtime.GOMAXPROCS(0)
	if nbTasks > n {
		nbTasks = n
	}
	if nbTasks <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + nbTasks - 1) / nbTasks
	done := make(chan struct{}, nbTasks)
	for t := 0; t < nbTasks; t++ {
		start := t * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		go func(start, end int) {
			for i := start; i < end; i++ {
				fn(i)
			}
			done <- struct{}{}
		}(start, end)
	}
	for t := 0; t < nbTasks; t++ {
		<-done
	}
}

// multiExpConfig is shared by every MSM call in this package so a single
// knob controls Pippenger's worker-pool width (spec.md §5).
func multiExpConfig() ecc.MultiExpConfig {
	return ecc.MultiExpConfig{NbTasks: runtime.GOMAXPROCS(0)}
}
