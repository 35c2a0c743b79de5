package shplonk

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// CommitMonomial commits to poly's coefficients against the monomial-basis
// G1 tower: commitment = Σ poly[i]·crs_g1[i] (spec.md §4.1).
func (s *SRS) CommitMonomial(poly []fr.Element) (bn254.G1Affine, error) {
	if len(poly) > len(s.G1) {
		return bn254.G1Affine{}, ErrDomainOverflow
	}
	var commit bn254.G1Affine
	if _, err := commit.MultiExp(s.G1[:len(poly)], poly, multiExpConfig()); err != nil {
		return bn254.G1Affine{}, fmt.Errorf("shplonk: monomial G1 commit: %w", err)
	}
	return commit, nil
}

// CommitLagrangeG1 commits to a column of per-student evaluations directly
// in the Lagrange basis: commitment = Σ evals[i]·crs_lagrange_g1[i]. This is
// the form the issuer uses for every per-segment column commitment (spec.md
// §3, §4.1), since a column IS already evaluation data, not coefficients.
func (s *SRS) CommitLagrangeG1(evals []fr.Element) (bn254.G1Affine, error) {
	if len(evals) > len(s.LagrangeG1) {
		return bn254.G1Affine{}, ErrDomainOverflow
	}
	var commit bn254.G1Affine
	if _, err := commit.MultiExp(s.LagrangeG1[:len(evals)], evals, multiExpConfig()); err != nil {
		return bn254.G1Affine{}, fmt.Errorf("shplonk: lagrange G1 commit: %w", err)
	}
	return commit, nil
}

// CommitLagrangeG2 is CommitLagrangeG1's G2 counterpart (spec.md §4.2).
// Nothing in this repository calls it: the verifier's pairing check works
// from G1 column commitments.
func (s *SRS) CommitLagrangeG2(evals []fr.Element) (bn254.G2Affine, error) {
	if len(evals) > len(s.LagrangeG2) {
		return bn254.G2Affine{}, ErrDomainOverflow
	}
	var commit bn254.G2Affine
	if _, err := commit.MultiExp(s.LagrangeG2[:len(evals)], evals, multiExpConfig()); err != nil {
		return bn254.G2Affine{}, fmt.Errorf("shplonk: lagrange G2 commit: %w", err)
	}
	return commit, nil
}
