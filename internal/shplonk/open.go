package shplonk

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Open produces a single-point KZG opening of poly (in monomial form) at z:
// the evaluation v = poly(z) and the witness commitment
// pi = commit((poly(X) - v) / (X - z)) (spec.md §4.2).
func (s *SRS) Open(poly []fr.Element, z fr.Element) (pi bn254.G1Affine, v fr.Element, err error) {
	if len(poly) == 0 {
		return bn254.G1Affine{}, fr.Element{}, fmt.Errorf("shplonk: cannot open an empty polynomial")
	}
	if len(poly) > len(s.G1) {
		return bn254.G1Affine{}, fr.Element{}, ErrDomainOverflow
	}

	quotient, value := dividePolyByLinear(poly, z)

	witness, err := s.CommitMonomial(quotient)
	if err != nil {
		return bn254.G1Affine{}, fr.Element{}, fmt.Errorf("shplonk: committing opening witness: %w", err)
	}
	return witness, value, nil
}

// dividePolyByLinear performs synthetic division of poly by (X - z),
// returning the quotient and the remainder poly(z).
func dividePolyByLinear(poly []fr.Element, z fr.Element) (quotient []fr.Element, remainder fr.Element) {
	n := len(poly)
	b := make([]fr.Element, n)
	b[n-1] = poly[n-1]
	for i := n - 2; i >= 0; i-- {
		var t fr.Element
		t.Mul(&b[i+1], &z)
		b[i].Add(&poly[i], &t)
	}
	return b[1:], b[0]
}

// Verify checks a single-point KZG opening via the pairing equation
// e(commit - v·g1, g2) == e(pi, τ·g2 - z·g2) (spec.md §4.2). It never
// returns an error for an invalid proof — a mismatch is simply `false`
// (spec.md §7: verification outcomes are data, not control flow).
func Verify(commit bn254.G1Affine, z, v fr.Element, pi bn254.G1Affine, srs *SRS) (bool, error) {
	g2 := srs.G2[0]

	var vBig, zBig big.Int
	v.BigInt(&vBig)
	z.BigInt(&zBig)

	var vG1 bn254.G1Affine
	vG1.ScalarMultiplication(&srs.G1[0], &vBig)

	var lhsG1 bn254.G1Affine
	lhsG1.Sub(&commit, &vG1)

	var zG2 bn254.G2Affine
	zG2.ScalarMultiplication(&g2, &zBig)

	var rhsG2 bn254.G2Affine
	rhsG2.Sub(&srs.G2Tau, &zG2)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{lhsG1, pi},
		[]bn254.G2Affine{g2Neg(g2), rhsG2},
	)
	if err != nil {
		return false, fmt.Errorf("shplonk: pairing check: %w", err)
	}
	return ok, nil
}

func g2Neg(p bn254.G2Affine) bn254.G2Affine {
	var n bn254.G2Affine
	n.Neg(&p)
	return n
}
