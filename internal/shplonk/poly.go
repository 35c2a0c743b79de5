package shplonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// EvalsToMonomial converts a column of per-student Lagrange evaluations into
// monomial-basis coefficients, using the same decimation-in-time butterfly
// as ifftG1/ifftG2 (so all three transforms agree on which root of unity
// indexes which evaluation). The issuer commits a column directly in the
// Lagrange basis (CommitLagrangeG1) but still needs the monomial
// coefficients to open at an arbitrary student id outside the domain
// (spec.md §4.1, §4.2).
func EvalsToMonomial(evals []fr.Element, domain *fft.Domain) []fr.Element {
	n := len(evals)
	work := make([]fr.Element, n)
	copy(work, evals)
	bitReversePermute(work)

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		tw := twiddles(domain.GeneratorInv, n, size, half)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				var t fr.Element
				t.Mul(&work[start+k+half], &tw[k])

				u := work[start+k]
				work[start+k].Add(&u, &t)
				work[start+k+half].Sub(&u, &t)
			}
		}
	}

	for i := range work {
		work[i].Mul(&work[i], &domain.CardinalityInv)
	}
	return work
}
