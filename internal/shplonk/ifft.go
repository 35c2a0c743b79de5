package shplonk

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// ifftG1 and ifftG2 apply the inverse NDFT to a monomial-basis tower in the
// group, producing its Lagrange-basis dual (spec.md §4.1: "obtained by
// applying the inverse NDFT over the evaluation domain of size M to the
// monomial tables"). gnark-crypto's fft.Domain only transforms []fr.Element,
// so this reimplements the same decimation-in-time butterfly it uses
// internally, over group elements instead of field elements — the twiddle
// factors (domain.GeneratorInv powers) and the final 1/M scaling come
// straight from the domain so the two transforms agree bit for bit on
// which root of unity indexes which evaluation point.

func bitReversePermute[T any](a []T) {
	n := len(a)
	for i, j := 0, 0; i < n; i++ {
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
		bit := n >> 1
		for ; bit&j != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
	}
}

func ifftG1(points []bn254.G1Affine, domain *fft.Domain) []bn254.G1Affine {
	n := len(points)
	work := make([]bn254.G1Jac, n)
	for i := range points {
		work[i].FromAffine(&points[i])
	}
	bitReversePermute(work)

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		tw := twiddles(domain.GeneratorInv, n, size, half)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				var bi big.Int
				tw[k].BigInt(&bi)

				var t bn254.G1Jac
				t.ScalarMultiplication(&work[start+k+half], &bi)

				u := work[start+k]
				work[start+k].Set(&u).AddAssign(&t)
				work[start+k+half].Set(&u).SubAssign(&t)
			}
		}
	}

	invSize := domain.CardinalityInv
	out := make([]bn254.G1Affine, n)
	for i := range work {
		var bi big.Int
		invSize.BigInt(&bi)
		work[i].ScalarMultiplication(&work[i], &bi)
		out[i].FromJacobian(&work[i])
	}
	return out
}

func ifftG2(points []bn254.G2Affine, domain *fft.Domain) []bn254.G2Affine {
	n := len(points)
	work := make([]bn254.G2Jac, n)
	for i := range points {
		work[i].FromAffine(&points[i])
	}
	bitReversePermute(work)

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		tw := twiddles(domain.GeneratorInv, n, size, half)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				var bi big.Int
				tw[k].BigInt(&bi)

				var t bn254.G2Jac
				t.ScalarMultiplication(&work[start+k+half], &bi)

				u := work[start+k]
				work[start+k].Set(&u).AddAssign(&t)
				work[start+k+half].Set(&u).SubAssign(&t)
			}
		}
	}

	invSize := domain.CardinalityInv
	out := make([]bn254.G2Affine, n)
	for i := range work {
		var bi big.Int
		invSize.BigInt(&bi)
		work[i].ScalarMultiplication(&work[i], &bi)
		out[i].FromJacobian(&work[i])
	}
	return out
}

// twiddles returns [w^0, w^1, ..., w^(half-1)] where w = genInv^(n/size) is
// the principal size-th root of unity's inverse for this butterfly stage.
func twiddles(genInv fr.Element, n, size, half int) []fr.Element {
	var w fr.Element
	w.Exp(genInv, big.NewInt(int64(n/size)))

	out := make([]fr.Element, half)
	out[0].SetOne()
	for i := 1; i < half; i++ {
		out[i].Mul(&out[i-1], &w)
	}
	return out
}
