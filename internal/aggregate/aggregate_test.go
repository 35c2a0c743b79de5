package aggregate

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func frOf(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestCompressFrHornerSchedule(t *testing.T) {
	values := []fr.Element{frOf(3), frOf(5), frOf(7)}
	r := frOf(2)

	// Horner from the top: ((7)*2 + 5)*2 + 3 = 41
	got := CompressFr(values, r)
	require.Equal(t, frOf(41).String(), got.String())
}

func TestCompressFrOrderSensitive(t *testing.T) {
	a := CompressFr([]fr.Element{frOf(1), frOf(2)}, frOf(3))
	b := CompressFr([]fr.Element{frOf(2), frOf(1)}, frOf(3))
	require.NotEqual(t, a.String(), b.String(), "compression must not be commutative in its inputs")
}

func TestCompressG1MatchesScalarArithmetic(t *testing.T) {
	_, _, g1, _ := bn254.Generators()

	r := frOf(4)
	points := []bn254.G1Affine{g1, g1, g1}

	got := CompressG1(points, r)
	require.False(t, got.IsInfinity())

	// Horner from the top: ((1)*4 + 1)*4 + 1 = 21, so the fold is 21·g1.
	var want bn254.G1Affine
	want.ScalarMultiplication(&g1, big.NewInt(21))
	require.True(t, got.Equal(&want))
}

func TestDeriveXiDeterministic(t *testing.T) {
	a := DeriveXi([]fr.Element{frOf(1), frOf(2)})
	b := DeriveXi([]fr.Element{frOf(1), frOf(2)})
	require.True(t, a.Equal(&b))

	c := DeriveDelta([]fr.Element{frOf(1), frOf(2)})
	require.True(t, a.Equal(&c), "xi and delta are both the plain Poseidon hash of their input, so equal inputs give equal challenges")
}
