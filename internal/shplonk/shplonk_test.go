package shplonk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func frOf(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func testSRS(t *testing.T, size uint64) *SRS {
	t.Helper()
	var tau fr.Element
	tau.SetUint64(12345)
	srs, err := Setup(tau, size)
	require.NoError(t, err)
	return srs
}

func TestOpenVerifyRoundTrip(t *testing.T) {
	srs := testSRS(t, 8)

	poly := []fr.Element{frOf(1), frOf(2), frOf(3)}
	commit, err := srs.CommitMonomial(poly)
	require.NoError(t, err)

	z := frOf(5)
	pi, v, err := srs.Open(poly, z)
	require.NoError(t, err)

	ok, err := Verify(commit, z, v, pi, srs)
	require.NoError(t, err)
	require.True(t, ok, "a correctly constructed opening must verify")
}

func TestVerifyRejectsWrongValue(t *testing.T) {
	srs := testSRS(t, 8)

	poly := []fr.Element{frOf(1), frOf(2), frOf(3)}
	commit, err := srs.CommitMonomial(poly)
	require.NoError(t, err)

	z := frOf(5)
	pi, _, err := srs.Open(poly, z)
	require.NoError(t, err)

	wrong := frOf(999)
	ok, err := Verify(commit, z, wrong, pi, srs)
	require.NoError(t, err)
	require.False(t, ok, "a tampered evaluation must not verify")
}

func TestCommitLagrangeOfNonZeroEvalsIsNotIdentity(t *testing.T) {
	srs := testSRS(t, 4)

	evals := []fr.Element{frOf(10), frOf(20), frOf(30), frOf(40)}
	commit, err := srs.CommitLagrangeG1(evals)
	require.NoError(t, err)
	require.False(t, commit.IsInfinity(), "a commitment to non-zero evaluations must not be the identity")
}

func TestDomainOverflow(t *testing.T) {
	srs := testSRS(t, 4)

	_, err := srs.CommitMonomial(make([]fr.Element, 5))
	require.ErrorIs(t, err, ErrDomainOverflow)
}

func TestEvalsToMonomialRoundTripsThroughLagrangeCommit(t *testing.T) {
	srs := testSRS(t, 4)

	evals := []fr.Element{frOf(10), frOf(20), frOf(30), frOf(40)}
	lagrangeCommit, err := srs.CommitLagrangeG1(evals)
	require.NoError(t, err)

	poly := EvalsToMonomial(evals, srs.Domain)
	monomialCommit, err := srs.CommitMonomial(poly)
	require.NoError(t, err)

	require.True(t, lagrangeCommit.Equal(&monomialCommit),
		"a column committed directly in the Lagrange basis must equal the commitment to its monomial expansion")
}

func TestEvalsToMonomialOpenAtArbitraryPoint(t *testing.T) {
	srs := testSRS(t, 4)

	evals := []fr.Element{frOf(10), frOf(20), frOf(30), frOf(40)}
	commit, err := srs.CommitLagrangeG1(evals)
	require.NoError(t, err)

	poly := EvalsToMonomial(evals, srs.Domain)

	z := frOf(777)
	pi, v, err := srs.Open(poly, z)
	require.NoError(t, err)

	ok, err := Verify(commit, z, v, pi, srs)
	require.NoError(t, err)
	require.True(t, ok, "opening the monomial expansion of a Lagrange-committed column must verify against that same commitment")
}
