package shplonk

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	srs := testSRS(t, 8)

	var buf bytes.Buffer
	require.NoError(t, srs.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	require.Equal(t, len(srs.G1), len(loaded.G1))
	require.True(t, srs.G1[1].Equal(&loaded.G1[1]))
	require.True(t, srs.G2Tau.Equal(&loaded.G2Tau))
	require.True(t, srs.LagrangeG1[0].Equal(&loaded.LagrangeG1[0]))

	poly := []fr.Element{frOf(1), frOf(2), frOf(3)}
	commit, err := loaded.CommitMonomial(poly)
	require.NoError(t, err)
	z := frOf(5)
	pi, v, err := loaded.Open(poly, z)
	require.NoError(t, err)
	ok, err := Verify(commit, z, v, pi, loaded)
	require.NoError(t, err)
	require.True(t, ok)
}
