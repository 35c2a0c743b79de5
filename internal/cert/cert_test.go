package cert

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func sampleOpenings(t *testing.T) []Opening {
	t.Helper()
	_, _, g1, _ := bn254.Generators()

	var v1, v2 fr.Element
	v1.SetUint64(7)
	v2.SetUint64(42)

	var v2Big big.Int
	v2.BigInt(&v2Big)

	var p2 bn254.G1Affine
	p2.ScalarMultiplication(&g1, &v2Big)

	return []Opening{
		{Pi: g1, V: v1},
		{Pi: p2, V: v2},
	}
}

func TestEncodeDecodeProofHexRoundTrip(t *testing.T) {
	openings := sampleOpenings(t)

	encoded := EncodeProofHex(openings)
	require.Len(t, encoded, len(openings)*ProofChunkSize*2)
	require.Equal(t, 256, ProofChunkSize*2, "spec.md §3/§6: proof_hex is 256 hex chars per segment (96+32 bytes)")
	require.Len(t, encoded, len(openings)*256)

	decoded, err := DecodeProofHex(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(openings))
	for i := range openings {
		require.True(t, decoded[i].Pi.Equal(&openings[i].Pi))
		require.True(t, decoded[i].V.Equal(&openings[i].V))
	}
}

func TestDecodeProofHexRejectsBadLength(t *testing.T) {
	_, err := DecodeProofHex("abcd")
	require.Error(t, err)
}

func TestDecodeProofHexRejectsBadHex(t *testing.T) {
	_, err := DecodeProofHex("not-hex")
	require.Error(t, err)
}

func TestWriteReadZipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	certs := []Certificate{
		{ID: "stu-1", OriginalDataCID: "cid-1", Proof: "aa", TxHash: "0x01"},
		{ID: "stu-2", OriginalDataCID: "cid-2", Proof: "bb", TxHash: "0x02"},
	}
	issuedAt := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	path, err := WriteZip(dir, issuedAt, certs)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "certificates_20260731_120000.zip"), path)

	back, err := ReadZip(path)
	require.NoError(t, err)
	require.ElementsMatch(t, certs, back)
}

func TestManifestRootIsDeterministicAndOrderSensitive(t *testing.T) {
	certs := []Certificate{
		{ID: "stu-1", OriginalDataCID: "cid-1", Proof: "aa", TxHash: "0x01"},
		{ID: "stu-2", OriginalDataCID: "cid-2", Proof: "bb", TxHash: "0x02"},
	}

	root1, err := ManifestRoot(certs)
	require.NoError(t, err)
	root2, err := ManifestRoot(certs)
	require.NoError(t, err)
	require.Equal(t, root1, root2)

	reversed := []Certificate{certs[1], certs[0]}
	rootReversed, err := ManifestRoot(reversed)
	require.NoError(t, err)
	require.NotEqual(t, root1, rootReversed)
}

func TestManifestRootOfEmptyBatchIsZero(t *testing.T) {
	root, err := ManifestRoot(nil)
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, [32]byte(root))
}
