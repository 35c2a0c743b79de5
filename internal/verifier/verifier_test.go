package verifier

import (
	"context"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cx-edu/edu-verify/internal/blob"
	"github.com/cx-edu/edu-verify/internal/chain"
	"github.com/cx-edu/edu-verify/internal/holder"
	"github.com/cx-edu/edu-verify/internal/issuer"
	"github.com/cx-edu/edu-verify/internal/model"
	"github.com/cx-edu/edu-verify/internal/shplonk"
)

func namedSegment(name, major string) model.Segment {
	return model.Segment{
		{Key: "major", Value: model.StringValue(major)},
		{Key: "name", Value: model.StringValue(name)},
	}
}

func testRig(t *testing.T) (*issuer.Issuer, *holder.Holder, *Verifier) {
	t.Helper()
	var tau fr.Element
	tau.SetUint64(2024)
	srs, err := shplonk.Setup(tau, model.DomainSize)
	require.NoError(t, err)

	store := blob.NewMemStore()
	ledger := chain.NewMemClient()

	iss := issuer.New(srs, store, ledger, zerolog.Nop())
	hld := holder.New(store, nil, zerolog.Nop())
	ver := New(srs, store, ledger, nil, zerolog.Nop())
	return iss, hld, ver
}

func TestFullDisclosureRoundTripVerifies(t *testing.T) {
	iss, hld, ver := testRig(t)
	ctx := context.Background()

	records := []model.Record{
		{ID: "S1", Segments: []model.Segment{namedSegment("Alice", "CS")}},
	}
	certs, err := iss.Issue(ctx, records)
	require.NoError(t, err)
	require.Len(t, certs, 1)

	authData, err := hld.Aggregate(ctx, []holder.Request{{
		ID:             "S1",
		SelectedFields: [][]string{{"major", "name"}},
		TxHash:         certs[0].TxHash,
		CID:            certs[0].OriginalDataCID,
		Proof:          certs[0].Proof,
	}})
	require.NoError(t, err)
	require.Empty(t, authData.ZKProof)
	require.Empty(t, authData.Random)

	verifyData, err := ver.Upload(ctx, authData)
	require.NoError(t, err)

	result, err := ver.VerifyAuthData(ctx, verifyData)
	require.NoError(t, err)
	require.True(t, result.Verified)
}

func TestTamperedProofFailsVerification(t *testing.T) {
	iss, hld, ver := testRig(t)
	ctx := context.Background()

	records := []model.Record{
		{ID: "S1", Segments: []model.Segment{namedSegment("Alice", "CS")}},
	}
	certs, err := iss.Issue(ctx, records)
	require.NoError(t, err)

	authData, err := hld.Aggregate(ctx, []holder.Request{{
		ID:             "S1",
		SelectedFields: [][]string{{"major", "name"}},
		TxHash:         certs[0].TxHash,
		CID:            certs[0].OriginalDataCID,
		Proof:          certs[0].Proof,
	}})
	require.NoError(t, err)

	tampered := []rune(authData.Proof)
	if tampered[0] == '0' {
		tampered[0] = '1'
	} else {
		tampered[0] = '0'
	}
	authData.Proof = string(tampered)

	verifyData, err := ver.Upload(ctx, authData)
	require.NoError(t, err)

	result, err := ver.VerifyAuthData(ctx, verifyData)
	require.NoError(t, err)
	require.False(t, result.Verified)
}

func TestDistinctIDsShareCommitmentButNotProof(t *testing.T) {
	iss, _, _ := testRig(t)
	ctx := context.Background()

	records := []model.Record{
		{ID: "S1", Segments: []model.Segment{namedSegment("Alice", "CS")}},
		{ID: "S2", Segments: []model.Segment{namedSegment("Alice", "CS")}},
	}
	certs, err := iss.Issue(ctx, records)
	require.NoError(t, err)
	require.NotEqual(t, certs[0].Proof, certs[1].Proof, "distinct opening points must yield distinct proofs")
}
