package issuer

import (
	"context"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cx-edu/edu-verify/internal/blob"
	"github.com/cx-edu/edu-verify/internal/cert"
	"github.com/cx-edu/edu-verify/internal/chain"
	"github.com/cx-edu/edu-verify/internal/model"
	"github.com/cx-edu/edu-verify/internal/shplonk"
)

func segment(t *testing.T, fields map[string]string) model.Segment {
	t.Helper()
	raw := make(map[string]model.FieldValue, len(fields))
	for k, v := range fields {
		raw[k] = model.StringValue(v)
	}
	seg := make(model.Segment, 0, len(raw))
	for k, v := range raw {
		seg = append(seg, model.Field{Key: k, Value: v})
	}
	return seg
}

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	var tau fr.Element
	tau.SetUint64(999)
	srs, err := shplonk.Setup(tau, model.DomainSize)
	require.NoError(t, err)

	return New(srs, blob.NewMemStore(), chain.NewMemClient(), zerolog.Nop())
}

func TestIssueProducesOneCertificatePerRecord(t *testing.T) {
	iss := testIssuer(t)

	records := []model.Record{
		{ID: "alice", Segments: []model.Segment{segment(t, map[string]string{"name": "Alice"})}},
		{ID: "bob", Segments: []model.Segment{segment(t, map[string]string{"name": "Bob"})}},
	}

	certs, err := iss.Issue(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, certs, 2)
	require.Equal(t, "alice", certs[0].ID)
	require.Equal(t, "bob", certs[1].ID)
	require.Equal(t, certs[0].TxHash, certs[1].TxHash, "a batch shares one chain transaction")

	openings, err := cert.DecodeProofHex(certs[0].Proof)
	require.NoError(t, err)
	require.Len(t, openings, 1)
}

func TestIssueRejectsMismatchedSegmentCounts(t *testing.T) {
	iss := testIssuer(t)

	records := []model.Record{
		{ID: "alice", Segments: []model.Segment{segment(t, map[string]string{"name": "Alice"})}},
		{ID: "bob", Segments: []model.Segment{}},
	}

	_, err := iss.Issue(context.Background(), records)
	require.Error(t, err)
}

func TestIssueRejectsEmptyBatch(t *testing.T) {
	iss := testIssuer(t)
	_, err := iss.Issue(context.Background(), nil)
	require.Error(t, err)
}
