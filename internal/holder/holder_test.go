package holder

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cx-edu/edu-verify/internal/blob"
	"github.com/cx-edu/edu-verify/internal/cert"
	"github.com/cx-edu/edu-verify/internal/model"
)

func seg(fields ...model.Field) model.Segment {
	return model.Segment(fields)
}

func testHolder(t *testing.T) (*Holder, blob.Store) {
	t.Helper()
	store := blob.NewMemStore()
	return New(store, nil, zerolog.Nop()), store
}

func putRecord(t *testing.T, ctx context.Context, store blob.Store, segments []model.Segment) string {
	t.Helper()
	body, err := json.Marshal(segments)
	require.NoError(t, err)
	cid, err := store.Put(ctx, body)
	require.NoError(t, err)
	return cid
}

func TestAggregateRejectsMixedStudentIDs(t *testing.T) {
	h, store := testHolder(t)
	ctx := context.Background()

	segments := []model.Segment{seg(model.Field{Key: "name", Value: model.StringValue("Alice")})}
	cid := putRecord(t, ctx, store, segments)
	proof := cert.EncodeProofHex([]cert.Opening{{}})

	_, err := h.Aggregate(ctx, []Request{
		{ID: "S1", CID: cid, Proof: proof, TxHash: "0xabc", SelectedFields: [][]string{{"name"}}},
		{ID: "S2", CID: cid, Proof: proof, TxHash: "0xabc", SelectedFields: [][]string{{"name"}}},
	})
	require.Error(t, err)
}

func TestAggregateRejectsProofSegmentCountMismatch(t *testing.T) {
	h, store := testHolder(t)
	ctx := context.Background()

	segments := []model.Segment{
		seg(model.Field{Key: "name", Value: model.StringValue("Alice")}),
		seg(model.Field{Key: "major", Value: model.StringValue("CS")}),
	}
	cid := putRecord(t, ctx, store, segments)
	proof := cert.EncodeProofHex([]cert.Opening{{}}) // one opening, two segments

	_, err := h.Aggregate(ctx, []Request{
		{ID: "S1", CID: cid, Proof: proof, TxHash: "0xabc", SelectedFields: [][]string{{"name"}, {"major"}}},
	})
	require.Error(t, err)
}

func TestRedactSegmentNullsHiddenFields(t *testing.T) {
	s := seg(
		model.Field{Key: "major", Value: model.StringValue("CS")},
		model.Field{Key: "name", Value: model.StringValue("Alice")},
	)
	redacted := redactSegment(s, map[string]bool{"name": true})
	require.Equal(t, "name", redacted[1].Key)
	require.False(t, redacted[1].Value.IsNull())
	require.True(t, redacted[0].Value.IsNull())
}
