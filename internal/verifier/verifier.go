// Package verifier implements the "company" pipeline (spec.md §2 "Verifier
// path"): resolve a holder's AuthenticationData into the redacted segments
// and reconstruct, from chain-stored column commitments, the same
// compressed aggregate the holder folded — then check the single SHPLONK
// pairing equation (and, when present, the SNARK) against it. Grounded on
// the reference's company.rs::upload/verify_auth_data handlers, with the
// off-chain pairing check this repo performs standing in for the opaque
// on-chain `verifyData` call the reference delegates to (spec.md §9).
package verifier

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"

	"github.com/cx-edu/edu-verify/internal/aggregate"
	"github.com/cx-edu/edu-verify/internal/apperr"
	"github.com/cx-edu/edu-verify/internal/blob"
	"github.com/cx-edu/edu-verify/internal/cert"
	"github.com/cx-edu/edu-verify/internal/chain"
	"github.com/cx-edu/edu-verify/internal/circuit"
	"github.com/cx-edu/edu-verify/internal/holder"
	"github.com/cx-edu/edu-verify/internal/model"
	"github.com/cx-edu/edu-verify/internal/shplonk"
)

// AuthVerifyData is the resolved form of an AuthenticationData a verifier
// actually checks: the redacted segments fetched from blob storage in
// place of bare CIDs. The reference's models::AuthVerifyData carries no id
// field at all (verification there is delegated whole to an on-chain
// contract call that presumably receives it out of band); this repo's
// off-chain pairing check needs the student's opening point, so ID is
// added here, a deviation from the reference's shape.
type AuthVerifyData struct {
	ID       []string        `json:"id"`
	Data     [][]model.Segment `json:"data"`
	TxHashes []string        `json:"tx_hashs"`
	Proof    string          `json:"proof"`
	ZKProof  string          `json:"zk_proof"`
	Random   string          `json:"random"`
}

// Result is the outcome of a verify-auth-data call: never an error for a
// verification mismatch (spec.md §7 "Verification mismatch... not an
// error: a well-formed 200 response with verified: false").
type Result struct {
	Verified bool   `json:"verified"`
	TxHash   string `json:"tx_hash"`
}

// Verifier owns the collaborators a company's verification flow needs.
type Verifier struct {
	SRS    *shplonk.SRS
	Blob   blob.Store
	Chain  chain.Client
	Prover *circuit.Prover
	Logger zerolog.Logger
}

// New builds a Verifier.
func New(srs *shplonk.SRS, b blob.Store, c chain.Client, prover *circuit.Prover, logger zerolog.Logger) *Verifier {
	return &Verifier{SRS: srs, Blob: b, Chain: c, Prover: prover, Logger: logger}
}

// Upload resolves a holder's AuthenticationData into AuthVerifyData by
// fetching each credential's redacted segment data from blob storage
// (spec.md §6 `/api/company/upload`).
func (v *Verifier) Upload(ctx context.Context, data holder.AuthenticationData) (AuthVerifyData, error) {
	n := len(data.IDs)
	if n == 0 || len(data.DataCIDs) != n || len(data.TxHashes) != n {
		return AuthVerifyData{}, apperr.Malformedf("verifier.Upload", "id/data_cid/tx_hash arrays must be equal length and non-empty")
	}

	out := AuthVerifyData{
		ID:       data.IDs,
		Data:     make([][]model.Segment, n),
		TxHashes: data.TxHashes,
		Proof:    data.Proof,
		ZKProof:  data.ZKProof,
		Random:   data.Random,
	}
	for i, cid := range data.DataCIDs {
		body, err := v.Blob.Get(ctx, cid)
		if err != nil {
			return AuthVerifyData{}, apperr.Internalf("verifier.Upload", "fetching credential %q: %w", data.IDs[i], err)
		}
		var segments []model.Segment
		if err := json.Unmarshal(body, &segments); err != nil {
			return AuthVerifyData{}, apperr.Malformedf("verifier.Upload", "credential %q: invalid segment data: %s", data.IDs[i], err.Error())
		}
		out.Data[i] = segments
	}
	return out, nil
}

// VerifyAuthData runs the off-chain check: reconstruct the aggregate
// commitment from on-chain column commitments, recompute the Fiat-Shamir
// transcript (natively from disclosed data, or from a verified SNARK's
// public transcript when the holder redacted fields), and run the single
// SHPLONK pairing equation (spec.md §6 `/api/company/verify-auth-data`).
// A mismatch at any step is reported as Verified: false, never an error —
// only malformed input or a cryptographic operation that cannot even be
// evaluated returns an error (spec.md §7).
func (v *Verifier) VerifyAuthData(ctx context.Context, data AuthVerifyData) (Result, error) {
	n := len(data.ID)
	if n == 0 || len(data.Data) != n || len(data.TxHashes) != n {
		return Result{}, apperr.Malformedf("verifier.VerifyAuthData", "id/data/tx_hash arrays must be equal length and non-empty")
	}
	id := data.ID[0]
	for _, other := range data.ID {
		if other != id {
			return Result{Verified: false}, nil
		}
	}

	openings, err := cert.DecodeProofHex(data.Proof)
	if err != nil || len(openings) != 1 {
		// Well-formed hex of exactly one chunk whose π does not decode to a
		// valid G1 point is a tampered proof, not malformed input.
		if raw, hexErr := hex.DecodeString(data.Proof); hexErr == nil && len(raw) == cert.ProofChunkSize {
			return Result{Verified: false}, nil
		}
		return Result{}, apperr.Malformedf("verifier.VerifyAuthData", "invalid aggregate proof: %v", err)
	}
	finalP, finalV := openings[0].Pi, openings[0].V

	perCredentialCommits := make([][]bn254.G1Affine, n)
	for i, txHash := range data.TxHashes {
		raw, err := v.Chain.GetCalldata(ctx, txHash)
		if err != nil {
			return Result{}, apperr.Internalf("verifier.VerifyAuthData", "fetching calldata for tx %q: %w", txHash, err)
		}
		commits, err := chain.DecodeCommitments(raw)
		if err != nil {
			return Result{}, apperr.Malformedf("verifier.VerifyAuthData", "tx %q: %s", txHash, err.Error())
		}
		if len(commits) < len(data.Data[i]) {
			return Result{Verified: false}, nil
		}
		perCredentialCommits[i] = commits[:len(data.Data[i])]
	}

	var xi, delta fr.Element
	if data.ZKProof != "" {
		xi, delta, _, err = v.zkTranscript(data)
		if err != nil {
			return Result{Verified: false}, nil
		}
	} else {
		xi, delta, _ = nativeTranscript(data.Data)
	}

	perCredentialCommit := make([]bn254.G1Affine, n)
	for i := range perCredentialCommits {
		perCredentialCommit[i] = aggregate.CompressG1(perCredentialCommits[i], xi)
	}
	aggregateCommit := aggregate.CompressG1(perCredentialCommit, delta)

	z := model.OpeningPoint(id)
	ok, err := shplonk.Verify(aggregateCommit, z, finalV, finalP, v.SRS)
	if err != nil {
		return Result{}, apperr.Cryptof("verifier.VerifyAuthData", "pairing check: %w", err)
	}

	v.Logger.Info().Str("id", id).Bool("verified", ok).Msg("authentication verified")
	return Result{Verified: ok, TxHash: data.TxHashes[0]}, nil
}

// nativeTranscript recomputes ξ, δ, and every credential's folded scalar
// directly from disclosed segment data — valid only when nothing is
// hidden, since a redacted field decomposes to zero regardless of its true
// value and would otherwise silently corrupt the transcript.
func nativeTranscript(data [][]model.Segment) (xi, delta fr.Element, credentialScalars []fr.Element) {
	var allSegmentScalars []fr.Element
	perCredentialSegmentScalars := make([][]fr.Element, len(data))
	for i, segments := range data {
		scalars := make([]fr.Element, len(segments))
		for s, seg := range segments {
			scalars[s] = aggregate.FoldSegment(seg)
		}
		perCredentialSegmentScalars[i] = scalars
		allSegmentScalars = append(allSegmentScalars, scalars...)
	}
	xi = aggregate.DeriveXi(allSegmentScalars)

	credentialScalars = make([]fr.Element, len(data))
	for i := range data {
		credentialScalars[i] = aggregate.CompressFr(perCredentialSegmentScalars[i], xi)
	}
	delta = aggregate.DeriveDelta(credentialScalars)
	return xi, delta, credentialScalars
}

// zkTranscript recovers ξ, δ, and the real credentials' folded scalars from
// a verified SNARK rather than recomputing them from (possibly redacted)
// cleartext: the masked-field matrix is independently recomputable from
// data.Data (a hidden field decomposes to the null scalar, matching the
// circuit's own masking), but Xi, SegmentScalars, and CredentialScalars are
// carried in the zk_proof's PublicTranscript trailer and trusted only once
// groth16.Verify accepts the accompanying proof against that masked matrix.
func (v *Verifier) zkTranscript(data AuthVerifyData) (xi, delta fr.Element, credentialScalars []fr.Element, err error) {
	raw, err := hex.DecodeString(data.ZKProof)
	if err != nil {
		return fr.Element{}, fr.Element{}, nil, err
	}
	proofBytes, _, pt, err := circuit.DecodeZKProof(raw)
	if err != nil {
		return fr.Element{}, fr.Element{}, nil, err
	}

	var masked [circuit.TMax][circuit.SMax][circuit.FMax]fr.Element
	padded := circuit.Pad(toCredentialInputs(data.Data))
	for t := 0; t < circuit.TMax; t++ {
		for s := 0; s < circuit.SMax; s++ {
			seg := padded[t].Segments[s]
			decomposed := model.Decompose(seg)
			for f := 0; f < circuit.FMax; f++ {
				if padded[t].Disclosed[s][seg[f].Key] {
					masked[t][s][f] = decomposed[f]
				}
			}
		}
	}

	public := circuit.PublicAssignmentFromTranscript(masked, pt)
	ok, err := v.Prover.Verify(proofBytes, public)
	if err != nil {
		return fr.Element{}, fr.Element{}, nil, err
	}
	if !ok {
		return fr.Element{}, fr.Element{}, nil, apperr.Cryptof("verifier.zkTranscript", "snark did not verify")
	}

	n := len(data.Data)
	credentialScalars = append([]fr.Element{}, pt.CredentialScalars[:n]...)
	delta = aggregate.DeriveDelta(credentialScalars)
	return pt.Xi, delta, credentialScalars, nil
}

// toCredentialInputs treats every disclosed field in a redacted segment as
// fully disclosed for masking purposes: fields the holder hid are already
// null in data.Data, so their decomposed scalar is zero and Disclosed need
// not distinguish them from genuinely absent fields.
func toCredentialInputs(data [][]model.Segment) []circuit.CredentialInput {
	out := make([]circuit.CredentialInput, len(data))
	for i, segments := range data {
		disclosed := make([]map[string]bool, len(segments))
		for s, seg := range segments {
			set := map[string]bool{}
			for _, f := range seg {
				if !f.Value.IsNull() {
					set[f.Key] = true
				}
			}
			disclosed[s] = set
		}
		out[i] = circuit.CredentialInput{Segments: segments, Disclosed: disclosed}
	}
	return out
}
