// Package holder implements the "student" pipeline (spec.md §2 "Holder
// path"): given one or more certified credentials and a per-segment
// disclosure mask, it rebuilds the per-segment compression transcript,
// folds each credential's opening proof under the transcript's ξ
// challenge and every credential under δ, and emits an AuthenticationData
// bundle — optionally with a SNARK attesting the same fold for the fields
// the holder chose to keep hidden. Grounded on the reference's
// student.rs::generate_authentication handler.
package holder

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
	"github.com/cx-edu/edu-verify/internal/circuit"
	"github.com/cx-edu/edu-verify/internal/model"
)

// Request is one presented credential: the certificate's id/tx_hash/cid
// and proof_hex, plus the per-segment set of field keys the holder chooses
// to disclose (models.rs's GenerateAuthenticationData, one entry per
// credential slot — spec.md §4.4's T axis).
type Request struct {
	ID             string
	SelectedFields [][]string
	TxHash         string
	CID            string
	Proof          string
	IsZK           bool
}

// AuthenticationData is the bundle a holder hands to a verifier
// (models.rs's AuthenticationData, spec.md §3/§6).
type AuthenticationData struct {
	IDs       []string `json:"id"`
	DataCIDs  []string `json:"data_cid"`
	TxHashes  []string `json:"tx_hash"`
	Proof     string   `json:"proof"`
	ZKProof   string   `json:"zk_proof"`
	Random    string   `json:"random"`
}

// Holder owns the collaborators a holder request needs: blob storage for
// fetching the original record and publishing the redacted view, and an
// optional SNARK prover for the partial-disclosure path.
type Holder struct {
	Blob   blob.Store
	Prover *circuit.Prover
	Logger zerolog.Logger
}

// New builds a Holder.
func New(b blob.Store, prover *circuit.Prover, logger zerolog.Logger) *Holder {
	return &Holder{Blob: b, Prover: prover, Logger: logger}
}

// credential is one request's resolved state: the true segments (as
// issued), the disclosed-field sets, and the decoded certificate openings.
type credential struct {
	req       Request
	segments  []model.Segment
	disclosed []map[string]bool
	openings  []cert.Opening
}

// Aggregate runs the full holder pipeline over reqs, in input order (spec.md
// §5: "the compressed aggregation must observe exactly the same iteration
// order on issuer, holder, and verifier").
func (h *Holder) Aggregate(ctx context.Context, reqs []Request) (AuthenticationData, error) {
	if len(reqs) == 0 {
		return AuthenticationData{}, apperr.Malformedf("holder.Aggregate", "no credentials supplied")
	}

	id := reqs[0].ID
	for _, r := range reqs {
		if r.ID != id {
			return AuthenticationData{}, apperr.Malformedf("holder.Aggregate", "all credentials in one authentication request must share one student id, got %q and %q", id, r.ID)
		}
	}

	isZK := false
	for _, r := range reqs {
		if r.IsZK {
			isZK = true
		}
	}
	if isZK && len(reqs) > circuit.TMax {
		return AuthenticationData{}, apperr.Malformedf("holder.Aggregate", "zk disclosure supports at most %d credentials, got %d", circuit.TMax, len(reqs))
	}

	creds := make([]credential, len(reqs))
	for i, r := range reqs {
		body, err := h.Blob.Get(ctx, r.CID)
		if err != nil {
			return AuthenticationData{}, apperr.Internalf("holder.Aggregate", "fetching credential %q: %w", r.ID, err)
		}
		var segments []model.Segment
		if err := json.Unmarshal(body, &segments); err != nil {
			return AuthenticationData{}, apperr.Malformedf("holder.Aggregate", "credential %q: invalid segment data: %s", r.ID, err.Error())
		}

		openings, err := cert.DecodeProofHex(r.Proof)
		if err != nil {
			return AuthenticationData{}, apperr.Malformedf("holder.Aggregate", "credential %q: %s", r.ID, err.Error())
		}
		if len(openings) != len(segments) {
			return AuthenticationData{}, apperr.Malformedf("holder.Aggregate", "credential %q: %d segments but %d proof openings", r.ID, len(segments), len(openings))
		}

		disclosed := make([]map[string]bool, len(segments))
		for s := range segments {
			set := map[string]bool{}
			if s < len(r.SelectedFields) {
				for _, k := range r.SelectedFields[s] {
					set[k] = true
				}
			}
			disclosed[s] = set
		}

		creds[i] = credential{req: r, segments: segments, disclosed: disclosed, openings: openings}
	}

	var xi fr.Element
	var credentialScalars []fr.Element
	var witness circuit.Witness
	if isZK {
		inputs := make([]circuit.CredentialInput, len(creds))
		for i, c := range creds {
			inputs[i] = circuit.CredentialInput{Segments: c.segments, Disclosed: c.disclosed}
		}
		witness = circuit.BuildWitness(circuit.Pad(inputs))
		xi = witness.Xi
		credentialScalars = witness.CredentialScalars[:len(creds)]
	} else {
		var allSegmentScalars []fr.Element
		perCredentialSegmentScalars := make([][]fr.Element, len(creds))
		for i, c := range creds {
			scalars := make([]fr.Element, len(c.segments))
			for s, seg := range c.segments {
				scalars[s] = aggregate.FoldSegment(seg)
			}
			perCredentialSegmentScalars[i] = scalars
			allSegmentScalars = append(allSegmentScalars, scalars...)
		}
		xi = aggregate.DeriveXi(allSegmentScalars)

		credentialScalars = make([]fr.Element, len(creds))
		for i := range creds {
			credentialScalars[i] = aggregate.CompressFr(perCredentialSegmentScalars[i], xi)
		}
	}

	delta := aggregate.DeriveDelta(credentialScalars)

	perCredentialP := make([]bn254.G1Affine, len(creds))
	perCredentialV := make([]fr.Element, len(creds))
	for i, c := range creds {
		pis := make([]bn254.G1Affine, len(c.openings))
		vs := make([]fr.Element, len(c.openings))
		for s, o := range c.openings {
			pis[s] = o.Pi
			vs[s] = o.V
		}
		perCredentialP[i] = aggregate.CompressG1(pis, xi)
		perCredentialV[i] = aggregate.CompressFr(vs, xi)
	}

	finalP := aggregate.CompressG1(perCredentialP, delta)
	finalV := aggregate.CompressFr(perCredentialV, delta)

	out := AuthenticationData{
		IDs:      make([]string, len(creds)),
		DataCIDs: make([]string, len(creds)),
		TxHashes: make([]string, len(creds)),
		Proof:    cert.EncodeProofHex([]cert.Opening{{Pi: finalP, V: finalV}}),
	}
	for i, c := range creds {
		redacted := make([]model.Segment, len(c.segments))
		for s, seg := range c.segments {
			redacted[s] = redactSegment(seg, c.disclosed[s])
		}
		body, err := json.Marshal(redacted)
		if err != nil {
			return AuthenticationData{}, apperr.Internalf("holder.Aggregate", "marshaling redacted credential %q: %w", c.req.ID, err)
		}
		dataCID, err := h.Blob.Put(ctx, body)
		if err != nil {
			return AuthenticationData{}, apperr.Internalf("holder.Aggregate", "publishing redacted credential %q: %w", c.req.ID, err)
		}

		out.IDs[i] = c.req.ID
		out.DataCIDs[i] = dataCID
		out.TxHashes[i] = c.req.TxHash
	}

	if isZK {
		proofBytes, err := h.Prover.Prove(witness)
		if err != nil {
			return AuthenticationData{}, apperr.Cryptof("holder.Aggregate", "generating disclosure proof: %w", err)
		}
		zkBytes, err := circuit.EncodeZKProof(proofBytes, perCredentialP, witness.Public())
		if err != nil {
			return AuthenticationData{}, apperr.Internalf("holder.Aggregate", "encoding zk proof: %w", err)
		}
		out.ZKProof = hex.EncodeToString(zkBytes)
		out.Random = randomFromXi(xi)
	}

	h.Logger.Info().Str("id", id).Int("credentials", len(creds)).Bool("zk", isZK).Msg("authentication aggregated")
	return out, nil
}

// redactSegment returns a copy of seg with every field not present in
// disclosed set to null, preserving the original key order (spec.md §3's
// canonical ordering carries through to the published redacted view).
func redactSegment(seg model.Segment, disclosed map[string]bool) model.Segment {
	out := make(model.Segment, len(seg))
	for i, f := range seg {
		if disclosed[f.Key] {
			out[i] = f
		} else {
			out[i] = model.Field{Key: f.Key, Value: model.NullValue()}
		}
	}
	return out
}

// randomFromXi truncates ξ to its low 8 bytes and hex-encodes them (spec.md
// §9: "random... is populated from a zero-padded 8-byte view of ξ").
func randomFromXi(xi fr.Element) string {
	b := xi.Bytes()
	return hex.EncodeToString(b[len(b)-8:])
}
