package circuit

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"

	"github.com/cx-edu/edu-verify/internal/aggregate"
	"github.com/cx-edu/edu-verify/internal/model"
)

// CredentialInput is one credential's segments plus, per segment, the set
// of disclosed field keys (spec.md §4.4: the holder reveals some fields
// per segment and hides the rest).
type CredentialInput struct {
	Segments  []model.Segment
	Disclosed []map[string]bool
}

// paddingSegment is the synthetic `{"id_i" -> "1"}, i in [0, FMax)` filler
// segment used when a holder's real input is smaller than the circuit's
// fixed T_max x S_max x F_max shape (spec.md §4.4 "Padding").
func paddingSegment() model.Segment {
	seg := make(model.Segment, FMax)
	for i := 0; i < FMax; i++ {
		seg[i] = model.Field{Key: fmt.Sprintf("id_%d", i), Value: model.StringValue("1")}
	}
	return seg
}

// Pad resizes credentials to exactly TMax entries of exactly SMax segments
// each, and every segment to exactly FMax fields, using paddingSegment and
// an empty disclosure set (all hidden) to fill the gaps.
func Pad(credentials []CredentialInput) []CredentialInput {
	out := make([]CredentialInput, TMax)
	for t := 0; t < TMax; t++ {
		var in CredentialInput
		if t < len(credentials) {
			in = credentials[t]
		}

		segs := make([]model.Segment, SMax)
		disc := make([]map[string]bool, SMax)
		for s := 0; s < SMax; s++ {
			if s < len(in.Segments) {
				segs[s] = padFields(in.Segments[s])
			} else {
				segs[s] = paddingSegment()
			}
			if s < len(in.Disclosed) {
				disc[s] = in.Disclosed[s]
			} else {
				disc[s] = map[string]bool{}
			}
		}
		out[t] = CredentialInput{Segments: segs, Disclosed: disc}
	}
	return out
}

// padFields extends seg to exactly FMax fields, appending synthetic
// `padding_i -> "1"` entries after its real (already key-sorted) fields.
func padFields(seg model.Segment) model.Segment {
	if len(seg) >= FMax {
		return seg[:FMax]
	}
	out := make(model.Segment, len(seg), FMax)
	copy(out, seg)
	for i := 0; len(out) < FMax; i++ {
		out = append(out, model.Field{Key: fmt.Sprintf("padding_%d", i), Value: model.StringValue("1")})
	}
	return out
}

// Witness is the fully computed set of values a holder assigns into a
// DisclosureCircuit, both private (Fields, Labels) and public (everything
// else) — the native-side computation that Define mirrors in-circuit.
type Witness struct {
	Fields            [TMax][SMax][FMax]fr.Element
	Labels            [TMax][SMax][FMax]fr.Element
	Masked            [TMax][SMax][FMax]fr.Element
	SegmentScalars    [TMax][SMax]fr.Element
	Xi                fr.Element
	CredentialScalars [TMax]fr.Element
}

// BuildWitness computes a Witness from padded credential inputs, following
// the exact fold order of internal/aggregate (spec.md §4.4 items 1-6).
func BuildWitness(padded []CredentialInput) Witness {
	var w Witness

	var allSegmentScalars []fr.Element
	for t := 0; t < TMax; t++ {
		for s := 0; s < SMax; s++ {
			seg := padded[t].Segments[s]
			disclosed := padded[t].Disclosed[s]
			decomposed := model.Decompose(seg)

			for f := 0; f < FMax; f++ {
				w.Fields[t][s][f] = decomposed[f]
				if disclosed[seg[f].Key] {
					w.Labels[t][s][f].SetOne()
				}
				w.Masked[t][s][f].Mul(&w.Fields[t][s][f], &w.Labels[t][s][f])
			}

			w.SegmentScalars[t][s] = aggregate.CompressFr(decomposed, aggregate.RANDOM)
			allSegmentScalars = append(allSegmentScalars, w.SegmentScalars[t][s])
		}
	}

	w.Xi = aggregate.DeriveXi(allSegmentScalars)

	for t := 0; t < TMax; t++ {
		w.CredentialScalars[t] = aggregate.CompressFr(w.SegmentScalars[t][:], w.Xi)
	}

	return w
}

// Assign converts a Witness into a DisclosureCircuit ready for
// frontend.NewWitness / groth16 proving.
func (w Witness) Assign() *DisclosureCircuit {
	c := &DisclosureCircuit{}
	for t := 0; t < TMax; t++ {
		for s := 0; s < SMax; s++ {
			for f := 0; f < FMax; f++ {
				c.Fields[t][s][f] = frontend.Variable(w.Fields[t][s][f])
				c.Labels[t][s][f] = frontend.Variable(w.Labels[t][s][f])
				c.Masked[t][s][f] = frontend.Variable(w.Masked[t][s][f])
			}
			c.SegmentScalars[t][s] = frontend.Variable(w.SegmentScalars[t][s])
		}
		c.CredentialScalars[t] = frontend.Variable(w.CredentialScalars[t])
	}
	c.Xi = frontend.Variable(w.Xi)
	return c
}
