package circuit

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// PublicTranscript is the subset of a Witness the verifier needs to rebuild
// a DisclosureCircuit's public assignment without ever seeing the holder's
// private field/label witnesses: the masked matrix is independently
// recomputable from the disclosed (possibly redacted-to-null) data, but
// Xi, SegmentScalars, and CredentialScalars are outputs of a Horner fold
// over hidden data and must be carried alongside the proof. The reference
// this repo's circuit is grounded on never specifies its own wire format
// for this (its halo2 instance packing lives outside the retrieved
// sources), so this encoding is this repo's own, recorded in DESIGN.md.
type PublicTranscript struct {
	Xi                fr.Element
	SegmentScalars    [TMax][SMax]fr.Element
	CredentialScalars [TMax]fr.Element
}

// TranscriptSize is PublicTranscript's fixed encoded length: one Fr for Xi,
// one per segment scalar, one per credential scalar.
const TranscriptSize = (1 + TMax*SMax + TMax) * fr.Bytes

// Public extracts w's PublicTranscript.
func (w Witness) Public() PublicTranscript {
	return PublicTranscript{
		Xi:                w.Xi,
		SegmentScalars:    w.SegmentScalars,
		CredentialScalars: w.CredentialScalars,
	}
}

// Encode serializes the transcript as a fixed-size byte slice, Xi first,
// then segment scalars in credential-major/segment-minor order, then
// credential scalars.
func (pt PublicTranscript) Encode() []byte {
	buf := make([]byte, 0, TranscriptSize)
	xi := pt.Xi.Bytes()
	buf = append(buf, xi[:]...)
	for t := 0; t < TMax; t++ {
		for s := 0; s < SMax; s++ {
			b := pt.SegmentScalars[t][s].Bytes()
			buf = append(buf, b[:]...)
		}
	}
	for t := 0; t < TMax; t++ {
		b := pt.CredentialScalars[t].Bytes()
		buf = append(buf, b[:]...)
	}
	return buf
}

// DecodePublicTranscript parses a transcript encoded by Encode.
func DecodePublicTranscript(b []byte) (PublicTranscript, error) {
	if len(b) != TranscriptSize {
		return PublicTranscript{}, fmt.Errorf("circuit: public transcript must be %d bytes, got %d", TranscriptSize, len(b))
	}

	var pt PublicTranscript
	off := 0
	readFr := func() fr.Element {
		var e fr.Element
		e.SetBytes(b[off : off+fr.Bytes])
		off += fr.Bytes
		return e
	}

	pt.Xi = readFr()
	for t := 0; t < TMax; t++ {
		for s := 0; s < SMax; s++ {
			pt.SegmentScalars[t][s] = readFr()
		}
	}
	for t := 0; t < TMax; t++ {
		pt.CredentialScalars[t] = readFr()
	}
	return pt, nil
}

// PublicAssignmentFromTranscript builds a public-only DisclosureCircuit
// from masked field values the verifier recomputed itself plus a decoded
// PublicTranscript, so groth16.Verify can run without the holder's private
// witnesses ever crossing the wire.
func PublicAssignmentFromTranscript(masked [TMax][SMax][FMax]fr.Element, pt PublicTranscript) *DisclosureCircuit {
	w := Witness{
		Masked:            masked,
		SegmentScalars:    pt.SegmentScalars,
		Xi:                pt.Xi,
		CredentialScalars: pt.CredentialScalars,
	}
	return PublicAssignment(w)
}

// EncodeZKProof frames a groth16 proof alongside the per-credential G1
// aggregates (P_credential, one per actually-presented credential — padding
// slots carry no real opening and are never included) and the public
// transcript a verifier needs to recheck it, as one self-describing byte
// string: a 4-byte proof length, the proof bytes, a 1-byte aggregate count,
// that many 64-byte uncompressed G1 points, then the fixed-size transcript.
// The reference this circuit is grounded on never specifies its own framing
// for this combination (its halo2 instance packing lives outside the
// retrieved sources), so this layout is this repo's own, recorded in
// DESIGN.md.
func EncodeZKProof(proofBytes []byte, aggregates []bn254.G1Affine, pt PublicTranscript) ([]byte, error) {
	if len(aggregates) > 255 {
		return nil, fmt.Errorf("circuit: too many credential aggregates to encode (%d)", len(aggregates))
	}

	buf := make([]byte, 0, 4+len(proofBytes)+1+len(aggregates)*bn254.SizeOfG1AffineUncompressed+TranscriptSize)

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(proofBytes)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, proofBytes...)

	buf = append(buf, byte(len(aggregates)))
	for _, p := range aggregates {
		b := p.RawBytes()
		buf = append(buf, b[:]...)
	}

	buf = append(buf, pt.Encode()...)
	return buf, nil
}

// DecodeZKProof is EncodeZKProof's inverse.
func DecodeZKProof(data []byte) (proofBytes []byte, aggregates []bn254.G1Affine, pt PublicTranscript, err error) {
	if len(data) < 4 {
		return nil, nil, PublicTranscript{}, fmt.Errorf("circuit: zk proof blob too short")
	}
	proofLen := binary.BigEndian.Uint32(data[:4])
	off := 4
	if uint32(len(data)-off) < proofLen {
		return nil, nil, PublicTranscript{}, fmt.Errorf("circuit: zk proof blob truncated before proof bytes")
	}
	proofBytes = data[off : off+int(proofLen)]
	off += int(proofLen)

	if off >= len(data) {
		return nil, nil, PublicTranscript{}, fmt.Errorf("circuit: zk proof blob truncated before aggregate count")
	}
	count := int(data[off])
	off++

	const ptSize = bn254.SizeOfG1AffineUncompressed
	aggregates = make([]bn254.G1Affine, count)
	for i := 0; i < count; i++ {
		if off+ptSize > len(data) {
			return nil, nil, PublicTranscript{}, fmt.Errorf("circuit: zk proof blob truncated at aggregate %d", i)
		}
		if _, err := aggregates[i].SetBytes(data[off : off+ptSize]); err != nil {
			return nil, nil, PublicTranscript{}, fmt.Errorf("circuit: aggregate %d: invalid G1 point: %w", i, err)
		}
		off += ptSize
	}

	pt, err = DecodePublicTranscript(data[off:])
	if err != nil {
		return nil, nil, PublicTranscript{}, fmt.Errorf("circuit: decoding public transcript: %w", err)
	}
	return proofBytes, aggregates, pt, nil
}
