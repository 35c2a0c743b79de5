package shplonk

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// Save writes the SRS to w: the domain, then each of the four point tables
// in turn, using gnark-crypto's own WriteTo encoding for the domain and
// every curve point (the same bytes.Buffer/WriteTo convention
// internal/circuit.Prover uses to serialize groth16 proofs and keys). A
// production deployment runs this once after a ceremony and reloads the
// result at every subsequent process start rather than ever calling Setup
// again (spec.md §4.1 "Production deployment instead deserializes a
// ceremony transcript... from disk").
func (s *SRS) Save(w io.Writer) error {
	if _, err := s.Domain.WriteTo(w); err != nil {
		return fmt.Errorf("shplonk: writing domain: %w", err)
	}
	for _, table := range []struct {
		name string
		g1   []bn254.G1Affine
		g2   []bn254.G2Affine
	}{
		{name: "g1", g1: s.G1},
		{name: "g2", g2: s.G2},
		{name: "lagrange_g1", g1: s.LagrangeG1},
		{name: "lagrange_g2", g2: s.LagrangeG2},
	} {
		if table.g1 != nil {
			if err := writeG1Table(w, table.g1); err != nil {
				return fmt.Errorf("shplonk: writing %s: %w", table.name, err)
			}
		}
		if table.g2 != nil {
			if err := writeG2Table(w, table.g2); err != nil {
				return fmt.Errorf("shplonk: writing %s: %w", table.name, err)
			}
		}
	}
	if _, err := s.G2Tau.WriteTo(w); err != nil {
		return fmt.Errorf("shplonk: writing g2_tau: %w", err)
	}
	return nil
}

// Load is Save's inverse.
func Load(r io.Reader) (*SRS, error) {
	domain := &fft.Domain{}
	if _, err := domain.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("shplonk: reading domain: %w", err)
	}

	g1, err := readG1Table(r)
	if err != nil {
		return nil, fmt.Errorf("shplonk: reading g1: %w", err)
	}
	g2, err := readG2Table(r)
	if err != nil {
		return nil, fmt.Errorf("shplonk: reading g2: %w", err)
	}
	lagrangeG1, err := readG1Table(r)
	if err != nil {
		return nil, fmt.Errorf("shplonk: reading lagrange_g1: %w", err)
	}
	lagrangeG2, err := readG2Table(r)
	if err != nil {
		return nil, fmt.Errorf("shplonk: reading lagrange_g2: %w", err)
	}

	var g2Tau bn254.G2Affine
	if _, err := g2Tau.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("shplonk: reading g2_tau: %w", err)
	}

	return &SRS{
		Domain:     domain,
		G1:         g1,
		G2:         g2,
		G2Tau:      g2Tau,
		LagrangeG1: lagrangeG1,
		LagrangeG2: lagrangeG2,
	}, nil
}

func writeG1Table(w io.Writer, points []bn254.G1Affine) error {
	if err := binary.Write(w, binary.BigEndian, uint64(len(points))); err != nil {
		return err
	}
	for i := range points {
		if _, err := points[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

func writeG2Table(w io.Writer, points []bn254.G2Affine) error {
	if err := binary.Write(w, binary.BigEndian, uint64(len(points))); err != nil {
		return err
	}
	for i := range points {
		if _, err := points[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

func readG1Table(r io.Reader) ([]bn254.G1Affine, error) {
	var n uint64
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make([]bn254.G1Affine, n)
	for i := range out {
		if _, err := out[i].ReadFrom(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readG2Table(r io.Reader) ([]bn254.G2Affine, error) {
	var n uint64
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make([]bn254.G2Affine, n)
	for i := range out {
		if _, err := out[i].ReadFrom(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}
