package circuit

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// Prover owns a compiled DisclosureCircuit and its groth16 keypair,
// grounded on the compile/gen_pk/gen_proof lifecycle of
// other_examples' muri-zkproof export_proof.go and the teacher's
// verifiers/eth2/generate_verifier.go Solidity export step.
type Prover struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// NewProver compiles the disclosure circuit and runs a (non-toxic, purely
// illustrative) groth16 setup. A production deployment instead loads pk/vk
// produced once by cmd/setup-circuit and persisted to disk.
func NewProver() (*Prover, error) {
	var circuit DisclosureCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit: compiling disclosure circuit: %w", err)
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("circuit: groth16 setup: %w", err)
	}

	return &Prover{ccs: ccs, pk: pk, vk: vk}, nil
}

// NewProverFromKeys builds a Prover from a previously compiled constraint
// system and keypair (the path cmd/server takes at startup, loading
// artifacts cmd/setup-circuit produced).
func NewProverFromKeys(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey) *Prover {
	return &Prover{ccs: ccs, pk: pk, vk: vk}
}

// PublicAssignment builds the public-only view of a Witness: every private
// field (Fields, Labels) is left at its zero value, which is safe because
// frontend.PublicOnly() discards them before the verifier ever sees this
// assignment. RANDOM never appears here at all: Define bakes it in as a
// fixed constant, not a witness, so there is nothing for a verifier-side
// assignment to carry for it.
func PublicAssignment(w Witness) *DisclosureCircuit {
	c := &DisclosureCircuit{}
	for t := 0; t < TMax; t++ {
		for s := 0; s < SMax; s++ {
			for f := 0; f < FMax; f++ {
				c.Masked[t][s][f] = frontend.Variable(w.Masked[t][s][f])
			}
			c.SegmentScalars[t][s] = frontend.Variable(w.SegmentScalars[t][s])
		}
		c.CredentialScalars[t] = frontend.Variable(w.CredentialScalars[t])
	}
	c.Xi = frontend.Variable(w.Xi)
	return c
}

// Prove generates a groth16 proof for the padded, witnessed credentials.
func (p *Prover) Prove(w Witness) ([]byte, error) {
	full, err := frontend.NewWitness(w.Assign(), ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("circuit: building witness: %w", err)
	}

	proof, err := groth16.Prove(p.ccs, p.pk, full)
	if err != nil {
		return nil, fmt.Errorf("circuit: groth16 prove: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("circuit: serializing proof: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify checks proofBytes against the public assignment the verifier
// rebuilt from the disclosed segment data and the transcript carried in
// the zk proof (spec.md §7: a verification mismatch is `false`, never an
// error).
func (p *Prover) Verify(proofBytes []byte, public *DisclosureCircuit) (bool, error) {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false, fmt.Errorf("circuit: deserializing proof: %w", err)
	}

	full, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("circuit: building public witness: %w", err)
	}

	if err := groth16.Verify(proof, p.vk, full); err != nil {
		return false, nil
	}
	return true, nil
}

// ExportSolidity writes an EVM-verifiable Solidity contract for this
// circuit's verifying key (spec.md §4.4 "EVM-verifiable aggregator").
func (p *Prover) ExportSolidity(w io.Writer) error {
	return p.vk.ExportSolidity(w, solidity.WithPragmaVersion(">=0.8.0"))
}

// Save persists the compiled constraint system and groth16 keypair as
// three sibling files under dir (cmd/setup-circuit's output, loaded back
// by cmd/server via NewProverFromFiles rather than ever recompiling the
// circuit or rerunning setup at process start).
func (p *Prover) Save(dir string) error {
	files := []struct {
		name string
		w    io.WriterTo
	}{
		{"DisclosureCircuit.ccs", p.ccs},
		{"DisclosureCircuit.pk", p.pk},
		{"DisclosureCircuit.vk", p.vk},
	}
	for _, f := range files {
		path := dir + "/" + f.name
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("circuit: creating %s: %w", path, err)
		}
		_, writeErr := f.w.WriteTo(out)
		closeErr := out.Close()
		if writeErr != nil {
			return fmt.Errorf("circuit: writing %s: %w", path, writeErr)
		}
		if closeErr != nil {
			return fmt.Errorf("circuit: closing %s: %w", path, closeErr)
		}
	}
	return nil
}

// NewProverFromFiles loads the artifacts Save wrote, the path cmd/server
// takes at startup.
func NewProverFromFiles(dir string) (*Prover, error) {
	ccs := groth16.NewCS(ecc.BN254)
	if err := readFromFile(dir+"/DisclosureCircuit.ccs", ccs); err != nil {
		return nil, fmt.Errorf("circuit: loading constraint system: %w", err)
	}

	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readFromFile(dir+"/DisclosureCircuit.pk", pk); err != nil {
		return nil, fmt.Errorf("circuit: loading proving key: %w", err)
	}

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFromFile(dir+"/DisclosureCircuit.vk", vk); err != nil {
		return nil, fmt.Errorf("circuit: loading verifying key: %w", err)
	}

	return NewProverFromKeys(ccs, pk, vk), nil
}

func readFromFile(path string, r io.ReaderFrom) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = r.ReadFrom(in)
	return err
}
