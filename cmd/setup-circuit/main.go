// Command setup-circuit runs the one-time groth16 setup for the
// disclosure circuit and a SHPLONK SRS ceremony with a randomly sampled τ, writing
// both to disk for cmd/server to load at every subsequent start. Adapted
// from the teacher repo's root setup_circuit.go (SetupCircuit/
// CreateSolidity), generalized from its single ScUpdateVerifierCircuit to
// this repo's DisclosureCircuit and extended with the SRS step
// setup_circuit.go never needed.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/logger"

	"github.com/cx-edu/edu-verify/internal/circuit"
	"github.com/cx-edu/edu-verify/internal/config"
	"github.com/cx-edu/edu-verify/internal/model"
	"github.com/cx-edu/edu-verify/internal/shplonk"
)

func main() {
	logger.Disable()
	cfg := config.NewConfig(os.Args[1:]...)

	buildDir := filepath.Join(filepath.Dir(cfg.SRSPath), "circuit")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		fail("creating build directory", err)
	}

	fmt.Println("compiling DisclosureCircuit and running groth16 setup...")
	prover, err := circuit.NewProver()
	if err != nil {
		fail("circuit setup", err)
	}
	if err := prover.Save(buildDir); err != nil {
		fail("saving circuit artifacts", err)
	}
	fmt.Println("wrote", filepath.Join(buildDir, "DisclosureCircuit.{ccs,pk,vk}"))

	solPath := filepath.Join(buildDir, "DisclosureVerifier.sol")
	solFile, err := os.Create(solPath)
	if err != nil {
		fail("creating solidity output", err)
	}
	defer solFile.Close()
	if err := prover.ExportSolidity(solFile); err != nil {
		fail("exporting solidity verifier", err)
	}
	fmt.Println("wrote", solPath)

	fmt.Println("running SHPLONK SRS ceremony for domain size", model.DomainSize, "...")
	tau, err := randomTau()
	if err != nil {
		fail("sampling ceremony secret", err)
	}
	srs, err := shplonk.Setup(tau, model.DomainSize)
	if err != nil {
		fail("SRS setup", err)
	}
	tau.SetZero() // let the ceremony secret go out of scope as soon as it is spent

	srsFile, err := os.Create(cfg.SRSPath)
	if err != nil {
		fail("creating SRS output", err)
	}
	defer srsFile.Close()
	if err := srs.Save(srsFile); err != nil {
		fail("saving SRS", err)
	}
	fmt.Println("wrote", cfg.SRSPath)
}

func randomTau() (fr.Element, error) {
	var tau fr.Element
	_, err := tau.SetRandom()
	return tau, err
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "setup-circuit: %s: %v\n", step, err)
	os.Exit(1)
}
