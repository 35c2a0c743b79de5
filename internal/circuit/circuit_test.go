package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/cx-edu/edu-verify/internal/model"
)

func allDisclosedCredential() CredentialInput {
	seg := model.Segment{
		{Key: "major", Value: model.StringValue("CS")},
		{Key: "name", Value: model.StringValue("Alice")},
	}
	return CredentialInput{
		Segments:  []model.Segment{seg},
		Disclosed: []map[string]bool{{"major": true, "name": true}},
	}
}

func TestDisclosureCircuitIsSolved(t *testing.T) {
	padded := Pad([]CredentialInput{allDisclosedCredential()})
	w := BuildWitness(padded)
	assignment := w.Assign()

	err := gnark_test.IsSolved(&DisclosureCircuit{}, assignment, ecc.BN254.ScalarField())
	require.NoError(t, err, "a correctly derived witness must satisfy the disclosure circuit")
}

func TestDisclosureCircuitRejectsTamperedMask(t *testing.T) {
	padded := Pad([]CredentialInput{allDisclosedCredential()})
	w := BuildWitness(padded)
	assignment := w.Assign()

	assignment.Masked[0][0][0] = 999

	err := gnark_test.IsSolved(&DisclosureCircuit{}, assignment, ecc.BN254.ScalarField())
	require.Error(t, err, "a tampered public mask must not satisfy the circuit")
}

func TestPadFillsFixedShape(t *testing.T) {
	padded := Pad([]CredentialInput{allDisclosedCredential()})
	require.Len(t, padded, TMax)
	for i := range padded {
		require.Len(t, padded[i].Segments, SMax)
		for s := range padded[i].Segments {
			require.Len(t, padded[i].Segments[s], FMax)
		}
	}
}
