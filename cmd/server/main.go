// Command server wires configuration, a persisted SRS, the three role
// pipelines, and internal/api's routes into one HTTP listener, grounded
// on the teacher's thin provers/cmd/main.go (relayer.ListenerMain(config)).
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cx-edu/edu-verify/internal/api"
	"github.com/cx-edu/edu-verify/internal/blob"
	"github.com/cx-edu/edu-verify/internal/chain"
	"github.com/cx-edu/edu-verify/internal/circuit"
	"github.com/cx-edu/edu-verify/internal/config"
	"github.com/cx-edu/edu-verify/internal/holder"
	"github.com/cx-edu/edu-verify/internal/issuer"
	"github.com/cx-edu/edu-verify/internal/logging"
	"github.com/cx-edu/edu-verify/internal/shplonk"
	"github.com/cx-edu/edu-verify/internal/verifier"
)

func main() {
	cfg := config.NewConfig(os.Args[1:]...)
	logger := logging.New(cfg.LogLevel, true, os.Stdout)
	logging.DisableGnark()

	if err := os.MkdirAll(cfg.CertDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.CertDir).Msg("creating certificate directory")
	}

	srs, err := loadSRS(cfg.SRSPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.SRSPath).Msg("loading SRS")
	}

	prover, err := loadProver(circuitDir(cfg.SRSPath))
	if err != nil {
		logger.Warn().Err(err).Msg("no compiled circuit artifacts found, the ZK disclosure path is unavailable until cmd/setup-circuit runs")
	}

	store := blob.NewMemStore()
	ledger := chain.NewMemClient()

	iss := issuer.New(srs, store, ledger, logger)
	hld := holder.New(store, prover, logger)
	ver := verifier.New(srs, store, ledger, prover, logger)

	server := api.New(iss, hld, ver, cfg.CertDir, logger)

	logger.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := http.ListenAndServe(cfg.ListenAddr, server.Mux()); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func loadSRS(path string) (*shplonk.SRS, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("server: %w (run cmd/setup-circuit first)", err)
	}
	defer f.Close()
	return shplonk.Load(f)
}

func loadProver(dir string) (*circuit.Prover, error) {
	return circuit.NewProverFromFiles(dir)
}

// circuitDir colocates the compiled-circuit artifacts next to the SRS file
// (cmd/setup-circuit writes both under the same parent directory).
func circuitDir(srsPath string) string {
	return filepath.Join(filepath.Dir(srsPath), "circuit")
}
