// Package api exposes the issuer/holder/verifier pipelines over the six
// HTTP routes spec.md §6 specifies, bit-exact to their JSON shapes for
// interop with existing clients. Grounded on the "OUT OF SCOPE: HTTP
// endpoints" framing in spec.md §1: transport is a narrow collaborator
// around the cryptographic core, so it stays on net/http's own
// http.ServeMux rather than pulling in a third-party router.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cx-edu/edu-verify/internal/apperr"
	"github.com/cx-edu/edu-verify/internal/cert"
	"github.com/cx-edu/edu-verify/internal/holder"
	"github.com/cx-edu/edu-verify/internal/issuer"
	"github.com/cx-edu/edu-verify/internal/model"
	"github.com/cx-edu/edu-verify/internal/verifier"
)

// Server wires the three role pipelines to their HTTP routes.
type Server struct {
	Issuer   *issuer.Issuer
	Holder   *holder.Holder
	Verifier *verifier.Verifier
	CertDir  string
	Logger   zerolog.Logger
}

// New builds a Server.
func New(iss *issuer.Issuer, hld *holder.Holder, ver *verifier.Verifier, certDir string, logger zerolog.Logger) *Server {
	return &Server{Issuer: iss, Holder: hld, Verifier: ver, CertDir: certDir, Logger: logger}
}

// Mux builds the routed, CORS-wrapped handler cmd/server binds to a
// listener (spec.md §6's route table).
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/school/upload", s.handleSchoolUpload)
	mux.HandleFunc("GET /api/school/download/{filename}", s.handleSchoolDownload)
	mux.HandleFunc("POST /api/student/upload", s.handleStudentUpload)
	mux.HandleFunc("POST /api/student/generate-authentication", s.handleGenerateAuthentication)
	mux.HandleFunc("POST /api/company/upload", s.handleCompanyUpload)
	mux.HandleFunc("POST /api/company/verify-auth-data", s.handleVerifyAuthData)
	return withCORS(mux)
}

// withCORS is a small wide-open CORS middleware (spec.md §6 "CORS is
// wide-open by default").
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an apperr.Kind to an HTTP status (spec.md §7): malformed
// input is a 4xx with a short message; everything else is an opaque 5xx.
func writeError(w http.ResponseWriter, logger zerolog.Logger, op string, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Malformed {
		logger.Warn().Str("op", op).Err(err).Msg("rejected malformed request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	logger.Error().Str("op", op).Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Malformedf("decodeJSON", "invalid request body: %s", err.Error())
	}
	return nil
}

func (s *Server) handleSchoolUpload(w http.ResponseWriter, r *http.Request) {
	var records []model.Record
	if err := decodeJSON(r, &records); err != nil {
		writeError(w, s.Logger, "school.upload", err)
		return
	}

	certs, err := s.Issuer.Issue(r.Context(), records)
	if err != nil {
		writeError(w, s.Logger, "school.upload", err)
		return
	}

	path, err := cert.WriteZip(s.CertDir, issuedAt(), certs)
	if err != nil {
		writeError(w, s.Logger, "school.upload", apperr.Internalf("school.upload", "writing certificate archive: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"certificate_file": filepath.Base(path),
	})
}

// issuedAt is a seam so tests can pin the certificate filename's timestamp;
// production always uses the wall clock.
var issuedAt = time.Now

func (s *Server) handleSchoolDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		writeError(w, s.Logger, "school.download", apperr.Malformedf("school.download", "invalid filename %q", filename))
		return
	}

	path := filepath.Join(s.CertDir, filename)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	http.ServeFile(w, r, path)
}

// VerifiedData mirrors models.rs's VerifiedData (spec.md §6
// `/api/student/upload`): the original (non-redacted) segment data a
// holder re-fetches for a certificate it already holds, proof bytes, and
// the chain/blob pointers the certificate carries.
type VerifiedData struct {
	OriginalData []model.Segment `json:"original_data"`
	TxHash       string          `json:"tx_hash"`
	CID          string          `json:"cid"`
	Proof        string          `json:"proof"`
}

func (s *Server) handleStudentUpload(w http.ResponseWriter, r *http.Request) {
	var certs []cert.Certificate
	if err := decodeJSON(r, &certs); err != nil {
		writeError(w, s.Logger, "student.upload", err)
		return
	}

	out := make([]VerifiedData, len(certs))
	for i, c := range certs {
		body, err := s.Holder.Blob.Get(r.Context(), c.OriginalDataCID)
		if err != nil {
			writeError(w, s.Logger, "student.upload", apperr.Internalf("student.upload", "fetching %q: %w", c.OriginalDataCID, err))
			return
		}
		var segments []model.Segment
		if err := json.Unmarshal(body, &segments); err != nil {
			writeError(w, s.Logger, "student.upload", apperr.Malformedf("student.upload", "certificate %q: invalid segment data: %s", c.ID, err.Error()))
			return
		}
		out[i] = VerifiedData{OriginalData: segments, TxHash: c.TxHash, CID: c.OriginalDataCID, Proof: c.Proof}
	}

	writeJSON(w, http.StatusOK, out)
}

// generateAuthenticationEntry mirrors models.rs's GenerateAuthenticationData.
type generateAuthenticationEntry struct {
	ID             string     `json:"id"`
	SelectedFields [][]string `json:"selected_fields"`
	TxHash         string     `json:"tx_hash"`
	CID            string     `json:"cid"`
	Proof          string     `json:"proof"`
	IsZK           bool       `json:"is_zk"`
}

func (s *Server) handleGenerateAuthentication(w http.ResponseWriter, r *http.Request) {
	var entries []generateAuthenticationEntry
	if err := decodeJSON(r, &entries); err != nil {
		writeError(w, s.Logger, "student.generate_authentication", err)
		return
	}

	reqs := make([]holder.Request, len(entries))
	for i, e := range entries {
		reqs[i] = holder.Request{
			ID:             e.ID,
			SelectedFields: e.SelectedFields,
			TxHash:         e.TxHash,
			CID:            e.CID,
			Proof:          e.Proof,
			IsZK:           e.IsZK,
		}
	}

	data, err := s.Holder.Aggregate(r.Context(), reqs)
	if err != nil {
		writeError(w, s.Logger, "student.generate_authentication", err)
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleCompanyUpload(w http.ResponseWriter, r *http.Request) {
	var data holder.AuthenticationData
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, s.Logger, "company.upload", err)
		return
	}

	out, err := s.Verifier.Upload(r.Context(), data)
	if err != nil {
		writeError(w, s.Logger, "company.upload", err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleVerifyAuthData(w http.ResponseWriter, r *http.Request) {
	var data verifier.AuthVerifyData
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, s.Logger, "company.verify_auth_data", err)
		return
	}

	result, err := s.Verifier.VerifyAuthData(r.Context(), data)
	if err != nil {
		writeError(w, s.Logger, "company.verify_auth_data", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
