package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cx-edu/edu-verify/internal/blob"
	"github.com/cx-edu/edu-verify/internal/cert"
	"github.com/cx-edu/edu-verify/internal/chain"
	"github.com/cx-edu/edu-verify/internal/holder"
	"github.com/cx-edu/edu-verify/internal/issuer"
	"github.com/cx-edu/edu-verify/internal/model"
	"github.com/cx-edu/edu-verify/internal/shplonk"
	"github.com/cx-edu/edu-verify/internal/verifier"
)

func readZipHelper(t *testing.T, dir, filename string) ([]cert.Certificate, error) {
	t.Helper()
	return cert.ReadZip(filepath.Join(dir, filename))
}

func testServer(t *testing.T) *Server {
	t.Helper()

	var tau fr.Element
	tau.SetUint64(4242)
	srs, err := shplonk.Setup(tau, model.DomainSize)
	require.NoError(t, err)

	store := blob.NewMemStore()
	ledger := chain.NewMemClient()

	iss := issuer.New(srs, store, ledger, zerolog.Nop())
	hld := holder.New(store, nil, zerolog.Nop())
	ver := verifier.New(srs, store, ledger, nil, zerolog.Nop())

	issuedAt = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return New(iss, hld, ver, t.TempDir(), zerolog.Nop())
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSchoolUploadThenDownloadRoundTrips(t *testing.T) {
	s := testServer(t)
	mux := s.Mux()

	records := []model.Record{
		{ID: "S1", Segments: []model.Segment{{{Key: "name", Value: model.StringValue("Alice")}}}},
	}
	rec := doJSON(t, mux, http.MethodPost, "/api/school/upload", records)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"])
	filename, _ := resp["certificate_file"].(string)
	require.NotEmpty(t, filename)

	dl := httptest.NewRequest(http.MethodGet, "/api/school/download/"+filename, nil)
	dlRec := httptest.NewRecorder()
	mux.ServeHTTP(dlRec, dl)
	require.Equal(t, http.StatusOK, dlRec.Code)
	require.Equal(t, "application/zip", dlRec.Header().Get("Content-Type"))
	require.NotZero(t, dlRec.Body.Len())
}

func TestSchoolDownloadRejectsPathTraversal(t *testing.T) {
	s := testServer(t)
	mux := s.Mux()

	dl := httptest.NewRequest(http.MethodGet, "/api/school/download/..%2F..%2Fetc%2Fpasswd", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, dl)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchoolUploadRejectsMalformedBody(t *testing.T) {
	s := testServer(t)
	mux := s.Mux()

	req := httptest.NewRequest(http.MethodPost, "/api/school/upload", bytes.NewBufferString(`{"not":"an array"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFullPipelineThroughHTTP(t *testing.T) {
	s := testServer(t)
	mux := s.Mux()

	records := []model.Record{
		{ID: "S1", Segments: []model.Segment{{
			{Key: "major", Value: model.StringValue("CS")},
			{Key: "name", Value: model.StringValue("Alice")},
		}}},
	}
	uploadRec := doJSON(t, mux, http.MethodPost, "/api/school/upload", records)
	require.Equal(t, http.StatusOK, uploadRec.Code)

	var uploadResp struct {
		CertificateFile string `json:"certificate_file"`
	}
	require.NoError(t, json.Unmarshal(uploadRec.Body.Bytes(), &uploadResp))

	certs, err := readZipHelper(t, s.CertDir, uploadResp.CertificateFile)
	require.NoError(t, err)
	require.Len(t, certs, 1)

	genReq := []generateAuthenticationEntry{{
		ID:             certs[0].ID,
		SelectedFields: [][]string{{"major", "name"}},
		TxHash:         certs[0].TxHash,
		CID:            certs[0].OriginalDataCID,
		Proof:          certs[0].Proof,
	}}
	genRec := doJSON(t, mux, http.MethodPost, "/api/student/generate-authentication", genReq)
	require.Equal(t, http.StatusOK, genRec.Code)

	var authData holder.AuthenticationData
	require.NoError(t, json.Unmarshal(genRec.Body.Bytes(), &authData))

	companyUploadRec := doJSON(t, mux, http.MethodPost, "/api/company/upload", authData)
	require.Equal(t, http.StatusOK, companyUploadRec.Code)

	var verifyData verifier.AuthVerifyData
	require.NoError(t, json.Unmarshal(companyUploadRec.Body.Bytes(), &verifyData))

	verifyRec := doJSON(t, mux, http.MethodPost, "/api/company/verify-auth-data", verifyData)
	require.Equal(t, http.StatusOK, verifyRec.Code)

	var result verifier.Result
	require.NoError(t, json.Unmarshal(verifyRec.Body.Bytes(), &result))
	require.True(t, result.Verified)
}

func TestCORSHeadersPresent(t *testing.T) {
	s := testServer(t)
	mux := s.Mux()

	req := httptest.NewRequest(http.MethodOptions, "/api/company/verify-auth-data", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
