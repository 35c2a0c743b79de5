package cert

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// PackFileName returns the name of the archive a batch of certificates is
// written to, keyed to the moment the batch was issued (the reference
// this spec was distilled from names its archives
// certificates_<YYYYMMDD_HHMMSS>.zip).
func PackFileName(issuedAt time.Time) string {
	return fmt.Sprintf("certificates_%s.zip", issuedAt.Format("20060102_150405"))
}

// WriteZip packages certs into dir/PackFileName(issuedAt), one pretty-printed
// <id>.json entry per certificate, stored rather than deflated (the
// certificates are already compact and the reference keeps them
// byte-identical to what it signed off on).
func WriteZip(dir string, issuedAt time.Time, certs []Certificate) (string, error) {
	path := filepath.Join(dir, PackFileName(issuedAt))

	w, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cert: creating archive %s: %w", path, err)
	}
	defer w.Close()

	zw := zip.NewWriter(w)
	for _, c := range certs {
		if err := writeCertEntry(zw, c); err != nil {
			zw.Close()
			return "", err
		}
	}
	if err := writeManifestEntry(zw, certs); err != nil {
		zw.Close()
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("cert: closing archive %s: %w", path, err)
	}
	return path, nil
}

func writeCertEntry(zw *zip.Writer, c Certificate) error {
	header := &zip.FileHeader{
		Name:   c.ID + ".json",
		Method: zip.Store,
	}
	header.Modified = time.Time{}

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("cert: creating entry for %s: %w", c.ID, err)
	}

	body, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("cert: marshaling certificate %s: %w", c.ID, err)
	}
	if _, err := entry.Write(body); err != nil {
		return fmt.Errorf("cert: writing entry for %s: %w", c.ID, err)
	}
	return nil
}

func writeManifestEntry(zw *zip.Writer, certs []Certificate) error {
	header := &zip.FileHeader{Name: ManifestFileName, Method: zip.Store}
	header.Modified = time.Time{}

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("cert: creating manifest entry: %w", err)
	}

	body, err := manifestJSON(certs)
	if err != nil {
		return fmt.Errorf("cert: building manifest: %w", err)
	}
	if _, err := entry.Write(body); err != nil {
		return fmt.Errorf("cert: writing manifest entry: %w", err)
	}
	return nil
}

// ReadZip is the inverse of WriteZip, reading every <id>.json entry back
// into a Certificate (used by tests and by any offline audit of an issued
// batch).
func ReadZip(path string) ([]Certificate, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("cert: opening archive %s: %w", path, err)
	}
	defer r.Close()

	certs := make([]Certificate, 0, len(r.File))
	for _, f := range r.File {
		if f.Name == ManifestFileName || filepath.Ext(f.Name) != ".json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("cert: opening entry %s: %w", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("cert: reading entry %s: %w", f.Name, err)
		}

		var c Certificate
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, fmt.Errorf("cert: decoding entry %s: %w", f.Name, err)
		}
		certs = append(certs, c)
	}
	return certs, nil
}
