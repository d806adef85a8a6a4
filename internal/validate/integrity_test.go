package validate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/docriver/gateway/internal/errs"
	"github.com/stretchr/testify/assert"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

type fakeScanner struct {
	verdicts map[string]ScanResult
}

func (f *fakeScanner) Scan(ctx context.Context, dir string) (map[string]ScanResult, error) {
	return f.verdicts, nil
}

func stage(t *testing.T, name string, content []byte) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, content, 0o600))
	return dir, path
}

func TestDocumentsClean(t *testing.T) {
	dir, path := stage(t, "claim-1.png", pngBytes)

	err := Documents(context.Background(), &fakeScanner{}, "/scandir", dir, map[string]string{path: "image/png"})
	assert.NoError(t, err)
}

func TestDocumentsExtensionMismatch(t *testing.T) {
	dir, path := stage(t, "claim-1.pdf", pngBytes)

	err := Documents(context.Background(), &fakeScanner{}, "/scandir", dir, map[string]string{path: "application/pdf"})
	assert.ErrorContains(t, err, "Magic mismatch for extension in file: claim-1.pdf")
}

func TestDocumentsMimeTypeMismatch(t *testing.T) {
	dir, path := stage(t, "claim-1.png", pngBytes)

	err := Documents(context.Background(), &fakeScanner{}, "/scandir", dir, map[string]string{path: "image/jpeg"})
	assert.ErrorContains(t, err, "Magic mismatch for mimeType in file: claim-1.png")
}

func TestDocumentsTextExempt(t *testing.T) {
	// text content has no magic signature, the declared type is taken at face value
	dir, path := stage(t, "notes-1.txt", []byte("some plain text"))

	err := Documents(context.Background(), &fakeScanner{}, "/scandir", dir, map[string]string{path: "text/plain"})
	assert.NoError(t, err)
}

func TestDocumentsInfected(t *testing.T) {
	dir, path := stage(t, "claim-1.png", pngBytes)

	scanner := &fakeScanner{verdicts: map[string]ScanResult{
		"claim-1.png": {Status: "FOUND", Detail: "Eicar-Signature"},
	}}
	err := Documents(context.Background(), scanner, "/scandir", dir, map[string]string{path: "image/png"})
	assert.ErrorContains(t, err, "Virus check failed on file: claim-1.png. Error: Eicar-Signature")

	var validation *errs.ValidationError
	assert.ErrorAs(t, err, &validation)
}
