// Package validate is the content-integrity gate of a submission: staged
// bytes are cross-checked against their declared type and the whole staging
// directory is scanned for malware. One bad file voids the batch.
package validate

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docriver/gateway/internal/errs"
	"github.com/h2non/filetype"
)

// sniffLen is how far into a file the magic-byte signatures reach.
const sniffLen = 128

// Documents verifies every staged file and then scans the staging directory
// as a unit. declared maps staged file path to the declared MIME type.
// scanMount is the staging parent as seen by the scanner.
func Documents(ctx context.Context, scanner Scanner, scanMount, stageDir string, declared map[string]string) error {
	entries, err := os.ReadDir(stageDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(stageDir, entry.Name())
		if err := checkMagic(path, declared[path]); err != nil {
			return err
		}
	}

	verdicts, err := scanner.Scan(ctx, filepath.Join(scanMount, filepath.Base(stageDir)))
	if err != nil {
		return err
	}
	for name, verdict := range verdicts {
		if verdict.Status != ScanStatusOK {
			return errs.Validationf("Virus check failed on file: %s. Error: %s", filepath.Base(name), verdict.Detail)
		}
	}
	return nil
}

// checkMagic sniffs the file's leading bytes and fails when the detected type
// disagrees with the file extension or the declared MIME type. Text files are
// exempt: signature sniffing is unreliable for them.
func checkMagic(path, declaredMime string) error {
	if strings.HasPrefix(declaredMime, "text/") {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return err
	}

	kind, err := filetype.Match(head[:n])
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if kind.Extension != ext {
		return errs.Validationf("Magic mismatch for extension in file: %s. Expected: %s, found: %s", name, ext, kind.Extension)
	}
	if kind.MIME.Value != declaredMime {
		return errs.Validationf("Magic mismatch for mimeType in file: %s. Expected: %s, found: %s", name, declaredMime, kind.MIME.Value)
	}
	return nil
}
