package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".pdf", extensionFor("application/pdf", ""))
	assert.Equal(t, ".png", extensionFor("image/png", "scan.dat"))
	assert.Equal(t, ".dat", extensionFor("", "inbox/scan.dat"))
	assert.Equal(t, "", extensionFor("application/x-unknown", ""))
}

func TestSniffExtension(t *testing.T) {
	assert.Equal(t, ".png", sniffExtension(pngBytes))
	assert.Equal(t, ".bin", sniffExtension([]byte("just text")))
	assert.Equal(t, ".bin", sniffExtension(nil))
}

func TestDecode(t *testing.T) {
	raw, err := decode("hello", "")
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	raw, err = decode("aGVsbG8=", "base64")
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	_, err = decode("not base64 at all!!!", "base64")
	assert.EqualError(t, err, "Unsupported encoding")

	_, err = decode("hello", "gzip")
	assert.EqualError(t, err, "Unsupported encoding")
}

func TestStageName(t *testing.T) {
	assert.Equal(t, "claim-1-1700000000000.pdf", stageName("claims/2024/claim-1", 1700000000000, ".pdf"))
}
