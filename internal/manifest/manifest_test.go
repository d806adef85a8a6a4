package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest *Manifest
		wantErr  string
	}{
		{
			name:     "no tx",
			manifest: &Manifest{Documents: []*Document{{Name: "claim-1"}}},
			wantErr:  "Basic validation error",
		},
		{
			name:     "no documents",
			manifest: &Manifest{Tx: "tx-1"},
			wantErr:  "Basic validation error",
		},
		{
			name:     "bad tx",
			manifest: &Manifest{Tx: "tx 1", Documents: []*Document{{Name: "claim-1"}}},
			wantErr:  "tx is not valid",
		},
		{
			name:     "bad document name",
			manifest: &Manifest{Tx: "tx-1", Documents: []*Document{{Name: "claim 1"}}},
			wantErr:  "document not found or document is not valid",
		},
		{
			name: "bad path",
			manifest: &Manifest{Tx: "tx-1", Documents: []*Document{
				{Name: "claim-1", Content: &Content{Path: "a b"}},
			}},
			wantErr: "path is not valid",
		},
		{
			name: "path escape",
			manifest: &Manifest{Tx: "tx-1", Documents: []*Document{
				{Name: "claim-1", Content: &Content{Path: "../../etc/passwd"}},
			}},
			wantErr: "path is not valid - contains ..",
		},
		{
			name: "valid",
			manifest: &Manifest{Tx: "tx-1", Documents: []*Document{
				{Name: "claims/claim-1.pdf", Content: &Content{Path: "inbox/claim-1.pdf"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestOp(t *testing.T) {
	content := &Content{Inline: "aGVsbG8="}

	assert.Equal(t, OpIngest, (&Document{Name: "a", Content: content}).Op())
	assert.Equal(t, OpNewVersion, (&Document{Name: "a", Replaces: "a", Content: content}).Op())
	assert.Equal(t, OpReplace, (&Document{Name: "a", Replaces: "b", Content: content}).Op())
	assert.Equal(t, OpReference, (&Document{Name: "a"}).Op())
	assert.Equal(t, OpReference, (&Document{Name: "a", Content: &Content{}}).Op())
}

func TestNewResultRedaction(t *testing.T) {
	m := &Manifest{
		Tx:            "tx-1",
		Authorization: "Bearer secret",
		Documents: []*Document{
			{Name: "claim-1", Content: &Content{Inline: "aGVsbG8=", MimeType: "text/plain"}},
			{Name: "claim-2", Content: &Content{Path: "inbox/claim-2.pdf"}},
		},
	}

	result := NewResult(m, 42)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, int64(42), result.Took)
	assert.Equal(t, "<snipped>", result.Authorization)
	assert.Equal(t, "<snipped>", result.Documents[0].Content.Inline)
	assert.Equal(t, "inbox/claim-2.pdf", result.Documents[1].Content.Path)
}
