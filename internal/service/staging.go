package service

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docriver/gateway/internal/errs"
	"github.com/docriver/gateway/internal/manifest"
	"github.com/h2non/filetype"
)

// mimeExts maps the mime types we commonly see to a canonical extension.
// mime.ExtensionsByType depends on the host's mime tables, which makes object
// keys vary across deployments.
var mimeExts = map[string]string{
	"application/pdf":  ".pdf",
	"application/json": ".json",
	"application/xml":  ".xml",
	"application/zip":  ".zip",
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/tiff":       ".tif",
	"image/webp":       ".webp",
	"text/plain":       ".txt",
	"text/html":        ".html",
	"text/csv":         ".csv",
	"video/mp4":        ".mp4",
	"audio/mpeg":       ".mp3",
}

var extMimes = map[string]string{}

func init() {
	for mime, ext := range mimeExts {
		if _, ok := extMimes[ext]; !ok {
			extMimes[ext] = mime
		}
	}
	extMimes[".jpeg"] = "image/jpeg"
	extMimes[".htm"] = "text/html"
}

// stageDocuments materializes every content-bearing entry into the staging
// directory and stamps each entry's version. Returns the declared mime type
// per staged file for the integrity check.
func (g *Gateway) stageDocuments(m *manifest.Manifest, stageDir string) (map[string]string, error) {
	declared := make(map[string]string)
	for _, document := range m.Documents {
		if !document.HasContent() {
			continue
		}
		if err := g.stageDocument(m.Realm, document, stageDir); err != nil {
			return nil, err
		}
		declared[document.StageFile] = document.Content.MimeType
	}
	return declared, nil
}

func (g *Gateway) stageDocument(realm string, document *manifest.Document, stageDir string) error {
	document.Version = time.Now().UnixMilli()
	content := document.Content

	var raw []byte
	var src string
	if content.Inline != "" {
		decoded, err := decode(content.Inline, content.Encoding)
		if err != nil {
			return err
		}
		raw = decoded
	} else {
		src = filepath.Join(g.rawMount, realm, content.Path)
	}

	ext := extensionFor(content.MimeType, content.Path)
	if ext == "" {
		// unmapped or container mime type, let the bytes decide
		head := raw
		if src != "" {
			head = readHead(src)
		}
		ext = sniffExtension(head)
	}
	name := filepath.Join(stageDir, stageName(document.Name, document.Version, ext))

	if raw != nil {
		if err := os.WriteFile(name, raw, 0o600); err != nil {
			return fmt.Errorf("staging %s: %w", document.Name, err)
		}
	} else {
		if err := copyFile(src, name); err != nil {
			return errs.Validationf("path is not valid")
		}
	}

	if content.MimeType == "" {
		content.MimeType = sniffMime(name)
	}
	document.StageFile = name
	return nil
}

// stageName keeps the document's base name recognizable while making the
// staged file unique within the transaction.
func stageName(name string, version int64, ext string) string {
	return fmt.Sprintf("%s-%d%s", filepath.Base(name), version, ext)
}

func decode(inline, encoding string) ([]byte, error) {
	switch encoding {
	case "", "none":
		return []byte(inline), nil
	case "base64":
		raw, err := base64.StdEncoding.DecodeString(inline)
		if err != nil {
			return nil, errs.Validationf("Unsupported encoding")
		}
		return raw, nil
	default:
		return nil, errs.Validationf("Unsupported encoding")
	}
}

// extensionFor prefers the declared mime type, then the source path's own
// extension. Empty means the caller should sniff.
func extensionFor(mimeType, path string) string {
	if ext, ok := mimeExts[strings.ToLower(mimeType)]; ok {
		return ext
	}
	if path != "" {
		if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
			return ext
		}
	}
	return ""
}

// sniffExtension resolves an extension from leading bytes, with a generic
// fallback for unrecognized content.
func sniffExtension(head []byte) string {
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return "." + kind.Extension
	}
	return ".bin"
}

func readHead(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	head := make([]byte, 261)
	n, _ := io.ReadFull(f, head)
	return head[:n]
}

// sniffMime resolves an undeclared mime type from the staged bytes, falling
// back to the staged extension and finally to octet-stream.
func sniffMime(name string) string {
	if f, err := os.Open(name); err == nil {
		head := make([]byte, 261)
		n, _ := io.ReadFull(f, head)
		f.Close()
		if kind, err := filetype.Match(head[:n]); err == nil && kind != filetype.Unknown {
			return kind.MIME.Value
		}
	}
	if mime, ok := extMimes[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
