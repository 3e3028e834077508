package upload

import (
	"mime"
	"strings"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/gabriel-vasile/mimetype"
)

// DetectMimeType keeps a specific declared type and otherwise sniffs the
// content, falling back to the extension table.
func DetectMimeType(name, declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}

	detected := mimetype.Detect(data)
	if !detected.Is("application/octet-stream") && !detected.Is("text/plain") {
		return detected.String()
	}

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		if byExt := mime.TypeByExtension(strings.ToLower(name[i:])); byExt != "" {
			return byExt
		}
	}
	return detected.String()
}

// NewFile builds a pending entry, resolving its MIME type.
func NewFile(name, declared string, data []byte) domain.PendingFile {
	return domain.NewPendingFile(name, DetectMimeType(name, declared, data), data)
}
