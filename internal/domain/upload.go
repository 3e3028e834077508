package domain

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// MaxUploadFileSize is the advisory per-file size limit (10 MB).
const MaxUploadFileSize = 10 << 20

// AcceptedUploadExtensions lists the file extensions the upload surface offers.
var AcceptedUploadExtensions = []string{".pdf", ".xlsx", ".xls", ".csv"}

// PendingFile is a file selected or dropped but not yet submitted.
type PendingFile struct {
	Data      []byte `json:"-"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"size_label"`
	MimeType  string `json:"mime_type"`
	Status    string `json:"status"`
}

// NewPendingFile builds a pending entry from raw file contents.
func NewPendingFile(name, mimeType string, data []byte) PendingFile {
	size := int64(len(data))
	return PendingFile{
		Data:      data,
		Name:      name,
		Size:      size,
		SizeLabel: SizeLabel(size),
		MimeType:  mimeType,
		Status:    "pending",
	}
}

// SizeLabel formats a byte count in megabytes with two decimals.
func SizeLabel(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}

// Warnings returns advisory notes about the file. They never block submission.
func (f PendingFile) Warnings() []string {
	var warnings []string
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !slices.Contains(AcceptedUploadExtensions, ext) {
		warnings = append(warnings, fmt.Sprintf("extension %q is not one of %s", ext, strings.Join(AcceptedUploadExtensions, " ")))
	}
	if f.Size > MaxUploadFileSize {
		warnings = append(warnings, "file exceeds the 10 MB recommended size")
	}
	return warnings
}
