package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/ashureev/apsfd-portal/internal/domain"
)

// UploadField is the multipart field name repeated once per file.
const UploadField = "files"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// SubmitFiles sends the whole batch in one multipart request. The batch either
// succeeds or fails as a unit.
func (g *Gateway) SubmitFiles(ctx context.Context, files []domain.PendingFile) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, UploadField, quoteEscaper.Replace(f.Name)))
		contentType := f.MimeType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create part for %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("write part for %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	status, _, err := g.post(ctx, "upload", g.endpoints.Upload, mw.FormDataContentType(), &buf, false)
	if err != nil {
		return err
	}
	if !isOK(status) {
		return &StatusError{Endpoint: "upload", StatusCode: status}
	}

	g.logger.Info("Files submitted", "count", len(files))
	return nil
}
