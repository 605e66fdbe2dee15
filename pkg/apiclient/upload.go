package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
	"github.com/ekaya-inc/assessment-console/pkg/models"
)

// uploadField is the multipart field the server reads files from.
const uploadField = "files"

// uploadContentTypes lists the accepted extensions. The server is the authority
// on acceptance; this check only saves a doomed upload.
var uploadContentTypes = map[string]string{
	".zip":  "application/zip",
	".xml":  "application/xml",
	".json": "application/json",
}

// ProgressFunc receives the number of file bytes sent so far and the total.
// It is called from the goroutine streaming the request body.
type ProgressFunc func(sent, total int64)

// ValidateUploadFile checks that name has an accepted extension.
func ValidateUploadFile(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := uploadContentTypes[ext]; !ok {
		return fmt.Errorf("%w: %q (accepted: .zip, .xml, .json)", apperrors.ErrUnsupportedFileType, filepath.Base(name))
	}
	return nil
}

// UploadFiles streams the given files to POST /assessments/{id}/files as
// multipart/form-data. progress may be nil.
func (c *Client) UploadFiles(ctx context.Context, assessmentID string, paths []string, progress ProgressFunc) ([]models.UploadedFile, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to upload")
	}

	var total int64
	for _, p := range paths {
		if err := ValidateUploadFile(p); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		total += info.Size()
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := c.transport.NewRequest(ctx, http.MethodPost, nil, pr, "assessments", assessmentID, "files")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	counter := &progressCounter{total: total, fn: progress}
	go func() {
		pw.CloseWithError(writeMultipart(mw, paths, counter))
	}()

	c.logger.Info("Uploading files",
		zap.String("assessment_id", assessmentID),
		zap.Int("files", len(paths)),
		zap.Int64("bytes", total))

	var raw json.RawMessage
	if err := c.transport.Do(req, &raw); err != nil {
		return nil, fmt.Errorf("upload files to %s: %w", assessmentID, err)
	}

	files, err := decodeUploadResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("upload files to %s: %w", assessmentID, err)
	}
	return files, nil
}

func writeMultipart(mw *multipart.Writer, paths []string, counter *progressCounter) error {
	for _, p := range paths {
		if err := writePart(mw, p, counter); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writePart(mw *multipart.Writer, p string, counter *progressCounter) error {
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer f.Close()

	name := filepath.Base(p)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, name))
	header.Set("Content-Type", uploadContentTypes[strings.ToLower(filepath.Ext(name))])

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, io.TeeReader(f, counter)); err != nil {
		return fmt.Errorf("failed to stream %s: %w", name, err)
	}
	return nil
}

// decodeUploadResponse accepts either a bare list of files or {"files": [...]}.
func decodeUploadResponse(raw json.RawMessage) ([]models.UploadedFile, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var files []models.UploadedFile
	if err := json.Unmarshal(raw, &files); err == nil {
		return files, nil
	}

	var wrapped struct {
		Files []models.UploadedFile `json:"files"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected upload response: %w", err)
	}
	return wrapped.Files, nil
}

// progressCounter is an io.Writer that reports cumulative bytes.
type progressCounter struct {
	sent  atomic.Int64
	total int64
	fn    ProgressFunc
}

// Write implements io.Writer.
func (p *progressCounter) Write(b []byte) (int, error) {
	sent := p.sent.Add(int64(len(b)))
	if p.fn != nil {
		p.fn(sent, p.total)
	}
	return len(b), nil
}
