package late

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MimeLyc/latepost/pkg/file"
)

const defaultVideoContentType = "video/mp4"

var videoContentTypes = map[string]string{
	".mp4":       "video/mp4",
	".mov":       "video/quicktime",
	".quicktime": "video/quicktime",
	".webm":      "video/webm",
	".avi":       "video/x-msvideo",
	".m4v":       "video/x-m4v",
}

// ContentTypeFor picks the upload content type from the file extension,
// defaulting to video/mp4.
func ContentTypeFor(path string) string {
	if ct, ok := videoContentTypes[file.LowerExt(path)]; ok {
		return ct
	}
	return defaultVideoContentType
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// minUploadRate is the slowest throughput an upload is given time for.
const minUploadRate = 256 * 1024 // bytes per second

// UploadTimeout is base plus the time needed to send size bytes at
// minUploadRate.
func UploadTimeout(base time.Duration, size int64) time.Duration {
	return base + time.Duration(size/minUploadRate)*time.Second
}

// UploadMedia sends one file as multipart form field "files" and returns the
// first entry of the response. The body is streamed from disk.
func (c *Client) UploadMedia(ctx context.Context, path string) (*UploadedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	name := filepath.Base(path)

	timeout := c.uploadTimeout(fi.Size())
	uploadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer f.Close()
		pw.CloseWithError(writeFilePart(mw, f, path, name))
	}()

	req, err := http.NewRequestWithContext(uploadCtx, http.MethodPost, c.baseURL+"/media", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp uploadResponse
	err = c.do(c.uploadClient, req, &resp)
	// unblock the writer if the server answered before reading the body
	pr.Close()
	if err != nil {
		// the upload's own deadline is a slow transfer, not an interrupt
		if ctx.Err() == nil && errors.Is(uploadCtx.Err(), context.DeadlineExceeded) {
			return nil, &TransportError{
				Op:  "POST /media",
				Err: fmt.Errorf("upload of %s did not finish within %s", name, timeout),
			}
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusRequestEntityTooLarge {
			return nil, &PayloadTooLargeError{Filename: name, Size: fi.Size()}
		}
		return nil, err
	}

	if len(resp.Files) == 0 {
		return nil, ErrNoFilesReturned
	}
	uploaded := resp.Files[0]
	if uploaded.Filename == "" {
		uploaded.Filename = name
	}
	return &uploaded, nil
}

func writeFilePart(mw *multipart.Writer, f io.Reader, path, name string) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", ContentTypeFor(path))

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	return mw.Close()
}
