package late

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrUnauthorized is returned for HTTP 401. It is never worth retrying.
var ErrUnauthorized = errors.New("unauthorized: invalid API key")

// ErrNoFilesReturned is returned when an upload succeeds but lists no files.
var ErrNoFilesReturned = errors.New("no files returned from upload")

// ErrUnreadableFile is returned when a video cannot be opened for upload,
// e.g. it was removed after the directory scan.
var ErrUnreadableFile = errors.New("video file is not readable")

// ForbiddenError is returned for HTTP 403, usually a plan or quota limit.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Message
}

// RateLimitError is returned for HTTP 429. Reset holds the raw
// X-RateLimit-Reset header; ResetAt is zero when it could not be parsed.
type RateLimitError struct {
	Reset   string
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	reset := e.Reset
	if reset == "" {
		reset = "unknown"
	}
	return "rate limit exceeded, reset at: " + reset
}

// PayloadTooLargeError is returned for HTTP 413 on upload. Files this large
// need the chunked upload flow, which this client does not implement.
type PayloadTooLargeError struct {
	Filename string
	Size     int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("file too large (%s, %.2fMB): large file upload is not supported",
		e.Filename, float64(e.Size)/(1024*1024))
}

// APIError is any other non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// ResponseError is a 2xx response whose body could not be decoded. The
// request may still have taken effect remotely.
type ResponseError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("failed to parse response (status %d): %v", e.StatusCode, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// TransportError wraps network level failures: DNS, connection resets,
// timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// parseReset understands unix seconds, unix milliseconds and RFC 3339.
func parseReset(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n)
		}
		return time.Unix(n, 0)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
