package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MimeLyc/latepost/internal/late"
	"github.com/MimeLyc/latepost/internal/library"
	"github.com/MimeLyc/latepost/internal/planner"
	"github.com/MimeLyc/latepost/pkg/log"
)

type ErrorType int

const (
	ErrConfig ErrorType = iota
	ErrAuth
	ErrQuota
	ErrRateLimit
	ErrUpload
	ErrTransport
	ErrAPI
	ErrCanceled
	ErrUnknown
)

type SchedulerError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *SchedulerError {
	return &SchedulerError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *SchedulerError {
	return &SchedulerError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

func (e *SchedulerError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ctxParts := make([]string, 0, len(keys))
		for _, k := range keys {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *SchedulerError) Unwrap() error {
	return e.Cause
}

func (e *SchedulerError) WithContext(key string, value any) *SchedulerError {
	e.Context[key] = value
	return e
}

// Fatal reports whether the error aborts the whole run rather than a single
// slot.
func (e *SchedulerError) Fatal() bool {
	switch e.Type {
	case ErrConfig, ErrAuth, ErrCanceled, ErrUnknown:
		return true
	default:
		return false
	}
}

func (t ErrorType) String() string {
	switch t {
	case ErrConfig:
		return "Config"
	case ErrAuth:
		return "Auth"
	case ErrQuota:
		return "Quota"
	case ErrRateLimit:
		return "RateLimit"
	case ErrUpload:
		return "Upload"
	case ErrTransport:
		return "Transport"
	case ErrAPI:
		return "API"
	case ErrCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Classify maps errors from the API client, the scanner and the planner onto
// the scheduler taxonomy. Errors that are already classified pass through.
func Classify(err error) *SchedulerError {
	if err == nil {
		return nil
	}

	var schedErr *SchedulerError
	if errors.As(err, &schedErr) {
		return schedErr
	}

	var (
		forbidden *late.ForbiddenError
		rateLimit *late.RateLimitError
		tooLarge  *late.PayloadTooLargeError
		transport *late.TransportError
		apiErr    *late.APIError
		respErr   *late.ResponseError
	)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewErrorWithCause(ErrCanceled, "run interrupted", err)
	case errors.Is(err, late.ErrUnauthorized):
		return NewErrorWithCause(ErrAuth, "invalid API key", err)
	case errors.As(err, &forbidden):
		return NewErrorWithCause(ErrQuota, forbidden.Message, err)
	case errors.As(err, &rateLimit):
		return NewErrorWithCause(ErrRateLimit, "rate limit exceeded", err)
	case errors.As(err, &tooLarge):
		return NewErrorWithCause(ErrUpload, "file too large for multipart upload", err)
	case errors.Is(err, late.ErrNoFilesReturned):
		return NewErrorWithCause(ErrUpload, "upload returned no files", err)
	case errors.Is(err, late.ErrUnreadableFile):
		return NewErrorWithCause(ErrUpload, "video file could not be read", err)
	case errors.As(err, &transport):
		return NewErrorWithCause(ErrTransport, "network failure", err)
	case errors.As(err, &respErr):
		return NewErrorWithCause(ErrAPI, fmt.Sprintf("unreadable response (status %d)", respErr.StatusCode), err)
	case errors.As(err, &apiErr):
		return NewErrorWithCause(ErrAPI, fmt.Sprintf("unexpected status %d", apiErr.StatusCode), err)
	case errors.Is(err, library.ErrDirNotFound),
		errors.Is(err, library.ErrEmptyPool),
		errors.Is(err, planner.ErrEmptyMediaPool),
		errors.Is(err, planner.ErrEmptyCaptionPool):
		return NewErrorWithCause(ErrConfig, "cannot build schedule", err)
	default:
		return NewErrorWithCause(ErrUnknown, "unexpected error", err)
	}
}

type ErrorHandler interface {
	Handle(err error) bool
	GetAdvice(err *SchedulerError) string
}

type DefaultErrorHandler struct{}

func NewDefaultErrorHandler() ErrorHandler {
	return &DefaultErrorHandler{}
}

// Handle logs err with advice and reports whether it was a classified error.
func (h *DefaultErrorHandler) Handle(err error) bool {
	var schedErr *SchedulerError
	if !errors.As(err, &schedErr) {
		log.Error("Unknown Error: %v", err)
		return false
	}

	log.Error("Error Detail: %v\n advice: %s", err, h.GetAdvice(schedErr))
	return true
}

// GetAdvice returns error handling advice
func (h *DefaultErrorHandler) GetAdvice(err *SchedulerError) string {
	switch err.Type {
	case ErrConfig:
		return "Check VIDEO_DIR, CAMPAIGN_FILE and the other environment variables"
	case ErrAuth:
		return "Check LATE_API_KEY; the key was rejected by the API"
	case ErrQuota:
		return "The Late plan refused the request; check post and account limits"
	case ErrRateLimit:
		return "Too many requests; the run pauses and continues with the next post"
	case ErrUpload:
		return "The video could not be uploaded; large files need the chunked upload flow"
	case ErrTransport:
		return "Check network connectivity to the Late API"
	case ErrAPI:
		return "Review the API response body for details"
	case ErrCanceled:
		return "The run was interrupted; posts already scheduled stay scheduled"
	default:
		return "Please review detailed error information and check relevant configuration and files"
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var schedErr *SchedulerError
	if errors.As(err, &schedErr) {
		return schedErr.Type == errorType
	}
	return false
}

func WrapError(err error, errorType ErrorType, message string) *SchedulerError {
	return NewErrorWithCause(errorType, message, err)
}

func SafeExecute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(ErrUnknown, fmt.Sprintf("runtime error: %v", r))
		}
	}()

	return fn()
}
