package printjob

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransportKind identifies one strategy in a job's fallback chain
type TransportKind string

const (
	TransportRawProtocol      TransportKind = "raw_protocol"
	TransportRenderedDocument TransportKind = "rendered_document"
	TransportPdfExport        TransportKind = "pdf_export"
)

// ErrorKind classifies a failure. Every error leaving the core carries one of
// these; raw transport errors never cross the boundary.
type ErrorKind string

const (
	ErrNoDeviceConfigured   ErrorKind = "no_device_configured"
	ErrDeviceNotFound       ErrorKind = "device_not_found"
	ErrTransportUnavailable ErrorKind = "transport_unavailable"
	ErrTimeout              ErrorKind = "timeout"
	ErrProtocolRejected     ErrorKind = "protocol_rejected"
	ErrUnsupportedCharacter ErrorKind = "unsupported_character"
)

// Attempt records one transport try, failed or not
type Attempt struct {
	Transport TransportKind `json:"transport"`
	Try       int           `json:"try"` // 1-based within the transport
	ErrorKind ErrorKind     `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Elapsed   time.Duration `json:"elapsed_ms,omitempty"`
}

// Result is the single outcome of a submit call. The core does not persist
// it; callers log or display it as they see fit.
type Result struct {
	Success       bool          `json:"success"`
	Device        string        `json:"device,omitempty"`
	Kind          Kind          `json:"kind,omitempty"`
	TransportUsed TransportKind `json:"transport_used,omitempty"`
	ErrorKind     ErrorKind     `json:"error_kind,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	Attempts      []Attempt     `json:"attempts,omitempty"`
	// ExportedFile is set when the pdf export transport produced the result
	ExportedFile string `json:"exported_file,omitempty"`
}

// AttemptLog flattens the attempt list into one line per attempt, for logs
// and the diagnostic report.
func (r Result) AttemptLog() string {
	if len(r.Attempts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		if a.ErrorKind == "" && a.Error == "" {
			parts = append(parts, fmt.Sprintf("%s try %d: ok", a.Transport, a.Try))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s try %d: %s (%s)", a.Transport, a.Try, a.Error, a.ErrorKind))
	}
	return strings.Join(parts, "; ")
}

// Error is a classified core error. It wraps the underlying cause so callers
// inside the module can still errors.Is/As against it.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a classified error without a cause
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an underlying error
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the ErrorKind from err, walking the wrap chain. Unclassified
// errors return an empty kind.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
