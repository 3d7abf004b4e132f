package transfer

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the reader did not answer in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the reader refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeProtocol indicates an unexpected handshake or message
	ErrTypeProtocol
	// ErrTypeRejected indicates the reader answered with ERROR:<reason>
	ErrTypeRejected
	// ErrTypeIO indicates the local file could not be read
	ErrTypeIO
	// ErrTypeValidation indicates an invalid transfer request
	ErrTypeValidation
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
	NetworkErrorConnectionReset
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeRejected:
		return "Rejected by Reader"
	case ErrTypeIO:
		return "File Error"
	case ErrTypeValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error represents a failed transfer
type Error struct {
	Type           ErrorType
	Message        string
	Err            error
	NetworkSubtype NetworkErrorSubtype
	Host           string
	Filename       string
	Retryable      bool
}

// Error implements the error interface
func (e *Error) Error() string {
	prefix := e.Type.String()
	if e.Filename != "" {
		prefix += " (" + e.Filename + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a dial or socket error
func ClassifyNetworkError(err error, host string) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, websocket.ErrBadHandshake) {
		return &Error{
			Type:      ErrTypeProtocol,
			Message:   "Reader did not accept the websocket upgrade",
			Err:       err,
			Host:      host,
			Retryable: false,
		}
	}

	if os.IsTimeout(err) {
		return &Error{
			Type:      ErrTypeTimeout,
			Message:   "Reader did not respond in time",
			Err:       err,
			Host:      host,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:       err,
			Host:      host,
			Retryable: false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &Error{
				Type:      ErrTypeConnectionRefused,
				Message:   "Reader refused connection",
				Err:       err,
				Host:      host,
				Retryable: true,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "Host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Host:           host,
				Retryable:      true,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "Network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Host:           host,
				Retryable:      true,
			}
		case errors.Is(opErr.Err, syscall.ECONNRESET), errors.Is(opErr.Err, syscall.EPIPE):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "Connection reset by reader",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionReset,
				Host:           host,
				Retryable:      true,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return &Error{
			Type:      ErrTypeProtocol,
			Message:   fmt.Sprintf("Reader closed the connection (code %d)", closeErr.Code),
			Err:       err,
			Host:      host,
			Retryable: true,
		}
	}

	return &Error{
		Type:           ErrTypeNetwork,
		Message:        "Network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Host:           host,
		Retryable:      true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, host string, err error) *Error {
	classified := ClassifyNetworkError(err, host)
	if classified != nil {
		classified.Message = message + ": " + classified.Message
		return classified
	}
	return &Error{
		Type:      ErrTypeNetwork,
		Message:   message,
		Host:      host,
		Retryable: true,
	}
}

// NewProtocolError creates an error for an unexpected reader message
func NewProtocolError(message string) *Error {
	return &Error{
		Type:      ErrTypeProtocol,
		Message:   message,
		Retryable: false,
	}
}

// NewRejectedError creates an error for an ERROR:<reason> reply
func NewRejectedError(reason string) *Error {
	return &Error{
		Type:      ErrTypeRejected,
		Message:   reason,
		Retryable: false,
	}
}

// NewIOError creates an error for a local file problem
func NewIOError(message string, err error) *Error {
	return &Error{
		Type:      ErrTypeIO,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *Error {
	return &Error{
		Type:      ErrTypeValidation,
		Message:   message,
		Retryable: false,
	}
}

func asError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	if te, ok := asError(err); ok {
		return te.Type == ErrTypeNetwork ||
			te.Type == ErrTypeTimeout ||
			te.Type == ErrTypeConnectionRefused ||
			te.Type == ErrTypeDNS
	}
	return false
}

// IsRejected checks if the reader refused the file
func IsRejected(err error) bool {
	if te, ok := asError(err); ok {
		return te.Type == ErrTypeRejected
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if te, ok := asError(err); ok {
		return te.Type == ErrTypeValidation
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	if te, ok := asError(err); ok {
		return te.Retryable
	}
	return false
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	te, ok := asError(err)
	if !ok {
		return err.Error()
	}

	switch te.Type {
	case ErrTypeTimeout:
		return "Reader not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Reader refused connection - is file transfer mode open?"
	case ErrTypeDNS:
		return "Cannot resolve reader hostname"
	case ErrTypeNetwork:
		switch te.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Reader unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check WiFi connection"
		case NetworkErrorConnectionReset:
			return "Connection dropped during transfer"
		default:
			return "Network error - check connection"
		}
	case ErrTypeRejected:
		return "Reader rejected the file: " + te.Message
	default:
		return te.Message
	}
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	te, ok := asError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch te.Type {
	case ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeNetwork:
		return strings.Join([]string{
			"The reader could not be reached.",
			"Troubleshooting:",
			"  • Open File Transfer on the reader and keep the screen awake",
			"  • Check that the computer and the reader share a WiFi network",
			"  • In hotspot mode, join the reader's network (default 192.168.4.1)",
			"  • Run 'crosspoint scan' to confirm the reader answers discovery",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the reader hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Check your network DNS settings",
		}, "\n")

	case ErrTypeRejected:
		return strings.Join([]string{
			"The reader refused the file.",
			"Troubleshooting:",
			"  • Check free space on the SD card",
			"  • Make sure the upload path exists on the card",
			"  • Avoid unusual characters in the file name",
		}, "\n")

	case ErrTypeProtocol:
		return strings.Join([]string{
			"The reader answered in an unexpected way.",
			"This may indicate a firmware incompatibility.",
			"Troubleshooting:",
			"  • Update the reader firmware",
			"  • Check that the configured port is the upload port (default 81)",
		}, "\n")

	case ErrTypeIO:
		return "The local file could not be read. Check that it exists and is readable."

	case ErrTypeValidation:
		return "The transfer parameters are invalid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}
