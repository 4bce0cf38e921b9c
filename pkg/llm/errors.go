package llm

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure causes of a chat exchange.
type ErrorKind int

const (
	// ConfigurationError means the proxy is missing a required setting,
	// such as the provider credential. Raised before any outbound call.
	ConfigurationError ErrorKind = iota + 1

	// RequestParseError means the client body could not be decoded.
	RequestParseError

	// UpstreamError means the generation service call failed or returned
	// nothing usable.
	UpstreamError
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration"
	case RequestParseError:
		return "request_parse"
	case UpstreamError:
		return "upstream"
	default:
		return "unknown"
	}
}

// ErrMissingAPIKey is the cause carried by a ConfigurationError when no
// credential was configured.
var ErrMissingAPIKey = errors.New("provider API key is not configured")

// ProxyError tags an underlying error with its ErrorKind.
type ProxyError struct {
	Kind ErrorKind
	Err  error
}

// NewProxyError wraps err with the given kind.
func NewProxyError(kind ErrorKind, err error) *ProxyError {
	return &ProxyError{Kind: kind, Err: err}
}

func (e *ProxyError) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

// Is matches another *ProxyError of the same kind, so callers can write
// errors.Is(err, &llm.ProxyError{Kind: llm.UpstreamError}).
func (e *ProxyError) Is(target error) bool {
	t, ok := target.(*ProxyError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Err == nil || errors.Is(e.Err, t.Err))
}

// KindOf returns the ErrorKind of err, or UpstreamError for errors that were
// never tagged.
func KindOf(err error) ErrorKind {
	var pe *ProxyError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return UpstreamError
}

// Detail renders err for the diagnostic field of an ErrorResponse.
// It returns the untagged cause so clients see the provider's own message.
func Detail(err error) string {
	var pe *ProxyError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
