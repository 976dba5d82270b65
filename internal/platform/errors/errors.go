package errors

import (
	"errors"
	"sort"

	"github.com/louisbranch/theorem-trail/internal/platform/errors/i18n"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLocale renders messages when no locale is requested.
const DefaultLocale = "en-US"

// Error is a coded engine error. Message is for logs; players see the
// localized template for Code rendered with Metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// MarshalLogObject writes the code, category, message and metadata fields.
func (e *Error) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("code", string(e.Code))
	enc.AddString("category", e.Code.Category().String())
	enc.AddString("message", e.Message)
	if len(e.Metadata) > 0 {
		if err := enc.AddObject("metadata", metadataFields(e.Metadata)); err != nil {
			return err
		}
	}
	if e.Cause != nil {
		enc.AddString("cause", e.Cause.Error())
	}
	return nil
}

type metadataFields map[string]string

func (m metadataFields) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		enc.AddString(key, m[key])
	}
	return nil
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a coded error whose metadata fills its template.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// WrapWithMetadata creates a coded error around cause.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata, Cause: cause}
}

// Localize renders the player-facing message for err in locale. Plain errors
// render the UNKNOWN template.
func Localize(err error, locale string) string {
	if err == nil {
		return ""
	}
	if locale == "" {
		locale = DefaultLocale
	}
	catalog := i18n.GetCatalog(locale)
	if e, ok := As(err); ok {
		return catalog.Format(string(e.Code), e.Metadata)
	}
	return catalog.Format(string(CodeUnknown), nil)
}

// Field logs err under "error", expanding coded errors into their fields.
func Field(err error) zap.Field {
	if e, ok := As(err); ok {
		return zap.Object("error", e)
	}
	return zap.Error(err)
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetCode returns the code of err, or CodeUnknown for plain errors.
func GetCode(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata returns the metadata of err, or nil for plain errors.
func GetMetadata(err error) map[string]string {
	if e, ok := As(err); ok {
		return e.Metadata
	}
	return nil
}
