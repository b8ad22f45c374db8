// Package errors provides standardized error handling for srcmerge.
// It defines the error kinds used across the source, counting, and merge
// pipelines together with helpers for consistent creation, wrapping, and
// classification.
package errors

import (
	"errors"
	"fmt"
)

// Aliases of the standard library helpers so callers need a single import.
var (
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// ErrorKind groups errors by the stage that raised them.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	// Source error kinds
	SourceUnavailable
	IndexFailed
	ContentFetchFailed
	// Counting error kinds
	CountFailed
	// Sink error kinds
	WriteFailed
	ClipboardFailed
	NothingSelected
	// Config error kinds
	InvalidConfig
	InvalidPattern
)

func (k ErrorKind) String() string {
	switch k {
	case SourceUnavailable:
		return "source unavailable"
	case IndexFailed:
		return "index failed"
	case ContentFetchFailed:
		return "content fetch failed"
	case CountFailed:
		return "count failed"
	case WriteFailed:
		return "write failed"
	case ClipboardFailed:
		return "clipboard failed"
	case NothingSelected:
		return "nothing selected"
	case InvalidConfig:
		return "invalid config"
	case InvalidPattern:
		return "invalid pattern"
	default:
		return "unknown"
	}
}

// Sentinels shared by the pipeline and the CLI.
var (
	ErrNoSource        = NewSourceError("no text source available", "", SourceUnavailable, nil)
	ErrNothingSelected = NewSinkError("no files selected", "", NothingSelected, nil)
)

// ApplicationError carries a message, an optional cause and a kind. The
// typed errors below embed it and add the subject they refer to.
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

func (e *ApplicationError) Error() string { return describe(e.msg, "", e.err) }

func (e *ApplicationError) Unwrap() error { return e.err }

// Kind classifies the error.
func (e *ApplicationError) Kind() ErrorKind { return e.kind }

// describe joins the message, subject and cause, skipping empty parts.
func describe(msg, subject string, cause error) string {
	switch {
	case subject != "" && cause != nil:
		return fmt.Sprintf("%s: %s: %v", msg, subject, cause)
	case subject != "":
		return msg + ": " + subject
	case cause != nil:
		return fmt.Sprintf("%s: %v", msg, cause)
	}
	return msg
}

// SourceError is raised while opening, listing or reading a text source.
type SourceError struct {
	ApplicationError
	path string
}

func NewSourceError(msg string, path string, kind ErrorKind, err error) *SourceError {
	return &SourceError{ApplicationError{msg, err, kind}, path}
}

func (e *SourceError) Error() string { return describe(e.msg, e.path, e.err) }

// Path is the source entry involved, if any.
func (e *SourceError) Path() string { return e.path }

// SinkError is raised by a destination of the merged artifact.
type SinkError struct {
	ApplicationError
	target string
}

func NewSinkError(msg string, target string, kind ErrorKind, err error) *SinkError {
	return &SinkError{ApplicationError{msg, err, kind}, target}
}

func (e *SinkError) Error() string { return describe(e.msg, e.target, e.err) }

// Target names the file or device that failed.
func (e *SinkError) Target() string { return e.target }

// ConfigError points at the offending configuration key.
type ConfigError struct {
	ApplicationError
	param string
}

func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{ApplicationError{msg, err, kind}, param}
}

func (e *ConfigError) Error() string { return describe(e.msg, e.param, e.err) }

func (e *ConfigError) Param() string { return e.param }

// New returns an error of kind Unknown.
func New(msg string) error {
	return &ApplicationError{msg: msg}
}

func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap annotates err with msg. It returns nil when err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: msg, err: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the first non-Unknown kind found in err's chain.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsSourceUnavailable reports whether no text source could be opened.
func IsSourceUnavailable(err error) bool {
	return KindOf(err) == SourceUnavailable
}

// IsContentFetchFailed reports a failed content read.
func IsContentFetchFailed(err error) bool {
	return KindOf(err) == ContentFetchFailed
}

// IsClipboardFailure reports an error raised by the clipboard sink.
func IsClipboardFailure(err error) bool {
	var se *SinkError
	return errors.As(err, &se) && se.kind == ClipboardFailed
}

// IsInvalidConfig reports a rejected configuration value or pattern.
func IsInvalidConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && (ce.kind == InvalidConfig || ce.kind == InvalidPattern)
}

// WrapKind wraps err with a message and an explicit kind. A nil err yields
// a plain error of that kind.
func WrapKind(err error, kind ErrorKind, msg string) error {
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: kind,
	}
}
