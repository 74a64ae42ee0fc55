package errutil

import (
	"errors"
	"fmt"
)

type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type BaseError struct {
	Code    CoreStatus `json:"code"`
	Message string     `json:"message"`
	Details []Detail   `json:"details,omitempty"`
	Err     error      `json:"-"`
}

func (e BaseError) Status() CoreStatus {
	return e.Code
}

func (e BaseError) Unwrap() error {
	return e.Err
}

func (e BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.messageWithErr())
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e BaseError) messageWithErr() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

type Option func(*BaseError)

func WithDetails(details ...Detail) Option {
	return func(be *BaseError) { be.Details = details }
}

func WithErr(err error) Option {
	return func(be *BaseError) { be.Err = err }
}

func New(code CoreStatus, message string, opts ...Option) error {
	be := BaseError{Code: code, Message: message}
	for _, opt := range opts {
		opt(&be)
	}
	return be
}

func NotFound(msg string, opts ...Option) error {
	return New(StatusNotFound, msg, opts...)
}

func MalformedRow(msg string, opts ...Option) error {
	return New(StatusMalformedRow, msg, opts...)
}

func InvalidPage(msg string, opts ...Option) error {
	return New(StatusInvalidPage, msg, opts...)
}

func InvalidFilter(msg string, opts ...Option) error {
	return New(StatusInvalidFilter, msg, opts...)
}

func Submission(msg string, opts ...Option) error {
	return New(StatusSubmission, msg, opts...)
}

func ChainRejected(msg string, opts ...Option) error {
	return New(StatusChainRejected, msg, opts...)
}

func Timeout(msg string, opts ...Option) error {
	return New(StatusTimeout, msg, opts...)
}

func Internal(msg string, opts ...Option) error {
	return New(StatusInternal, msg, opts...)
}

// StatusOf extracts the CoreStatus from anywhere in err's chain.
func StatusOf(err error) CoreStatus {
	if err == nil {
		return StatusUnknown
	}

	var coder interface{ Status() CoreStatus }
	if errors.As(err, &coder) {
		return coder.Status()
	}

	return StatusUnknown
}

// HasStatus reports whether err carries the given CoreStatus.
func HasStatus(err error, code CoreStatus) bool {
	return StatusOf(err) == code
}
