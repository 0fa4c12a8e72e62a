package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError is a user-correctable error; it never signals a system failure.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// UploadError indicates that a file transfer to the object store could not complete.
// Key is the destination object key of the failed transfer.
type UploadError struct {
	Err error
	Key string
}

func (err UploadError) Error() string {
	if err.Err == nil {
		return "upload failed"
	}
	return err.Err.Error()
}

func (err UploadError) Cause() error { return err.Err }

// PersistenceError indicates that a record write could not complete. When the write
// followed a successful file upload, OrphanKey holds the key of the stored object
// that no record now references.
type PersistenceError struct {
	Err       error
	OrphanKey string
}

func (err PersistenceError) Error() string {
	if err.Err == nil {
		return "persistence failed"
	}
	return err.Err.Error()
}

func (err PersistenceError) Cause() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
