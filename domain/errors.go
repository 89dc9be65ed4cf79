package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConstraintViolated is returned when a write would break a unique
	// index, including the implicit one on _id.
	ErrConstraintViolated = errors.New("unique constraint violated")
	// ErrConsistencyViolation is returned when an operation needs a
	// document identifier that is missing.
	ErrConsistencyViolation = errors.New("document has no _id")
	// ErrCannotModifyID is returned when an update would change or remove
	// the _id of a stored document.
	ErrCannotModifyID = errors.New("cannot modify _id of a stored document")
	// ErrCollectionName is returned for empty collection names.
	ErrCollectionName = errors.New("collection name cannot be empty")
)

// ErrInvalidArgument is returned when a filter, update, option or input
// document is malformed. It names the offending field, operator or value
// when known.
type ErrInvalidArgument struct {
	Field    string
	Operator string
	Value    string
	Reason   string
}

func (e ErrInvalidArgument) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid argument")
	if e.Field != "" {
		fmt.Fprintf(&sb, " field %q", e.Field)
	}
	if e.Operator != "" {
		fmt.Fprintf(&sb, " operator %q", e.Operator)
	}
	if e.Value != "" {
		fmt.Fprintf(&sb, " value %s", e.Value)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

// ErrIO wraps a failure of the underlying storage.
type ErrIO struct {
	Op   string
	Path string
	Err  error
}

func (e ErrIO) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e ErrIO) Unwrap() error { return e.Err }

// ErrFlushToStorage is returned when the data could not be synced to disk.
type ErrFlushToStorage struct {
	ErrorOnFsync error
	ErrorOnClose error
}

func (e ErrFlushToStorage) Error() string {
	var err error
	if e.ErrorOnFsync != nil {
		err = e.ErrorOnFsync
	} else {
		err = e.ErrorOnClose
	}
	return fmt.Sprint("storage flush error: ", err.Error())
}

func (e ErrFlushToStorage) Unwrap() []error {
	return []error{e.ErrorOnFsync, e.ErrorOnClose}
}

// ErrDatafileName is returned when the database file name collides with the
// names reserved for the temporary and backup files.
type ErrDatafileName struct {
	Name   string
	Reason string
}

func (e ErrDatafileName) Error() string {
	return fmt.Sprintf("invalid datafile name %q: %s", e.Name, e.Reason)
}

// ErrCorruptSnapshot is returned when a snapshot cannot be decoded.
type ErrCorruptSnapshot struct {
	Reason string
	Err    error
}

func (e ErrCorruptSnapshot) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt snapshot: %s: %s", e.Reason, e.Err)
	}
	return "corrupt snapshot: " + e.Reason
}

func (e ErrCorruptSnapshot) Unwrap() error { return e.Err }

// ErrDecode wraps third party decoding errors.
type ErrDecode struct {
	Source error
}

func (e ErrDecode) Error() string {
	return "decoding: " + e.Source.Error()
}

func (e ErrDecode) Unwrap() error { return e.Source }

// ErrEncode wraps third party encoding errors.
type ErrEncode struct {
	Source error
}

func (e ErrEncode) Error() string {
	return "encoding: " + e.Source.Error()
}

func (e ErrEncode) Unwrap() error { return e.Source }

// ErrDocumentType is returned when a Go value cannot be turned into a
// document or one of its values.
type ErrDocumentType struct {
	Reason string
}

func (e ErrDocumentType) Error() string {
	return "invalid document type: " + e.Reason
}

// ErrTargetNil is returned when a decoding target is nil.
type ErrTargetNil struct{}

func (e ErrTargetNil) Error() string { return "target interface is nil" }

// ErrNonPointer is returned when a decoding target is not a pointer.
type ErrNonPointer struct{}

func (e ErrNonPointer) Error() string { return "target must be a pointer" }
