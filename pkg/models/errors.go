package models

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-git/go-git/v5"
)

// ErrorKind classifies analysis failures for callers and tool clients.
type ErrorKind string

const (
	ErrRepositoryNotFound ErrorKind = "RepositoryNotFound"
	ErrNotARepository     ErrorKind = "NotAVersionControlledDirectory"
	ErrPermissionDenied   ErrorKind = "PermissionDenied"
	ErrAnalysisTimeout    ErrorKind = "AnalysisTimeout"
	ErrInvalidParameter   ErrorKind = "InvalidParameter"
	ErrSnapshotNotFound   ErrorKind = "SnapshotNotFound"
	ErrInternal           ErrorKind = "InternalError"
)

// AnalysisError carries a classified kind alongside the underlying cause.
type AnalysisError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// NewError wraps err with a kind and the operation that produced it.
func NewError(kind ErrorKind, op string, err error) *AnalysisError {
	return &AnalysisError{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind ErrorKind, op, format string, args ...any) *AnalysisError {
	return &AnalysisError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the error kind, classifying well-known causes from the
// filesystem, go-git, and context packages. Unrecognized errors map to
// InternalError.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		return ErrNotARepository
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, os.ErrNotExist):
		return ErrRepositoryNotFound
	case errors.Is(err, fs.ErrPermission), errors.Is(err, os.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, context.DeadlineExceeded):
		return ErrAnalysisTimeout
	}
	return ErrInternal
}

// Classify wraps err as an AnalysisError with the detected kind, passing
// through errors that already carry one.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return err
	}
	return &AnalysisError{Kind: KindOf(err), Op: op, Err: err}
}
