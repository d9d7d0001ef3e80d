package plan

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. Every error returned by this
// package carries exactly one kind so the hosting layer can map failures
// to a stable taxonomy without string matching.
type Kind string

// Error kinds.
const (
	KindInvalidArgument  Kind = "invalid_argument"
	KindNotFound         Kind = "not_found"
	KindInvalidHierarchy Kind = "invalid_hierarchy"
	KindStorageFailure   Kind = "storage_failure"
)

// Reason identifies which hierarchy check rejected a structural mutation.
type Reason string

// Hierarchy rejection reasons.
const (
	ReasonBadNesting    Reason = "bad-nesting"
	ReasonCrossProject  Reason = "cross-project"
	ReasonDepthExceeded Reason = "depth-exceeded"
	ReasonMissingParent Reason = "missing-parent"
)

// Error is a classified failure with a human-readable message. Reason is
// set only for hierarchy violations.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func invalidArgf(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func hierarchyErr(reason Reason, format string, args ...any) error {
	kind := KindInvalidHierarchy
	// A parent reference that does not resolve is a not-found condition;
	// the reason code still records which check tripped.
	if reason == ReasonMissingParent {
		kind = KindNotFound
	}
	return &Error{Kind: kind, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func storagef(err error, format string, args ...any) error {
	return &Error{
		Kind:    KindStorageFailure,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrKind returns the taxonomy kind of err, or "" when err was not
// produced by this package.
func ErrKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HierarchyReason returns the hierarchy reason code of err, or "" when
// err is not a hierarchy rejection.
func HierarchyReason(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// IsInvalidArgument reports whether err is an invalid-argument failure.
func IsInvalidArgument(err error) bool { return ErrKind(err) == KindInvalidArgument }

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return ErrKind(err) == KindNotFound }

// IsInvalidHierarchy reports whether err is a hierarchy violation.
func IsInvalidHierarchy(err error) bool { return ErrKind(err) == KindInvalidHierarchy }

// IsStorageFailure reports whether err is a backing-store failure.
func IsStorageFailure(err error) bool { return ErrKind(err) == KindStorageFailure }
