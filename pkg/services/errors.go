package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by a ContentAPI when a path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRevisionMismatch is returned by a ContentAPI when a conditional
	// write does not match the stored revision.
	ErrRevisionMismatch = errors.New("revision mismatch")
)

// ValidationError lists the fields that failed validation. Fields without an
// entry in Reasons are required fields that are empty. It is returned before
// any remote call is made.
type ValidationError struct {
	Fields  []string
	Reasons map[string]string
}

func (e *ValidationError) invalid(field, reason string) {
	if e.Reasons == nil {
		e.Reasons = make(map[string]string)
	}
	e.Fields = append(e.Fields, field)
	e.Reasons[field] = reason
}

func (e *ValidationError) Error() string {
	var missing, parts []string
	for _, f := range e.Fields {
		if reason, ok := e.Reasons[f]; ok {
			parts = append(parts, f+": "+reason)
		} else {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		parts = append([]string{"missing required fields: " + strings.Join(missing, ", ")}, parts...)
	}
	return strings.Join(parts, "; ")
}

// ParseError reports a malformed front matter block.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse front matter: %v", e.Err)
	}
	return fmt.Sprintf("parse front matter in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError wraps a failed call to the remote repository.
type TransportError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// WriteConflictError means the remote file changed since it was last read.
// The caller has to reload and reapply the edit.
type WriteConflictError struct {
	Path     string
	Revision string
	Err      error
}

func (e *WriteConflictError) Error() string {
	if e.Revision == "" {
		return fmt.Sprintf("write conflict on %s: file already exists, reload before saving", e.Path)
	}
	return fmt.Sprintf("write conflict on %s: revision %s is no longer current, reload before saving", e.Path, e.Revision)
}

func (e *WriteConflictError) Unwrap() error { return e.Err }

// UploadError wraps a failed asset upload.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
