package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNoTasks      = errors.New("no valid entries in url file")
	ErrMissingToken = errors.New("no API token provided")
)

// Kind classifies a download failure for retry decisions.
type Kind string

const (
	// KindAuth covers 401/403 responses. Retrying with the same token
	// cannot succeed.
	KindAuth Kind = "auth"
	// KindNotFound covers 404 responses.
	KindNotFound Kind = "not_found"
	// KindTransient covers timeouts, 5xx responses and connection errors.
	KindTransient Kind = "transient"
	// KindIO covers local disk failures while writing the download.
	KindIO Kind = "io"
	// KindInternal covers unexpected failures caught at the worker
	// boundary, including recovered panics.
	KindInternal Kind = "internal"
)

// DownloadError is a failure of a single fetch attempt, tagged with the
// kind that decides whether the attempt may be retried.
type DownloadError struct {
	Kind Kind
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may change the result.
func (e *DownloadError) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindIO
}

func Auth(err error) error      { return &DownloadError{Kind: KindAuth, Err: err} }
func NotFound(err error) error  { return &DownloadError{Kind: KindNotFound, Err: err} }
func Transient(err error) error { return &DownloadError{Kind: KindTransient, Err: err} }
func IO(err error) error        { return &DownloadError{Kind: KindIO, Err: err} }
func Internal(err error) error  { return &DownloadError{Kind: KindInternal, Err: err} }

// Retryable reports whether err is a retryable download error. Errors
// outside the taxonomy are not retried.
func Retryable(err error) bool {
	var de *DownloadError
	if errors.As(err, &de) {
		return de.Retryable()
	}
	return false
}

// KindOf returns the kind of a download error, or KindInternal for
// anything outside the taxonomy.
func KindOf(err error) Kind {
	var de *DownloadError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
