package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/civitgrab/civitgrab/internal/domain"
	apperrors "github.com/civitgrab/civitgrab/internal/errors"
	"github.com/civitgrab/civitgrab/internal/metrics"
	"github.com/civitgrab/civitgrab/internal/storage"
)

// Fetcher performs one authenticated GET per call and streams the body
// to a temporary file, committing it atomically on success. The token
// travels only in the Authorization header, never in the URL.
type Fetcher struct {
	store  *storage.FileStorage
	client *http.Client
	logger *slog.Logger
	quiet  bool
}

// New creates a Fetcher writing into store. With quiet set, no progress
// bars are rendered.
func New(store *storage.FileStorage, logger *slog.Logger, timeout time.Duration, quiet bool) *Fetcher {
	return &Fetcher{
		store:  store,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		quiet:  quiet,
	}
}

// Fetch downloads task.URL to task.DestPath. Failures carry a kind from
// the errors package so the retrier can tell transient conditions from
// permanent ones.
func (f *Fetcher) Fetch(ctx context.Context, task domain.Task, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.client.Do(req)
	if err != nil {
		return apperrors.Transient(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.Auth(fmt.Errorf("bad status: %s", resp.Status))
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(fmt.Errorf("bad status: %s", resp.Status))
	default:
		return apperrors.Transient(fmt.Errorf("bad status: %s", resp.Status))
	}

	tmp, err := f.store.CreateTemp(task.DestPath)
	if err != nil {
		return apperrors.IO(fmt.Errorf("create temporary file: %w", err))
	}

	var dst io.Writer = tmp
	var bar *progressbar.ProgressBar
	if !f.quiet {
		bar = progressbar.DefaultBytes(resp.ContentLength, task.Name)
		dst = io.MultiWriter(tmp, bar)
	}

	start := time.Now()
	written, err := copyStream(ctx, dst, resp.Body)
	if bar != nil {
		_ = bar.Close()
	}
	if err != nil {
		f.store.Discard(tmp)
		return err
	}

	if err := f.store.Commit(tmp, task.DestPath); err != nil {
		f.store.Discard(tmp)
		return apperrors.IO(err)
	}

	metrics.DownloadBytes.Add(float64(written))
	metrics.DownloadDuration.Observe(time.Since(start).Seconds())

	f.logger.Debug("download complete",
		"name", task.Name,
		"dest", task.DestPath,
		"bytes", written,
	)
	return nil
}

// copyStream copies src to dst, classifying failures: read errors are
// transient network conditions, write errors are local IO, and a
// cancelled context aborts the transfer as transient.
func copyStream(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64

	for {
		select {
		case <-ctx.Done():
			return total, apperrors.Transient(ctx.Err())
		default:
			nr, rerr := src.Read(buf)
			if nr > 0 {
				nw, werr := dst.Write(buf[:nr])
				if nw > 0 {
					total += int64(nw)
				}
				if werr != nil {
					return total, apperrors.IO(werr)
				}
				if nw != nr {
					return total, apperrors.IO(io.ErrShortWrite)
				}
			}
			if rerr != nil {
				if rerr == io.EOF {
					return total, nil
				}
				return total, apperrors.Transient(rerr)
			}
		}
	}
}
