package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/civitgrab/civitgrab/internal/domain"
	apperrors "github.com/civitgrab/civitgrab/internal/errors"
	"github.com/civitgrab/civitgrab/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(t *testing.T) (*Fetcher, string) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewFileStorage(dir)
	return New(store, testLogger(), 5*time.Second, true), dir
}

func task(name, url string, cat domain.Category) domain.Task {
	return domain.NewTask(name, url, cat)
}

func TestFetchSuccessWritesFileAndSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query string %q, token must not leak into the URL", r.URL.RawQuery)
		}
		io.WriteString(w, "embedding weights")
	}))
	defer server.Close()

	f, dir := newTestFetcher(t)
	tk := task("a.pt", server.URL, domain.CategoryEmbedding)

	if err := f.Fetch(context.Background(), tk, "T"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotAuth != "Bearer T" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer T")
	}

	data, err := os.ReadFile(filepath.Join(dir, "embeddings", "a.pt"))
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "embedding weights" {
		t.Errorf("content = %q, want %q", data, "embedding weights")
	}
}

func TestFetchStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   apperrors.Kind
	}{
		{http.StatusUnauthorized, apperrors.KindAuth},
		{http.StatusForbidden, apperrors.KindAuth},
		{http.StatusNotFound, apperrors.KindNotFound},
		{http.StatusInternalServerError, apperrors.KindTransient},
		{http.StatusBadGateway, apperrors.KindTransient},
		{http.StatusTooManyRequests, apperrors.KindTransient},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			f, dir := newTestFetcher(t)
			tk := task("x.safetensors", server.URL, domain.CategoryModel)

			err := f.Fetch(context.Background(), tk, "T")
			if err == nil {
				t.Fatalf("expected error for status %d", tc.status)
			}
			if got := apperrors.KindOf(err); got != tc.kind {
				t.Errorf("kind = %v, want %v", got, tc.kind)
			}

			if _, err := os.Stat(filepath.Join(dir, "models", "x.safetensors")); !os.IsNotExist(err) {
				t.Errorf("no file must appear at the destination on failure")
			}
		})
	}
}

func TestFetchConnectionErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	f, _ := newTestFetcher(t)
	tk := task("x.safetensors", server.URL, domain.CategoryModel)

	err := f.Fetch(context.Background(), tk, "T")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if got := apperrors.KindOf(err); got != apperrors.KindTransient {
		t.Errorf("kind = %v, want %v", got, apperrors.KindTransient)
	}
}

func TestFetchTruncatedBodyLeavesNoFinalFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		io.WriteString(w, "only a fragment")
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		// Abort mid-stream so the client sees a short body.
		if hj, ok := w.(http.Hijacker); ok {
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
		}
	}))
	defer server.Close()

	f, dir := newTestFetcher(t)
	tk := task("partial.safetensors", server.URL, domain.CategoryModel)

	err := f.Fetch(context.Background(), tk, "T")
	if err == nil {
		t.Fatal("expected truncation error")
	}
	if got := apperrors.KindOf(err); got != apperrors.KindTransient {
		t.Errorf("kind = %v, want %v", got, apperrors.KindTransient)
	}

	if _, err := os.Stat(filepath.Join(dir, "models", "partial.safetensors")); !os.IsNotExist(err) {
		t.Errorf("truncated transfer must not leave a file at the destination")
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, "models", "*.part"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files should be discarded, found %v", leftovers)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		io.WriteString(w, "head")
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	f, dir := newTestFetcher(t)
	tk := task("slow.safetensors", server.URL, domain.CategoryModel)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := f.Fetch(ctx, tk, "T")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if got := apperrors.KindOf(err); got != apperrors.KindTransient {
		t.Errorf("kind = %v, want %v", got, apperrors.KindTransient)
	}
	if _, err := os.Stat(filepath.Join(dir, "models", "slow.safetensors")); !os.IsNotExist(err) {
		t.Errorf("cancelled transfer must not leave a file at the destination")
	}
}
