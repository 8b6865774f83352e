package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	apihttp "github.com/civitgrab/civitgrab/internal/api/http"
	"github.com/civitgrab/civitgrab/internal/auth"
	"github.com/civitgrab/civitgrab/internal/classifier"
	cfgpkg "github.com/civitgrab/civitgrab/internal/config"
	"github.com/civitgrab/civitgrab/internal/domain"
	apperrors "github.com/civitgrab/civitgrab/internal/errors"
	"github.com/civitgrab/civitgrab/internal/fetcher"
	"github.com/civitgrab/civitgrab/internal/pool"
	"github.com/civitgrab/civitgrab/internal/report"
	"github.com/civitgrab/civitgrab/internal/retry"
	"github.com/civitgrab/civitgrab/internal/storage"
)

func main() {
	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	urlFile := flag.String("url_file", cfg.URLFile, "text file with '<name> - <url>' lines")
	retries := flag.Int("retries", cfg.Retries, "retry attempts for failed downloads")
	maxThreads := flag.Int("max_threads", cfg.MaxThreads, "maximum concurrent downloads")
	baseDir := flag.String("base_dir", cfg.BaseDir, "destination base directory")
	statusAddr := flag.String("status_addr", cfg.StatusAddr, "serve /status and /metrics on this address during the run")
	quiet := flag.Bool("quiet", cfg.Quiet, "disable progress bars")
	flag.Parse()

	cfg.URLFile = *urlFile
	cfg.Retries = *retries
	cfg.MaxThreads = *maxThreads
	cfg.BaseDir = *baseDir
	cfg.StatusAddr = *statusAddr
	cfg.Quiet = *quiet

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfgpkg.SetupLogger(cfg)

	if err := run(cfg); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *cfgpkg.Config) error {
	token, err := auth.ResolveToken(cfg.TokenVar)
	if err != nil {
		return err
	}

	file, err := os.Open(cfg.URLFile)
	if err != nil {
		return fmt.Errorf("open url file: %w", err)
	}
	tasks, parseErrs, err := classifier.Parse(file, slog.Default())
	file.Close()
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		report.Render(os.Stdout, domain.Summary{}, parseErrs)
		return apperrors.ErrNoTasks
	}

	slog.Info("url file parsed", "tasks", len(tasks), "skipped_lines", len(parseErrs))

	store := storage.NewFileStorage(cfg.BaseDir)
	f := fetcher.New(store, slog.Default(), cfg.HTTPTimeout, cfg.Quiet)
	retrier := retry.New(cfg.Retries, cfg.BackoffBase, cfg.BackoffMax)
	p := pool.New(cfg.MaxThreads, retrier, f, store, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sum domain.Summary
	g, gctx := errgroup.WithContext(ctx)

	var server *http.Server
	if cfg.StatusAddr != "" {
		server = &http.Server{
			Addr:    cfg.StatusAddr,
			Handler: apihttp.NewRouter(p, slog.Default()),
		}
		g.Go(func() error {
			slog.Info("status server listening", "address", cfg.StatusAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			if server == nil {
				return
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("status server shutdown failed", "error", err)
			}
		}()
		sum = p.Run(gctx, tasks, token)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	report.Render(os.Stdout, sum, parseErrs)

	_, _, failed := sum.Counts()
	if failed > 0 || len(parseErrs) > 0 {
		return fmt.Errorf("%d download(s) failed, %d input line(s) skipped", failed, len(parseErrs))
	}
	return nil
}
