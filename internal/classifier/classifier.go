package classifier

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/civitgrab/civitgrab/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("safe_url", validateSafeURL)
}

// entrySeparator splits an entry line into name and URL.
const entrySeparator = " - "

// sections maps header lines to categories. The historical list format
// spells the embeddings header "embedings"; both spellings are accepted.
var sections = map[string]domain.Category{
	"embeding":   domain.CategoryEmbedding,
	"embedings":  domain.CategoryEmbedding,
	"embedding":  domain.CategoryEmbedding,
	"embeddings": domain.CategoryEmbedding,
	"lora":       domain.CategoryLoRA,
	"loras":      domain.CategoryLoRA,
	"model":      domain.CategoryModel,
	"models":     domain.CategoryModel,
}

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\x7f-\x9f]`)

// Parse reads a line-oriented download list and produces one task per
// valid entry. Lines are either section headers ("embedings", "Lora",
// "Model"), entries of the form "<name> - <url>", or blank. Invalid
// lines become ParseErrors and never abort the batch.
//
// Section headers are authoritative for the category of the entries
// that follow them. Entries seen before any header fall back to the
// file extension: ".pt" is an embedding, ".safetensors" is assumed to
// be a model and logged, since the size-based checkpoint/LoRA split is
// unknowable before download.
func Parse(r io.Reader, logger *slog.Logger) ([]domain.Task, []domain.ParseError, error) {
	var (
		tasks     []domain.Task
		parseErrs []domain.ParseError
		section   *domain.Category
	)
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if cat, ok := sections[strings.ToLower(line)]; ok {
			section = &cat
			continue
		}

		name, rawURL, found := strings.Cut(line, entrySeparator)
		if !found {
			parseErrs = append(parseErrs, domain.ParseError{Line: lineno, Text: line, Reason: "not a section header or a '<name> - <url>' entry"})
			continue
		}

		name, err := sanitizeName(strings.TrimSpace(name))
		if err != nil {
			parseErrs = append(parseErrs, domain.ParseError{Line: lineno, Text: line, Reason: err.Error()})
			continue
		}

		cat, err := categorize(name, section, logger)
		if err != nil {
			parseErrs = append(parseErrs, domain.ParseError{Line: lineno, Text: line, Reason: err.Error()})
			continue
		}

		rawURL = strings.TrimSpace(rawURL)
		if err := validate.Var(rawURL, "required,safe_url"); err != nil {
			parseErrs = append(parseErrs, domain.ParseError{Line: lineno, Text: line, Reason: fmt.Sprintf("invalid url %q", rawURL)})
			continue
		}

		task := domain.NewTask(name, rawURL, cat)
		if _, dup := seen[task.DestPath]; dup {
			parseErrs = append(parseErrs, domain.ParseError{Line: lineno, Text: line, Reason: fmt.Sprintf("duplicate destination %s", task.DestPath)})
			continue
		}
		seen[task.DestPath] = struct{}{}
		tasks = append(tasks, task)
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read url file: %w", err)
	}
	return tasks, parseErrs, nil
}

// sanitizeName strips directory components and characters that are
// unsafe in a filename. It fails rather than guess when nothing usable
// remains.
func sanitizeName(name string) (string, error) {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("path traversal in name %q", name)
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ". ")
	if name == "" {
		return "", errors.New("name is empty after sanitization")
	}
	return name, nil
}

func categorize(name string, section *domain.Category, logger *slog.Logger) (domain.Category, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".pt" && ext != ".safetensors" {
		return "", fmt.Errorf("unsupported extension %q", ext)
	}

	if section != nil {
		return *section, nil
	}

	if ext == ".pt" {
		return domain.CategoryEmbedding, nil
	}
	logger.Warn("no section header for entry, assuming model", "name", name)
	return domain.CategoryModel, nil
}

// validateSafeURL accepts http/https URLs with a real host, rejecting
// loopback and private targets.
func validateSafeURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}

	host := u.Hostname()
	forbidden := []string{"localhost", "127.0.0.1", "::1", "0.0.0.0", "169.254.169.254"}
	for _, f := range forbidden {
		if strings.EqualFold(host, f) {
			return false
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() {
			return false
		}
	}

	return true
}
