package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	apperrors "github.com/civitgrab/civitgrab/internal/errors"
)

// ResolveToken finds the API token: a .env file is loaded best effort,
// then the named environment variable is consulted, then the user is
// prompted with hidden input when stdin is a terminal. The token is
// returned to the caller and never stored anywhere else.
func ResolveToken(envVar string) (string, error) {
	_ = godotenv.Load()

	if token := strings.TrimSpace(os.Getenv(envVar)); token != "" {
		return token, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", apperrors.ErrMissingToken
	}

	fmt.Fprintf(os.Stderr, "API token (%s is unset): ", envVar)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", apperrors.ErrMissingToken
	}
	return token, nil
}
