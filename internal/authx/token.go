// Package authx loads the archive access token and sanity-checks it before
// any worker starts.
package authx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/term"

	"github.com/seqarchive/seqsubmit/internal/common"
	"github.com/seqarchive/seqsubmit/internal/logging"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Token returns the archive access token: from the configured file when
// tokenPath is set, otherwise by prompting on the terminal without echo.
func Token(tokenPath string, w io.Writer) (string, error) {
	if tokenPath != "" {
		data, err := os.ReadFile(tokenPath)
		if err != nil {
			return "", fmt.Errorf("reading token file: %w", err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return "", fmt.Errorf("%w: %s is empty", common.ErrTokenMissing, tokenPath)
		}
		return token, nil
	}

	if _, err := fmt.Fprint(w, "Enter archive token: "); err != nil {
		return "", err
	}
	raw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", common.ErrTokenMissing
	}
	return token, nil
}

// CheckExpiry inspects a JWT-shaped token without verifying the signature
// and returns ErrTokenExpired when its exp claim has passed. Opaque
// (non-JWT) tokens pass: the archive issues both kinds, and only the server
// can validate an opaque key. Tokens within warnWithin of expiry log a
// warning but still pass.
func CheckExpiry(ctx context.Context, token string, warnWithin time.Duration, log logging.Logger) error {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return fmt.Errorf("%w: expired at %s", common.ErrTokenExpired, claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	if remaining < warnWithin {
		log.Warn(ctx, "archive token close to expiry",
			"expires_at", claims.ExpiresAt.Time.Format(time.RFC3339),
			"remaining", remaining.String())
	}
	return nil
}
