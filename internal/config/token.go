package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/runner"
)

// TokenEnvVar is the environment variable the upload token is read from.
const TokenEnvVar = "GITHUB_TOKEN"

// TokenOptions control where ResolveToken looks for the upload token.
type TokenOptions struct {
	// Token is an explicit token, usually from a --token flag.
	Token string
	// EnvFile is an explicit dotenv file path, usually from --env-file.
	// When set, the file must exist.
	EnvFile string
	// Dir is the directory searched for a default .env file.
	Dir string
}

// ResolveToken resolves the authentication token used for the upload step.
//
// Resolution order: explicit token, explicit env file, a .env file in the
// working directory, the process environment, and finally `gh auth token`.
// Returns an error matching errors.ErrNoToken when nothing yields a token.
func ResolveToken(ctx context.Context, opts TokenOptions) (string, error) {
	if opts.Token != "" {
		return opts.Token, nil
	}

	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err != nil {
			return "", fmt.Errorf("env file %s: %w", opts.EnvFile, err)
		}
		vars, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return "", fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
		}
		if token := vars[TokenEnvVar]; token != "" {
			return token, nil
		}
		return "", fmt.Errorf("%w: %s not set in %s", shipiterrors.ErrNoToken, TokenEnvVar, opts.EnvFile)
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	dotenvPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(dotenvPath); err == nil {
		if vars, err := godotenv.Read(dotenvPath); err == nil {
			if token := vars[TokenEnvVar]; token != "" {
				return token, nil
			}
		}
	}

	if token := os.Getenv(TokenEnvVar); token != "" {
		return token, nil
	}

	// Last resort: the gh CLI keeps a token for authenticated users.
	if _, ok := runner.LookPath("gh"); ok {
		out, err := runner.New().Run(ctx, "gh", "auth", "token")
		if err == nil {
			if token := strings.TrimSpace(out); token != "" {
				return token, nil
			}
		}
	}

	return "", fmt.Errorf("%w: provide --token, a .env file with %s, or set %s",
		shipiterrors.ErrNoToken, TokenEnvVar, TokenEnvVar)
}
