package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"githarvest/internal/core/domain"
)

// loadTokens gathers API credentials from the environment. A .env file
// is merged in first when present: the named one must exist, the
// default ./.env is best effort.
//
// Recognised variables, in order of precedence:
//
//	GITHUB_TOKENS           comma-separated list
//	GITHUB_ACCESS_TOKEN1..N numbered variables, read until the first gap
func loadTokens(envFile string) ([]string, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	if raw := os.Getenv("GITHUB_TOKENS"); raw != "" {
		var tokens []string
		for _, tok := range strings.Split(raw, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
		if len(tokens) > 0 {
			return tokens, nil
		}
	}

	var tokens []string
	for i := 1; ; i++ {
		tok := strings.TrimSpace(os.Getenv(fmt.Sprintf("GITHUB_ACCESS_TOKEN%d", i)))
		if tok == "" {
			break
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: set GITHUB_TOKENS or GITHUB_ACCESS_TOKEN1..N", domain.ErrNoCredentials)
	}
	return tokens, nil
}
