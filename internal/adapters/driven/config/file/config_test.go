package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"githarvest/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns the defaults", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing named file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))

		assert.Error(t, err)
	})

	t.Run("partial file overrides only what it names", func(t *testing.T) {
		path := writeConfig(t, `
[retry]
max_attempts = 8

[harvest]
workers = 12
`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Retry.MaxAttempts)
		assert.Equal(t, 12, cfg.Harvest.Workers)
		assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
		assert.Equal(t, Default().Patterns.SkipDirs, cfg.Patterns.SkipDirs)
	})

	t.Run("pattern lists replace the defaults wholesale", func(t *testing.T) {
		path := writeConfig(t, `
[patterns]
database = ["custom\\.sql"]
`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, []string{`custom\.sql`}, cfg.Patterns.Database)
		assert.Equal(t, Default().Patterns.Documentation, cfg.Patterns.Documentation)
	})

	t.Run("ci rules keep their declared order", func(t *testing.T) {
		path := writeConfig(t, `
[[patterns.ci]]
pattern = "Dockerfile"
tool = "Docker"

[[patterns.ci]]
pattern = "\\.github/workflows/"
tool = "GitHub Actions"
`)

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Len(t, cfg.Patterns.CICD, 2)
		assert.Equal(t, "Docker", cfg.Patterns.CICD[0].Tool)
		assert.Equal(t, "GitHub Actions", cfg.Patterns.CICD[1].Tool)
	})

	t.Run("malformed toml fails with invalid input", func(t *testing.T) {
		path := writeConfig(t, `[retry`)

		_, err := Load(path)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("compiled defaults are valid", func(t *testing.T) {
		_, err := Default().Patterns.Compile()

		assert.NoError(t, err)
	})
}
