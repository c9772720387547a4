package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "norminette", cfg.Norminette.Command)
	assert.True(t, cfg.LintsOn(EventOpen))
	assert.True(t, cfg.LintsOn(EventSave))
	assert.False(t, cfg.LintsOn(EventChange))
	assert.Equal(t, 10*time.Second, cfg.RunnerOptions().Timeout)
}

func TestLoadFindsFileInParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "lib")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(`
[norminette]
command = "python3 -m norminette"
args = ["-R", "CheckForbiddenSourceHeader"]
timeout = "3s"

[files]
include = ["src/**/*.c"]
exclude = ["src/vendor/**"]

[lsp]
lint_on = ["open", "change"]
`), 0o644))

	cfg, err := LoadFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), cfg.Path)

	opts := cfg.RunnerOptions()
	assert.Equal(t, "python3 -m norminette", opts.Command)
	assert.Equal(t, []string{"-R", "CheckForbiddenSourceHeader"}, opts.Args)
	assert.Equal(t, 3*time.Second, opts.Timeout)
	assert.True(t, cfg.LintsOn(EventChange))
	assert.False(t, cfg.LintsOn(EventSave))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"timeout": "[norminette]\ntimeout = \"soon\"\n",
		"event":   "[lsp]\nlint_on = [\"hover\"]\n",
		"pattern": "[files]\ninclude = [\"[\"]\n",
		"syntax":  "[norminette\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestMatches(t *testing.T) {
	cfg := Default()
	cfg.Files.Exclude = []string{"tests/**"}

	assert.True(t, cfg.Matches("main.c"))
	assert.True(t, cfg.Matches("src/ft_strlen.c"))
	assert.True(t, cfg.Matches(filepath.Join("include", "libft.h")))
	assert.False(t, cfg.Matches("Makefile"))
	assert.False(t, cfg.Matches("tests/main.c"))
}

func TestApplySettings(t *testing.T) {
	cfg := Default()
	settings := map[string]any{
		"normls": map[string]any{
			"command": "/opt/norminette/bin/norminette",
			"lintOn":  []any{"save", "change"},
			"exclude": []any{"build/**"},
		},
	}

	next, err := cfg.Apply(settings)
	require.NoError(t, err)
	assert.Equal(t, "/opt/norminette/bin/norminette", next.Norminette.Command)
	assert.True(t, next.LintsOn(EventChange))
	assert.False(t, next.LintsOn(EventOpen))
	assert.False(t, next.Matches("build/gen.c"))

	assert.Equal(t, "norminette", cfg.Norminette.Command, "Apply must not modify the receiver")
	assert.True(t, cfg.LintsOn(EventOpen))
}

func TestApplyIgnoresForeignSettings(t *testing.T) {
	cfg := Default()
	next, err := cfg.Apply(map[string]any{"clangd": map[string]any{"fallbackFlags": []any{"-Wall"}}})
	require.NoError(t, err)
	assert.Equal(t, cfg.LSP.LintOn, next.LSP.LintOn)

	_, err = cfg.Apply(map[string]any{"normls": map[string]any{"lintOn": []any{"never"}}})
	assert.Error(t, err)
}
