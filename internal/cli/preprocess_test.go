package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		env      map[string]string
		expected string
		wantErr  string
	}{
		{
			name:     "simple substitution",
			input:    "token: {{ .ENV.GH_TOKEN }}",
			env:      map[string]string{"GH_TOKEN": "ghp_secret"},
			expected: "token: ghp_secret",
		},
		{
			name:     "multiple variables",
			input:    "server: {{ .ENV.HOST }}\nuser_agent: {{ .ENV.AGENT }}",
			env:      map[string]string{"HOST": "https://ghe.example.com/api/v3", "AGENT": "bot"},
			expected: "server: https://ghe.example.com/api/v3\nuser_agent: bot",
		},
		{
			name:     "value with equals sign",
			input:    "header: {{ .ENV.H }}",
			env:      map[string]string{"H": "a=b"},
			expected: "header: a=b",
		},
		{
			name:     "no placeholders",
			input:    "server: https://api.github.com/",
			expected: "server: https://api.github.com/",
		},
		{
			name:    "missing variable",
			input:   "token: {{ .ENV.MISSING_TOKEN }}",
			wantErr: "missing environment variable: MISSING_TOKEN",
		},
		{
			name:    "invalid template",
			input:   "token: {{ .ENV.X }",
			env:     map[string]string{"X": "y"},
			wantErr: "template error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.env
			if env == nil {
				env = map[string]string{}
			}
			out, err := expandPlaceholders([]byte(tt.input), env)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestPreprocessConfigWithEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GHREST_TEST_FROM_FILE=from-file\nGHREST_TEST_SHADOWED=file\n"), 0600))
	t.Setenv("GHREST_TEST_SHADOWED", "shell")
	t.Cleanup(func() { os.Unsetenv("GHREST_TEST_FROM_FILE") })

	out, err := PreprocessConfig([]byte("a: {{ .ENV.GHREST_TEST_FROM_FILE }}\nb: {{ .ENV.GHREST_TEST_SHADOWED }}"), dir)
	require.NoError(t, err)
	assert.Equal(t, "a: from-file\nb: shell", string(out))
}
