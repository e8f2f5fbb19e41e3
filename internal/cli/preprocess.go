package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

// TemplateContext is the data config files are rendered with.
type TemplateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// PreprocessConfig replaces {{ .ENV.VAR }} placeholders with values from the environment.
// A .env file in dir is loaded first; variables already set in the environment win.
func PreprocessConfig(input []byte, dir string) ([]byte, error) {
	if dir != "" {
		_ = godotenv.Load(filepath.Join(dir, ".env")) // a missing .env is fine
	}
	return expandPlaceholders(input, environ())
}

func environ() map[string]string {
	env := map[string]string{}
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}
	return env
}

func expandPlaceholders(input []byte, env map[string]string) ([]byte, error) {
	tmpl, err := template.New("config").Option("missingkey=error").Parse(string(input))
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, TemplateContext{ENV: env}); err != nil {
		if m := missingKeyRegex.FindStringSubmatch(err.Error()); len(m) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", m[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}
	return out.Bytes(), nil
}
