package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobseek-id/auto-emailer/internal/template"
)

func writeTemplate(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budi.html")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRender_Substitution(t *testing.T) {
	path := writeTemplate(t, "Hi {{name}}, role {{position}}")

	r := template.NewRenderer()
	out, err := r.Render(path, map[string]string{"name": "John", "position": "QA"})
	require.NoError(t, err)
	assert.Equal(t, "Hi John, role QA", out)
}

func TestRender_UnknownPlaceholderLeftVerbatim(t *testing.T) {
	path := writeTemplate(t, "Hi {{name}}, from {{domisili}}")

	r := template.NewRenderer()
	out, err := r.Render(path, map[string]string{"name": "John"})
	require.NoError(t, err)
	assert.Equal(t, "Hi John, from {{domisili}}", out)
}

func TestRender_RepeatedPlaceholder(t *testing.T) {
	path := writeTemplate(t, "{{name}} {{name}}")

	r := template.NewRenderer()
	out, err := r.Render(path, map[string]string{"name": "John"})
	require.NoError(t, err)
	assert.Equal(t, "John John", out)
}

func TestRender_MissingTemplate(t *testing.T) {
	r := template.NewRenderer()
	_, err := r.Render(filepath.Join(t.TempDir(), "absent.html"), nil)
	require.ErrorIs(t, err, template.ErrTemplateNotFound)
}

func TestRender_CachesBody(t *testing.T) {
	path := writeTemplate(t, "v1 {{name}}")

	r := template.NewRenderer()
	_, err := r.Render(path, map[string]string{"name": "John"})
	require.NoError(t, err)

	// The file changes on disk, but the cached body is retained for the
	// process lifetime.
	require.NoError(t, os.WriteFile(path, []byte("v2 {{name}}"), 0o600))
	out, err := r.Render(path, map[string]string{"name": "John"})
	require.NoError(t, err)
	assert.Equal(t, "v1 John", out)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/data/cv", "CV_budi.pdf"), template.CVPath("/data/cv", "budi"))
	assert.Equal(t, filepath.Join("/data/template", "budi.html"), template.BodyPath("/data/template", "budi"))
}
