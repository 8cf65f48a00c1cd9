package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyPathIsNop(t *testing.T) {
	l, err := New("dev", "")
	require.NoError(t, err)
	l.Info("discarded", "k", "v")
	l.Sync()
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lumen.log")

	l, err := New("dev", path)
	require.NoError(t, err)

	l.With("topic", "Photosynthesis").Warn("image generation degraded", "section", 2)
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "image generation degraded")
	assert.Contains(t, string(data), "Photosynthesis")
}

func TestNew_ProdModeIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.json")

	l, err := New("prod", path)
	require.NoError(t, err)
	l.Info("notes generated", "sections", 4)
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"notes generated"`)
	assert.Contains(t, string(data), `"sections":4`)
}
