package generation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI_Rejects(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"placeholder url", PlaceholderImageURL},
		{"no payload", "data:image/png;base64"},
		{"not base64", "data:image/png,rawbytes"},
		{"bad base64", "data:image/png;base64,***"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDataURI(tt.uri)
			assert.Error(t, err)
		})
	}
}

func TestImageInfo_NotAnImage(t *testing.T) {
	_, _, _, err := ImageInfo(EncodeDataURI("image/jpeg", []byte("definitely not a jpeg")))
	assert.Error(t, err)
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, ".jpg", FileExtension("image/jpeg"))
	assert.Equal(t, ".png", FileExtension("image/png"))
	assert.Equal(t, ".img", FileExtension(""))
}

func TestWithImagesCopies(t *testing.T) {
	notes := LearningNotes{{Heading: "a"}, {Heading: "b"}}
	out := notes.WithImages([]string{"x"})

	assert.Equal(t, "x", out[0].ImageURL)
	assert.Empty(t, out[1].ImageURL)
	assert.Empty(t, notes[0].ImageURL)
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	data := demoImage(1)

	path, err := SaveImage(dir, "lumen-section-1", EncodeDataURI("image/png", data))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".png"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = SaveImage(dir, "x", PlaceholderImageURL)
	assert.Error(t, err)
}
