package generation

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	// Decoders for ImageInfo.
	_ "image/jpeg"
	_ "image/png"
)

// PlaceholderImageURL is used for any section whose illustration failed.
const PlaceholderImageURL = "https://placehold.co/1280x720?text=Illustration+unavailable"

const dataURIPrefix = "data:"

// EncodeDataURI returns data as a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return dataURIPrefix + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI reports whether url carries inline image data.
func IsDataURI(url string) bool {
	return strings.HasPrefix(url, dataURIPrefix)
}

// DecodeDataURI splits a base64 data URI into its MIME type and bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !IsDataURI(uri) {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, dataURIPrefix), ",")
	if !ok {
		return "", nil, errors.New("data URI has no payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, errors.New("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	return mime, data, nil
}

// ImageInfo reports the dimensions and format of an inline image.
func ImageInfo(uri string) (width, height int, format string, err error) {
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		return 0, 0, "", err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// FileExtension returns a file extension for a MIME type.
func FileExtension(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}

// SaveImage writes the image in uri to a new file in dir (the system temp
// dir when empty) named after prefix, and returns its path.
func SaveImage(dir, prefix, uri string) (string, error) {
	mime, data, err := DecodeDataURI(uri)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, prefix+"-*"+FileExtension(mime))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return f.Name(), nil
}
