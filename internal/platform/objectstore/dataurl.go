package objectstore

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// MaxImageBytes caps decoded image uploads.
const MaxImageBytes = 5 << 20

var (
	// ErrInvalidDataURL is returned when a value is not a base64 data URL.
	ErrInvalidDataURL = errors.New("invalid data URL")

	// ErrUnsupportedImage is returned for payloads that are not PNG, JPEG, GIF or WebP.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrImageTooLarge is returned when a decoded image exceeds MaxImageBytes.
	ErrImageTooLarge = errors.New("image too large")
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Reader returns a reader over the image bytes.
func (i Image) Reader() *bytes.Reader {
	return bytes.NewReader(i.Data)
}

// IsDataURL reports whether s looks like a data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeImageDataURL parses "data:image/<type>;base64,<payload>". The declared
// type must agree with the sniffed content.
func DecodeImageDataURL(s string) (Image, error) {
	if !IsDataURL(s) {
		return Image{}, ErrInvalidDataURL
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return Image{}, ErrInvalidDataURL
	}
	mediaType, encoding, ok := strings.Cut(header, ";")
	if !ok || encoding != "base64" {
		return Image{}, ErrInvalidDataURL
	}
	mediaType = strings.ToLower(mediaType)
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return Image{}, ErrUnsupportedImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return Image{}, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, ErrInvalidDataURL
	}
	if len(data) == 0 {
		return Image{}, ErrInvalidDataURL
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}
	if sniffed := http.DetectContentType(data); sniffed != mediaType {
		return Image{}, ErrUnsupportedImage
	}

	return Image{Data: data, ContentType: mediaType, Extension: ext}, nil
}
