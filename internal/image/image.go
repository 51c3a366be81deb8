// Package image decodes recipe images submitted as base64 data URIs.
package image

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	dataURIPrefix   = "data:"
	magicNumberSeek = 512
	maxDecodedSize  = 10 << 20 // ~ 10 MB
)

type File struct {
	Size     int64
	Data     []byte
	Suffix   string
	MimeType string
}

// allowedImageTypes lists the simple MIME types we accept.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var mimeTypeSuffix = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var (
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	ErrInvalidDataURI      = errors.New("invalid data uri")
	ErrImageTooLarge       = errors.New("image too large")
)

// DecodeDataURI parses a "data:image/...;base64,..." payload. The declared
// media type is ignored; the decoded bytes are sniffed instead.
func DecodeDataURI(uri string) (*File, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return nil, ErrInvalidDataURI
	}
	meta, payload, found := strings.Cut(uri[len(dataURIPrefix):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURI
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > maxDecodedSize {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", errors.Join(ErrInvalidDataURI, err))
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURI
	}

	contentType := http.DetectContentType(data[:min(len(data), magicNumberSeek)])
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("mime type %q: %w", contentType, ErrUnsupportedMimeType)
	}

	return &File{
		Size:     int64(len(data)),
		MimeType: contentType,
		Suffix:   mimeTypeSuffix[contentType],
		Data:     data,
	}, nil
}
