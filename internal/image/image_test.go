package image

import (
	"encoding/base64"
	"errors"
	"testing"
)

// pngHeader is the 8-byte PNG signature followed by the start of an IHDR
// chunk, enough for http.DetectContentType to recognize the format.
var pngHeader = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
}

var gifHeader = []byte("GIF89a\x01\x00\x01\x00")

func dataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantSuffix string
		wantErr    error
	}{
		{
			name:       "png image",
			uri:        dataURI("image/png", pngHeader),
			wantSuffix: ".png",
		},
		{
			name:       "gif image",
			uri:        dataURI("image/gif", gifHeader),
			wantSuffix: ".gif",
		},
		{
			name:       "declared type is ignored in favor of sniffing",
			uri:        dataURI("image/jpeg", pngHeader),
			wantSuffix: ".png",
		},
		{
			name:    "not a data uri",
			uri:     "https://example.com/image.png",
			wantErr: ErrInvalidDataURI,
		},
		{
			name:    "missing base64 marker",
			uri:     "data:image/png," + base64.StdEncoding.EncodeToString(pngHeader),
			wantErr: ErrInvalidDataURI,
		},
		{
			name:    "invalid base64 payload",
			uri:     "data:image/png;base64,!!!not-base64!!!",
			wantErr: ErrInvalidDataURI,
		},
		{
			name:    "empty payload",
			uri:     "data:image/png;base64,",
			wantErr: ErrInvalidDataURI,
		},
		{
			name:    "text payload rejected",
			uri:     dataURI("image/png", []byte("just some text, not an image")),
			wantErr: ErrUnsupportedMimeType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := DecodeDataURI(tt.uri)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeDataURI returned error: %v", err)
			}
			if file.Suffix != tt.wantSuffix {
				t.Errorf("expected suffix %q, got %q", tt.wantSuffix, file.Suffix)
			}
			if file.Size != int64(len(file.Data)) {
				t.Errorf("size %d does not match data length %d", file.Size, len(file.Data))
			}
		})
	}
}
