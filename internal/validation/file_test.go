package validation

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaHeader(filename, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: filename,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func TestValidateMediaSizeCap(t *testing.T) {
	_, err := ValidateMedia(mediaHeader("big.mp4", "video/mp4", MaxMediaSize+1))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	category, err := ValidateMedia(mediaHeader("ok.mp4", "video/mp4", MaxMediaSize))
	require.NoError(t, err)
	assert.Equal(t, "video", category)
}

func TestValidateMediaCategories(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		category    string
		ok          bool
	}{
		{"jpeg image", "image/jpeg", "image", true},
		{"png image", "image/png", "image", true},
		{"mp4 video", "video/mp4", "video", true},
		{"webm audio", "audio/webm", "audio", true},
		{"pdf document", "application/pdf", "", false},
		{"plain text", "text/plain", "", false},
		{"missing type", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, err := ValidateMedia(mediaHeader("f", tt.contentType, 100))
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.category, category)
			} else {
				assert.ErrorIs(t, err, ErrUnsupportedMedia)
			}
		})
	}
}

func TestMediaCategory(t *testing.T) {
	assert.Equal(t, "image", MediaCategory("image/jpeg"))
	assert.Equal(t, "video", MediaCategory("video/quicktime"))
	assert.Equal(t, "", MediaCategory("noslash"))
}
