package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxMediaSize caps chat media uploads at 50 MB. Enforced before any
// storage write so an oversized selection leaves no state behind.
const MaxMediaSize = 50 << 20

// ErrFileTooLarge is returned before any upload when the file exceeds the cap.
var ErrFileTooLarge = fmt.Errorf("file too large: maximum size is %d MB", MaxMediaSize>>20)

// ErrUnsupportedMedia is returned for content types outside the accepted
// image, video, and audio categories.
var ErrUnsupportedMedia = fmt.Errorf("unsupported media type")

// mediaCategories are the coarse MIME categories accepted as chat media.
var mediaCategories = map[string]bool{
	"image": true,
	"video": true,
	"audio": true,
}

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// ImageConstraints defines validation rules for avatar image uploads
var ImageConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	},
	MaxSize: 5 << 20, // 5MB
}

// ValidateMedia checks a chat media upload: size cap first, then MIME
// category. Returns the coarse category ("image", "video", "audio") derived
// from the declared content type.
func ValidateMedia(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxMediaSize {
		return "", ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	category := MediaCategory(contentType)
	if !mediaCategories[category] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}

	return category, nil
}

// MediaCategory returns the part of a MIME type before the slash.
func MediaCategory(contentType string) string {
	category, _, found := strings.Cut(contentType, "/")
	if !found {
		return ""
	}
	return category
}

// ValidateFile validates a file upload against constraint rules using magic
// number detection, so a renamed file cannot bypass the whitelist.
func ValidateFile(header *multipart.FileHeader, constraints FileConstraints) error {
	// Check file size first (before reading content)
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}

	seeker, ok := file.(io.Seeker)
	if ok {
		_, err = seeker.Seek(0, 0)
		if err != nil {
			return fmt.Errorf("failed to reset file pointer: %w", err)
		}
	}

	detectedType := http.DetectContentType(buffer[:n])
	if !constraints.AllowedMimeTypes[detectedType] {
		return fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	return nil
}
