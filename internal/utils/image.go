package utils

import (
	"encoding/base64" // Data URI encoding
	"errors"          // Sentinel errors

	"github.com/gabriel-vasile/mimetype" // Magic-byte content sniffing
)

// MaxImageSize caps uploaded attachments at 5 MiB
const MaxImageSize = 5 * 1024 * 1024

// ErrInvalidImage is returned when an attachment is not a real JPEG or PNG
var ErrInvalidImage = errors.New("only JPEG and PNG images are allowed")

// ErrImageTooLarge is returned when an attachment exceeds MaxImageSize
var ErrImageTooLarge = errors.New("image exceeds the 5 MiB limit")

// ValidateImage sniffs the payload's magic bytes and returns its MIME type.
// Extension checks alone are not trusted; the bytes decide.
func ValidateImage(data []byte) (string, error) {
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	mime := mimetype.Detect(data) // Inspect magic bytes
	if mime.Is("image/jpeg") || mime.Is("image/png") {
		return mime.String(), nil
	}
	return "", ErrInvalidImage
}

// ImageDataURI encodes stored image bytes as a base64 data URI,
// or returns "" when no image is stored.
func ImageDataURI(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mime := mimetype.Detect(data) // Re-sniff so the URI carries the right type
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
}
