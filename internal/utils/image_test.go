package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngSig  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	jpegSig = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}
)

func TestValidateImageAcceptsRealImages(t *testing.T) {
	mime, err := ValidateImage(pngSig)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	mime, err = ValidateImage(jpegSig)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
}

func TestValidateImageRejectsOtherContent(t *testing.T) {
	// A GIF header is a real image type, but not an allowed one
	_, err := ValidateImage([]byte("GIF89a...."))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = ValidateImage([]byte("plain text pretending to be a photo"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestValidateImageRejectsOversize(t *testing.T) {
	big := append(bytes.Clone(pngSig), make([]byte, MaxImageSize)...)
	_, err := ValidateImage(big)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestImageDataURI(t *testing.T) {
	uri := ImageDataURI(pngSig)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	uri = ImageDataURI(jpegSig)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	assert.Empty(t, ImageDataURI(nil))
}
