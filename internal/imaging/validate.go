// Package imaging gates user-supplied photos before they reach storage.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/mwalczyk/socialfeed/internal/domain"
)

// MaxPhotoBytes is the decoded size ceiling for an uploaded photo (4 MiB).
const MaxPhotoBytes = 4 << 20

var magicNumbers = []struct {
	format string
	prefix []byte
}{
	{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}},
	{"jpg", []byte{0xFF, 0xD8, 0xFF}},
	{"bmp", []byte{'B', 'M'}},
	{"tiff", []byte{'I', 'I', 0x2A, 0x00}},
	{"tiff", []byte{'M', 'M', 0x00, 0x2A}},
}

// Validator checks that a base64-encoded photo is a recognized image format
// within the size ceiling. The empty string and the literal "default"
// placeholder always pass.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate implements domain.PhotoValidator.
func (Validator) Validate(photo string) error {
	if photo == "" || photo == "default" {
		return nil
	}

	decoded, err := base64.StdEncoding.DecodeString(photo)
	if err != nil {
		return fmt.Errorf("%w: photo is not valid base64", domain.ErrValidation)
	}

	if DetectFormat(decoded) == "" {
		return fmt.Errorf("%w: file is not a supported image", domain.ErrValidation)
	}
	if len(decoded) > MaxPhotoBytes {
		return fmt.Errorf("%w: image is too large", domain.ErrValidation)
	}
	return nil
}

// DetectFormat returns the image format tag for the buffer, or the empty
// string when no supported format matches.
func DetectFormat(data []byte) string {
	for _, m := range magicNumbers {
		if bytes.HasPrefix(data, m.prefix) {
			return m.format
		}
	}
	return ""
}
