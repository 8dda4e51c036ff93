package client

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"qahiring/cv-analyzer/internal/models"
)

// Local validation errors. These never reach the network.
var (
	ErrNoFile          = errors.New("Please select a file to upload")
	ErrUnsupportedType = errors.New("Only PDF, DOCX, and TXT files are supported")
)

// ValidateUpload checks that a file was chosen and that its MIME type is one
// of the accepted CV formats.
func ValidateUpload(filename, contentType string) error {
	if filename == "" {
		return ErrNoFile
	}
	if !slices.Contains(models.AllowedMIMETypes, mediaType(contentType)) {
		return ErrUnsupportedType
	}
	return nil
}

// ContentTypeForFile returns the accepted MIME type for filename's extension,
// or "" when the extension is not accepted.
func ContentTypeForFile(filename string) string {
	return models.ExtensionMIMETypes[strings.ToLower(filepath.Ext(filename))]
}

// mediaType strips parameters such as "; charset=utf-8".
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
