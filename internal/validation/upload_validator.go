package validation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// SizeError reports an upload larger than the configured limit.
type SizeError struct {
	Size int64
	Max  int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("upload of %d bytes exceeds the %d byte limit", e.Size, e.Max)
}

// ExtensionError reports an upload whose filename extension is not accepted.
type ExtensionError struct {
	Extension string
	Allowed   []string
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("extension %q is not an accepted spreadsheet format (allowed: %s)",
		e.Extension, strings.Join(e.Allowed, ", "))
}

// UploadValidator validates uploaded spreadsheets before they reach the
// parser. It only checks the declared filename and size; content sniffing
// stays with the loader, which never trusts extensions.
type UploadValidator struct {
	maxSize int64
	allowed []string
	logger  *slog.Logger
}

// NewUploadValidator creates an upload validator. Extensions are normalized
// to lower case with a leading dot; a maxSize of zero disables the size check.
func NewUploadValidator(maxSize int64, allowedExtensions []string, logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make([]string, 0, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed = append(allowed, ext)
	}

	return &UploadValidator{
		maxSize: maxSize,
		allowed: allowed,
		logger:  logger,
	}
}

// ValidateUpload checks the client-supplied filename extension and the
// upload size against the configured limits.
func (v *UploadValidator) ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !v.extensionAllowed(ext) {
		v.logger.Warn("Upload rejected: extension not allowed",
			slog.String("filename", filename),
			slog.String("extension", ext))
		return &ExtensionError{Extension: ext, Allowed: v.Allowed()}
	}

	if v.maxSize > 0 && size > v.maxSize {
		v.logger.Warn("Upload rejected: too large",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("max_size", v.maxSize))
		return &SizeError{Size: size, Max: v.maxSize}
	}

	return nil
}

// MaxSize returns the configured upload limit in bytes.
func (v *UploadValidator) MaxSize() int64 {
	return v.maxSize
}

// Allowed returns the accepted extensions.
func (v *UploadValidator) Allowed() []string {
	allowed := make([]string, len(v.allowed))
	copy(allowed, v.allowed)
	return allowed
}

func (v *UploadValidator) extensionAllowed(ext string) bool {
	for _, allowed := range v.allowed {
		if ext == allowed {
			return true
		}
	}
	return false
}
