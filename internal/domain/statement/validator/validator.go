// Package validator admits files to the scanning pipeline. It resolves the file kind
// from the name or declared MIME type and checks the leading signature bytes so a
// renamed file cannot reach a decoder meant for another format.
package validator

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
)

// MaxFileSize is the default upper bound for a single file (50 MiB).
const MaxFileSize int64 = 52_428_800

var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrFileTooLarge      = errors.New("file exceeds maximum size")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrSignatureMismatch = errors.New("file content does not match its type (magic byte mismatch)")
)

// RejectionError describes why a single file was not admitted.
type RejectionError struct {
	FileName string
	Err      error
	Detail   string
}

func (e *RejectionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v (%s)", e.FileName, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.FileName, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

var signatures = map[model.FileKind][][]byte{
	model.KindPDF:         {{0x25, 0x50, 0x44, 0x46}},
	model.KindSpreadsheet: {{0x50, 0x4B, 0x03, 0x04}},
	model.KindImage: {
		{0xFF, 0xD8, 0xFF},
		{0x89, 0x50, 0x4E, 0x47},
	},
}

var extensionKinds = map[string]model.FileKind{
	".pdf":  model.KindPDF,
	".csv":  model.KindCSV,
	".png":  model.KindImage,
	".jpg":  model.KindImage,
	".jpeg": model.KindImage,
	".xlsx": model.KindSpreadsheet,
}

var mimeKinds = map[string]model.FileKind{
	"application/pdf":          model.KindPDF,
	"text/csv":                 model.KindCSV,
	"application/csv":          model.KindCSV,
	"application/vnd.ms-excel": model.KindCSV,
	"image/png":                model.KindImage,
	"image/jpeg":               model.KindImage,
	"image/jpg":                model.KindImage,

	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": model.KindSpreadsheet,
}

// Validator checks files against size, type and signature rules.
type Validator struct {
	maxSize int64
}

// New creates a validator. A non-positive maxSize selects MaxFileSize.
func New(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the configured size limit.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// KindOf resolves the file kind from its extension, falling back to the declared
// MIME type. MIME parameters such as "; charset=utf-8" are ignored.
func KindOf(name, mimeType string) (model.FileKind, bool) {
	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(name))]; ok {
		return kind, true
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	kind, ok := mimeKinds[mt]
	return kind, ok
}

// Validate returns the file kind when f may enter the pipeline, or a
// *RejectionError wrapping one of the package sentinel errors.
func (v *Validator) Validate(f model.InputFile) (model.FileKind, error) {
	if f.Size() == 0 {
		return "", &RejectionError{FileName: f.Name, Err: ErrEmptyFile}
	}
	if f.Size() > v.maxSize {
		return "", &RejectionError{
			FileName: f.Name,
			Err:      ErrFileTooLarge,
			Detail:   fmt.Sprintf("%d bytes, limit %d", f.Size(), v.maxSize),
		}
	}

	kind, ok := KindOf(f.Name, f.MimeType)
	if !ok {
		return "", &RejectionError{FileName: f.Name, Err: ErrUnsupportedType, Detail: f.MimeType}
	}

	expected, checked := signatures[kind]
	if !checked {
		return kind, nil
	}
	for _, sig := range expected {
		if bytes.HasPrefix(f.Data, sig) {
			return kind, nil
		}
	}
	return "", &RejectionError{
		FileName: f.Name,
		Err:      ErrSignatureMismatch,
		Detail:   fmt.Sprintf("declared %s", kind),
	}
}

// Reason returns a short user-facing explanation for a validation error.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return "empty file"
	case errors.Is(err, ErrFileTooLarge):
		return "file too large"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported file type"
	case errors.Is(err, ErrSignatureMismatch):
		return "magic byte mismatch"
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
