package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OCREngine recognizes the text of an image.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractCLI runs the tesseract binary, feeding the image on stdin and reading
// the recognized text from stdout.
type TesseractCLI struct {
	Binary string
	Lang   string
}

// NewTesseractCLI creates an engine. Empty values select "tesseract" and "eng".
func NewTesseractCLI(binary, lang string) *TesseractCLI {
	if binary == "" {
		binary = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	return &TesseractCLI{Binary: binary, Lang: lang}
}

// Available reports whether the binary can be found on PATH.
func (t *TesseractCLI) Available() bool {
	_, err := exec.LookPath(t.Binary)
	return err == nil
}

func (t *TesseractCLI) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.Binary, "stdin", "stdout", "-l", t.Lang) // #nosec G204 -- binary comes from configuration
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: tesseract: %v: %s", ErrDecode, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
