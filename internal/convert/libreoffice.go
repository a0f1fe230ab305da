// Package convert turns word-processor documents into PDF so they can go
// through the same rasterize-and-recognize path as native PDFs.
package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Converter turns a document of the given extension ("doc" or "docx")
// into PDF bytes.
type Converter interface {
	ToPDF(ctx context.Context, input []byte, ext string) ([]byte, error)
}

// LibreOfficeConverter shells out to a headless LibreOffice. Each call works
// in its own temp directory, which also serves as the profile HOME so
// concurrent conversions do not fight over a shared profile lock.
type LibreOfficeConverter struct {
	binary  string
	timeout time.Duration
}

// NewLibreOfficeConverter creates a converter. Binary defaults to "soffice",
// timeout to two minutes.
func NewLibreOfficeConverter(binary string, timeout time.Duration) *LibreOfficeConverter {
	if binary == "" {
		binary = "soffice"
	}
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &LibreOfficeConverter{binary: binary, timeout: timeout}
}

// ToPDF converts the input document to PDF. The temp directory is removed
// before returning on every path.
func (c *LibreOfficeConverter) ToPDF(ctx context.Context, input []byte, ext string) ([]byte, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext != "doc" && ext != "docx" {
		return nil, fmt.Errorf("unsupported input extension: %s", ext)
	}

	dir, err := os.MkdirTemp("", "docuchat-convert-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "input."+ext)
	if err := os.WriteFile(inputPath, input, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write input file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", dir,
		inputPath,
	)
	cmd.Env = append(os.Environ(), "HOME="+dir)

	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("conversion failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pdfPath := filepath.Join(dir, "input.pdf")
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("conversion produced no output: %w", err)
	}

	return pdf, nil
}
