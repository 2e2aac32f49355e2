package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Converter turns rendered HTML into the delivered artifact format.
type Converter interface {
	Convert(ctx context.Context, html []byte) ([]byte, error)
	ContentType() string
	Extension() string
}

// HTMLPassthrough delivers the rendered HTML as is.
type HTMLPassthrough struct{}

func (HTMLPassthrough) Convert(_ context.Context, html []byte) ([]byte, error) { return html, nil }
func (HTMLPassthrough) ContentType() string                                    { return "text/html; charset=utf-8" }
func (HTMLPassthrough) Extension() string                                      { return "html" }

// WKHTMLToPDF pipes HTML through the wkhtmltopdf binary: A4 with 20mm
// margins, UTF-8.
type WKHTMLToPDF struct {
	Path string
}

// NewWKHTMLToPDF resolves path (a binary name or file path) up front so a
// missing converter fails at startup rather than on the first request.
func NewWKHTMLToPDF(path string) (*WKHTMLToPDF, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("documents: pdf converter: %w", err)
	}
	return &WKHTMLToPDF{Path: resolved}, nil
}

var wkhtmltopdfArgs = []string{
	"--quiet",
	"--page-size", "A4",
	"--margin-top", "20mm",
	"--margin-right", "20mm",
	"--margin-bottom", "20mm",
	"--margin-left", "20mm",
	"--encoding", "UTF-8",
	"-", "-",
}

func (c *WKHTMLToPDF) Convert(ctx context.Context, html []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.Path, wkhtmltopdfArgs...)
	cmd.Stdin = bytes.NewReader(html)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("wkhtmltopdf: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("wkhtmltopdf: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("wkhtmltopdf: empty output")
	}
	return stdout.Bytes(), nil
}

func (c *WKHTMLToPDF) ContentType() string { return "application/pdf" }
func (c *WKHTMLToPDF) Extension() string   { return "pdf" }
