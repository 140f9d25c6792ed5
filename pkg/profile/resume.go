package profile

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractText extracts plain text from a resume artifact. PDFs are validated
// first, then run through external extractors in order of reliability; plain
// text files are read directly.
func ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("profile: resume artifact %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("profile: read resume %s: %w", path, err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("profile: unsupported resume format %q", filepath.Ext(path))
	}
}

func extractPDF(path string) (string, error) {
	// Reject corrupt files before shelling out to an extractor.
	if err := api.ValidateFile(path, nil); err != nil {
		return "", fmt.Errorf("profile: invalid PDF %s: %w", path, err)
	}

	if text, err := extractWithPdfToText(path); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if text, err := extractWithPs2Ascii(path); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	return "", fmt.Errorf("profile: no text extracted from %s (tried pdftotext, ps2ascii)", path)
}

// extractWithPdfToText uses the poppler-utils pdftotext command, the most
// reliable extractor when present.
func extractWithPdfToText(path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not available: %w", err)
	}

	tmp, err := os.CreateTemp("", "resume-*.txt")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := exec.Command("pdftotext", "-layout", path, tmpPath).Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func extractWithPs2Ascii(path string) (string, error) {
	if _, err := exec.LookPath("ps2ascii"); err != nil {
		return "", fmt.Errorf("ps2ascii not available: %w", err)
	}
	out, err := exec.Command("ps2ascii", path).Output()
	if err != nil {
		return "", fmt.Errorf("ps2ascii failed: %w", err)
	}
	return string(out), nil
}
